package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.trai.ch/swig/internal/core/domain"
)

// runAction executes the pipelines of t and starts its services. Services outlive the
// task: they are bound to the context of the top-level run.
func (inv *invocation) runAction(ctx context.Context, t *domain.Task, out io.Writer) error {
	var errs []error
	if len(t.Pipelines) > 0 {
		if err := inv.s.executor.Execute(ctx, inv.env, t, out); err != nil {
			errs = append(errs, err)
		}
	}
	if t.Serve != nil {
		if err := inv.s.server.Start(inv.rootCtx, inv.env.Root, *t.Serve); err != nil {
			errs = append(errs, err)
		} else {
			inv.services.Store(true)
			_, _ = fmt.Fprintf(out, "serving %s on port %d\n", t.Serve.Root, t.Serve.Port)
		}
	}
	if t.Watch != nil {
		if err := inv.startWatch(*t.Watch); err != nil {
			errs = append(errs, err)
		} else {
			inv.services.Store(true)
			_, _ = fmt.Fprintf(out, "watching %s\n", strings.Join(t.Watch.Patterns, ", "))
		}
	}
	return errors.Join(errs...)
}

// startWatch subscribes rule. Each debounced burst reruns the rule's targets as a nested
// invocation and then signals connected browsers.
func (inv *invocation) startWatch(rule domain.WatchRule) error {
	return inv.s.watcher.Watch(inv.rootCtx, inv.env.Root, rule, func(ctx context.Context, paths []string) {
		inv.s.logger.Info(fmt.Sprintf("%d file(s) changed, running %s", len(paths), strings.Join(domain.Strings(rule.Run), ", ")))
		inv.runNested(ctx, rule.Run)
		if ctx.Err() != nil {
			return
		}
		inv.s.server.Reload(inv.relative(paths))
	})
}

// relative returns the first changed path relative to the project root.
func (inv *invocation) relative(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	rel, err := filepath.Rel(inv.env.Root, paths[0])
	if err != nil {
		return filepath.ToSlash(paths[0])
	}
	return filepath.ToSlash(rel)
}
