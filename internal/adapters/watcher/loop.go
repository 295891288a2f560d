package watcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ChangeWatcher = (*Loop)(nil)

// DefaultDebounceWindow is used by watch rules that do not configure a window.
const DefaultDebounceWindow = 100 * time.Millisecond

// WatcherFactory creates a filesystem subscription limited to the directories accepted by include.
type WatcherFactory func(include func(dir string) bool) (ports.Watcher, error)

// Loop implements ports.ChangeWatcher.
// Each rule gets its own subscription and debouncer; rebuilds of one rule never overlap.
type Loop struct {
	newWatcher WatcherFactory
	logger     ports.Logger

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewLoop creates a Loop backed by fsnotify watchers.
func NewLoop(logger ports.Logger) *Loop {
	return NewLoopWithFactory(logger, func(include func(string) bool) (ports.Watcher, error) {
		return NewWatcher(logger, include)
	})
}

// NewLoopWithFactory creates a Loop using factory to create subscriptions.
func NewLoopWithFactory(logger ports.Logger, factory WatcherFactory) *Loop {
	return &Loop{newWatcher: factory, logger: logger}
}

// Watch starts a background loop for rule under root and returns once the subscription is live.
func (l *Loop) Watch(ctx context.Context, root string, rule domain.WatchRule, onChange ports.ChangeFunc) error {
	matcher, err := NewMatcher(root, rule.Patterns)
	if err != nil {
		return err
	}

	w, err := l.newWatcher(matcher.IncludeDir)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWatcherStartFailed, err.Error()), "root", root)
	}
	if err := w.Start(ctx, root); err != nil {
		_ = w.Stop()
		return zerr.With(zerr.Wrap(domain.ErrWatcherStartFailed, err.Error()), "root", root)
	}

	window := rule.Debounce
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	rb := newRebuilder(ctx, onChange)
	debouncer := NewDebouncer(window, rb.trigger)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for event := range w.Events() {
			if matcher.Match(event.Path) {
				debouncer.Add(event.Path)
			}
		}
		// The event stream closes once ctx is cancelled.
		debouncer.Stop()
		rb.wait()
		if err := w.Stop(); err != nil {
			l.record(fmt.Errorf("stop watcher for %s: %w", root, err))
		}
	}()
	return nil
}

// Wait blocks until every loop started by Watch has ended.
func (l *Loop) Wait() error {
	l.wg.Wait()
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Join(l.errs...)
}

func (l *Loop) record(err error) {
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()
}

// rebuilder serializes change callbacks: a burst arriving while a rebuild runs
// is coalesced into a single follow-up rebuild.
type rebuilder struct {
	ctx      context.Context
	onChange ports.ChangeFunc

	mu      sync.Mutex
	idle    *sync.Cond
	running bool
	pending []string
}

func newRebuilder(ctx context.Context, onChange ports.ChangeFunc) *rebuilder {
	r := &rebuilder{ctx: ctx, onChange: onChange}
	r.idle = sync.NewCond(&r.mu)
	return r
}

func (r *rebuilder) trigger(paths []string) {
	r.mu.Lock()
	if r.running {
		r.pending = append(r.pending, paths...)
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	for {
		if r.ctx.Err() == nil {
			r.onChange(r.ctx, paths)
		}

		r.mu.Lock()
		if len(r.pending) == 0 || r.ctx.Err() != nil {
			r.running, r.pending = false, nil
			r.idle.Broadcast()
			r.mu.Unlock()
			return
		}
		paths, r.pending = r.pending, nil
		r.mu.Unlock()
		slices.Sort(paths)
		paths = slices.Compact(paths)
	}
}

// wait blocks until no rebuild is running.
func (r *rebuilder) wait() {
	r.mu.Lock()
	for r.running {
		r.idle.Wait()
	}
	r.mu.Unlock()
}
