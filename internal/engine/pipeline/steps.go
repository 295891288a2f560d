package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/zerr"
)

// apply runs one step. It returns the surviving records, the per-record failures and an
// error when the step cannot run at all, which aborts the pipeline.
func (r *Runner) apply(
	env domain.BuildEnv, step domain.Step, records []domain.Record, out io.Writer,
) ([]domain.Record, []error, error) {
	switch step.Kind {
	case domain.StepClean:
		return records, clean(env.Root, step, out), nil
	case domain.StepLint:
		r.lint(records, out)
		return records, nil, nil
	case domain.StepOrder:
		return order(records, step.Patterns), nil, nil
	case domain.StepConcat:
		return concat(records, step.File), nil, nil
	case domain.StepWrap:
		return wrap(records, step.Template, env.Meta)
	case domain.StepHeader:
		return header(records, step.Template, env.Meta)
	case domain.StepMinify:
		return r.minify(records)
	case domain.StepRename:
		return rename(records, step), nil, nil
	case domain.StepStylesheet:
		return r.compile(env.Root, records, step.IncludePaths)
	case domain.StepCopy:
		return r.dest(env.Root, records, step.Dest, out)
	default:
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrInvalidStep, "unknown step kind"), "kind", int(step.Kind))
	}
}

// clean removes step.Path below root. Paths escaping the root are refused unless forced.
func clean(root string, step domain.Step, out io.Writer) []error {
	target := filepath.Join(root, filepath.FromSlash(step.Path))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		if !step.Force {
			return []error{transformError(zerr.Wrap(domain.ErrPathOutsideRoot, "refusing to clean"), step.Path)}
		}
	}

	if _, err := os.Lstat(target); err != nil {
		if os.IsNotExist(err) && step.Force {
			return nil
		}
		return []error{transformError(zerr.Wrap(domain.ErrInputNotFound, err.Error()), step.Path)}
	}
	if err := os.RemoveAll(target); err != nil {
		return []error{transformError(err, step.Path)}
	}
	_, _ = fmt.Fprintf(out, "removed %s\n", step.Path)
	return nil
}

// lint reports findings for script records. Findings never fail the pipeline.
func (r *Runner) lint(records []domain.Record, out io.Writer) {
	count := 0
	for _, rec := range records {
		for _, f := range r.linter.Lint(path.Join(rec.Base, rec.Path), rec.Contents) {
			count++
			_, _ = fmt.Fprintln(out, f.String())
			r.logger.Warn(f.String())
		}
	}
	_, _ = fmt.Fprintf(out, "linted %d file(s), %d finding(s)\n", len(records), count)
}

// order stably sorts records by the index of the first pattern matching their base name or
// relative path. Unmatched records keep their relative order after all matched ones.
func order(records []domain.Record, patterns []string) []domain.Record {
	normalized := make([]string, len(patterns))
	for i, p := range patterns {
		normalized[i] = strings.TrimPrefix(filepath.ToSlash(p), "./")
	}
	rank := func(rec domain.Record) int {
		for i, p := range normalized {
			if ok, _ := doublestar.Match(p, rec.Name()); ok {
				return i
			}
			if ok, _ := doublestar.Match(p, rec.Path); ok {
				return i
			}
		}
		return len(normalized)
	}

	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b domain.Record) int {
		return rank(a) - rank(b)
	})
	return out
}

// concat merges records into a single record named file, separated by newlines.
func concat(records []domain.Record, file string) []domain.Record {
	if len(records) == 0 {
		return nil
	}
	parts := make([][]byte, len(records))
	for i, rec := range records {
		parts[i] = rec.Contents
	}
	return []domain.Record{{
		Base:     records[0].Base,
		Path:     file,
		Contents: bytes.Join(parts, []byte("\n")),
		Metadata: map[string]string{},
	}}
}

// wrapData is the template input of a Wrap step.
type wrapData struct {
	Contents string
	Path     string
	Name     string
	Package  domain.PackageMeta
}

// wrap renders each record through tmpl, which refers to the content as {{.Contents}}.
func wrap(records []domain.Record, tmpl string, meta domain.PackageMeta) ([]domain.Record, []error, error) {
	t, err := template.New("wrap").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return nil, nil, zerr.Wrap(domain.ErrTemplateFailed, err.Error())
	}

	out := make([]domain.Record, 0, len(records))
	var errs []error
	for _, rec := range records {
		var buf bytes.Buffer
		data := wrapData{Contents: string(rec.Contents), Path: rec.Path, Name: rec.Name(), Package: meta}
		if err := t.Execute(&buf, data); err != nil {
			errs = append(errs, transformError(zerr.Wrap(domain.ErrTemplateFailed, err.Error()), rec.Path))
			continue
		}
		next := rec.Clone()
		next.Contents = buf.Bytes()
		out = append(out, next)
	}
	return out, errs, nil
}

// header prepends the banner rendered once for this execution.
func header(records []domain.Record, tmpl string, meta domain.PackageMeta) ([]domain.Record, []error, error) {
	banner, err := domain.RenderBanner(tmpl, meta)
	if err != nil {
		return nil, nil, err
	}
	out := make([]domain.Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
		out[i].Contents = append([]byte(banner), rec.Contents...)
	}
	return out, nil, nil
}

func (r *Runner) minify(records []domain.Record) ([]domain.Record, []error, error) {
	out := make([]domain.Record, 0, len(records))
	var errs []error
	for _, rec := range records {
		small, err := r.minifier.Minify(rec.Path, rec.Contents)
		if err != nil {
			errs = append(errs, transformError(err, rec.Path))
			continue
		}
		next := rec.Clone()
		next.Contents = small
		out = append(out, next)
	}
	return out, errs, nil
}

func rename(records []domain.Record, step domain.Step) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, rec := range records {
		if step.Basename != "" {
			out[i] = rec.WithBasename(step.Basename)
		} else {
			out[i] = rec.WithExtname(step.Extname)
		}
	}
	return out
}

// compile turns .less and .css records into plain CSS. Other records pass through.
// A record that fails to compile is dropped.
func (r *Runner) compile(root string, records []domain.Record, includePaths []string) ([]domain.Record, []error, error) {
	paths := make([]string, len(includePaths))
	for i, p := range includePaths {
		paths[i] = filepath.Join(root, filepath.FromSlash(p))
	}

	out := make([]domain.Record, 0, len(records))
	var errs []error
	for _, rec := range records {
		ext := rec.Ext()
		if ext != ".less" && ext != ".css" {
			out = append(out, rec)
			continue
		}
		filename := rec.Metadata[domain.MetaSource]
		if filename == "" {
			filename = filepath.Join(root, filepath.FromSlash(rec.Base), filepath.FromSlash(rec.Path))
		}
		css, err := r.compiler.Compile(filename, rec.Contents, paths)
		if err != nil {
			errs = append(errs, transformError(err, path.Join(rec.Base, rec.Path)))
			continue
		}
		next := rec.WithExtname(".css")
		next.Contents = css
		out = append(out, next)
	}
	return out, errs, nil
}

// dest writes records below dest and passes on the records that reached the disk. Files
// whose content is unchanged are not rewritten. A destination root that cannot be created
// or written aborts the pipeline with ErrFatalIO.
func (r *Runner) dest(root string, records []domain.Record, dest string, out io.Writer) ([]domain.Record, []error, error) {
	destRoot := filepath.Join(root, filepath.FromSlash(dest))
	if err := os.MkdirAll(destRoot, 0o750); err != nil {
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrFatalIO, err.Error()), "dest", dest)
	}
	if err := checkWritable(destRoot); err != nil {
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrFatalIO, err.Error()), "dest", dest)
	}

	kept := make([]domain.Record, 0, len(records))
	var errs []error
	written, unchanged := 0, 0
	for _, rec := range records {
		target := filepath.Join(destRoot, filepath.FromSlash(rec.Path))
		if r.unchanged(target, rec.Contents) {
			unchanged++
			kept = append(kept, rec)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			errs = append(errs, transformError(zerr.Wrap(domain.ErrFileWriteFailed, err.Error()), path.Join(dest, rec.Path)))
			continue
		}
		if err := os.WriteFile(target, rec.Contents, 0o644); err != nil { //nolint:gosec // build output is world-readable
			errs = append(errs, transformError(zerr.Wrap(domain.ErrFileWriteFailed, err.Error()), path.Join(dest, rec.Path)))
			continue
		}
		written++
		kept = append(kept, rec)
	}
	_, _ = fmt.Fprintf(out, "%s: %d written, %d unchanged\n", dest, written, unchanged)
	return kept, errs, nil
}

// checkWritable creates and removes a scratch file in dir. An existing directory may still
// refuse writes: read-only mode, read-only mount, foreign owner.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".swig-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Remove(name)
}

func (r *Runner) unchanged(target string, contents []byte) bool {
	existing, err := r.hasher.HashFile(target)
	if err != nil {
		return false
	}
	return existing == r.hasher.HashBytes(contents)
}
