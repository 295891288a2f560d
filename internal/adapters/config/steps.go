package config

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/zerr"
)

// parseSteps converts the single-key step maps of a pipeline into domain steps.
func parseSteps(task string, raw []map[string]any) ([]domain.Step, error) {
	steps := make([]domain.Step, 0, len(raw))
	for i, entry := range raw {
		step, err := parseStep(entry)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "task", task), "step", i)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(entry map[string]any) (domain.Step, error) {
	if len(entry) != 1 {
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return domain.Step{}, zerr.With(
			zerr.Wrap(domain.ErrInvalidStep, "a step must have exactly one key"),
			"keys", strings.Join(keys, ","),
		)
	}

	var key string
	var value any
	for k, v := range entry {
		key, value = k, v
	}

	kind, ok := domain.ParseStepKind(key)
	if !ok {
		return domain.Step{}, zerr.With(zerr.Wrap(domain.ErrInvalidStep, "unknown step"), "kind", key)
	}

	step := domain.Step{Kind: kind}
	args := stepArgs{value: value}
	var err error

	switch kind {
	case domain.StepClean:
		step.Path, err = args.stringOr("path")
		if err == nil {
			step.Force, err = args.boolField("force")
		}
	case domain.StepLint, domain.StepMinify:
		// No arguments.
	case domain.StepOrder:
		step.Patterns, err = args.listOr("patterns")
		if err == nil && len(step.Patterns) == 0 {
			err = args.missing("patterns")
		}
	case domain.StepConcat:
		step.File, err = args.stringOr("file")
	case domain.StepWrap:
		step.Template, err = args.stringOr("template")
		if err == nil {
			err = checkTemplate(step.Template)
		}
	case domain.StepHeader:
		if value != nil {
			step.Template, err = args.optionalStringOr("template")
		}
		if err == nil && step.Template != "" {
			err = checkTemplate(step.Template)
		}
	case domain.StepRename:
		err = parseRename(args, &step)
	case domain.StepStylesheet:
		if value != nil {
			step.IncludePaths, err = args.optionalList("paths")
		}
	case domain.StepCopy:
		step.Dest, err = args.stringOr("path")
	}
	if err != nil {
		return domain.Step{}, zerr.With(err, "kind", key)
	}
	return step, nil
}

// checkTemplate parses a wrap or header template so syntax errors surface at load time.
func checkTemplate(tmpl string) error {
	if _, err := template.New("step").Option("missingkey=zero").Parse(tmpl); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidStep, err.Error()), "field", "template")
	}
	return nil
}

func parseRename(args stepArgs, step *domain.Step) error {
	if s, ok := args.value.(string); ok {
		if strings.HasPrefix(s, ".") {
			step.Extname = s
		} else {
			step.Basename = s
		}
		return nil
	}
	var err error
	if step.Extname, err = args.optionalStringOr("extname"); err != nil {
		return err
	}
	if step.Basename, err = args.optionalStringOr("basename"); err != nil {
		return err
	}
	if (step.Extname == "") == (step.Basename == "") {
		return zerr.Wrap(domain.ErrInvalidStep, "rename needs exactly one of extname or basename")
	}
	return nil
}

// stepArgs interprets the value of a step key, which is either a scalar shorthand or a map.
type stepArgs struct {
	value any
}

func (a stepArgs) missing(field string) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidStep, "missing required field"), "field", field)
}

func (a stepArgs) field(name string) (any, bool) {
	m, ok := a.value.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// stringOr accepts a plain string or a map carrying the string under field.
func (a stepArgs) stringOr(field string) (string, error) {
	s, err := a.optionalStringOr(field)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", a.missing(field)
	}
	return s, nil
}

func (a stepArgs) optionalStringOr(field string) (string, error) {
	switch v := a.value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case map[string]any:
		raw, ok := v[field]
		if !ok {
			return "", nil
		}
		s, ok := raw.(string)
		if !ok {
			return "", zerr.With(zerr.Wrap(domain.ErrInvalidStep, "expected a string"), "field", field)
		}
		return s, nil
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidStep, "unexpected value"), "type", fmt.Sprintf("%T", v))
	}
}

func (a stepArgs) boolField(field string) (bool, error) {
	raw, ok := a.field(field)
	if !ok {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, zerr.With(zerr.Wrap(domain.ErrInvalidStep, "expected a boolean"), "field", field)
	}
	return b, nil
}

// listOr accepts a list, a single string, or a map carrying the list under field.
func (a stepArgs) listOr(field string) ([]string, error) {
	switch v := a.value.(type) {
	case string:
		return []string{v}, nil
	case []any:
		return toStrings(v, field)
	case map[string]any:
		return a.optionalList(field)
	default:
		return nil, a.missing(field)
	}
}

func (a stepArgs) optionalList(field string) ([]string, error) {
	raw, ok := a.field(field)
	if !ok {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []any:
		return toStrings(v, field)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidStep, "expected a list of strings"), "field", field)
	}
}

func toStrings(items []any, field string) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidStep, "expected a list of strings"), "field", field)
		}
		out = append(out, s)
	}
	return out, nil
}
