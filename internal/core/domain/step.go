package domain

// StepKind identifies the transformation a pipeline step performs.
type StepKind uint8

const (
	// StepClean deletes a path recursively.
	StepClean StepKind = iota + 1
	// StepLint runs static checks over script records.
	StepLint
	// StepOrder reorders records by an explicit priority list.
	StepOrder
	// StepConcat merges all records into one.
	StepConcat
	// StepWrap substitutes record contents into a template.
	StepWrap
	// StepHeader prepends a rendered template.
	StepHeader
	// StepMinify size-reduces script and stylesheet records.
	StepMinify
	// StepRename changes a record's extension or base name.
	StepRename
	// StepStylesheet compiles stylesheet sources to plain CSS.
	StepStylesheet
	// StepCopy writes records under a destination root.
	StepCopy
)

var stepKindNames = map[StepKind]string{
	StepClean:      "clean",
	StepLint:       "lint",
	StepOrder:      "order",
	StepConcat:     "concat",
	StepWrap:       "wrap",
	StepHeader:     "header",
	StepMinify:     "minify",
	StepRename:     "rename",
	StepStylesheet: "less",
	StepCopy:       "dest",
}

// String returns the configuration keyword of the step kind.
func (k StepKind) String() string {
	if name, ok := stepKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseStepKind maps a configuration keyword to a StepKind.
func ParseStepKind(s string) (StepKind, bool) {
	for k, name := range stepKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Step is a single transformation in a pipeline. Only the fields relevant to Kind are set.
type Step struct {
	Kind StepKind

	// Path is the target of a Clean step, relative to the project root.
	Path string
	// Force makes Clean tolerate absent paths and paths outside the root.
	Force bool
	// Patterns is the priority list of an Order step.
	Patterns []string
	// File is the output name of a Concat step.
	File string
	// Template is the text/template source for Wrap and Header steps.
	// An empty Header template selects the package banner.
	Template string
	// Extname is the new extension of a Rename step.
	Extname string
	// Basename is the new file name of a Rename step.
	Basename string
	// IncludePaths are extra import search directories for a Stylesheet step.
	IncludePaths []string
	// Dest is the output root of a Copy step, relative to the project root.
	Dest string
}

// Pipeline is an ordered list of steps applied to the records matched by Sources.
type Pipeline struct {
	Name    string
	Sources []string
	Steps   []Step
}
