package config

// Swigfile represents the structure of the swig.yaml or swig.toml configuration file.
type Swigfile struct {
	Package string              `yaml:"package" toml:"package"`
	Root    string              `yaml:"root"    toml:"root"`
	Tasks   map[string]*TaskDTO `yaml:"tasks"   toml:"tasks"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	Description string           `yaml:"description" toml:"description"`
	DependsOn   []string         `yaml:"dependsOn"   toml:"dependsOn"`
	Then        []string         `yaml:"then"        toml:"then"`
	Uses        string           `yaml:"uses"        toml:"uses"`
	Src         []string         `yaml:"src"         toml:"src"`
	Steps       []map[string]any `yaml:"steps"       toml:"steps"`
	Pipelines   []*PipelineDTO   `yaml:"pipelines"   toml:"pipelines"`
	Watch       *WatchDTO        `yaml:"watch"       toml:"watch"`
	Serve       *ServeDTO        `yaml:"serve"       toml:"serve"`
}

// hasAction reports whether the task declares an action of its own.
func (t *TaskDTO) hasAction() bool {
	return len(t.Src) > 0 || len(t.Steps) > 0 || len(t.Pipelines) > 0 || t.Watch != nil || t.Serve != nil
}

// PipelineDTO represents one named file-stream pipeline.
type PipelineDTO struct {
	Name  string           `yaml:"name"  toml:"name"`
	Src   []string         `yaml:"src"   toml:"src"`
	Steps []map[string]any `yaml:"steps" toml:"steps"`
}

// WatchDTO represents a watch rule. Debounce is a Go duration string such as "250ms".
type WatchDTO struct {
	Patterns []string `yaml:"patterns" toml:"patterns"`
	Run      []string `yaml:"run"      toml:"run"`
	Debounce string   `yaml:"debounce" toml:"debounce"`
}

// ServeDTO represents a static development server. LiveReload defaults to true.
type ServeDTO struct {
	Root       string `yaml:"root"       toml:"root"`
	Port       int    `yaml:"port"       toml:"port"`
	LiveReload *bool  `yaml:"livereload" toml:"livereload"`
}
