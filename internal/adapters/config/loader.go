// Package config provides the configuration loader for swig.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Candidate configuration file names, in discovery order.
var configFileNames = []string{"swig.yaml", "swig.yml", "swig.toml"}

// DefaultPackageFile is the package metadata file used when the configuration does not name one.
const DefaultPackageFile = "package.json"

const defaultDebounce = 100 * time.Millisecond

var validTaskNameRegex = regexp.MustCompile(`^[A-Za-z0-9_:.-]+$`)

// Loader implements ports.ConfigLoader for YAML and TOML files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration and returns a validated, sealed domain.Graph.
// Every returned error is classified as domain.ErrConfiguration.
func (l *Loader) Load(cwd, configPath string) (*domain.Graph, error) {
	g, err := l.load(cwd, configPath)
	if err != nil {
		return nil, errors.Join(domain.ErrConfiguration, err)
	}
	return g, nil
}

func (l *Loader) load(cwd, configPath string) (*domain.Graph, error) {
	if configPath == "" {
		found, err := findConfiguration(cwd)
		if err != nil {
			return nil, err
		}
		configPath = found
	} else if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}

	var file Swigfile
	if err := readAndUnmarshal(configPath, &file); err != nil {
		return nil, err
	}
	if len(file.Tasks) == 0 {
		l.Logger.Warn(fmt.Sprintf("%s declares no tasks", filepath.Base(configPath)))
	}

	g := domain.NewGraph()
	root, err := resolveRoot(configPath, file.Root)
	if err != nil {
		return nil, err
	}
	g.SetRoot(root)
	packageFile := file.Package
	if packageFile == "" {
		packageFile = DefaultPackageFile
	}
	g.SetPackageFile(packageFile)

	// First pass: validate names so that references can be checked against the full set.
	names := make([]string, 0, len(file.Tasks))
	for name, dto := range file.Tasks {
		if err := validateTaskName(name); err != nil {
			return nil, err
		}
		if dto == nil {
			file.Tasks[name] = &TaskDTO{}
		}
		names = append(names, name)
	}
	slices.Sort(names)

	// Second pass: resolve uses, check references and build tasks.
	for _, name := range names {
		dto := file.Tasks[name]
		for _, ref := range slices.Concat(dto.DependsOn, dto.Then) {
			if _, ok := file.Tasks[ref]; !ok {
				err := zerr.With(zerr.Wrap(domain.ErrMissingDependency, "invalid task reference"), "dependency", ref)
				return nil, zerr.With(err, "task", name)
			}
		}

		action, err := resolveUses(file.Tasks, name)
		if err != nil {
			return nil, err
		}
		task, err := buildTask(name, dto, action, file.Tasks)
		if err != nil {
			return nil, err
		}
		if err := g.AddTask(task); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := checkWatchTargets(g); err != nil {
		return nil, err
	}
	return g, nil
}

// checkWatchTargets rejects watch rules whose rebuild would reach a watch or serve task
// through run targets, their prerequisites or then chains.
func checkWatchTargets(g *domain.Graph) error {
	for task := range g.Walk() {
		if task.Watch == nil {
			continue
		}
		seen := make(map[domain.InternedString]bool)
		queue := slices.Clone(task.Watch.Run)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if seen[cur] {
				continue
			}
			seen[cur] = true
			target, _ := g.GetTask(cur)
			if target.IsService() {
				err := zerr.With(zerr.Wrap(domain.ErrWatchStartsService, "invalid watch target"), "target", cur.String())
				return zerr.With(err, "task", task.Name.String())
			}
			queue = append(queue, target.Dependencies...)
			queue = append(queue, target.Then...)
		}
	}
	return nil
}

// findConfiguration walks up from cwd until a configuration file is found.
func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(currentDir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no configuration file"), "cwd", cwd)
}

// readAndUnmarshal reads a configuration file and decodes it based on its extension.
func readAndUnmarshal(configPath string, target *Swigfile) error {
	// #nosec G304 -- configPath is chosen by the user or discovery
	content, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	if filepath.Ext(configPath) == ".toml" {
		if _, err := toml.Decode(string(content), target); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", configPath)
		}
		return nil
	}

	if err := yaml.Unmarshal(content, target); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", configPath)
	}
	return nil
}

// resolveRoot returns the absolute project root. It defaults to the directory of the config file.
func resolveRoot(configPath, configuredRoot string) (string, error) {
	root := filepath.Dir(configPath)
	switch {
	case configuredRoot == "":
	case filepath.IsAbs(configuredRoot):
		root = configuredRoot
	default:
		root = filepath.Join(root, configuredRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrFailedToGetRoot, err.Error()), "root", root)
	}
	return abs, nil
}

func validateTaskName(name string) error {
	if !validTaskNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidTaskName, "task names may only contain letters, digits and _:.-"), "task_name", name)
	}
	return nil
}

// resolveUses follows the uses chain of a task and returns the DTO that carries its action.
func resolveUses(tasks map[string]*TaskDTO, name string) (*TaskDTO, error) {
	seen := map[string]bool{name: true}
	chain := []string{name}
	current := tasks[name]
	for current.Uses != "" {
		next, ok := tasks[current.Uses]
		if !ok {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUnknownUses, "invalid task"), "task", name), "uses", current.Uses)
		}
		if seen[current.Uses] {
			chain = append(chain, current.Uses)
			return nil, zerr.With(zerr.Wrap(domain.ErrCycleDetected, "uses chain loops"), "cycle", fmt.Sprint(chain))
		}
		seen[current.Uses] = true
		chain = append(chain, current.Uses)
		current = next
	}
	if current != tasks[name] && tasks[name].hasAction() {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidStep, "a task with uses cannot declare its own action"), "task", name)
	}
	return current, nil
}

// buildTask creates a domain.Task from a TaskDTO whose action is taken from action.
func buildTask(name string, dto, action *TaskDTO, tasks map[string]*TaskDTO) (*domain.Task, error) {
	task := &domain.Task{
		Name:         domain.NewInternedString(name),
		Description:  dto.Description,
		Dependencies: domain.NewInternedStrings(dto.DependsOn),
		Then:         domain.NewInternedStrings(dto.Then),
	}

	if len(action.Src) > 0 || len(action.Steps) > 0 {
		steps, err := parseSteps(name, action.Steps)
		if err != nil {
			return nil, err
		}
		task.Pipelines = append(task.Pipelines, domain.Pipeline{
			Name:    name,
			Sources: action.Src,
			Steps:   steps,
		})
	}
	for i, p := range action.Pipelines {
		if p == nil {
			continue
		}
		steps, err := parseSteps(name, p.Steps)
		if err != nil {
			return nil, err
		}
		pipelineName := p.Name
		if pipelineName == "" {
			pipelineName = fmt.Sprintf("%s#%d", name, i+1)
		}
		task.Pipelines = append(task.Pipelines, domain.Pipeline{
			Name:    pipelineName,
			Sources: p.Src,
			Steps:   steps,
		})
	}

	if action.Watch != nil {
		rule, err := buildWatchRule(name, action.Watch, tasks)
		if err != nil {
			return nil, err
		}
		task.Watch = rule
	}
	if action.Serve != nil {
		task.Serve = buildServeSpec(action.Serve)
	}
	return task, nil
}

func buildWatchRule(name string, dto *WatchDTO, tasks map[string]*TaskDTO) (*domain.WatchRule, error) {
	if len(dto.Patterns) == 0 {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidStep, "missing required field"), "task", name), "field", "watch.patterns")
	}
	for _, ref := range dto.Run {
		if _, ok := tasks[ref]; !ok {
			err := zerr.With(zerr.Wrap(domain.ErrMissingDependency, "invalid watch target"), "dependency", ref)
			return nil, zerr.With(err, "task", name)
		}
	}
	debounce := defaultDebounce
	if dto.Debounce != "" {
		d, err := time.ParseDuration(dto.Debounce)
		if err != nil || d < 0 {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidStep, "invalid debounce duration"), "task", name), "debounce", dto.Debounce)
		}
		debounce = d
	}
	return &domain.WatchRule{
		Patterns: dto.Patterns,
		Run:      domain.NewInternedStrings(dto.Run),
		Debounce: debounce,
	}, nil
}

func buildServeSpec(dto *ServeDTO) *domain.ServeSpec {
	spec := &domain.ServeSpec{
		Root:       dto.Root,
		Port:       dto.Port,
		LiveReload: true,
	}
	if spec.Root == "" {
		spec.Root = "."
	}
	if spec.Port == 0 {
		spec.Port = domain.DefaultServePort
	}
	if dto.LiveReload != nil {
		spec.LiveReload = *dto.LiveReload
	}
	return spec
}
