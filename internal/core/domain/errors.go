package domain

import "go.trai.ch/zerr"

var (
	// ErrConfiguration classifies every error that must abort a run before any task executes:
	// unknown tasks, cycles, missing dependencies and invalid configuration files.
	ErrConfiguration = zerr.New("configuration error")

	// ErrTransformFailed is returned when a single pipeline step fails for one record.
	// The record is dropped and the rest of the pipeline continues.
	ErrTransformFailed = zerr.New("transform failed")

	// ErrFatalIO is returned when a destination root cannot be written.
	// It aborts the owning pipeline but not its siblings.
	ErrFatalIO = zerr.New("fatal io error")

	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrGraphSealed is returned when a task is added to a graph that has already been validated.
	ErrGraphSealed = zerr.New("graph is sealed")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrInvalidStep is returned when a pipeline step declaration is malformed.
	ErrInvalidStep = zerr.New("invalid pipeline step")

	// ErrWatchStartsService is returned when a watch rebuild would start a watch or serve task.
	ErrWatchStartsService = zerr.New("watch rebuild starts a service")

	// ErrUnknownUses is returned when a task reuses the action of a task that does not exist.
	ErrUnknownUses = zerr.New("uses references an unknown task")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find swig.yaml or swig.toml")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrInputNotFound is returned when a literal source path does not exist.
	ErrInputNotFound = zerr.New("input not found")

	// ErrInvalidPattern is returned when a glob pattern cannot be parsed.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrPathOutsideRoot is returned when a clean target resolves outside the project root.
	ErrPathOutsideRoot = zerr.New("path is outside project root")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileWriteFailed is returned when a record cannot be written to disk.
	ErrFileWriteFailed = zerr.New("failed to write file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrStylesheetCompile is returned when a stylesheet source cannot be compiled.
	ErrStylesheetCompile = zerr.New("failed to compile stylesheet")

	// ErrMinifyFailed is returned when a record cannot be minified.
	ErrMinifyFailed = zerr.New("failed to minify")

	// ErrTemplateFailed is returned when a wrap or header template cannot be parsed or rendered.
	ErrTemplateFailed = zerr.New("failed to render template")

	// ErrPackageMetaParse is returned when package.json is not valid JSON.
	ErrPackageMetaParse = zerr.New("failed to parse package metadata")

	// ErrServerStartFailed is returned when the development server cannot bind its listener.
	ErrServerStartFailed = zerr.New("failed to start dev server")

	// ErrWatcherStartFailed is returned when the file watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")
)
