package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when a task name is registered twice.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrTaskNotFound is returned when a step references a task that is not registered.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrEmptyStep is returned when a sequence or parallel step has no children.
	ErrEmptyStep = zerr.New("step has no children")

	// ErrUnknownStep is returned when the scheduler meets a step variant it cannot interpret.
	ErrUnknownStep = zerr.New("unknown step variant")

	// ErrTaskExecutionFailed is returned when a task reports an error.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrBuildExecutionFailed is returned when a pipeline aborts on a hard error.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTransformFailed marks an asset transformation failure, such as a style
	// compile error or a script bundling error. These are soft unless strict
	// mode is enabled.
	ErrTransformFailed = zerr.New("asset transformation failed")

	// ErrToolNotFound is returned when an external tool executable cannot be resolved.
	ErrToolNotFound = zerr.New("tool not found")

	// ErrToolFailed is returned when an external tool exits with a non-zero status.
	ErrToolFailed = zerr.New("tool exited with an error")

	// ErrInvalidTransition is returned when the pipeline state machine rejects a transition.
	ErrInvalidTransition = zerr.New("invalid pipeline state transition")

	// ErrInvalidConfig is returned when the loaded configuration violates a constraint.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigReadFailed is returned when the configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read configuration file")

	// ErrConfigParseFailed is returned when the configuration file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse configuration file")

	// ErrInvalidGlob is returned when a configured glob pattern is malformed.
	ErrInvalidGlob = zerr.New("invalid glob pattern")

	// ErrSourceReadFailed is returned when a source file cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read source file")

	// ErrOutputWriteFailed is returned when an output file cannot be written.
	ErrOutputWriteFailed = zerr.New("failed to write output file")

	// ErrCleanFailed is returned when the output root cannot be removed.
	ErrCleanFailed = zerr.New("failed to clean output directory")

	// ErrServerStartFailed is returned when the development server cannot bind its address.
	ErrServerStartFailed = zerr.New("failed to start development server")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to start file watcher")
)
