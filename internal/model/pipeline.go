package model

// DefaultTitle is the title used when the pipeline doesn't set one.
const DefaultTitle = "Tasks Pipeline"

// PipelineConfig is the validated pipeline description loaded from the
// configuration collaborator.
type PipelineConfig struct {
	Title string
	// SystemNotification enables the notification sent when a root run finishes.
	SystemNotification bool
	// Env are environment variables loaded from the pipeline env file, they are
	// passed to every command task.
	Env      map[string]string
	Logging  LoggingConfig
	RootTask TaskDescription
}

// TaskDescription describes a single node of the task tree.
type TaskDescription struct {
	// Type is the task kind discriminator, one of the builtin kinds or a fully
	// qualified extension type (e.g `docker.ContainerRunningTask`).
	Type   string
	Name   string
	Params map[string]any
	Tasks  []TaskDescription
}

// LoggingConfig is the logging section of a pipeline.
type LoggingConfig struct {
	Enabled bool
	Level   string
	Format  string
	// File is the log file path, it accepts time patterns (%Y, %m, %d, %H, %M, %S).
	File string
}
