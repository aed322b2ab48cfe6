package io

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/slok/taskspipeline/internal/model"
	"github.com/slok/taskspipeline/internal/storage"
)

var _ storage.PipelineRepository = &PipelineYAMLRepository{}

// PipelineYAMLRepository loads pipeline descriptions from YAML files.
type PipelineYAMLRepository struct {
	fs fs.FS
}

// NewPipelineYAMLRepository creates a new YAML pipeline repository.
func NewPipelineYAMLRepository(filesystem fs.FS) *PipelineYAMLRepository {
	return &PipelineYAMLRepository{fs: filesystem}
}

// GetPipeline loads a pipeline from a YAML file and returns a validated domain model.
// A relative env file is resolved from the pipeline file directory, absolute ones
// from the repository filesystem root.
func (r *PipelineYAMLRepository) GetPipeline(ctx context.Context, p string) (model.PipelineConfig, error) {
	data, err := fs.ReadFile(r.fs, p)
	if err != nil {
		return model.PipelineConfig{}, fmt.Errorf("reading pipeline file: %w", err)
	}

	if ctx.Err() != nil {
		return model.PipelineConfig{}, ctx.Err()
	}

	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.PipelineConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return model.PipelineConfig{}, fmt.Errorf("invalid configuration: %w: %w", err, model.ErrNotValid)
	}

	var env map[string]string
	if cfg.EnvFile != "" {
		envPath := cfg.EnvFile
		if path.IsAbs(envPath) {
			envPath = envPath[1:]
		} else {
			envPath = path.Join(path.Dir(p), envPath)
		}
		env, err = r.getEnv(envPath)
		if err != nil {
			return model.PipelineConfig{}, err
		}
	}

	return cfg.toModel(env), nil
}

func (r *PipelineYAMLRepository) getEnv(p string) (map[string]string, error) {
	data, err := fs.ReadFile(r.fs, path.Clean(p))
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing env file: %w", err)
	}

	return env, nil
}

// PipelineConfig represents the YAML structure of a pipeline.
type PipelineConfig struct {
	Title              string           `yaml:"title"`
	SystemNotification *bool            `yaml:"systemNotification"`
	EnvFile            string           `yaml:"envFile"`
	Logging            *LoggingConfig   `yaml:"logging"`
	RootTask           *TaskDescription `yaml:"rootTask"`
}

// LoggingConfig represents the YAML structure of the logging section.
type LoggingConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	File    string `yaml:"file"`
}

// TaskDescription represents the YAML structure of a task tree node.
type TaskDescription struct {
	Type   string            `yaml:"type"`
	Name   string            `yaml:"name"`
	Params map[string]any    `yaml:"params"`
	Tasks  []TaskDescription `yaml:"tasks"`
}

var (
	validLevels  = map[string]bool{"": true, "debug": true, "info": true, "warning": true, "error": true}
	validFormats = map[string]bool{"": true, "text": true, "json": true}
)

func (c PipelineConfig) validate() error {
	if c.RootTask == nil {
		return fmt.Errorf("rootTask is required")
	}

	if err := c.RootTask.validate("rootTask"); err != nil {
		return err
	}

	if c.Logging != nil {
		if !validLevels[c.Logging.Level] {
			return fmt.Errorf("logging level %q is not valid (debug, info, warning, error)", c.Logging.Level)
		}
		if !validFormats[c.Logging.Format] {
			return fmt.Errorf("logging format %q is not valid (text, json)", c.Logging.Format)
		}
	}

	return nil
}

// validate only checks the tree shape, kind specific params are validated
// when the tree is built.
func (t TaskDescription) validate(p string) error {
	if t.Type == "" {
		return fmt.Errorf("%s: type is required", p)
	}

	for i, c := range t.Tasks {
		if err := c.validate(fmt.Sprintf("%s.tasks[%d]", p, i)); err != nil {
			return err
		}
	}

	return nil
}

func (c PipelineConfig) toModel(env map[string]string) model.PipelineConfig {
	cfg := model.PipelineConfig{
		Title:              c.Title,
		SystemNotification: true,
		Env:                env,
		RootTask:           c.RootTask.toModel(),
	}

	if cfg.Title == "" {
		cfg.Title = model.DefaultTitle
	}
	if c.SystemNotification != nil {
		cfg.SystemNotification = *c.SystemNotification
	}

	// A logging section is enabled unless it says otherwise.
	if c.Logging != nil {
		cfg.Logging = model.LoggingConfig{
			Enabled: c.Logging.Enabled == nil || *c.Logging.Enabled,
			Level:   c.Logging.Level,
			Format:  c.Logging.Format,
			File:    c.Logging.File,
		}
	}

	return cfg
}

func (t TaskDescription) toModel() model.TaskDescription {
	desc := model.TaskDescription{
		Type:   t.Type,
		Name:   t.Name,
		Params: t.Params,
	}

	if len(t.Tasks) > 0 {
		desc.Tasks = make([]model.TaskDescription, 0, len(t.Tasks))
		for _, c := range t.Tasks {
			desc.Tasks = append(desc.Tasks, c.toModel())
		}
	}

	return desc
}
