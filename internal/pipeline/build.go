package pipeline

import (
	"fmt"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/model"
	"github.com/slok/taskspipeline/internal/task"
	"github.com/slok/taskspipeline/internal/task/docker"
)

// Extensions returns the extension task kinds every pipeline can use.
func Extensions() map[string]task.Constructor {
	return map[string]task.Constructor{
		docker.KindContainerRunning: docker.NewConstructor(docker.ConstructorConfig{}),
	}
}

// BuildTaskTree builds the task tree of the pipeline with the builtin and the
// extension kinds.
func BuildTaskTree(cfg model.PipelineConfig, logger log.Logger) (task.Task, error) {
	factory, err := task.NewFactory(task.FactoryConfig{
		Env:        cfg.Env,
		Extensions: Extensions(),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task factory: %w", err)
	}

	root, err := factory.Build(cfg.RootTask)
	if err != nil {
		return nil, fmt.Errorf("could not build task tree: %w", err)
	}

	return root, nil
}
