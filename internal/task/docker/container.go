package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/model"
	"github.com/slok/taskspipeline/internal/task"
)

// KindContainerRunning is the fully qualified type of the container running task.
const KindContainerRunning = "docker.ContainerRunningTask"

// Client is the interface for the Docker operations that we use.
// This allows us to mock the Docker client for testing.
type Client interface {
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
}

// ConstructorConfig is the configuration of the container running task constructor.
type ConstructorConfig struct {
	// Client is optional, by default a client from the environment is created
	// lazily on the first check.
	Client Client
}

type containerRunningParams struct {
	Containers task.StringList `yaml:"containers"`
}

func (p containerRunningParams) validate() error {
	if len(p.Containers) == 0 {
		return fmt.Errorf("param %q is required: %w", "containers", model.ErrNotValid)
	}
	return nil
}

// NewConstructor returns the task constructor for the container running kind.
func NewConstructor(cfg ConstructorConfig) task.Constructor {
	return func(name string, params task.Params, logger log.Logger) (task.Task, error) {
		var p containerRunningParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, err
		}

		c := &checker{
			client:     cfg.Client,
			containers: p.Containers,
			logger:     logger,
		}
		return task.NewCheck(name, KindContainerRunning, c, logger), nil
	}
}

type checker struct {
	client     Client
	containers []string
	logger     log.Logger
}

// Check inspects every container, the check passes when all of them are running.
func (c *checker) Check(ctx context.Context) (string, bool) {
	logger := c.logger.WithCtxValues(ctx)

	if c.client == nil {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			logger.Errorf("could not create Docker client: %s", err)
			return fmt.Sprintf("running 0/%d", len(c.containers)), false
		}
		c.client = cli
	}

	running := 0
	for _, name := range c.containers {
		if ctx.Err() != nil {
			break
		}

		info, err := c.client.ContainerInspect(ctx, name)
		if err != nil {
			logger.Infof("could not inspect container %s: %s", name, err)
			continue
		}

		if info.ContainerJSONBase == nil || info.State == nil || !info.State.Running {
			logger.Infof("container %s is not running", name)
			continue
		}
		running++
	}

	return fmt.Sprintf("running %d/%d", running, len(c.containers)), running == len(c.containers)
}
