package docker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/task"
	"github.com/slok/taskspipeline/internal/task/docker"
	"github.com/slok/taskspipeline/internal/task/docker/dockermock"
)

func inspect(running bool) container.InspectResponse {
	return container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			State: &container.State{Running: running},
		},
	}
}

func TestContainerRunningTask(t *testing.T) {
	tests := map[string]struct {
		params     task.Params
		mock       func(m *dockermock.MockClient)
		expErr     bool
		expStatus  task.Status
		expMessage string
	}{
		"Missing containers should fail.": {
			params: task.Params{},
			mock:   func(m *dockermock.MockClient) {},
			expErr: true,
		},

		"Unknown params should fail.": {
			params: task.Params{"containers": "db", "image": "postgres"},
			mock:   func(m *dockermock.MockClient) {},
			expErr: true,
		},

		"All containers running should complete.": {
			params: task.Params{"containers": []any{"db", "cache"}},
			mock: func(m *dockermock.MockClient) {
				m.On("ContainerInspect", mock.Anything, "db").Once().Return(inspect(true), nil)
				m.On("ContainerInspect", mock.Anything, "cache").Once().Return(inspect(true), nil)
			},
			expStatus:  task.StatusCompleted,
			expMessage: "running 2/2",
		},

		"A stopped container should fail.": {
			params: task.Params{"containers": []any{"db", "cache"}},
			mock: func(m *dockermock.MockClient) {
				m.On("ContainerInspect", mock.Anything, "db").Once().Return(inspect(true), nil)
				m.On("ContainerInspect", mock.Anything, "cache").Once().Return(inspect(false), nil)
			},
			expStatus:  task.StatusError,
			expMessage: "running 1/2",
		},

		"A missing container should fail.": {
			params: task.Params{"containers": "db"},
			mock: func(m *dockermock.MockClient) {
				m.On("ContainerInspect", mock.Anything, "db").Once().Return(container.InspectResponse{}, errors.New("no such container"))
			},
			expStatus:  task.StatusError,
			expMessage: "running 0/1",
		},

		"A container without state should be considered not running.": {
			params: task.Params{"containers": "db"},
			mock: func(m *dockermock.MockClient) {
				m.On("ContainerInspect", mock.Anything, "db").Once().Return(container.InspectResponse{}, nil)
			},
			expStatus:  task.StatusError,
			expMessage: "running 0/1",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &dockermock.MockClient{}
			test.mock(m)

			ctor := docker.NewConstructor(docker.ConstructorConfig{Client: m})
			tk, err := ctor("containers", test.params, log.Noop)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(docker.KindContainerRunning, tk.Kind())

			tk.Run(context.Background())

			s := tk.Snapshot()
			assert.Equal(test.expStatus, s.Status)
			assert.Equal(test.expMessage, s.Message)
			m.AssertExpectations(t)
		})
	}
}
