package dockermock

import (
	"context"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock of the Docker client operations used by the container tasks.
type MockClient struct {
	mock.Mock
}

// ContainerInspect provides a mock function with given fields: ctx, containerID
func (m *MockClient) ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error) {
	args := m.Called(ctx, containerID)

	var r0 container.InspectResponse
	if rf, ok := args.Get(0).(func(context.Context, string) container.InspectResponse); ok {
		r0 = rf(ctx, containerID)
	} else if v, ok := args.Get(0).(container.InspectResponse); ok {
		r0 = v
	}

	return r0, args.Error(1)
}
