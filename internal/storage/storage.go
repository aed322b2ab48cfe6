package storage

import (
	"context"

	"github.com/slok/taskspipeline/internal/model"
)

// PipelineRepository is the interface for pipeline description loading.
type PipelineRepository interface {
	// GetPipeline returns the validated pipeline description stored at path.
	GetPipeline(ctx context.Context, path string) (model.PipelineConfig, error)
}
