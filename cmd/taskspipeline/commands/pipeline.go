package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/slok/taskspipeline/internal/model"
	"github.com/slok/taskspipeline/internal/storage/io"
)

// loadPipelineConfig loads the pipeline file from the root filesystem.
func loadPipelineConfig(ctx context.Context, file string) (model.PipelineConfig, error) {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return model.PipelineConfig{}, fmt.Errorf("could not resolve pipeline file path: %w", err)
	}

	repo := io.NewPipelineYAMLRepository(os.DirFS("/"))
	cfg, err := repo.GetPipeline(ctx, strings.TrimPrefix(filepath.ToSlash(absPath), "/"))
	if err != nil {
		return model.PipelineConfig{}, fmt.Errorf("could not load pipeline: %w", err)
	}

	return cfg, nil
}
