package taskspipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/taskspipeline/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "taskspipeline"
	}

	// go test changes the CWD to the test package directory.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("TASKSPIPELINE_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("taskspipeline binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "TASKSPIPELINE_INTEGRATION"
		envBinary     = "TASKSPIPELINE_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// WritePipeline writes a pipeline file (and its optional env file) in a
// temporary directory and returns the pipeline file path.
func WritePipeline(t *testing.T, pipeline, env string) string {
	t.Helper()

	dir := t.TempDir()
	if env != "" {
		if err := os.WriteFile(filepath.Join(dir, "pipeline.env"), []byte(env), 0o644); err != nil {
			t.Fatalf("could not write env file: %s", err)
		}
	}

	p := filepath.Join(dir, "pipeline.yaml")
	if err := os.WriteFile(p, []byte(pipeline), 0o644); err != nil {
		t.Fatalf("could not write pipeline file: %s", err)
	}

	return p
}

// RunHeadless runs the whole pipeline without the dashboard.
func RunHeadless(ctx context.Context, config Config, pipelineFile string) (stdout, stderr []byte, err error) {
	return testutils.RunTasksPipeline(ctx, nil, config.Binary, fmt.Sprintf("--file %s run --no-tui", pipelineFile), true)
}

// RunTree prints the pipeline task tree index in JSON.
func RunTree(ctx context.Context, config Config, pipelineFile string) (stdout, stderr []byte, err error) {
	return testutils.RunTasksPipeline(ctx, nil, config.Binary, fmt.Sprintf("--file %s tree --format json", pipelineFile), true)
}
