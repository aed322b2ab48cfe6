package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskspipeline/internal/model"
)

func TestPipelineYAMLRepository_GetPipeline(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg model.PipelineConfig
		expErr bool
		errMsg string
	}{
		"Minimal pipeline should load with defaults": {
			fs: fstest.MapFS{
				"pipeline.yaml": &fstest.MapFile{
					Data: []byte(`rootTask:
  type: WaitForTask
  params:
    waitFor: 1
`),
				},
			},
			path: "pipeline.yaml",
			expCfg: model.PipelineConfig{
				Title:              model.DefaultTitle,
				SystemNotification: true,
				RootTask: model.TaskDescription{
					Type:   "WaitForTask",
					Params: map[string]any{"waitFor": 1},
				},
			},
		},
		"Full pipeline should load successfully": {
			fs: fstest.MapFS{
				"cfg/pipeline.yaml": &fstest.MapFile{
					Data: []byte(`title: Deploy
systemNotification: false
envFile: deploy.env
logging:
  level: debug
  format: json
  file: logs/deploy-%Y%m%d.log
rootTask:
  type: SequentialTask
  name: deploy
  tasks:
    - type: RunProcessTask
      name: build
      params:
        cmd: make build
        env: ["A=1"]
    - type: ParallelTask
      params:
        maxConcurrency: 2
      tasks:
        - type: PortConnectivityTask
          params:
            hosts: ["db:5432"]
            timeout: 1.5
`),
				},
				"cfg/deploy.env": &fstest.MapFile{
					Data: []byte(`# Deploy env.
REGION=eu-west-1
export TOKEN="abc"
`),
				},
			},
			path: "cfg/pipeline.yaml",
			expCfg: model.PipelineConfig{
				Title:              "Deploy",
				SystemNotification: false,
				Env:                map[string]string{"REGION": "eu-west-1", "TOKEN": "abc"},
				Logging: model.LoggingConfig{
					Enabled: true,
					Level:   "debug",
					Format:  "json",
					File:    "logs/deploy-%Y%m%d.log",
				},
				RootTask: model.TaskDescription{
					Type: "SequentialTask",
					Name: "deploy",
					Tasks: []model.TaskDescription{
						{
							Type:   "RunProcessTask",
							Name:   "build",
							Params: map[string]any{"cmd": "make build", "env": []any{"A=1"}},
						},
						{
							Type:   "ParallelTask",
							Params: map[string]any{"maxConcurrency": 2},
							Tasks: []model.TaskDescription{
								{
									Type:   "PortConnectivityTask",
									Params: map[string]any{"hosts": []any{"db:5432"}, "timeout": 1.5},
								},
							},
						},
					},
				},
			},
		},
		"Disabled logging section should load disabled": {
			fs: fstest.MapFS{
				"pipeline.yaml": &fstest.MapFile{
					Data: []byte(`logging:
  enabled: false
  level: info
rootTask:
  type: SequentialTask
`),
				},
			},
			path: "pipeline.yaml",
			expCfg: model.PipelineConfig{
				Title:              model.DefaultTitle,
				SystemNotification: true,
				Logging:            model.LoggingConfig{Enabled: false, Level: "info"},
				RootTask:           model.TaskDescription{Type: "SequentialTask"},
			},
		},
		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading pipeline file",
		},
		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
		"Missing root task should return error": {
			fs: fstest.MapFS{
				"pipeline.yaml": &fstest.MapFile{
					Data: []byte(`title: nothing
`),
				},
			},
			path:   "pipeline.yaml",
			expErr: true,
			errMsg: "rootTask is required",
		},
		"Missing nested task type should return error": {
			fs: fstest.MapFS{
				"pipeline.yaml": &fstest.MapFile{
					Data: []byte(`rootTask:
  type: SequentialTask
  tasks:
    - type: WaitForTask
    - name: no-type
`),
				},
			},
			path:   "pipeline.yaml",
			expErr: true,
			errMsg: "rootTask.tasks[1]: type is required",
		},
		"Invalid logging level should return error": {
			fs: fstest.MapFS{
				"pipeline.yaml": &fstest.MapFile{
					Data: []byte(`logging:
  level: verbose
rootTask:
  type: SequentialTask
`),
				},
			},
			path:   "pipeline.yaml",
			expErr: true,
			errMsg: "logging level",
		},
		"Missing env file should return error": {
			fs: fstest.MapFS{
				"pipeline.yaml": &fstest.MapFile{
					Data: []byte(`envFile: missing.env
rootTask:
  type: SequentialTask
`),
				},
			},
			path:   "pipeline.yaml",
			expErr: true,
			errMsg: "reading env file",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewPipelineYAMLRepository(tc.fs)
			cfg, err := repo.GetPipeline(context.Background(), tc.path)

			if tc.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expCfg, cfg)
		})
	}
}

func TestPipelineYAMLRepository_GetPipeline_ContextCancellation(t *testing.T) {
	fs := fstest.MapFS{
		"test.yaml": &fstest.MapFile{
			Data: []byte(`rootTask:
  type: SequentialTask
`),
		},
	}

	repo := NewPipelineYAMLRepository(fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := repo.GetPipeline(ctx, "test.yaml")
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}
