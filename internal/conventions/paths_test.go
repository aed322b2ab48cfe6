package conventions_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/taskspipeline/internal/conventions"
)

func TestExpandTimePattern(t *testing.T) {
	ts := time.Date(2026, 3, 7, 9, 5, 2, 0, time.UTC)

	tests := map[string]struct {
		pattern string
		exp     string
	}{
		"A pattern without directives should be kept.": {
			pattern: "logs/pipeline.log",
			exp:     "logs/pipeline.log",
		},

		"All the directives should be expanded.": {
			pattern: "logs/pipeline-%Y%m%d%H%M%S.log",
			exp:     "logs/pipeline-20260307090502.log",
		},

		"Separated directives should be expanded.": {
			pattern: "%Y-%m-%d/%H:%M.log",
			exp:     "2026-03-07/09:05.log",
		},

		"Escaped percent should be a single percent.": {
			pattern: "100%%-%Y.log",
			exp:     "100%-2026.log",
		},

		"Unknown directives and trailing percent should be kept.": {
			pattern: "%q-%Y%",
			exp:     "%q-2026%",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, conventions.ExpandTimePattern(test.pattern, ts))
		})
	}
}

func TestDefaultLogPath(t *testing.T) {
	assert := assert.New(t)

	p := conventions.DefaultLogPath()

	assert.True(strings.HasSuffix(p, filepath.Join(conventions.DefaultDataDir, conventions.LogsDir, conventions.DefaultLogFile)))
}
