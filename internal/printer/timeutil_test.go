package printer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/taskspipeline/internal/printer"
)

func TestFormatElapsed(t *testing.T) {
	tests := map[string]struct {
		d        time.Duration
		expected string
	}{
		"zero": {
			d:        0,
			expected: "0:00:00",
		},
		"sub second": {
			d:        900 * time.Millisecond,
			expected: "0:00:00",
		},
		"seconds": {
			d:        42 * time.Second,
			expected: "0:00:42",
		},
		"minutes": {
			d:        5*time.Minute + 7*time.Second,
			expected: "0:05:07",
		},
		"hours": {
			d:        26*time.Hour + 3*time.Minute + 1*time.Second,
			expected: "26:03:01",
		},
		"negative": {
			d:        -time.Second,
			expected: "0:00:00",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, printer.FormatElapsed(tt.d))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 1, 30, 10, 0, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2026-01-30 09:00:05 UTC", printer.FormatTimestamp(ts))
}
