package conventions

import (
	"path/filepath"
	"strings"
	"time"

	"k8s.io/client-go/util/homedir"
)

const (
	// DefaultDataDir is the default data directory name (relative to home).
	DefaultDataDir = ".tasks-pipeline"
	// LogsDir is the subdirectory for the dashboard log files.
	LogsDir = "logs"
	// DefaultLogFile is the log file name pattern used when none is configured.
	DefaultLogFile = "pipeline-%Y%m%d%H%M%S.log"
	// DefaultPipelineFile is the pipeline file used when none is given.
	DefaultPipelineFile = "pipeline.yaml"
)

// DataDir returns the default data directory.
func DataDir() string {
	return filepath.Join(homedir.HomeDir(), DefaultDataDir)
}

// DefaultLogPath returns the default log file path pattern.
func DefaultLogPath() string {
	return filepath.Join(DataDir(), LogsDir, DefaultLogFile)
}

// ExpandTimePattern replaces the time directives of a pattern (%Y, %m, %d,
// %H, %M, %S and %%) with their values at t. Unknown directives are kept.
func ExpandTimePattern(pattern string, t time.Time) string {
	if !strings.Contains(pattern, "%") {
		return pattern
	}

	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' || i == len(pattern)-1 {
			b.WriteByte(pattern[i])
			continue
		}

		i++
		switch pattern[i] {
		case 'Y':
			b.WriteString(t.Format("2006"))
		case 'm':
			b.WriteString(t.Format("01"))
		case 'd':
			b.WriteString(t.Format("02"))
		case 'H':
			b.WriteString(t.Format("15"))
		case 'M':
			b.WriteString(t.Format("04"))
		case 'S':
			b.WriteString(t.Format("05"))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(pattern[i])
		}
	}

	return b.String()
}
