package printer

import (
	"fmt"
	"time"
)

// FormatElapsed returns the elapsed time as `H:MM:SS`.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
