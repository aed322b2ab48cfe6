package task

import "time"

// SetWaitTick sets the wait task tick for testing.
func SetWaitTick(t *Wait, d time.Duration) { t.tick = d }
