package utils

import (
	"fmt"
	"time"
)

// FormatElapsed renders the wall-clock time since start as HH:MM:SS.
// Hours are not wrapped at 24 or 100: 100 hours render as "100:00:00".
func FormatElapsed(start time.Time) string {
	return FormatDuration(time.Since(start))
}

func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int64(d / time.Second)
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
