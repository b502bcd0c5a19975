package attendance

import (
	"fmt"
	"time"
)

// FormatElapsed formats d as HH:MM:SS. Hours keep growing past 24.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatHoursMinutes formats a minute count as "1h 15m".
func FormatHoursMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
