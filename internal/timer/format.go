package timer

import (
	"fmt"
	"math"
	"time"
)

// FormatHMS formats a duration as HH:MM:SS.
func FormatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int64(d.Round(time.Second) / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// HoursToDuration converts decimal hours to a duration rounded to the second.
func HoursToDuration(hours float64) time.Duration {
	if hours <= 0 {
		return 0
	}
	return time.Duration(math.Round(hours*3600)) * time.Second
}

// DurationToHours converts a duration to decimal hours at second precision.
func DurationToHours(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d.Round(time.Second)/time.Second) / 3600
}

// HoursToHHMM formats decimal hours as HH:MM. Minutes are rounded once from
// the total, so 1.9999 becomes "02:00" rather than "01:60".
func HoursToHHMM(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) {
		return "00:00"
	}
	total := int64(math.Round(hours * 60))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
