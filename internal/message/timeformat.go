package message

import "fmt"

// FormatTimestamp renders a playback position in seconds as m:ss (or h:mm:ss
// past the hour mark). Negative and NaN-ish inputs clamp to 0:00.
func FormatTimestamp(seconds float64) string {
	if !(seconds > 0) {
		return "0:00"
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
