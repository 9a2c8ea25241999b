package util //nolint:revive // package name util hosts shared formatting helpers used by the terminal client

import "time"

// FormatElapsed formats a wall-clock duration for display. Zero or negative
// durations render as "-"; sub-second values keep millisecond precision and
// longer ones are rounded to a tenth of a second.
func FormatElapsed(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Truncate(time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
