package util //nolint:revive // package name util hosts shared formatting helpers for operator output

import "time"

// FormatRemaining renders the time left until expiry for display. Past or zero
// durations read "expired"; the rest are truncated to whole seconds.
func FormatRemaining(d time.Duration) string {
	switch {
	case d <= 0:
		return "expired"
	case d < time.Second:
		return "<1s"
	default:
		return d.Truncate(time.Second).String()
	}
}

// FormatTTL renders a Redis TTL. Negative values are the client's sentinels for
// a key without expiry (-1) and a missing key (-2).
func FormatTTL(d time.Duration) string {
	switch {
	case d == -1:
		return "no expiry"
	case d < 0:
		return "missing"
	default:
		return FormatRemaining(d)
	}
}
