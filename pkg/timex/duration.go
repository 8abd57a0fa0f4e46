// Package timex parses the compact duration strings used in configuration:
// an integer followed by one of s/m/h/d, or a bare integer meaning
// milliseconds ("5m", "30s", "2h", "10d", "1500").
package timex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is not covered by time.ParseDuration, but "30d" style TTLs are the
// common case for refresh tokens.
const Day = 24 * time.Hour

// ParseDuration converts a compact duration string to a time.Duration.
// Malformed input is an error so config loading can fail fast rather than
// silently defaulting.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("timex: empty duration string")
	}

	// Bare integer means milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("timex: negative duration %q", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	unit := s[len(s)-1]
	value, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("timex: invalid duration %q (want e.g. \"5m\", \"30s\", \"2h\", \"7d\")", s)
	}

	switch unit {
	case 's':
		return time.Duration(value) * time.Second, nil
	case 'm':
		return time.Duration(value) * time.Minute, nil
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * Day, nil
	default:
		return 0, fmt.Errorf("timex: invalid duration unit %q in %q", string(unit), s)
	}
}

// FormatDuration renders a duration back into the compact form, choosing the
// largest unit that divides it evenly. Used to echo windows like "10d" to
// clients.
func FormatDuration(d time.Duration) string {
	switch {
	case d >= Day && d%Day == 0:
		return fmt.Sprintf("%dd", d/Day)
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	case d >= time.Second && d%time.Second == 0:
		return fmt.Sprintf("%ds", d/time.Second)
	default:
		return strconv.FormatInt(d.Milliseconds(), 10)
	}
}
