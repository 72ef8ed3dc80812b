// Package policy holds the pure opening-hours rules of the library.  Every
// function is deterministic given its inputs; all comparisons operate on
// time-of-day only.  Wall-clock values are exchanged as "HH:MM" strings to
// match the persisted seat and booking records.
package policy

import (
	"fmt"
	"time"
)

// The library closes at 23:30 every open day.  Bookings whose window ends
// after the close, or whose raw window crosses midnight, are rejected.
const (
	closingMinute = 23*60 + 30
	minutesPerDay = 24 * 60
)

// ComputeWindow adds hours*60 minutes to the requested start and returns
// the resulting ("HH:MM", "HH:MM") pair.  The end wraps modulo the day so
// it is always a same-day time-of-day value; use CrossesMidnight to detect
// overnight requests before trusting the wrapped end.  An error is
// returned only for an unparsable start or non-positive hours.
func ComputeWindow(start string, hours int) (string, string, error) {
	if hours <= 0 {
		return "", "", fmt.Errorf("hours must be positive, got %d", hours)
	}
	startMin, err := parseHHMM(start)
	if err != nil {
		return "", "", err
	}
	endMin := (startMin + hours*60) % minutesPerDay
	return formatHHMM(startMin), formatHHMM(endMin), nil
}

// CrossesMidnight reports whether the raw, unwrapped window runs past
// 24:00.  Overnight bookings are not supported; an unparsable start or a
// non-positive duration is reported as crossing so callers treat it as a
// policy violation.
func CrossesMidnight(start string, hours int) bool {
	startMin, err := parseHHMM(start)
	if err != nil || hours <= 0 {
		return true
	}
	return startMin+hours*60 > minutesPerDay
}

// IsOpenDay reports whether the library is open on the given date.  The
// library is closed on both weekend days.
func IsOpenDay(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsWithinHours reports whether a window ending at end fits inside the
// library's opening hours.  A wrapped "00:00" end means the window reached
// midnight and therefore always violates the 23:30 close.
func IsWithinHours(end string) bool {
	endMin, err := parseHHMM(end)
	if err != nil {
		return false
	}
	if endMin == 0 {
		endMin = minutesPerDay
	}
	return endMin <= closingMinute
}

// HasExpired reports whether now's time-of-day is at or past the given end
// time.  An empty or unparsable end never expires; that matches how holds
// without an end time are treated everywhere else.
func HasExpired(end string, now time.Time) bool {
	endMin, err := parseHHMM(end)
	if err != nil {
		return false
	}
	nowMin := now.Hour()*60 + now.Minute()
	return nowMin >= endMin
}

// parseHHMM converts a zero-padded 24-hour "HH:MM" string to minutes since
// midnight.
func parseHHMM(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time-of-day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatHHMM renders minutes since midnight as a zero-padded "HH:MM".
func formatHHMM(m int) string {
	m %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
