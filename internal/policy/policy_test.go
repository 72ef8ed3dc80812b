package policy

import (
	"testing"
	"time"
)

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		hours     int
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{"two hour morning slot", "10:00", 2, "10:00", "12:00", false},
		{"single hour", "09:30", 1, "09:30", "10:30", false},
		{"evening slot inside close", "20:00", 2, "20:00", "22:00", false},
		{"ends exactly at close", "20:30", 3, "20:30", "23:30", false},
		{"wraps to midnight", "23:00", 1, "23:00", "00:00", false},
		{"wraps past midnight", "22:00", 4, "22:00", "02:00", false},
		{"zero hours", "10:00", 0, "", "", true},
		{"negative hours", "10:00", -2, "", "", true},
		{"garbage start", "25:99", 1, "", "", true},
		{"empty start", "", 1, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ComputeWindow(tt.start, tt.hours)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ComputeWindow(%q, %d) error = %v, wantErr %v", tt.start, tt.hours, err, tt.wantErr)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("ComputeWindow(%q, %d) = (%q, %q), want (%q, %q)",
					tt.start, tt.hours, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCrossesMidnight(t *testing.T) {
	tests := []struct {
		start string
		hours int
		want  bool
	}{
		{"10:00", 2, false},
		{"22:00", 2, false}, // ends exactly at midnight, not past it
		{"23:00", 1, false},
		{"23:00", 2, true},
		{"23:30", 1, true},
		{"00:00", 24, false},
		{"00:00", 25, true},
		{"bogus", 1, true},
		{"10:00", 0, true},
	}
	for _, tt := range tests {
		if got := CrossesMidnight(tt.start, tt.hours); got != tt.want {
			t.Errorf("CrossesMidnight(%q, %d) = %v, want %v", tt.start, tt.hours, got, tt.want)
		}
	}
}

func TestIsOpenDay(t *testing.T) {
	// 2026-08-31 is a Monday.
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 7; d++ {
		day := monday.AddDate(0, 0, d)
		want := day.Weekday() != time.Saturday && day.Weekday() != time.Sunday
		if got := IsOpenDay(day); got != want {
			t.Errorf("IsOpenDay(%s) = %v, want %v", day.Weekday(), got, want)
		}
	}
}

func TestIsWithinHours(t *testing.T) {
	tests := []struct {
		end  string
		want bool
	}{
		{"12:00", true},
		{"22:00", true},
		{"23:30", true},  // closing time itself is acceptable
		{"23:31", false}, // one minute past close
		{"23:45", false},
		{"00:00", false}, // wrapped midnight end always violates
		{"", false},
		{"nonsense", false},
	}
	for _, tt := range tests {
		if got := IsWithinHours(tt.end); got != tt.want {
			t.Errorf("IsWithinHours(%q) = %v, want %v", tt.end, got, tt.want)
		}
	}
}

func TestHasExpired(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 8, 31, h, m, 0, 0, time.UTC)
	}
	tests := []struct {
		end  string
		now  time.Time
		want bool
	}{
		{"12:00", at(11, 59), false},
		{"12:00", at(12, 0), true}, // at the boundary counts as expired
		{"12:00", at(12, 1), true},
		{"12:00", at(23, 59), true},
		{"23:30", at(9, 0), false},
		{"", at(12, 0), false}, // no end time never expires
		{"junk", at(12, 0), false},
	}
	for _, tt := range tests {
		if got := HasExpired(tt.end, tt.now); got != tt.want {
			t.Errorf("HasExpired(%q, %s) = %v, want %v", tt.end, tt.now.Format("15:04"), got, tt.want)
		}
	}
}
