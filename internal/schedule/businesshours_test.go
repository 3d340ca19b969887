package schedule

import (
	"testing"
	"time"
)

func easternHours(t *testing.T) BusinessHours {
	t.Helper()
	zone, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	return BusinessHours{Zone: zone, Open: 9 * time.Hour, Close: 17 * time.Hour}
}

func TestBusinessHoursCovers(t *testing.T) {
	hours := easternHours(t)
	et := hours.Zone

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{
			name:  "full window on a Tuesday",
			start: time.Date(2026, 1, 6, 9, 0, 0, 0, et),
			end:   time.Date(2026, 1, 6, 17, 0, 0, 0, et),
			want:  true,
		},
		{
			name:  "one minute before open",
			start: time.Date(2026, 1, 6, 8, 59, 0, 0, et),
			end:   time.Date(2026, 1, 6, 17, 0, 0, 0, et),
			want:  false,
		},
		{
			name:  "one minute past close",
			start: time.Date(2026, 1, 6, 9, 0, 0, 0, et),
			end:   time.Date(2026, 1, 6, 17, 1, 0, 0, et),
			want:  false,
		},
		{
			name:  "saturday rejected regardless of time",
			start: time.Date(2026, 1, 10, 10, 0, 0, 0, et),
			end:   time.Date(2026, 1, 10, 11, 0, 0, 0, et),
			want:  false,
		},
		{
			name:  "sunday rejected",
			start: time.Date(2026, 1, 11, 10, 0, 0, 0, et),
			end:   time.Date(2026, 1, 11, 11, 0, 0, 0, et),
			want:  false,
		},
		{
			name:  "ends exactly at close",
			start: time.Date(2026, 1, 6, 16, 0, 0, 0, et),
			end:   time.Date(2026, 1, 6, 17, 0, 0, 0, et),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hours.Covers(tt.start, tt.end); got != tt.want {
				t.Fatalf("Covers(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestBusinessHoursCovers_NormalizesToReferenceZone(t *testing.T) {
	hours := easternHours(t)
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	// 7:00-8:00 in Los Angeles is 10:00-11:00 Eastern: inside the window
	// even though it is before 9:00 local.
	start := time.Date(2026, 1, 6, 7, 0, 0, 0, la)
	if !hours.Covers(start, start.Add(time.Hour)) {
		t.Fatalf("expected 10:00-11:00 ET (expressed in LA time) to be covered")
	}

	// 15:00-16:00 in Los Angeles is 18:00-19:00 Eastern: after close even
	// though it is mid-afternoon local.
	start = time.Date(2026, 1, 6, 15, 0, 0, 0, la)
	if hours.Covers(start, start.Add(time.Hour)) {
		t.Fatalf("expected 18:00-19:00 ET to be rejected")
	}

	// 21:30-22:30 Tuesday in Los Angeles crosses midnight in Eastern time
	// without crossing it locally.
	start = time.Date(2026, 1, 6, 21, 30, 0, 0, la)
	if hours.Covers(start, start.Add(time.Hour)) {
		t.Fatalf("expected interval crossing reference-zone midnight to be rejected")
	}
}

func TestBusinessHoursCovers_DSTTransitionDay(t *testing.T) {
	hours := easternHours(t)
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	// Monday 2026-03-09, the day after US spring forward. 8:00 Chicago is
	// 9:00 Eastern under EDT; a fixed -5 offset would call this 8:59 and
	// reject it.
	start := time.Date(2026, 3, 9, 8, 0, 0, 0, chicago)
	if !hours.Covers(start, start.Add(time.Hour)) {
		t.Fatalf("expected 9:00-10:00 EDT to be covered on the Monday after spring forward")
	}

	// Same wall-clock on the Monday after fall back: 8:00 Chicago is again
	// 9:00 Eastern, now under EST.
	start = time.Date(2026, 11, 2, 8, 0, 0, 0, chicago)
	if !hours.Covers(start, start.Add(time.Hour)) {
		t.Fatalf("expected 9:00-10:00 EST to be covered on the Monday after fall back")
	}
}

func TestLocalWindowForDate(t *testing.T) {
	hours := easternHours(t)
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	open, close := hours.LocalWindowForDate(2026, time.January, 6, chicago)

	if want := time.Date(2026, 1, 6, 8, 0, 0, 0, chicago); !open.Equal(want) {
		t.Fatalf("open = %v, want %v", open, want)
	}
	if want := time.Date(2026, 1, 6, 16, 0, 0, 0, chicago); !close.Equal(want) {
		t.Fatalf("close = %v, want %v", close, want)
	}
	if open.Location() != chicago || close.Location() != chicago {
		t.Fatalf("window must be expressed in the requested zone")
	}
}
