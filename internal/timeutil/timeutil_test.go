package timeutil

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) error: %v", name, err)
	}
	return loc
}

func TestConverter_RoundTripsAcrossDST(t *testing.T) {
	chicago := mustLoad(t, "America/Chicago")
	eastern := mustLoad(t, "America/New_York")
	c := NewConverter(chicago, eastern)

	// US spring-forward is 2026-03-08, fall-back is 2026-11-01. Sample
	// instants on both sides of each transition.
	instants := []time.Time{
		time.Date(2026, 3, 8, 6, 30, 0, 0, time.UTC),  // just before spring forward in Chicago
		time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC),   // just after
		time.Date(2026, 11, 1, 5, 30, 0, 0, time.UTC), // repeated hour in Chicago
		time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	for _, x := range instants {
		if got := c.ToUTC(c.ToLocal(x)); !got.Equal(x) {
			t.Fatalf("ToUTC(ToLocal(%v)) = %v, want same instant", x, got)
		}
		if got := c.ToUTC(c.ToReference(x)); !got.Equal(x) {
			t.Fatalf("ToUTC(ToReference(%v)) = %v, want same instant", x, got)
		}
		if got := c.ToLocal(x); got.Location() != chicago {
			t.Fatalf("ToLocal location = %v, want %v", got.Location(), chicago)
		}
		if got := c.ToReference(x); got.Location() != eastern {
			t.Fatalf("ToReference location = %v, want %v", got.Location(), eastern)
		}
	}
}

func TestConverter_FromReferenceTracksDSTOffset(t *testing.T) {
	c := NewConverter(time.UTC, mustLoad(t, "America/New_York"))

	winter := c.FromReference(2026, time.January, 6, 9, 0)
	if want := time.Date(2026, 1, 6, 14, 0, 0, 0, time.UTC); !winter.Equal(want) {
		t.Fatalf("9:00 EST = %v UTC, want %v", winter, want)
	}

	summer := c.FromReference(2026, time.July, 7, 9, 0)
	if want := time.Date(2026, 7, 7, 13, 0, 0, 0, time.UTC); !summer.Equal(want) {
		t.Fatalf("9:00 EDT = %v UTC, want %v", summer, want)
	}
}

func TestParseTimestamp(t *testing.T) {
	chicago := mustLoad(t, "America/Chicago")

	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{
			name: "rfc3339 with offset",
			raw:  "2026-01-06T09:30:00-05:00",
			want: time.Date(2026, 1, 6, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "rfc3339 utc",
			raw:  "2026-01-06T14:30:00Z",
			want: time.Date(2026, 1, 6, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "naive treated as local",
			raw:  "2026-01-06T09:30:00",
			want: time.Date(2026, 1, 6, 9, 30, 0, 0, chicago),
		},
		{
			name:    "garbage",
			raw:     "tomorrow at nine",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.raw, chicago)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimestamp(%q) = %v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSameDate(t *testing.T) {
	chicago := mustLoad(t, "America/Chicago")

	a := time.Date(2026, 1, 6, 23, 30, 0, 0, chicago)
	b := time.Date(2026, 1, 6, 0, 15, 0, 0, chicago)
	if !SameDate(a, b) {
		t.Fatalf("expected same date for %v and %v", a, b)
	}
	if SameDate(a, b.AddDate(0, 0, 1)) {
		t.Fatalf("expected different dates")
	}
}

func TestClockOffset(t *testing.T) {
	ts := time.Date(2026, 1, 6, 16, 59, 59, 0, time.UTC)
	want := 16*time.Hour + 59*time.Minute + 59*time.Second
	if got := ClockOffset(ts); got != want {
		t.Fatalf("ClockOffset = %v, want %v", got, want)
	}
}
