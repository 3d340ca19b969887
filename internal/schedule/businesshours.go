package schedule

import (
	"time"

	"apptbook/internal/timeutil"
)

// BusinessHours decides whether an interval lies inside the working window.
// The window is defined in Zone, the business's reference zone, so the
// decision is the same no matter which zone the caller expressed the
// interval in. Both boundaries are inclusive: an appointment may start at
// Open and end at Close.
type BusinessHours struct {
	Zone  *time.Location
	Open  time.Duration
	Close time.Duration
}

// Covers normalizes both endpoints to the reference zone and rejects
// weekends, intervals that cross reference-zone midnight (even when they do
// not cross midnight locally), and times outside [Open, Close].
func (b BusinessHours) Covers(start, end time.Time) bool {
	s := start.In(b.Zone)
	e := end.In(b.Zone)

	if isWeekend(s.Weekday()) || isWeekend(e.Weekday()) {
		return false
	}
	if !timeutil.SameDate(s, e) {
		return false
	}
	if timeutil.ClockOffset(s) < b.Open {
		return false
	}
	if timeutil.ClockOffset(e) > b.Close {
		return false
	}
	return true
}

// LocalWindowForDate maps a local calendar date to the local wall-clock span
// that corresponds to Open..Close reference time. Noon anchors the reference
// date so the mapping is stable for any zone offset the caller may have.
func (b BusinessHours) LocalWindowForDate(year int, month time.Month, day int, local *time.Location) (time.Time, time.Time) {
	refNoon := time.Date(year, month, day, 12, 0, 0, 0, local).In(b.Zone)
	ry, rm, rd := refNoon.Date()

	// Wall-clock construction, not midnight+offset: on a DST transition day
	// the two differ by the shifted hour.
	open := time.Date(ry, rm, rd, clockHour(b.Open), clockMinute(b.Open), 0, 0, b.Zone)
	close := time.Date(ry, rm, rd, clockHour(b.Close), clockMinute(b.Close), 0, 0, b.Zone)
	return open.In(local), close.In(local)
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func clockHour(d time.Duration) int   { return int(d / time.Hour) }
func clockMinute(d time.Duration) int { return int(d % time.Hour / time.Minute) }
