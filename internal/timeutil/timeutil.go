package timeutil

import (
	"fmt"
	"time"
)

// NaiveLayout is the wall-clock layout accepted for timestamps that carry no
// zone information. Such values are interpreted in the caller's local zone.
const NaiveLayout = "2006-01-02T15:04:05"

// Converter converts instants between UTC, a caller-local zone, and the fixed
// reference zone that business rules are written against. All conversions are
// zone-aware (DST handled by the tz database) and preserve the instant, so
// any round trip recovers the original value exactly.
type Converter struct {
	local     *time.Location
	reference *time.Location
}

func NewConverter(local, reference *time.Location) *Converter {
	if local == nil {
		local = time.Local
	}
	if reference == nil {
		reference = time.UTC
	}
	return &Converter{local: local, reference: reference}
}

func (c *Converter) Local() *time.Location     { return c.local }
func (c *Converter) Reference() *time.Location { return c.reference }

func (c *Converter) ToUTC(t time.Time) time.Time       { return t.UTC() }
func (c *Converter) ToLocal(t time.Time) time.Time     { return t.In(c.local) }
func (c *Converter) ToReference(t time.Time) time.Time { return t.In(c.reference) }

// FromReference builds the UTC instant for a wall-clock time in the reference
// zone. Used to express the business window for a given date as instants.
func (c *Converter) FromReference(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, c.reference).UTC()
}

// ParseTimestamp accepts RFC3339 (zone attached) or a naive wall-clock value,
// which is taken to be in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(NaiveLayout, raw, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", raw)
}

// SameDate reports whether two times fall on the same calendar date as seen
// in their own locations.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ClockOffset is the wall-clock time of day as an offset from midnight.
func ClockOffset(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
