package schedule

import "time"

// Interval is an existing appointment as the conflict check sees it: an
// identity plus a UTC time span.
type Interval struct {
	ID    int64
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an
// instant. An interval ending exactly when another begins does not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// AnyOverlap reports whether [start, end) overlaps any member of existing,
// skipping the entry whose id equals excludeID. Zero means exclude nothing.
func AnyOverlap(start, end time.Time, existing []Interval, excludeID int64) bool {
	for _, iv := range existing {
		if excludeID != 0 && iv.ID == excludeID {
			continue
		}
		if Overlaps(start, end, iv.Start, iv.End) {
			return true
		}
	}
	return false
}
