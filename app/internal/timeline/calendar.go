package timeline

import (
	"errors"
	"time"
)

// ErrInvalidRange reports an entity whose derived day span is inverted
// (last known instant before first observation). The entity is skipped;
// no synthetic days are emitted.
var ErrInvalidRange = errors.New("invalid day range: end before start")

// DayRange returns the inclusive sequence of calendar days, as midnights in
// loc, from the day containing min to the day containing max. The sequence is
// strictly increasing with no gaps; min and max on the same date yield a
// single day.
func DayRange(min, max time.Time, loc *time.Location) ([]time.Time, error) {
	if max.Before(min) {
		return nil, ErrInvalidRange
	}

	first := dayStart(min, loc)
	last := dayStart(max, loc)

	var days []time.Time
	for d := first; !d.After(last); d = nextDay(d) {
		days = append(days, d)
	}
	return days, nil
}

// dayStart floors t to midnight of its calendar date in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// nextDay steps to the following midnight. Normalization through time.Date
// keeps the sequence correct across DST shifts.
func nextDay(d time.Time) time.Time {
	y, m, dd := d.Date()
	return time.Date(y, m, dd+1, 0, 0, 0, 0, d.Location())
}
