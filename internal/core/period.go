package core

import "time"

// Period is the statement period: the calendar month containing an
// evaluation instant. Start is inclusive, End exclusive.
type Period struct {
	Start Date
	End   Date
}

// PeriodAt returns the calendar month containing now, in now's location.
func PeriodAt(now time.Time) Period {
	start := NewDate(now.Year(), int(now.Month()), 1)
	return Period{Start: start, End: Date{Time: start.AddDate(0, 1, 0)}}
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start.Time) && d.Before(p.End.Time)
}

// Clock supplies the evaluation instant; services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock returns a Clock reading wall time in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
