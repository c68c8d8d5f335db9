// Package weekdate models the ISO week buckets used as the caching
// granularity for space-weather events.
//
// A Week is identified by its ISO week-based year and week-of-year, following
// the ISO 8601 week-date calendar: weeks start on Monday and week 1 is the
// week containing the year's first Thursday. All boundary instants are
// computed in UTC, matching the provider's event timestamps.
package weekdate

import (
	"fmt"
	"time"
)

// Week identifies a single ISO week bucket. It is an immutable value type;
// two Weeks are equal iff their Year and Week fields are equal.
type Week struct {
	// Year is the ISO week-based year, which can differ from the calendar
	// year for dates near January 1st.
	Year int

	// Week is the ISO week of the week-based year, in the range 1..53.
	Week int
}

// FromTime returns the Week containing the given instant, evaluated in UTC.
func FromTime(t time.Time) Week {
	year, week := t.UTC().ISOWeek()
	return Week{Year: year, Week: week}
}

// Valid reports whether the week number falls inside the range the ISO
// calendar permits for its year. Week 53 only exists in long years.
func (w Week) Valid() bool {
	if w.Week < 1 || w.Week > 53 {
		return false
	}
	if w.Week == 53 {
		// Confirm the year actually has a week 53 by round-tripping the
		// computed start day through ISOWeek.
		y, wk := w.FirstInstant().ISOWeek()
		return y == w.Year && wk == 53
	}
	return true
}

// FirstInstant returns UTC midnight of the Monday starting the week. It is
// the inclusive lower bound of the week's event time range.
func (w Week) FirstInstant() time.Time {
	// January 4th is always inside ISO week 1 of its week-based year.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	daysSinceMonday := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -daysSinceMonday)
	return week1Monday.AddDate(0, 0, (w.Week-1)*7)
}

// InstantAfterLast returns UTC midnight of the Monday after the week ends.
// It is the exclusive upper bound of the week's event time range.
func (w Week) InstantAfterLast() time.Time {
	return w.FirstInstant().AddDate(0, 0, 7)
}

// Contains reports whether the instant falls within
// [FirstInstant, InstantAfterLast).
func (w Week) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(w.FirstInstant()) && u.Before(w.InstantAfterLast())
}

// Next returns the week immediately following this one.
func (w Week) Next() Week {
	return FromTime(w.FirstInstant().AddDate(0, 0, 7))
}

// Prev returns the week immediately preceding this one.
func (w Week) Prev() Week {
	return FromTime(w.FirstInstant().AddDate(0, 0, -7))
}

// String formats the week in the ISO 8601 week-date form, e.g. "2024-W05".
func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}
