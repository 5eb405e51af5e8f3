// Package schedule maps (week, day label) coordinates of a menu plan onto
// calendar dates.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Day labels used by menu plans.
const (
	Monday    = "LUN"
	Tuesday   = "MAR"
	Wednesday = "MIE"
	Thursday  = "JUE"
	Friday    = "VIE"
	Weekend   = "SAB_DOM"
)

// Convention selects which weekday a plan week starts on.
type Convention int

const (
	// MondayFirst plans run Monday to the weekend.
	MondayFirst Convention = iota
	// ThursdayFirst plans run Thursday to the following Wednesday.
	ThursdayFirst
)

func (c Convention) String() string {
	switch c {
	case MondayFirst:
		return "monday-first"
	case ThursdayFirst:
		return "thursday-first"
	}
	return fmt.Sprintf("convention(%d)", int(c))
}

// ErrUnknownDay is returned for a label outside the known day set.
var ErrUnknownDay = errors.New("unknown day label")

var offsets = map[Convention]map[string]int{
	MondayFirst: {
		Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Weekend: 5,
	},
	ThursdayFirst: {
		Thursday: 0, Friday: 1, Weekend: 2, Monday: 4, Tuesday: 5, Wednesday: 6,
	},
}

// Labels returns the day labels in plan order for the convention.
func Labels(c Convention) []string {
	if c == ThursdayFirst {
		return []string{Thursday, Friday, Weekend, Monday, Tuesday, Wednesday}
	}
	return []string{Monday, Tuesday, Wednesday, Thursday, Friday, Weekend}
}

// ValidLabel reports whether label is a known day label.
func ValidLabel(label string) bool {
	_, ok := offsets[MondayFirst][canonical(label)]
	return ok
}

// DayOffset returns the number of days between the start of a plan week and label.
func DayOffset(c Convention, label string) (int, error) {
	table, ok := offsets[c]
	if !ok {
		return 0, fmt.Errorf("unsupported convention %v", c)
	}
	off, ok := table[canonical(label)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDay, label)
	}
	return off, nil
}

// Project returns the calendar date of label in plan week weekOffset, counting
// from anchor. The result is a UTC midnight.
func Project(anchor time.Time, weekOffset int, label string, c Convention) (time.Time, error) {
	off, err := DayOffset(c, label)
	if err != nil {
		return time.Time{}, err
	}
	return Midnight(Midnight(anchor).AddDate(0, 0, weekOffset*7+off)), nil
}

// Midnight truncates t to the start of its civil date in UTC. The civil date
// is taken from t's own location so that a local midnight keeps its day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Midnight(t), nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func canonical(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
