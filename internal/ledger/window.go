package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Window is the half-open interval [Start, End). A zero bound is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Bounded reports whether both bounds are set.
func (w Window) Bounded() bool {
	return !w.Start.IsZero() && !w.End.IsZero()
}

// RequireBounded fails with ErrInvalidRange unless both bounds are set.
func (w Window) RequireBounded() error {
	if w.Start.IsZero() {
		return fmt.Errorf("%w: missing start", ErrInvalidRange)
	}
	if w.End.IsZero() {
		return fmt.Errorf("%w: missing end", ErrInvalidRange)
	}
	return nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// Windows holds the four canonical reporting windows relative to one instant.
type Windows struct {
	CurrentWeek  Window
	LastWeek     Window
	CurrentMonth Window
	LastMonth    Window
}

// Calendar resolves windows and day keys in a fixed reference timezone with a fixed
// first day of the week.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// NewCalendar returns a Calendar, defaulting to UTC when loc is nil.
func NewCalendar(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, WeekStart: weekStart}
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Windows derives the current and previous week and month from now.
func (c Calendar) Windows(now time.Time) Windows {
	local := now.In(c.location())
	year, month, day := local.Date()

	today := time.Date(year, month, day, 0, 0, 0, 0, c.location())
	sinceWeekStart := (int(local.Weekday()) - int(c.WeekStart) + 7) % 7
	weekStart := today.AddDate(0, 0, -sinceWeekStart)

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, c.location())

	return Windows{
		CurrentWeek:  Window{Start: weekStart, End: weekStart.AddDate(0, 0, 7)},
		LastWeek:     Window{Start: weekStart.AddDate(0, 0, -7), End: weekStart},
		CurrentMonth: Window{Start: monthStart, End: monthStart.AddDate(0, 1, 0)},
		LastMonth:    Window{Start: monthStart.AddDate(0, -1, 0), End: monthStart},
	}
}

// DayKey formats t as YYYY-MM-DD in the reference timezone.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.location()).Format(time.DateOnly)
}

// ParseRange builds a window from caller-supplied bounds. Empty bounds stay
// unbounded. Bounds are RFC3339 timestamps or YYYY-MM-DD dates in the reference
// timezone. A date-only upper bound covers that whole day, while an RFC3339
// upper bound is an exclusive instant.
func (c Calendar) ParseRange(from, to string) (Window, error) {
	var w Window

	if from = strings.TrimSpace(from); from != "" {
		start, _, err := c.parseBound(from)
		if err != nil {
			return Window{}, fmt.Errorf("%w: from %q", ErrInvalidRange, from)
		}
		w.Start = start
	}

	if to = strings.TrimSpace(to); to != "" {
		end, dateOnly, err := c.parseBound(to)
		if err != nil {
			return Window{}, fmt.Errorf("%w: to %q", ErrInvalidRange, to)
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
		w.End = end
	}

	if w.Bounded() && w.Start.After(w.End) {
		return Window{}, fmt.Errorf("%w: from is after to", ErrInvalidRange)
	}
	return w, nil
}

func (c Calendar) parseBound(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, c.location())
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
