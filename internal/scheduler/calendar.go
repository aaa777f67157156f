// Package scheduler implements the calendar-constrained scheduling engine
// behind the production board: snapping instants to a grid, resolving
// placements into working windows, and arranging neighboring jobs on a
// machine after a placement change.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

// MinDuration is the floor applied to every placement, so a resize or a
// zero-estimate job can never produce a degenerate block.
const MinDuration = 30 * time.Minute

// maxDayAdvances caps the window search. A job that cannot be placed within
// a year of day-advances does not fit any window at all.
const maxDayAdvances = 366

// Calendar answers whether an instant is within working hours and moves
// arbitrary instants onto legal, snapped ones. It is built from an already
// validated work schedule; constructing one never mutates shared state.
type Calendar struct {
	days      [7]bool
	startMins int
	endMins   int
	snap      time.Duration
}

func NewCalendar(ws domain.WorkSchedule, snapMinutes int32) (*Calendar, error) {
	startMins, err := parseClock(ws.Start)
	if err != nil {
		return nil, err
	}
	endMins, err := parseClock(ws.End)
	if err != nil {
		return nil, err
	}
	if endMins <= startMins {
		return nil, domain.ErrConfigurationInvalid
	}
	if snapMinutes <= 0 {
		snapMinutes = domain.DefaultSnapMinutes
	}

	return &Calendar{
		days:      ws.Days,
		startMins: startMins,
		endMins:   endMins,
		snap:      time.Duration(snapMinutes) * time.Minute,
	}, nil
}

// parseClock parses "HH:MM" into minutes after midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day: %s", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day: %s", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day: %s", s)
	}
	return hour*60 + minute, nil
}

// SnapStep returns the configured grid granularity.
func (c *Calendar) SnapStep() time.Duration {
	return c.snap
}

// Snap rounds t to the nearest multiple of the snap granularity, anchored at
// midnight of t's own day so the grid follows the wall clock. Ties round up.
func (c *Calendar) Snap(t time.Time) time.Time {
	day := startOfDay(t)
	offset := t.Sub(day)
	rounded := (offset + c.snap/2) / c.snap * c.snap
	return day.Add(rounded)
}

// IsWorkingInstant reports whether t's weekday is enabled and its time of
// day falls within [start, end).
func (c *Calendar) IsWorkingInstant(t time.Time) bool {
	if !c.days[t.Weekday()] {
		return false
	}
	tod := t.Hour()*60 + t.Minute()
	return tod >= c.startMins && tod < c.endMins
}

// NextWorkingInstant returns the snapped instant unchanged if it already
// lies in working hours, otherwise the start of the nearest working window
// at or after it. With no enabled day it gives up after a year and returns
// its input; settings validation keeps that configuration out.
func (c *Calendar) NextWorkingInstant(t time.Time) time.Time {
	t = c.Snap(t)
	if c.IsWorkingInstant(t) {
		return t
	}

	day := startOfDay(t)
	if c.days[t.Weekday()] && t.Hour()*60+t.Minute() < c.startMins {
		return day.Add(time.Duration(c.startMins) * time.Minute)
	}
	for i := 0; i < maxDayAdvances; i++ {
		day = day.AddDate(0, 0, 1)
		if c.days[day.Weekday()] {
			return day.Add(time.Duration(c.startMins) * time.Minute)
		}
	}
	return t
}

// ScheduleWithinCalendar resolves a desired start and duration into a
// placement that is snapped, never earlier than now, and contained in one
// contiguous working window. Jobs are deliberately never split across
// off-hours: a job that would run past the window's end is shifted whole to
// the next window's start, duration preserved. When no window can hold the
// duration the search fails with domain.ErrSchedulingImpossible.
func (c *Calendar) ScheduleWithinCalendar(desired time.Time, duration time.Duration, now time.Time) (domain.Placement, error) {
	if duration < MinDuration {
		duration = MinDuration
	}

	candidate := desired
	if candidate.Before(now) {
		candidate = now
	}
	candidate = c.Snap(candidate)
	if candidate.Before(now) {
		// rounding to nearest may land just before now; step forward one
		// grid slot to keep the no-earlier-than-now guarantee
		candidate = candidate.Add(c.snap)
	}

	for i := 0; i < maxDayAdvances; i++ {
		next := c.NextWorkingInstant(candidate)
		if !c.IsWorkingInstant(next) {
			break
		}
		candidate = next

		windowEnd := startOfDay(candidate).Add(time.Duration(c.endMins) * time.Minute)
		if !candidate.Add(duration).After(windowEnd) {
			return domain.Placement{Start: candidate, End: candidate.Add(duration)}, nil
		}

		// does not fit the rest of this window: try the next one
		candidate = startOfDay(candidate).AddDate(0, 0, 1)
	}

	return domain.Placement{}, domain.ErrSchedulingImpossible
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
