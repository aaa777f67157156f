package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

// Mon-Fri 09:00-17:00.
func weekdayCalendar(t *testing.T, snapMinutes int32) *Calendar {
	t.Helper()
	cal, err := NewCalendar(domain.WorkSchedule{
		Days:  [7]bool{false, true, true, true, true, true, false},
		Start: "09:00",
		End:   "17:00",
	}, snapMinutes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cal
}

func TestNewCalendar(t *testing.T) {
	t.Run("rejects end before start", func(t *testing.T) {
		_, err := NewCalendar(domain.WorkSchedule{
			Days:  [7]bool{false, true, true, true, true, true, false},
			Start: "17:00",
			End:   "09:00",
		}, 15)
		if !errors.Is(err, domain.ErrConfigurationInvalid) {
			t.Errorf("got error %v, want %v", err, domain.ErrConfigurationInvalid)
		}
	})

	t.Run("rejects malformed time of day", func(t *testing.T) {
		_, err := NewCalendar(domain.WorkSchedule{
			Days:  [7]bool{false, true, true, true, true, true, false},
			Start: "9 am",
			End:   "17:00",
		}, 15)
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestSnap(t *testing.T) {
	cal := weekdayCalendar(t, 15)
	// Monday 2 June 2025
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	t.Run("rounds down below the midpoint", func(t *testing.T) {
		got := cal.Snap(base.Add(7 * time.Minute))
		if !got.Equal(base) {
			t.Errorf("got %v, want %v", got, base)
		}
	})

	t.Run("rounds up at and above the midpoint", func(t *testing.T) {
		want := base.Add(15 * time.Minute)
		for _, offset := range []time.Duration{
			7*time.Minute + 30*time.Second,
			8 * time.Minute,
			14 * time.Minute,
		} {
			got := cal.Snap(base.Add(offset))
			if !got.Equal(want) {
				t.Errorf("Snap(base+%v): got %v, want %v", offset, got, want)
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, offset := range []time.Duration{
			0, 3 * time.Minute, 22 * time.Minute, 8 * time.Hour, 37*time.Hour + 11*time.Minute,
		} {
			once := cal.Snap(base.Add(offset))
			twice := cal.Snap(once)
			if !twice.Equal(once) {
				t.Errorf("Snap not idempotent at base+%v: %v then %v", offset, once, twice)
			}
		}
	})
}

func TestIsWorkingInstant(t *testing.T) {
	cal := weekdayCalendar(t, 15)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday mid-window", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), true},
		{"monday window start", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), true},
		{"monday before window", time.Date(2025, 6, 2, 8, 59, 0, 0, time.UTC), false},
		{"monday window end is exclusive", time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC), false},
		{"saturday disabled", time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.IsWorkingInstant(tt.at); got != tt.want {
				t.Errorf("IsWorkingInstant(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestNextWorkingInstant(t *testing.T) {
	cal := weekdayCalendar(t, 15)

	t.Run("working instant is returned unchanged", func(t *testing.T) {
		at := time.Date(2025, 6, 2, 10, 15, 0, 0, time.UTC)
		if got := cal.NextWorkingInstant(at); !got.Equal(at) {
			t.Errorf("got %v, want %v", got, at)
		}
	})

	t.Run("before the window jumps to the same day's start", func(t *testing.T) {
		at := time.Date(2025, 6, 2, 6, 30, 0, 0, time.UTC)
		want := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		if got := cal.NextWorkingInstant(at); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("after the window jumps to the next day's start", func(t *testing.T) {
		at := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
		want := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
		if got := cal.NextWorkingInstant(at); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("weekend wraps to monday", func(t *testing.T) {
		at := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC) // Saturday
		want := time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC)
		if got := cal.NextWorkingInstant(at); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestScheduleWithinCalendar(t *testing.T) {
	t.Run("saturday drop lands monday morning", func(t *testing.T) {
		cal := weekdayCalendar(t, 30)
		now := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
		desired := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC) // Saturday 10:00

		p, err := cal.ScheduleWithinCalendar(desired, 2*time.Hour, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		wantStart := time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2025, 6, 9, 11, 0, 0, 0, time.UTC)
		if !p.Start.Equal(wantStart) || !p.End.Equal(wantEnd) {
			t.Errorf("got [%v, %v], want [%v, %v]", p.Start, p.End, wantStart, wantEnd)
		}
	})

	t.Run("never earlier than now", func(t *testing.T) {
		cal := weekdayCalendar(t, 15)
		now := time.Date(2025, 6, 3, 10, 7, 0, 0, time.UTC)
		desired := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // a day in the past

		p, err := cal.ScheduleWithinCalendar(desired, time.Hour, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Start.Before(now) {
			t.Errorf("start %v is earlier than now %v", p.Start, now)
		}
		want := time.Date(2025, 6, 3, 10, 15, 0, 0, time.UTC)
		if !p.Start.Equal(want) {
			t.Errorf("got start %v, want %v", p.Start, want)
		}
	})

	t.Run("job crossing the window end moves whole to the next window", func(t *testing.T) {
		cal := weekdayCalendar(t, 30)
		now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		desired := time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)

		p, err := cal.ScheduleWithinCalendar(desired, 2*time.Hour, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		wantStart := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
		if !p.Start.Equal(wantStart) {
			t.Errorf("got start %v, want %v", p.Start, wantStart)
		}
		if got := p.End.Sub(p.Start); got != 2*time.Hour {
			t.Errorf("duration changed: got %v, want %v", got, 2*time.Hour)
		}
	})

	t.Run("duration below the floor is raised to 30 minutes", func(t *testing.T) {
		cal := weekdayCalendar(t, 15)
		now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

		p, err := cal.ScheduleWithinCalendar(now, 10*time.Minute, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := p.End.Sub(p.Start); got != MinDuration {
			t.Errorf("got duration %v, want %v", got, MinDuration)
		}
	})

	t.Run("duration longer than any window is impossible", func(t *testing.T) {
		cal := weekdayCalendar(t, 15)
		now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

		_, err := cal.ScheduleWithinCalendar(now, 9*time.Hour, now)
		if !errors.Is(err, domain.ErrSchedulingImpossible) {
			t.Errorf("got error %v, want %v", err, domain.ErrSchedulingImpossible)
		}
	})

	t.Run("placements stay inside one working window", func(t *testing.T) {
		cal := weekdayCalendar(t, 15)
		now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

		for hour := 0; hour < 24*14; hour++ {
			desired := now.Add(time.Duration(hour) * time.Hour)
			p, err := cal.ScheduleWithinCalendar(desired, 90*time.Minute, now)
			if err != nil {
				t.Fatalf("desired %v: unexpected error: %v", desired, err)
			}
			if !cal.IsWorkingInstant(p.Start) {
				t.Fatalf("desired %v: start %v is not a working instant", desired, p.Start)
			}
			windowEnd := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 17, 0, 0, 0, time.UTC)
			if p.End.After(windowEnd) {
				t.Fatalf("desired %v: end %v runs past the window end %v", desired, p.End, windowEnd)
			}
		}
	})
}
