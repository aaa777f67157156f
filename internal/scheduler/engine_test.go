package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/filaops/scheduler/backend/internal/domain"
)

func TestPlaceJob(t *testing.T) {
	t.Run("first placement uses the estimated duration", func(t *testing.T) {
		job := &domain.Job{ID: 7, Status: domain.JobPending, Quantity: 1}
		store := &fakeStore{}
		e := testEngine(t, store, 15)

		p, err := e.PlaceJob(context.Background(), PlaceCommand{
			Job:          job,
			MachineID:    1,
			DesiredStart: monday(t, 10, 0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// default estimate: two hours per unit
		if !p.Start.Equal(monday(t, 10, 0)) || !p.End.Equal(monday(t, 12, 0)) {
			t.Errorf("got [%v, %v], want [10:00, 12:00]", p.Start, p.End)
		}
		if !job.Scheduled() {
			t.Error("job was not persisted as scheduled")
		}
	})

	t.Run("moving a scheduled job keeps its current duration", func(t *testing.T) {
		job := scheduledJob(7, 1, monday(t, 10, 0), monday(t, 11, 0))
		store := &fakeStore{jobs: []*domain.Job{job}}
		e := testEngine(t, store, 15)

		p, err := e.PlaceJob(context.Background(), PlaceCommand{
			Job:          job,
			MachineID:    2,
			DesiredStart: monday(t, 13, 0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Start.Equal(monday(t, 13, 0)) || !p.End.Equal(monday(t, 14, 0)) {
			t.Errorf("got [%v, %v], want [13:00, 14:00]", p.Start, p.End)
		}
		if *job.MachineID != 2 {
			t.Errorf("got machine %d, want 2", *job.MachineID)
		}
	})

	t.Run("impossible placement leaves the job untouched", func(t *testing.T) {
		job := &domain.Job{ID: 7, Status: domain.JobPending, Quantity: 1, EstimatedHoursPerUnit: hoursPerUnit(9)}
		store := &fakeStore{}
		e := testEngine(t, store, 15)

		_, err := e.PlaceJob(context.Background(), PlaceCommand{
			Job:          job,
			MachineID:    1,
			DesiredStart: monday(t, 10, 0),
		})
		if !errors.Is(err, domain.ErrSchedulingImpossible) {
			t.Fatalf("got error %v, want %v", err, domain.ErrSchedulingImpossible)
		}
		if job.Scheduled() {
			t.Error("failed placement was persisted")
		}
	})
}

func TestResizeJob(t *testing.T) {
	t.Run("start is clamped to now", func(t *testing.T) {
		job := scheduledJob(1, 1, monday(t, 10, 0), monday(t, 12, 0))
		store := &fakeStore{jobs: []*domain.Job{job}}
		e := testEngine(t, store, 15) // now is Monday 09:00

		p, err := e.ResizeJob(context.Background(), ResizeCommand{
			Job:   job,
			Start: monday(t, 8, 0),
			End:   monday(t, 12, 0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Start.Equal(monday(t, 9, 0)) || !p.End.Equal(monday(t, 12, 0)) {
			t.Errorf("got [%v, %v], want [09:00, 12:00]", p.Start, p.End)
		}
	})

	t.Run("shrink stops at the 30-minute floor", func(t *testing.T) {
		job := scheduledJob(1, 1, monday(t, 10, 0), monday(t, 12, 0))
		store := &fakeStore{jobs: []*domain.Job{job}}
		e := testEngine(t, store, 15)

		p, err := e.ResizeJob(context.Background(), ResizeCommand{
			Job:   job,
			Start: monday(t, 10, 0),
			End:   monday(t, 10, 10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := p.End.Sub(p.Start); got != MinDuration {
			t.Errorf("got duration %v, want %v", got, MinDuration)
		}
	})

	t.Run("unscheduled job is rejected", func(t *testing.T) {
		job := &domain.Job{ID: 1, Status: domain.JobPending}
		e := testEngine(t, &fakeStore{}, 15)

		_, err := e.ResizeJob(context.Background(), ResizeCommand{Job: job, Start: monday(t, 10, 0), End: monday(t, 11, 0)})
		if !errors.Is(err, ErrJobUnscheduled) {
			t.Errorf("got error %v, want %v", err, ErrJobUnscheduled)
		}
	})
}

func TestNudgeJob(t *testing.T) {
	t.Run("coarse nudge moves four snap steps", func(t *testing.T) {
		job := scheduledJob(1, 1, monday(t, 10, 0), monday(t, 11, 0))
		store := &fakeStore{jobs: []*domain.Job{job}}
		e := testEngine(t, store, 30)

		p, err := e.NudgeJob(context.Background(), NudgeCommand{
			Job:       job,
			Direction: NudgeRight,
			Coarse:    true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Start.Equal(monday(t, 12, 0)) || !p.End.Equal(monday(t, 13, 0)) {
			t.Errorf("got [%v, %v], want [12:00, 13:00]", p.Start, p.End)
		}
	})

	t.Run("plain nudge moves one snap step", func(t *testing.T) {
		job := scheduledJob(1, 1, monday(t, 10, 0), monday(t, 11, 0))
		store := &fakeStore{jobs: []*domain.Job{job}}
		e := testEngine(t, store, 15)

		p, err := e.NudgeJob(context.Background(), NudgeCommand{Job: job, Direction: NudgeRight})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Start.Equal(monday(t, 10, 15)) || !p.End.Equal(monday(t, 11, 15)) {
			t.Errorf("got [%v, %v], want [10:15, 11:15]", p.Start, p.End)
		}
	})

	t.Run("end-edge shrink clamps at the floor", func(t *testing.T) {
		job := scheduledJob(1, 1, monday(t, 10, 0), monday(t, 10, 30))
		store := &fakeStore{jobs: []*domain.Job{job}}
		e := testEngine(t, store, 30)

		p, err := e.NudgeJob(context.Background(), NudgeCommand{
			Job:       job,
			Direction: NudgeLeft,
			Edge:      EdgeEnd,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Start.Equal(monday(t, 10, 0)) || !p.End.Equal(monday(t, 10, 30)) {
			t.Errorf("got [%v, %v], want [10:00, 10:30]", p.Start, p.End)
		}
	})

	t.Run("start-edge grow clamps at the floor", func(t *testing.T) {
		job := scheduledJob(1, 1, monday(t, 10, 0), monday(t, 11, 0))
		store := &fakeStore{jobs: []*domain.Job{job}}
		e := testEngine(t, store, 30)

		p, err := e.NudgeJob(context.Background(), NudgeCommand{
			Job:       job,
			Direction: NudgeRight,
			Coarse:    true,
			Edge:      EdgeStart,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Start.Equal(monday(t, 10, 30)) || !p.End.Equal(monday(t, 11, 0)) {
			t.Errorf("got [%v, %v], want [10:30, 11:00]", p.Start, p.End)
		}
	})
}
