package scheduler

import (
	"context"
	"errors"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

type fakeStore struct {
	jobs   []*domain.Job
	failID int64
}

func (s *fakeStore) ListScheduledByMachine(_ context.Context, machineID int64) ([]*domain.Job, error) {
	var out []*domain.Job
	for _, j := range s.jobs {
		if j.Scheduled() && *j.MachineID == machineID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ScheduledStart.Before(*out[k].ScheduledStart) })
	return out, nil
}

func (s *fakeStore) Reschedule(_ context.Context, job *domain.Job, machineID int64, start, end time.Time) error {
	if job.ID == s.failID {
		return errors.New("reschedule rejected")
	}
	m, st, en := machineID, start, end
	job.MachineID, job.ScheduledStart, job.ScheduledEnd = &m, &st, &en
	job.Status = domain.JobScheduled
	if !slices.Contains(s.jobs, job) {
		s.jobs = append(s.jobs, job)
	}
	return nil
}

func scheduledJob(id, machineID int64, start, end time.Time) *domain.Job {
	m, st, en := machineID, start, end
	return &domain.Job{
		ID:             id,
		Status:         domain.JobScheduled,
		Quantity:       1,
		MachineID:      &m,
		ScheduledStart: &st,
		ScheduledEnd:   &en,
	}
}

// Monday 2 June 2025, inside the weekday calendar's window.
func monday(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
}

func testEngine(t *testing.T, store *fakeStore, snapMinutes int32) *Engine {
	t.Helper()
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return NewEngine(weekdayCalendar(t, snapMinutes), store, func() time.Time { return now })
}

func TestPushOverlaps(t *testing.T) {
	t.Run("job starting before the primary is never pushed", func(t *testing.T) {
		j1 := scheduledJob(1, 1, monday(t, 10, 0), monday(t, 12, 0))
		store := &fakeStore{jobs: []*domain.Job{j1}}
		e := testEngine(t, store, 15)

		// primary dropped at 11:00-12:00, overlapping J1's tail
		moved, err := e.PushOverlaps(context.Background(), 1, 2, monday(t, 11, 0), monday(t, 12, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved != 0 {
			t.Errorf("got moved %d, want 0", moved)
		}
		if !j1.ScheduledStart.Equal(monday(t, 10, 0)) || !j1.ScheduledEnd.Equal(monday(t, 12, 0)) {
			t.Errorf("earlier job moved: [%v, %v]", j1.ScheduledStart, j1.ScheduledEnd)
		}
	})

	t.Run("chained overlaps push forward without overlap", func(t *testing.T) {
		primary := scheduledJob(1, 1, monday(t, 9, 0), monday(t, 11, 0))
		j2 := scheduledJob(2, 1, monday(t, 10, 0), monday(t, 11, 0))
		j3 := scheduledJob(3, 1, monday(t, 10, 30), monday(t, 12, 0))
		store := &fakeStore{jobs: []*domain.Job{primary, j2, j3}}
		e := testEngine(t, store, 15)

		moved, err := e.PushOverlaps(context.Background(), 1, 1, monday(t, 9, 0), monday(t, 11, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved != 2 {
			t.Errorf("got moved %d, want 2", moved)
		}
		if !j2.ScheduledStart.Equal(monday(t, 11, 0)) || !j2.ScheduledEnd.Equal(monday(t, 12, 0)) {
			t.Errorf("j2: got [%v, %v], want [11:00, 12:00]", j2.ScheduledStart, j2.ScheduledEnd)
		}
		if !j3.ScheduledStart.Equal(monday(t, 12, 0)) || !j3.ScheduledEnd.Equal(monday(t, 13, 30)) {
			t.Errorf("j3: got [%v, %v], want [12:00, 13:30]", j3.ScheduledStart, j3.ScheduledEnd)
		}

		// no two jobs on the machine overlap afterward
		all, _ := store.ListScheduledByMachine(context.Background(), 1)
		for i := 1; i < len(all); i++ {
			if all[i].ScheduledStart.Before(*all[i-1].ScheduledEnd) {
				t.Errorf("jobs %d and %d overlap", all[i-1].ID, all[i].ID)
			}
		}
	})

	t.Run("scan stops at the first job past the cursor", func(t *testing.T) {
		j2 := scheduledJob(2, 1, monday(t, 13, 0), monday(t, 14, 0))
		store := &fakeStore{jobs: []*domain.Job{j2}}
		e := testEngine(t, store, 15)

		moved, err := e.PushOverlaps(context.Background(), 1, 1, monday(t, 9, 0), monday(t, 11, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved != 0 {
			t.Errorf("got moved %d, want 0", moved)
		}
		if !j2.ScheduledStart.Equal(monday(t, 13, 0)) {
			t.Errorf("non-overlapping job moved to %v", j2.ScheduledStart)
		}
	})

	t.Run("failed move falls back to the old end for later jobs", func(t *testing.T) {
		j2 := scheduledJob(2, 1, monday(t, 10, 0), monday(t, 12, 30))
		j3 := scheduledJob(3, 1, monday(t, 12, 0), monday(t, 13, 0))
		store := &fakeStore{jobs: []*domain.Job{j2, j3}, failID: 2}
		e := testEngine(t, store, 15)

		moved, err := e.PushOverlaps(context.Background(), 1, 1, monday(t, 9, 0), monday(t, 11, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved != 1 {
			t.Errorf("got moved %d, want 1", moved)
		}
		// j2 kept its slot, j3 was arranged after j2's unmoved end
		if !j2.ScheduledStart.Equal(monday(t, 10, 0)) {
			t.Errorf("failed job moved to %v", j2.ScheduledStart)
		}
		if !j3.ScheduledStart.Equal(monday(t, 12, 30)) || !j3.ScheduledEnd.Equal(monday(t, 13, 30)) {
			t.Errorf("j3: got [%v, %v], want [12:30, 13:30]", j3.ScheduledStart, j3.ScheduledEnd)
		}
	})
}

func TestCompactGapsForward(t *testing.T) {
	t.Run("pulls a gapped job back to the cursor", func(t *testing.T) {
		j1 := scheduledJob(1, 1, monday(t, 9, 0), monday(t, 10, 0))
		j3 := scheduledJob(3, 1, monday(t, 13, 0), monday(t, 14, 0))
		store := &fakeStore{jobs: []*domain.Job{j1, j3}}
		e := testEngine(t, store, 15)

		moved, err := e.CompactGapsForward(context.Background(), 1, 1, monday(t, 10, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved != 1 {
			t.Errorf("got moved %d, want 1", moved)
		}
		if !j3.ScheduledStart.Equal(monday(t, 10, 0)) || !j3.ScheduledEnd.Equal(monday(t, 11, 0)) {
			t.Errorf("j3: got [%v, %v], want [10:00, 11:00]", j3.ScheduledStart, j3.ScheduledEnd)
		}
	})

	t.Run("snug jobs advance the cursor and keep their order", func(t *testing.T) {
		j1 := scheduledJob(1, 1, monday(t, 9, 0), monday(t, 10, 0))
		j2 := scheduledJob(2, 1, monday(t, 10, 0), monday(t, 11, 30))
		j4 := scheduledJob(4, 1, monday(t, 13, 0), monday(t, 14, 0))
		store := &fakeStore{jobs: []*domain.Job{j1, j2, j4}}
		e := testEngine(t, store, 15)

		moved, err := e.CompactGapsForward(context.Background(), 1, 1, monday(t, 10, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved != 1 {
			t.Errorf("got moved %d, want 1", moved)
		}
		if !j2.ScheduledStart.Equal(monday(t, 10, 0)) {
			t.Errorf("snug job moved to %v", j2.ScheduledStart)
		}
		if !j4.ScheduledStart.Equal(monday(t, 11, 30)) {
			t.Errorf("j4: got start %v, want 11:30", j4.ScheduledStart)
		}

		all, _ := store.ListScheduledByMachine(context.Background(), 1)
		wantOrder := []int64{1, 2, 4}
		for i, j := range all {
			if j.ID != wantOrder[i] {
				t.Fatalf("order changed: got %d at position %d, want %d", j.ID, i, wantOrder[i])
			}
		}
	})

	t.Run("unknown anchor job is a no-op", func(t *testing.T) {
		j1 := scheduledJob(1, 1, monday(t, 9, 0), monday(t, 10, 0))
		store := &fakeStore{jobs: []*domain.Job{j1}}
		e := testEngine(t, store, 15)

		moved, err := e.CompactGapsForward(context.Background(), 1, 99, monday(t, 10, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved != 0 {
			t.Errorf("got moved %d, want 0", moved)
		}
	})

	t.Run("failed pull falls back to the old end for later jobs", func(t *testing.T) {
		j1 := scheduledJob(1, 1, monday(t, 9, 0), monday(t, 10, 0))
		j2 := scheduledJob(2, 1, monday(t, 12, 0), monday(t, 13, 0))
		j3 := scheduledJob(3, 1, monday(t, 14, 0), monday(t, 15, 0))
		store := &fakeStore{jobs: []*domain.Job{j1, j2, j3}, failID: 2}
		e := testEngine(t, store, 15)

		moved, err := e.CompactGapsForward(context.Background(), 1, 1, monday(t, 10, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved != 1 {
			t.Errorf("got moved %d, want 1", moved)
		}
		if !j2.ScheduledStart.Equal(monday(t, 12, 0)) {
			t.Errorf("failed job moved to %v", j2.ScheduledStart)
		}
		if !j3.ScheduledStart.Equal(monday(t, 13, 0)) || !j3.ScheduledEnd.Equal(monday(t, 14, 0)) {
			t.Errorf("j3: got [%v, %v], want [13:00, 14:00]", j3.ScheduledStart, j3.ScheduledEnd)
		}
	})
}

func TestAutoArrange(t *testing.T) {
	primary := scheduledJob(1, 1, monday(t, 9, 0), monday(t, 11, 0))
	j2 := scheduledJob(2, 1, monday(t, 10, 0), monday(t, 11, 0))
	j3 := scheduledJob(3, 1, monday(t, 14, 0), monday(t, 15, 0))
	store := &fakeStore{jobs: []*domain.Job{primary, j2, j3}}
	e := testEngine(t, store, 15)

	total := e.AutoArrange(context.Background(), 1, 1, domain.Placement{
		Start: monday(t, 9, 0),
		End:   monday(t, 11, 0),
	})
	if total != 2 {
		t.Errorf("got total %d, want 2", total)
	}
	if !j2.ScheduledStart.Equal(monday(t, 11, 0)) || !j2.ScheduledEnd.Equal(monday(t, 12, 0)) {
		t.Errorf("pushed job: got [%v, %v], want [11:00, 12:00]", j2.ScheduledStart, j2.ScheduledEnd)
	}
	if !j3.ScheduledStart.Equal(monday(t, 12, 0)) || !j3.ScheduledEnd.Equal(monday(t, 13, 0)) {
		t.Errorf("compacted job: got [%v, %v], want [12:00, 13:00]", j3.ScheduledStart, j3.ScheduledEnd)
	}
}
