package scheduler

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

// PushOverlaps walks the machine's jobs in start order and pushes forward
// every job the primary placement now overlaps, keeping a rolling cursor at
// the last confirmed end. Only jobs starting at or after primaryStart are
// candidates: a job that began before the primary keeps its slot, even when
// the primary now overlaps it (the dropped location wins).
//
// Persistence is best-effort per job. A failed move is logged and the cursor
// falls back to that job's original end, so later jobs are still arranged
// consistently relative to the unmoved neighbor.
func (e *Engine) PushOverlaps(ctx context.Context, machineID, primaryID int64, primaryStart, primaryEnd time.Time) (int, error) {
	jobs, err := e.store.ListScheduledByMachine(ctx, machineID)
	if err != nil {
		return 0, err
	}

	now := e.now()
	cursor := primaryEnd
	moved := 0

	for _, job := range jobs {
		if job.ID == primaryID {
			continue
		}
		if job.ScheduledStart.Before(primaryStart) {
			continue
		}
		if !job.ScheduledStart.Before(cursor) {
			// sorted by start, so nothing later can overlap either
			break
		}

		oldEnd := *job.ScheduledEnd
		p, err := e.calendar.ScheduleWithinCalendar(cursor, job.Duration(), now)
		if err != nil {
			slog.Warn("push: could not resolve placement", "jobID", job.ID, "error", err)
			cursor = oldEnd
			continue
		}
		if err := e.store.Reschedule(ctx, job, machineID, p.Start, p.End); err != nil {
			slog.Warn("push: could not persist placement", "jobID", job.ID, "error", err)
			cursor = oldEnd
			continue
		}

		cursor = p.End
		moved++
	}

	return moved, nil
}

// CompactGapsForward pulls jobs after fromJobID back toward the cursor so
// that gaps opened by a move or shrink disappear. Jobs without a gap just
// advance the cursor. Duration is always preserved and the relative start
// order of the machine's jobs never changes.
func (e *Engine) CompactGapsForward(ctx context.Context, machineID, fromJobID int64, cursorStart time.Time) (int, error) {
	jobs, err := e.store.ListScheduledByMachine(ctx, machineID)
	if err != nil {
		return 0, err
	}

	idx := slices.IndexFunc(jobs, func(j *domain.Job) bool { return j.ID == fromJobID })
	if idx == -1 {
		return 0, nil
	}

	cursor := cursorStart
	if jobs[idx].ScheduledEnd.After(cursor) {
		cursor = *jobs[idx].ScheduledEnd
	}

	now := e.now()
	moved := 0

	for _, job := range jobs[idx+1:] {
		if !job.ScheduledStart.After(cursor) {
			// no gap before this job
			if job.ScheduledEnd.After(cursor) {
				cursor = *job.ScheduledEnd
			}
			continue
		}

		oldEnd := *job.ScheduledEnd
		p, err := e.calendar.ScheduleWithinCalendar(cursor, job.Duration(), now)
		if err != nil {
			slog.Warn("compact: could not resolve placement", "jobID", job.ID, "error", err)
			cursor = oldEnd
			continue
		}
		if err := e.store.Reschedule(ctx, job, machineID, p.Start, p.End); err != nil {
			slog.Warn("compact: could not persist placement", "jobID", job.ID, "error", err)
			cursor = oldEnd
			continue
		}

		cursor = p.End
		moved++
	}

	return moved, nil
}

// AutoArrange runs the push pass and then the compact pass for the primary
// job's fresh placement and sums their moved counts. The passes run
// sequentially on purpose: each persisted move must see the cursor state of
// the moves before it.
func (e *Engine) AutoArrange(ctx context.Context, machineID, primaryID int64, p domain.Placement) int {
	total := 0

	if n, err := e.PushOverlaps(ctx, machineID, primaryID, p.Start, p.End); err != nil {
		slog.Error("auto-arrange: push pass failed", "machineID", machineID, "error", err)
	} else {
		total += n
	}

	if n, err := e.CompactGapsForward(ctx, machineID, primaryID, p.End); err != nil {
		slog.Error("auto-arrange: compact pass failed", "machineID", machineID, "error", err)
	} else {
		total += n
	}

	return total
}
