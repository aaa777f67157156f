package scheduler

import (
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

// EstimateDuration derives a job's intended duration for its first
// placement. Resizing never re-estimates; there the user's drag is
// authoritative.
//
// Priority order:
//  1. routing operations with setup/run minutes, when the per-unit share of
//     their total is at least an hour
//  2. flat estimated hours per unit times quantity
//  3. two hours per unit
//
// The result is clamped to the shared 30-minute floor.
func EstimateDuration(job *domain.Job) time.Duration {
	qty := job.Quantity
	if qty < 1 {
		qty = 1
	}

	var opTotal int64
	for _, op := range job.Operations {
		opTotal += int64(op.SetupMinutes) + int64(op.RunMinutes)
	}

	var minutes int64
	switch {
	case opTotal > 0 && float64(opTotal)/float64(qty) >= 60:
		minutes = opTotal
	case job.EstimatedHoursPerUnit != nil && *job.EstimatedHoursPerUnit > 0:
		minutes = int64(*job.EstimatedHoursPerUnit * 60 * float64(qty))
	default:
		minutes = int64(qty) * 120
	}

	d := time.Duration(minutes) * time.Minute
	if d < MinDuration {
		d = MinDuration
	}
	return d
}
