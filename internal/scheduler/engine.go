package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

var ErrJobUnscheduled = errors.New("job has no current placement")

// Store is the engine's view of job persistence. ListScheduledByMachine must
// return jobs ordered ascending by scheduled start; the arrangement passes
// depend on that ordering for their cursor arithmetic.
type Store interface {
	ListScheduledByMachine(ctx context.Context, machineID int64) ([]*domain.Job, error)
	Reschedule(ctx context.Context, job *domain.Job, machineID int64, start, end time.Time) error
}

// Engine resolves placement commands against a calendar and persists the
// results through a Store. It holds no global state: a fresh engine is built
// per interaction from the settings in force at that moment.
type Engine struct {
	calendar *Calendar
	store    Store
	now      func() time.Time
}

func NewEngine(calendar *Calendar, store Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		calendar: calendar,
		store:    store,
		now:      now,
	}
}

func (e *Engine) Calendar() *Calendar {
	return e.calendar
}

// PlaceCommand drops a job onto a machine at a desired start. For an
// unscheduled job the duration comes from EstimateDuration; a job that is
// already scheduled keeps its current duration.
type PlaceCommand struct {
	Job          *domain.Job
	MachineID    int64
	DesiredStart time.Time
}

func (e *Engine) PlaceJob(ctx context.Context, cmd PlaceCommand) (domain.Placement, error) {
	duration := cmd.Job.Duration()
	if duration <= 0 {
		duration = EstimateDuration(cmd.Job)
	}

	p, err := e.calendar.ScheduleWithinCalendar(cmd.DesiredStart, duration, e.now())
	if err != nil {
		return domain.Placement{}, err
	}
	if err := e.store.Reschedule(ctx, cmd.Job, cmd.MachineID, p.Start, p.End); err != nil {
		return domain.Placement{}, err
	}
	return p, nil
}

// ResizeCommand carries the tentative interval after a handle drag. The
// engine snaps and clamps it: the job never starts before now and never
// shrinks below the 30-minute floor.
type ResizeCommand struct {
	Job   *domain.Job
	Start time.Time
	End   time.Time
}

func (e *Engine) ResizeJob(ctx context.Context, cmd ResizeCommand) (domain.Placement, error) {
	if !cmd.Job.Scheduled() {
		return domain.Placement{}, ErrJobUnscheduled
	}

	now := e.now()
	start, end := cmd.Start, cmd.End
	if start.Before(now) {
		start = now
	}
	if end.Sub(start) < MinDuration {
		end = start.Add(MinDuration)
	}

	p, err := e.calendar.ScheduleWithinCalendar(start, end.Sub(start), now)
	if err != nil {
		return domain.Placement{}, err
	}
	if err := e.store.Reschedule(ctx, cmd.Job, *cmd.Job.MachineID, p.Start, p.End); err != nil {
		return domain.Placement{}, err
	}
	return p, nil
}

type NudgeEdge string

const (
	EdgeBoth  NudgeEdge = ""
	EdgeStart NudgeEdge = "start"
	EdgeEnd   NudgeEdge = "end"
)

type NudgeDirection string

const (
	NudgeLeft  NudgeDirection = "left"
	NudgeRight NudgeDirection = "right"
)

// NudgeCommand moves a scheduled job by whole grid steps: one snap step, or
// four when Coarse is set. EdgeBoth shifts the whole block, EdgeEnd and
// EdgeStart resize a single endpoint.
type NudgeCommand struct {
	Job       *domain.Job
	Direction NudgeDirection
	Coarse    bool
	Edge      NudgeEdge
}

func (e *Engine) NudgeJob(ctx context.Context, cmd NudgeCommand) (domain.Placement, error) {
	if !cmd.Job.Scheduled() {
		return domain.Placement{}, ErrJobUnscheduled
	}

	delta := e.calendar.SnapStep()
	if cmd.Coarse {
		delta *= 4
	}
	if cmd.Direction == NudgeLeft {
		delta = -delta
	}

	start, end := *cmd.Job.ScheduledStart, *cmd.Job.ScheduledEnd
	switch cmd.Edge {
	case EdgeStart:
		start = start.Add(delta)
	case EdgeEnd:
		end = end.Add(delta)
	default:
		start = start.Add(delta)
		end = end.Add(delta)
	}

	if end.Sub(start) < MinDuration {
		if cmd.Edge == EdgeStart {
			start = end.Add(-MinDuration)
		} else {
			end = start.Add(MinDuration)
		}
	}

	now := e.now()
	if start.Before(now) {
		start = now
	}

	p, err := e.calendar.ScheduleWithinCalendar(start, end.Sub(start), now)
	if err != nil {
		return domain.Placement{}, err
	}
	if err := e.store.Reschedule(ctx, cmd.Job, *cmd.Job.MachineID, p.Start, p.End); err != nil {
		return domain.Placement{}, err
	}
	return p, nil
}
