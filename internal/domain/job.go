package domain

import "time"

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Schedulable reports whether a job in this status belongs on the scheduling
// board. Completed and cancelled jobs drop out of the view; they are never
// moved back by the engine.
func (s JobStatus) Schedulable() bool {
	switch s {
	case JobPending, JobScheduled, JobInProgress:
		return true
	default:
		return false
	}
}

// JobOperation is one routing step of a job. SetupMinutes and RunMinutes are
// totals for the whole quantity, not per piece.
type JobOperation struct {
	Sequence     int32  `json:"sequence"`
	Name         string `json:"name"`
	SetupMinutes int32  `json:"setupMinutes"`
	RunMinutes   int32  `json:"runMinutes"`
}

type Job struct {
	ID                    int64          `json:"id"`
	Name                  string         `json:"name"`
	OrderRef              string         `json:"orderRef"`
	Status                JobStatus      `json:"status"`
	Quantity              int32          `json:"quantity"`
	EstimatedHoursPerUnit *float64       `json:"estimatedHoursPerUnit"`
	Operations            []JobOperation `json:"operations"`
	MachineID             *int64         `json:"machineID"`
	ScheduledStart        *time.Time     `json:"scheduledStart"`
	ScheduledEnd          *time.Time     `json:"scheduledEnd"`
	CreatedAt             time.Time      `json:"createdAt"`
	Version               int32          `json:"-"`
}

func (j *Job) Scheduled() bool {
	return j.MachineID != nil && j.ScheduledStart != nil && j.ScheduledEnd != nil
}

// Duration returns the currently scheduled duration, zero if unscheduled.
func (j *Job) Duration() time.Duration {
	if !j.Scheduled() {
		return 0
	}
	return j.ScheduledEnd.Sub(*j.ScheduledStart)
}

// Placement is a resolved start/end pair that lies entirely within one
// working window, snapped to the configured granularity.
type Placement struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
