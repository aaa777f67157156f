package domain

import "time"

// ScheduleEvent is published to the schedule_events queue after scheduling
// activity that planners should hear about.
type ScheduleEvent struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

const (
	EventAutoArrange          = "auto_arrange"
	EventSchedulingImpossible = "scheduling_impossible"
)

type AutoArrangeEventData struct {
	MachineID  int64  `json:"machineID"`
	JobName    string `json:"jobName"`
	MovedCount int    `json:"movedCount"`
}

type SchedulingImpossibleEventData struct {
	JobName         string `json:"jobName"`
	DurationMinutes int64  `json:"durationMinutes"`
}
