package domain

import "errors"

var (
	// ErrSchedulingImpossible means the job's duration does not fit inside
	// any working window of the configured calendar. Jobs are never split
	// across off-hours, so a job longer than the daily window can never be
	// placed.
	ErrSchedulingImpossible = errors.New("job duration does not fit any working window")

	// ErrConfigurationInvalid is returned at the settings boundary for a
	// work schedule with end <= start or no enabled days. It never reaches
	// the calendar.
	ErrConfigurationInvalid = errors.New("invalid work schedule configuration")
)
