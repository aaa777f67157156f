package utils

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

// ValidateWorkSchedule rejects a schedule draft with a malformed window,
// end not after start, or no enabled day. The calendar assumes it only ever
// sees schedules that passed here.
func ValidateWorkSchedule(ws *domain.WorkSchedule) error {
	start, err := time.Parse("15:04", ws.Start)
	if err != nil {
		return fmt.Errorf("start time must be HH:MM, got %q", ws.Start)
	}
	end, err := time.Parse("15:04", ws.End)
	if err != nil {
		return fmt.Errorf("end time must be HH:MM, got %q", ws.End)
	}
	if !end.After(start) {
		return fmt.Errorf("end time %s must be after start time %s", ws.End, ws.Start)
	}

	anyDay := false
	for _, enabled := range ws.Days {
		if enabled {
			anyDay = true
			break
		}
	}
	if !anyDay {
		return fmt.Errorf("at least one working day must be enabled")
	}

	return nil
}

// ValidateSnapMinutes accepts only the granularities the board's grid knows.
func ValidateSnapMinutes(minutes int32) error {
	if !slices.Contains(domain.SnapChoices, minutes) {
		choices := make([]string, len(domain.SnapChoices))
		for i, c := range domain.SnapChoices {
			choices[i] = strconv.Itoa(int(c))
		}
		return fmt.Errorf("snap granularity must be one of %s minutes", strings.Join(choices, ", "))
	}
	return nil
}
