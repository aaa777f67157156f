package scheduler

import (
	"testing"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

func hoursPerUnit(h float64) *float64 { return &h }

func TestEstimateDuration(t *testing.T) {
	t.Run("routing operations win when per-unit share is an hour or more", func(t *testing.T) {
		job := &domain.Job{
			Quantity: 2,
			Operations: []domain.JobOperation{
				{Sequence: 1, Name: "setup", SetupMinutes: 60},
				{Sequence: 2, Name: "print", RunMinutes: 180},
			},
			EstimatedHoursPerUnit: hoursPerUnit(1),
		}
		if got, want := EstimateDuration(job), 4*time.Hour; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("short per-unit operations fall through to the flat estimate", func(t *testing.T) {
		job := &domain.Job{
			Quantity: 10,
			Operations: []domain.JobOperation{
				{Sequence: 1, Name: "print", SetupMinutes: 30, RunMinutes: 270},
			},
			EstimatedHoursPerUnit: hoursPerUnit(1.5),
		}
		// 300 total minutes over 10 units is only 30 per unit
		if got, want := EstimateDuration(job), 15*time.Hour; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("flat estimate times quantity", func(t *testing.T) {
		job := &domain.Job{Quantity: 4, EstimatedHoursPerUnit: hoursPerUnit(0.5)}
		if got, want := EstimateDuration(job), 2*time.Hour; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("defaults to two hours per unit", func(t *testing.T) {
		job := &domain.Job{Quantity: 3}
		if got, want := EstimateDuration(job), 6*time.Hour; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("never below the 30-minute floor", func(t *testing.T) {
		job := &domain.Job{Quantity: 1, EstimatedHoursPerUnit: hoursPerUnit(0.1)}
		if got := EstimateDuration(job); got != MinDuration {
			t.Errorf("got %v, want %v", got, MinDuration)
		}
	})

	t.Run("zero quantity treated as one", func(t *testing.T) {
		job := &domain.Job{}
		if got, want := EstimateDuration(job), 2*time.Hour; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}
