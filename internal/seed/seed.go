package seed

import (
	"context"
	"log/slog"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
	"github.com/filaops/scheduler/backend/internal/repository"
	"github.com/filaops/scheduler/backend/internal/scheduler"
)

func hoursPtr(h float64) *float64 { return &h }

var demoMachines = []*domain.Machine{
	{Name: "Prusa-01", Status: domain.MachineAvailable},
	{Name: "Prusa-02", Status: domain.MachineAvailable},
	{Name: "Bambu-01", Status: domain.MachineBusy},
	{Name: "Voron-01", Status: domain.MachineOffline},
}

var demoJobs = []*domain.Job{
	{
		Name:     "Spool Holder #001",
		OrderRef: "SO-00117",
		Status:   domain.JobPending,
		Quantity: 4,
		Operations: []domain.JobOperation{
			{Sequence: 1, Name: "print body", SetupMinutes: 20, RunMinutes: 480},
			{Sequence: 2, Name: "insert bearings", SetupMinutes: 10, RunMinutes: 60},
		},
	},
	{
		Name:                  "Enclosure Panel #002",
		OrderRef:              "SO-00117",
		Status:                domain.JobPending,
		Quantity:              8,
		EstimatedHoursPerUnit: hoursPtr(1.5),
	},
	{
		Name:     "Gear #003",
		OrderRef: "SO-00121",
		Status:   domain.JobPending,
		Quantity: 12,
		Operations: []domain.JobOperation{
			{Sequence: 1, Name: "print", SetupMinutes: 15, RunMinutes: 360},
		},
	},
	{
		// no routing and no estimate, the engine falls back to its default
		Name:     "Fan Duct #004",
		OrderRef: "SO-00125",
		Status:   domain.JobPending,
		Quantity: 2,
	},
}

// SeedDemoBoard inserts a small curated shop and schedules its jobs back to
// back on the first machine, giving a fresh install a board worth looking at.
func SeedDemoBoard(r *repository.Repository) {
	machines := make([]*domain.Machine, 0, len(demoMachines))
	for _, machine := range demoMachines {
		if err := r.CreateMachine(machine); err != nil {
			slog.Error("failed to insert machine", "name", machine.Name, "error", err)
			continue
		}
		machines = append(machines, machine)
	}
	if len(machines) == 0 {
		slog.Error("no machines inserted, not scheduling any jobs")
		return
	}

	calendar, err := scheduler.NewCalendar(domain.DefaultWorkSchedule(), domain.DefaultSnapMinutes)
	if err != nil {
		slog.Error("failed to build calendar", "error", err)
		return
	}
	engine := scheduler.NewEngine(calendar, r, nil)

	ctx := context.Background()
	desired := time.Now()
	for _, job := range demoJobs {
		if err := r.CreateJob(job); err != nil {
			slog.Error("failed to insert job", "name", job.Name, "error", err)
			continue
		}

		placement, err := engine.PlaceJob(ctx, scheduler.PlaceCommand{
			Job:          job,
			MachineID:    machines[0].ID,
			DesiredStart: desired,
		})
		if err != nil {
			slog.Error("failed to place job", "name", job.Name, "error", err)
			continue
		}

		slog.Info("placed job", "name", job.Name, "start", placement.Start, "end", placement.End)
		desired = placement.End
	}

	slog.Info("demo board seeded")
}
