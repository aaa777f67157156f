package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
	"github.com/filaops/scheduler/backend/internal/scheduler"
)

// schedulingEngine builds an engine against the settings currently in redis.
// Settings are cheap to read and may change between requests, so each request
// gets a fresh calendar instead of a cached one.
func (h *Handler) schedulingEngine(r *http.Request) (*scheduler.Engine, error) {
	ws, snap := h.loadSchedulerSettings(r.Context())
	calendar, err := scheduler.NewCalendar(ws, snap)
	if err != nil {
		return nil, err
	}
	return scheduler.NewEngine(calendar, h.repository, nil), nil
}

type placementResponse struct {
	Job       *domain.Job      `json:"job"`
	Placement domain.Placement `json:"placement"`
	Moved     int              `json:"moved"`
}

func (h *Handler) estimatedMinutes(job *domain.Job) int64 {
	duration := job.Duration()
	if duration <= 0 {
		duration = scheduler.EstimateDuration(job)
	}
	return int64(duration / time.Minute)
}

func (h *Handler) handlePlacementError(w http.ResponseWriter, r *http.Request, job *domain.Job, err error) {
	switch {
	case errors.Is(err, domain.ErrSchedulingImpossible):
		h.errorResponse(w, r, "job does not fit inside any working window")
		h.publishEvent(domain.EventSchedulingImpossible, domain.SchedulingImpossibleEventData{
			JobName:         job.Name,
			DurationMinutes: h.estimatedMinutes(job),
		})
	case errors.Is(err, scheduler.ErrJobUnscheduled):
		h.errorResponse(w, r, "job has no current placement")
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "job was changed elsewhere, please try again")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) autoArrange(r *http.Request, engine *scheduler.Engine, machineID int64, job *domain.Job, p domain.Placement) int {
	moved := engine.AutoArrange(r.Context(), machineID, job.ID, p)
	if moved > 0 {
		h.publishEvent(domain.EventAutoArrange, domain.AutoArrangeEventData{
			MachineID:  machineID,
			JobName:    job.Name,
			MovedCount: moved,
		})
	}
	return moved
}

func (h *Handler) PlaceJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MachineID    int64     `json:"machineID" validate:"required"`
		DesiredStart time.Time `json:"desiredStart" validate:"required"`
		AutoArrange  bool      `json:"autoArrange"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job := r.Context().Value(JobCtx).(*domain.Job)
	if !job.Status.Schedulable() {
		h.errorResponse(w, r, "completed or cancelled jobs cannot be scheduled")
		return
	}

	if _, err := h.repository.GetMachineByID(req.MachineID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "machine not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	engine, err := h.schedulingEngine(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	placement, err := engine.PlaceJob(r.Context(), scheduler.PlaceCommand{
		Job:          job,
		MachineID:    req.MachineID,
		DesiredStart: req.DesiredStart,
	})
	if err != nil {
		h.handlePlacementError(w, r, job, err)
		return
	}

	resp := placementResponse{Job: job, Placement: placement}
	if req.AutoArrange {
		resp.Moved = h.autoArrange(r, engine, req.MachineID, job, placement)
	}

	h.successResponse(w, r, "job placed", resp)
}

func (h *Handler) ResizeJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start       time.Time `json:"start" validate:"required"`
		End         time.Time `json:"end" validate:"required,gtfield=Start"`
		AutoArrange bool      `json:"autoArrange"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job := r.Context().Value(JobCtx).(*domain.Job)
	if !job.Status.Schedulable() {
		h.errorResponse(w, r, "completed or cancelled jobs cannot be scheduled")
		return
	}

	engine, err := h.schedulingEngine(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	placement, err := engine.ResizeJob(r.Context(), scheduler.ResizeCommand{
		Job:   job,
		Start: req.Start,
		End:   req.End,
	})
	if err != nil {
		h.handlePlacementError(w, r, job, err)
		return
	}

	resp := placementResponse{Job: job, Placement: placement}
	if req.AutoArrange {
		resp.Moved = h.autoArrange(r, engine, *job.MachineID, job, placement)
	}

	h.successResponse(w, r, "job resized", resp)
}

func (h *Handler) NudgeJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction   string `json:"direction" validate:"required,oneof=left right"`
		Coarse      bool   `json:"coarse"`
		Edge        string `json:"edge" validate:"omitempty,oneof=start end"`
		AutoArrange bool   `json:"autoArrange"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job := r.Context().Value(JobCtx).(*domain.Job)
	if !job.Status.Schedulable() {
		h.errorResponse(w, r, "completed or cancelled jobs cannot be scheduled")
		return
	}

	engine, err := h.schedulingEngine(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	placement, err := engine.NudgeJob(r.Context(), scheduler.NudgeCommand{
		Job:       job,
		Direction: scheduler.NudgeDirection(req.Direction),
		Coarse:    req.Coarse,
		Edge:      scheduler.NudgeEdge(req.Edge),
	})
	if err != nil {
		h.handlePlacementError(w, r, job, err)
		return
	}

	resp := placementResponse{Job: job, Placement: placement}
	if req.AutoArrange {
		resp.Moved = h.autoArrange(r, engine, *job.MachineID, job, placement)
	}

	h.successResponse(w, r, "job nudged", resp)
}
