package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/filaops/scheduler/backend/internal/domain"
)

func (h *Handler) GetAllJobs(w http.ResponseWriter, r *http.Request) {
	schedulableOnly := r.URL.Query().Get("schedulable") == "true"

	jobs, err := h.repository.GetAllJobs(schedulableOnly)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", jobs)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtx).(*domain.Job)
	h.successResponse(w, r, "", job)
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                  string   `json:"name" validate:"required"`
		OrderRef              string   `json:"orderRef"`
		Quantity              int32    `json:"quantity" validate:"required,min=1"`
		EstimatedHoursPerUnit *float64 `json:"estimatedHoursPerUnit" validate:"omitempty,gt=0"`
		Operations            []struct {
			Sequence     int32  `json:"sequence" validate:"min=1"`
			Name         string `json:"name" validate:"required"`
			SetupMinutes int32  `json:"setupMinutes" validate:"min=0"`
			RunMinutes   int32  `json:"runMinutes" validate:"min=0"`
		} `json:"operations" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job := &domain.Job{
		Name:                  req.Name,
		OrderRef:              req.OrderRef,
		Status:                domain.JobPending,
		Quantity:              req.Quantity,
		EstimatedHoursPerUnit: req.EstimatedHoursPerUnit,
		Operations:            make([]domain.JobOperation, 0, len(req.Operations)),
	}
	for _, op := range req.Operations {
		job.Operations = append(job.Operations, domain.JobOperation{
			Sequence:     op.Sequence,
			Name:         op.Name,
			SetupMinutes: op.SetupMinutes,
			RunMinutes:   op.RunMinutes,
		})
	}

	if err := h.repository.CreateJob(job); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "job created", job)
}

func (h *Handler) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	// "scheduled" is owned by the engine, it cannot be set by hand
	var req struct {
		Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
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
	job.Status = domain.JobStatus(req.Status)

	if err := h.repository.UpdateJobStatus(job); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "job was changed elsewhere, please try again")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "job status updated", job)
}
