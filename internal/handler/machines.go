package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filaops/scheduler/backend/internal/domain"
)

func (h *Handler) GetAllMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := h.repository.GetAllMachines()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", machines)
}

func (h *Handler) GetMachine(w http.ResponseWriter, r *http.Request) {
	machine := r.Context().Value(MachineCtx).(*domain.Machine)
	h.successResponse(w, r, "", machine)
}

func (h *Handler) CreateMachine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name" validate:"required"`
		Status string `json:"status" validate:"omitempty,oneof=available busy offline"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	machine := &domain.Machine{
		Name:   req.Name,
		Status: domain.MachineAvailable,
	}
	if req.Status != "" {
		machine.Status = domain.MachineStatus(req.Status)
	}

	if err := h.repository.CreateMachine(machine); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "machines_name_key":
				h.badRequest(w, r, errors.New("machine name already taken"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "machine created", machine)
}

func (h *Handler) UpdateMachine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   *string `json:"name"`
		Status *string `json:"status" validate:"omitempty,oneof=available busy offline"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	machine := r.Context().Value(MachineCtx).(*domain.Machine)

	if req.Name != nil {
		machine.Name = *req.Name
	}
	if req.Status != nil {
		machine.Status = domain.MachineStatus(*req.Status)
	}

	if err := h.repository.UpdateMachine(machine); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "machines_name_key":
				h.badRequest(w, r, errors.New("machine name already taken"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "machine was changed elsewhere, please try again")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "machine updated", machine)
}

func (h *Handler) DeleteMachine(w http.ResponseWriter, r *http.Request) {
	machine := r.Context().Value(MachineCtx).(*domain.Machine)

	if err := h.repository.DeleteMachine(machine.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "jobs_machine_id_fkey":
				h.errorResponse(w, r, "machine still has scheduled jobs")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "machine deleted", nil)
}
