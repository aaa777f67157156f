package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/filaops/scheduler/backend/internal/domain"
	"github.com/filaops/scheduler/backend/internal/utils"
)

const (
	workScheduleKey = "scheduler:work_schedule"
	snapMinutesKey  = "scheduler:snap_minutes"
)

// loadSchedulerSettings reads the calendar settings from redis. Missing or
// undecodable values fall back to the defaults so a corrupted setting can
// never take the scheduling endpoints down.
func (h *Handler) loadSchedulerSettings(ctx context.Context) (domain.WorkSchedule, int32) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(h.config.Redis.OperationTTL)*time.Second)
	defer cancel()

	ws := domain.DefaultWorkSchedule()
	raw, err := h.redisClient.Get(ctx, workScheduleKey).Result()
	switch {
	case err == nil:
		var stored domain.WorkSchedule
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			slog.Warn("stored work schedule is undecodable, using defaults", "error", err)
		} else if err := utils.ValidateWorkSchedule(&stored); err != nil {
			slog.Warn("stored work schedule is invalid, using defaults", "error", err)
		} else {
			ws = stored
		}
	case errors.Is(err, redis.Nil):
		// nothing saved yet
	default:
		slog.Warn("failed to read work schedule, using defaults", "error", err)
	}

	snap := domain.DefaultSnapMinutes
	rawSnap, err := h.redisClient.Get(ctx, snapMinutesKey).Result()
	switch {
	case err == nil:
		parsed, parseErr := strconv.ParseInt(rawSnap, 10, 32)
		if parseErr != nil || utils.ValidateSnapMinutes(int32(parsed)) != nil {
			slog.Warn("stored snap granularity is invalid, using default", "value", rawSnap)
		} else {
			snap = int32(parsed)
		}
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("failed to read snap granularity, using default", "error", err)
	}

	return ws, snap
}

func (h *Handler) GetWorkSchedule(w http.ResponseWriter, r *http.Request) {
	ws, _ := h.loadSchedulerSettings(r.Context())
	h.successResponse(w, r, "", ws)
}

func (h *Handler) UpdateWorkSchedule(w http.ResponseWriter, r *http.Request) {
	var req domain.WorkSchedule

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateWorkSchedule(&req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	encoded, err := json.Marshal(req)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTTL)*time.Second)
	defer cancel()

	if err := h.redisClient.Set(ctx, workScheduleKey, encoded, 0).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "work schedule updated", req)
}

func (h *Handler) GetSnapMinutes(w http.ResponseWriter, r *http.Request) {
	_, snap := h.loadSchedulerSettings(r.Context())
	h.successResponse(w, r, "", map[string]int32{"snapMinutes": snap})
}

func (h *Handler) UpdateSnapMinutes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SnapMinutes int32 `json:"snapMinutes" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateSnapMinutes(req.SnapMinutes); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTTL)*time.Second)
	defer cancel()

	if err := h.redisClient.Set(ctx, snapMinutesKey, strconv.FormatInt(int64(req.SnapMinutes), 10), 0).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// existing placements keep their old grid, only new moves snap to this one
	h.successResponse(w, r, "snap granularity updated", map[string]int32{"snapMinutes": req.SnapMinutes})
}
