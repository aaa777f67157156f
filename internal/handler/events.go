package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/filaops/scheduler/backend/internal/domain"
)

const (
	mailQueue  = "email_queue"
	eventQueue = "schedule_events"
)

func (h *Handler) publish(queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.queueChannel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// publishEvent is fire and forget: a lost notification must never fail the
// scheduling request that produced it.
func (h *Handler) publishEvent(eventType string, data any) {
	event := domain.ScheduleEvent{
		Type: eventType,
		At:   time.Now(),
		Data: data,
	}

	if err := h.publish(eventQueue, event); err != nil {
		slog.Warn("failed to publish schedule event", "type", eventType, "error", err)
	}
}
