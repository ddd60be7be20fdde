package event

import (
	"context"
	"fmt"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
	"github.com/jwalitptl/hivcare-api/pkg/logger"
)

// Emitter records domain events for asynchronous delivery.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// EventService writes events to the transactional outbox; the worker
// process publishes them.
type EventService struct {
	outboxRepo repository.OutboxRepository
	log        *logger.Logger
}

func NewEventService(outboxRepo repository.OutboxRepository, log *logger.Logger) *EventService {
	return &EventService{
		outboxRepo: outboxRepo,
		log:        log,
	}
}

func (s *EventService) Emit(ctx context.Context, eventType string, payload interface{}) error {
	event, err := model.NewOutboxEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	s.log.Debug("event queued", "event_id", event.ID.String(), "event_type", eventType)
	return nil
}
