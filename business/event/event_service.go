package event

import (
	"context"
	"fmt"
	"time"

	"profileHub/domain"
	"profileHub/pkg/logger"
)

type EventRepository interface {
	Save(ctx context.Context, event *domain.UserEvent) error
	SaveBatch(ctx context.Context, events []*domain.UserEvent) error
	FindByUser(ctx context.Context, userID uint) ([]domain.UserEvent, error)
	MarkProcessed(ctx context.Context, ids []uint) error
}

type EventService struct {
	eventRepo EventRepository
}

func NewEventService(eventRepo EventRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

// Record stores one interaction event, filling event time, processed flag and
// the per-type default weight when the caller left them empty.
func (s *EventService) Record(ctx context.Context, event *domain.UserEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}

	applyDefaults(event)

	if err := s.eventRepo.Save(ctx, event); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	logger.Debug("event recorded", "user_id", event.UserID, "event_type", event.EventType)
	return nil
}

func (s *EventService) RecordBatch(ctx context.Context, events []*domain.UserEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		if event.EventType == "" {
			return fmt.Errorf("event_type is required")
		}
		applyDefaults(event)
	}

	if err := s.eventRepo.SaveBatch(ctx, events); err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}

	logger.Debug("event batch recorded", "count", len(events))
	return nil
}

func (s *EventService) UserEvents(ctx context.Context, userID uint) ([]domain.UserEvent, error) {
	return s.eventRepo.FindByUser(ctx, userID)
}

// MarkProcessed flips the processed flag on the given events. Marking an
// already-processed event again is a no-op, so at-least-once batch delivery
// stays safe.
func (s *EventService) MarkProcessed(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.eventRepo.MarkProcessed(ctx, ids)
}

func applyDefaults(event *domain.UserEvent) {
	if event.EventTime.IsZero() {
		event.EventTime = time.Now()
	}
	if event.Weight == 0 {
		event.Weight = DefaultWeight(event.EventType)
	}
	event.Processed = false
}

// DefaultWeight returns the scoring weight used when an event comes in
// without one. Payment weighs the most.
func DefaultWeight(eventType string) float64 {
	switch eventType {
	case domain.EventPay:
		return 10.0
	case domain.EventPlaceOrder:
		return 8.0
	case domain.EventAddToCart:
		return 5.0
	case domain.EventCollect:
		return 4.0
	case domain.EventShare:
		return 3.0
	case domain.EventProductView:
		return 2.0
	case domain.EventClick:
		return 1.5
	case domain.EventPageView:
		return 1.0
	default:
		return 1.0
	}
}
