package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"profileHub/business/analytics"
	"profileHub/business/event"
	"profileHub/business/recommendation"
	"profileHub/business/scheduler"
	"profileHub/domain"
)

type EventRepository struct {
	DB *gorm.DB
}

var (
	_ event.EventRepository          = (*EventRepository)(nil)
	_ analytics.EventRepository      = (*EventRepository)(nil)
	_ recommendation.EventRepository = (*EventRepository)(nil)
	_ scheduler.EventRepository      = (*EventRepository)(nil)
)

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Save(ctx context.Context, e *domain.UserEvent) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) SaveBatch(ctx context.Context, events []*domain.UserEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&events).Error
}

func (r *EventRepository) FindByUser(ctx context.Context, userID uint) ([]domain.UserEvent, error) {
	var events []domain.UserEvent
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("event_time DESC").
		Find(&events).Error
	return events, err
}

// FindRecent returns a user's events since the cutoff; a zero cutoff returns
// everything.
func (r *EventRepository) FindRecent(ctx context.Context, userID uint, since time.Time) ([]domain.UserEvent, error) {
	var events []domain.UserEvent
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("event_time >= ?", since)
	}
	err := q.Order("event_time DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) FindByUserAndType(ctx context.Context, userID uint, eventType string) ([]domain.UserEvent, error) {
	var events []domain.UserEvent
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND event_type = ?", userID, eventType).
		Order("event_time DESC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) FindUnprocessed(ctx context.Context) ([]domain.UserEvent, error) {
	var events []domain.UserEvent
	err := r.DB.WithContext(ctx).
		Where("processed = ?", false).
		Order("event_time ASC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) MarkProcessed(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Model(&domain.UserEvent{}).
		Where("id IN ?", ids).
		Update("processed", true).Error
}

func (r *EventRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("processed = ? AND event_time < ?", true, cutoff).
		Delete(&domain.UserEvent{})
	return res.RowsAffected, res.Error
}
