//go:build !integration

package event

import (
	"context"
	"testing"
	"time"

	"profileHub/domain"
)

type fakeEventRepo struct {
	saved     []*domain.UserEvent
	processed []uint
}

func (f *fakeEventRepo) Save(_ context.Context, e *domain.UserEvent) error {
	f.saved = append(f.saved, e)
	return nil
}

func (f *fakeEventRepo) SaveBatch(_ context.Context, events []*domain.UserEvent) error {
	f.saved = append(f.saved, events...)
	return nil
}

func (f *fakeEventRepo) FindByUser(_ context.Context, userID uint) ([]domain.UserEvent, error) {
	var out []domain.UserEvent
	for _, e := range f.saved {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) MarkProcessed(_ context.Context, ids []uint) error {
	f.processed = append(f.processed, ids...)
	return nil
}

func TestRecord_AppliesDefaults(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventService(repo)

	e := &domain.UserEvent{UserID: 1, EventType: domain.EventPay}
	if err := svc.Record(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.EventTime.IsZero() {
		t.Errorf("event time must default to now")
	}
	if e.Weight != 10 {
		t.Errorf("pay events default to weight 10, got %v", e.Weight)
	}
	if e.Processed {
		t.Errorf("new events must start unprocessed")
	}
}

func TestRecord_KeepsCallerValues(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventService(repo)

	when := time.Now().Add(-time.Hour)
	e := &domain.UserEvent{UserID: 1, EventType: domain.EventClick, EventTime: when, Weight: 7}
	if err := svc.Record(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !e.EventTime.Equal(when) {
		t.Errorf("explicit event time must survive")
	}
	if e.Weight != 7 {
		t.Errorf("explicit weight must survive, got %v", e.Weight)
	}
}

func TestRecord_RequiresEventType(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{})

	if err := svc.Record(context.Background(), &domain.UserEvent{UserID: 1}); err == nil {
		t.Errorf("want error for missing event type")
	}
}

func TestRecordBatch(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventService(repo)

	events := []*domain.UserEvent{
		{UserID: 1, EventType: domain.EventPageView},
		{UserID: 1, EventType: domain.EventAddToCart},
	}
	if err := svc.RecordBatch(context.Background(), events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.saved) != 2 {
		t.Fatalf("want 2 saved events, got %d", len(repo.saved))
	}
	if repo.saved[0].Weight != 1 || repo.saved[1].Weight != 5 {
		t.Errorf("default weights wrong: %v / %v", repo.saved[0].Weight, repo.saved[1].Weight)
	}
}

func TestRecordBatch_Empty(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventService(repo)

	if err := svc.RecordBatch(context.Background(), nil); err != nil {
		t.Errorf("empty batch must be a no-op, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Errorf("nothing should be saved")
	}
}

func TestMarkProcessed_EmptyIDs(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventService(repo)

	if err := svc.MarkProcessed(context.Background(), nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(repo.processed) != 0 {
		t.Errorf("empty id list must not hit the store")
	}
}

func TestDefaultWeight_Ordering(t *testing.T) {
	// purchase funnel events must outweigh browsing events
	if DefaultWeight(domain.EventPay) <= DefaultWeight(domain.EventPlaceOrder) {
		t.Errorf("pay must outweigh place_order")
	}
	if DefaultWeight(domain.EventPlaceOrder) <= DefaultWeight(domain.EventAddToCart) {
		t.Errorf("place_order must outweigh add_to_cart")
	}
	if DefaultWeight(domain.EventAddToCart) <= DefaultWeight(domain.EventProductView) {
		t.Errorf("add_to_cart must outweigh product_view")
	}
	if DefaultWeight("unknown_type") != 1 {
		t.Errorf("unknown types default to 1")
	}
}
