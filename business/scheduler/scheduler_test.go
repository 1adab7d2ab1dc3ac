//go:build !integration

package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"profileHub/business/profile"
	"profileHub/domain"
)

type fakeLocker struct {
	available bool
	acquired  []string
	released  []string
}

func (f *fakeLocker) TryAcquire(_ context.Context, key string, _, _ time.Duration) (bool, error) {
	if !f.available {
		return false, nil
	}
	f.acquired = append(f.acquired, key)
	return true, nil
}

func (f *fakeLocker) Release(_ context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

type fakeEventRepo struct {
	events         []domain.UserEvent
	processedIDs   []uint
	deletedBefore  time.Time
	deleteReturned int64
}

func (f *fakeEventRepo) FindUnprocessed(_ context.Context) ([]domain.UserEvent, error) {
	var out []domain.UserEvent
	for _, e := range f.events {
		if !e.Processed {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) MarkProcessed(_ context.Context, ids []uint) error {
	f.processedIDs = append(f.processedIDs, ids...)
	return nil
}

func (f *fakeEventRepo) DeleteProcessedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.deletedBefore = cutoff
	return f.deleteReturned, nil
}

type fakeProfiles struct {
	profiles      map[uint]*domain.UserProfile
	loyalty       map[uint]float64
	interests     map[uint]map[string]float64
	recalculated  []uint
	failRescoreOn uint
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		profiles:  make(map[uint]*domain.UserProfile),
		loyalty:   make(map[uint]float64),
		interests: make(map[uint]map[string]float64),
	}
}

func (f *fakeProfiles) All(_ context.Context) ([]domain.UserProfile, error) {
	out := make([]domain.UserProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProfiles) RecalculateScore(_ context.Context, userID uint) (*domain.UserProfile, error) {
	if f.failRescoreOn == userID {
		return nil, fmt.Errorf("rescore boom")
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	f.recalculated = append(f.recalculated, userID)
	return p, nil
}

func (f *fakeProfiles) UpdateLoyalty(_ context.Context, userID uint, loyaltyScore float64) error {
	if _, ok := f.profiles[userID]; !ok {
		return profile.ErrNotFound
	}
	f.loyalty[userID] = loyaltyScore
	return nil
}

func (f *fakeProfiles) UpdateInterests(_ context.Context, userID uint, weights map[string]float64) error {
	if len(weights) == 0 {
		return nil
	}
	if _, ok := f.profiles[userID]; !ok {
		return profile.ErrNotFound
	}
	f.interests[userID] = weights
	return nil
}

type fakeAnalytics struct {
	rfm       map[uint]domain.RFMResult
	churn     map[uint]domain.ChurnRisk
	interests map[uint]map[string]float64
}

func (f *fakeAnalytics) InterestWeights(_ context.Context, userID uint) (map[string]float64, error) {
	return f.interests[userID], nil
}

func (f *fakeAnalytics) RFM(_ context.Context, userID uint) (domain.RFMResult, error) {
	return f.rfm[userID], nil
}

func (f *fakeAnalytics) ChurnRisk(_ context.Context, userID uint) (domain.ChurnRisk, error) {
	return f.churn[userID], nil
}

type fakeSegments struct {
	refreshed int
}

func (f *fakeSegments) RefreshDynamicSegments(_ context.Context) error {
	f.refreshed++
	return nil
}

type fakeTags struct {
	expired int
}

func (f *fakeTags) DeactivateExpired(_ context.Context) (int, error) {
	f.expired++
	return 2, nil
}

func newTestScheduler(locker *fakeLocker, events *fakeEventRepo, profiles *fakeProfiles) (*Scheduler, *fakeSegments, *fakeTags) {
	segments := &fakeSegments{}
	tags := &fakeTags{}
	analytics := &fakeAnalytics{
		rfm:       map[uint]domain.RFMResult{},
		churn:     map[uint]domain.ChurnRisk{},
		interests: map[uint]map[string]float64{},
	}
	s := NewScheduler(locker, events, profiles, analytics, segments, tags)
	return s, segments, tags
}

func TestRunLocked_SkipsWhenLockHeldElsewhere(t *testing.T) {
	locker := &fakeLocker{available: false}
	ran := false

	s, _, _ := newTestScheduler(locker, &fakeEventRepo{}, newFakeProfiles())
	s.runLocked("test-job", time.Minute, func(context.Context) error {
		ran = true
		return nil
	})

	if ran {
		t.Errorf("job must not run when the lock is held elsewhere")
	}
	if len(locker.released) != 0 {
		t.Errorf("nothing to release on a failed acquire")
	}
}

func TestRunLocked_ReleasesAfterRun(t *testing.T) {
	locker := &fakeLocker{available: true}
	ran := false

	s, _, _ := newTestScheduler(locker, &fakeEventRepo{}, newFakeProfiles())
	s.runLocked("test-job", time.Minute, func(context.Context) error {
		ran = true
		return nil
	})

	if !ran {
		t.Fatalf("job should have run")
	}
	if len(locker.released) != 1 || locker.released[0] != "test-job" {
		t.Errorf("lock must be released after the run, got %v", locker.released)
	}
}

func TestUpdateFromEvents(t *testing.T) {
	events := &fakeEventRepo{events: []domain.UserEvent{
		{ID: 1, UserID: 1, EventType: domain.EventPay},
		{ID: 2, UserID: 1, EventType: domain.EventProductView},
		{ID: 3, UserID: 2, EventType: domain.EventPay}, // no profile
	}}
	profiles := newFakeProfiles()
	profiles.profiles[1] = &domain.UserProfile{UserID: 1}

	analytics := &fakeAnalytics{
		rfm:       map[uint]domain.RFMResult{1: {Score: 12}},
		interests: map[uint]map[string]float64{1: {"tea": 1.0}},
	}
	s := NewScheduler(&fakeLocker{available: true}, events, profiles, analytics, &fakeSegments{}, &fakeTags{})

	if err := s.UpdateFromEvents(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// user 1's events processed, user 2's left for later
	if len(events.processedIDs) != 2 {
		t.Errorf("want events 1 and 2 processed, got %v", events.processedIDs)
	}
	for _, id := range events.processedIDs {
		if id == 3 {
			t.Errorf("user without profile must keep its events unprocessed")
		}
	}

	if profiles.loyalty[1] != 80 {
		t.Errorf("RFM 12 maps to loyalty 80, got %v", profiles.loyalty[1])
	}
	if profiles.interests[1]["tea"] != 1.0 {
		t.Errorf("interests not written: %v", profiles.interests[1])
	}
}

func TestUpdateFromEvents_NoEvents(t *testing.T) {
	events := &fakeEventRepo{}
	s, _, _ := newTestScheduler(&fakeLocker{available: true}, events, newFakeProfiles())

	if err := s.UpdateFromEvents(context.Background()); err != nil {
		t.Errorf("empty pool must be a no-op, got %v", err)
	}
}

func TestRecalculateAll_SurvivesSingleFailure(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles[1] = &domain.UserProfile{UserID: 1}
	profiles.profiles[2] = &domain.UserProfile{UserID: 2}
	profiles.profiles[3] = &domain.UserProfile{UserID: 3}
	profiles.failRescoreOn = 2

	s, segments, _ := newTestScheduler(&fakeLocker{available: true}, &fakeEventRepo{}, profiles)

	if err := s.RecalculateAll(context.Background()); err != nil {
		t.Fatalf("one bad profile must not abort the batch: %v", err)
	}
	if len(profiles.recalculated) != 2 {
		t.Errorf("want 2 successful rescores, got %v", profiles.recalculated)
	}
	if segments.refreshed != 1 {
		t.Errorf("dynamic segments must refresh after the batch")
	}
}

func TestCleanupOldEvents(t *testing.T) {
	events := &fakeEventRepo{deleteReturned: 42}
	s, _, _ := newTestScheduler(&fakeLocker{available: true}, events, newFakeProfiles())

	if err := s.CleanupOldEvents(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCutoff := time.Now().AddDate(0, 0, -eventRetentionDays)
	if diff := events.deletedBefore.Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff should be %d days back, got %v", eventRetentionDays, events.deletedBefore)
	}
}

func TestExpireTags(t *testing.T) {
	s, _, tags := newTestScheduler(&fakeLocker{available: true}, &fakeEventRepo{}, newFakeProfiles())

	if err := s.ExpireTags(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tags.expired != 1 {
		t.Errorf("tag expiry not invoked")
	}
}
