//go:build !integration

package recommendation

import (
	"context"
	"math"
	"testing"
	"time"

	"gorm.io/datatypes"

	"profileHub/business/profile"
	"profileHub/domain"
)

type fakeEventRepo struct {
	events []domain.UserEvent
}

func (f *fakeEventRepo) FindRecent(_ context.Context, userID uint, since time.Time) ([]domain.UserEvent, error) {
	var out []domain.UserEvent
	for _, e := range f.events {
		if e.UserID != userID {
			continue
		}
		if !since.IsZero() && e.EventTime.Before(since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) FindByUserAndType(_ context.Context, userID uint, eventType string) ([]domain.UserEvent, error) {
	var out []domain.UserEvent
	for _, e := range f.events {
		if e.UserID == userID && e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out, nil
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

type fakeProfileRepo struct {
	profiles map[uint]*domain.UserProfile
}

func (f *fakeProfileRepo) FindByUserID(_ context.Context, userID uint) (*domain.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) FindAll(_ context.Context) ([]domain.UserProfile, error) {
	out := make([]domain.UserProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, nil
}

type fakeAnalytics struct {
	interests map[string]float64
}

func (f *fakeAnalytics) InterestWeights(_ context.Context, _ uint) (map[string]float64, error) {
	return f.interests, nil
}

func payEvent(userID uint, productID string, daysAgo int, weight float64) domain.UserEvent {
	return domain.UserEvent{
		UserID:    userID,
		EventType: domain.EventPay,
		EventTime: time.Now().AddDate(0, 0, -daysAgo),
		EventData: datatypes.JSONMap{"productId": productID},
		Weight:    weight,
	}
}

func viewEvent(userID uint, productID, category string, daysAgo int) domain.UserEvent {
	return domain.UserEvent{
		UserID:    userID,
		EventType: domain.EventProductView,
		EventTime: time.Now().AddDate(0, 0, -daysAgo),
		EventData: datatypes.JSONMap{"productId": productID, "category": category},
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity(80, 80); got != 1.0 {
		t.Errorf("identical scores must be fully similar, got %v", got)
	}
	if got := similarity(80, 30); got != 0.5 {
		t.Errorf("50-point gap should be 0.5, got %v", got)
	}
	if got := similarity(100, 0); got != 0 {
		t.Errorf("100-point gap clamps to 0, got %v", got)
	}
}

func TestCollaborativeFiltering_NoProfile(t *testing.T) {
	svc := NewRecommendationService(
		&fakeProfileRepo{profiles: map[uint]*domain.UserProfile{}},
		&fakeEventRepo{},
		&fakeAnalytics{},
	)

	results, err := svc.CollaborativeFiltering(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("missing profile must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("want empty list without a profile, got %v", results)
	}
}

func TestCollaborativeFiltering(t *testing.T) {
	profiles := &fakeProfileRepo{profiles: map[uint]*domain.UserProfile{
		1: {UserID: 1, ProfileScore: 80},
		2: {UserID: 2, ProfileScore: 75}, // similarity 0.95
		3: {UserID: 3, ProfileScore: 20}, // similarity 0.4, below threshold
	}}
	events := &fakeEventRepo{events: []domain.UserEvent{
		payEvent(1, "p-owned", 5, 10),
		payEvent(2, "p-new", 3, 10),
		payEvent(2, "p-owned", 2, 10),
		payEvent(3, "p-far", 1, 10),
	}}
	svc := NewRecommendationService(profiles, events, &fakeAnalytics{})

	results, err := svc.CollaborativeFiltering(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("want only p-new, got %v", results)
	}
	r := results[0]
	if r.ItemID != "p-new" {
		t.Errorf("want p-new, got %s", r.ItemID)
	}
	if math.Abs(r.Score-0.95*10) > 1e-9 {
		t.Errorf("score should be similarity*weight = 9.5, got %v", r.Score)
	}
	if r.Strategy != StrategyCollaborative || r.Reason != "liked by similar users" {
		t.Errorf("wrong labeling: %+v", r)
	}
}

func TestContentBased_SkipsPurchased(t *testing.T) {
	profiles := &fakeProfileRepo{profiles: map[uint]*domain.UserProfile{
		1: {UserID: 1, ProfileScore: 50},
	}}
	events := &fakeEventRepo{events: []domain.UserEvent{
		viewEvent(1, "p-viewed", "tea", 1),
		viewEvent(1, "p-bought", "tea", 1),
		payEvent(1, "p-bought", 0, 10),
	}}
	svc := NewRecommendationService(profiles, events, &fakeAnalytics{
		interests: map[string]float64{"tea": 1.0},
	})

	results, err := svc.ContentBased(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 || results[0].ItemID != "p-viewed" {
		t.Fatalf("purchased items must be excluded, got %v", results)
	}
	// interest 1.0 * e^(-1/30) * 100
	want := math.Exp(-1.0/30.0) * 100
	if math.Abs(results[0].Score-want) > 1.0 {
		t.Errorf("want recency-decayed score ~%v, got %v", want, results[0].Score)
	}
}

func TestContentBased_NoInterests(t *testing.T) {
	svc := NewRecommendationService(
		&fakeProfileRepo{profiles: map[uint]*domain.UserProfile{}},
		&fakeEventRepo{},
		&fakeAnalytics{interests: map[string]float64{}},
	)

	results, err := svc.ContentBased(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("no interests means no recommendations, got %v", results)
	}
}

func TestTrending_SevenDayWindow(t *testing.T) {
	events := &fakeEventRepo{events: []domain.UserEvent{
		payEvent(10, "p-hot", 1, 10),
		payEvent(11, "p-hot", 2, 10),
		payEvent(12, "p-hot", 3, 10),
		payEvent(13, "p-warm", 4, 10),
		payEvent(14, "p-stale", 10, 10), // outside the window
	}}
	svc := NewRecommendationService(&fakeProfileRepo{}, events, &fakeAnalytics{})

	results, err := svc.Trending(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("want p-hot and p-warm only, got %v", results)
	}
	if results[0].ItemID != "p-hot" || results[0].Score != 3 {
		t.Errorf("want p-hot with 3 payments first, got %+v", results[0])
	}
	if results[1].ItemID != "p-warm" || results[1].Score != 1 {
		t.Errorf("want p-warm with 1 payment, got %+v", results[1])
	}
}

func TestTrending_RespectsLimit(t *testing.T) {
	events := &fakeEventRepo{}
	for i := 0; i < 20; i++ {
		events.events = append(events.events, payEvent(uint(i), string(rune('a'+i)), 1, 10))
	}
	svc := NewRecommendationService(&fakeProfileRepo{}, events, &fakeAnalytics{})

	results, err := svc.Trending(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("want 5 results, got %d", len(results))
	}
}

func TestHybrid_MergesAndWeights(t *testing.T) {
	profiles := &fakeProfileRepo{profiles: map[uint]*domain.UserProfile{
		1: {UserID: 1, ProfileScore: 80},
		2: {UserID: 2, ProfileScore: 80}, // similarity 1.0
	}}
	events := &fakeEventRepo{events: []domain.UserEvent{
		payEvent(2, "p-both", 1, 10), // CF score 10, also trending
		viewEvent(1, "p-view", "tea", 0),
	}}
	svc := NewRecommendationService(profiles, events, &fakeAnalytics{
		interests: map[string]float64{"tea": 1.0},
	})

	results, err := svc.Hybrid(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := make(map[string]domain.RecommendationResult)
	for _, r := range results {
		byID[r.ItemID] = r
	}

	both, ok := byID["p-both"]
	if !ok {
		t.Fatalf("p-both missing from %v", results)
	}
	// CF 10*0.4 + trending 1*0.2
	if math.Abs(both.Score-(10*0.4+1*0.2)) > 1e-9 {
		t.Errorf("want blended score 4.2, got %v", both.Score)
	}
	if both.Reason != "liked by similar users + trending" {
		t.Errorf("reasons should concatenate across strategies, got %q", both.Reason)
	}

	view, ok := byID["p-view"]
	if !ok {
		t.Fatalf("p-view missing from %v", results)
	}
	// content score ~100 * 0.4
	if view.Score < 35 || view.Score > 40 {
		t.Errorf("want content-weighted score near 40, got %v", view.Score)
	}

	// highest blended score first
	if results[0].ItemID != "p-view" {
		t.Errorf("want p-view ranked first, got %v", results)
	}
}
