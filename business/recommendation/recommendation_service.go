package recommendation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"profileHub/business/profile"
	"profileHub/domain"
	"profileHub/pkg/logger"
)

// Strategy labels and the fixed hybrid blend weights.
const (
	StrategyCollaborative = "collaborative"
	StrategyContent       = "content-based"
	StrategyTrending      = "trending"

	hybridWeightCollaborative = 0.4
	hybridWeightContent       = 0.4
	hybridWeightTrending      = 0.2

	similarityThreshold = 0.5
	maxSimilarUsers     = 10
	trendingWindowDays  = 7
	recencyHalfLifeDays = 30.0
)

type EventRepository interface {
	FindRecent(ctx context.Context, userID uint, since time.Time) ([]domain.UserEvent, error)
	FindByUserAndType(ctx context.Context, userID uint, eventType string) ([]domain.UserEvent, error)
	FindUnprocessed(ctx context.Context) ([]domain.UserEvent, error)
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*domain.UserProfile, error)
	FindAll(ctx context.Context) ([]domain.UserProfile, error)
}

type InterestAnalyzer interface {
	InterestWeights(ctx context.Context, userID uint) (map[string]float64, error)
}

type RecommendationService struct {
	profileRepo ProfileRepository
	eventRepo   EventRepository
	analytics   InterestAnalyzer
}

func NewRecommendationService(profileRepo ProfileRepository, eventRepo EventRepository, analytics InterestAnalyzer) *RecommendationService {
	return &RecommendationService{
		profileRepo: profileRepo,
		eventRepo:   eventRepo,
		analytics:   analytics,
	}
}

// accumulator sums per-item scores while remembering first-insertion order,
// so equal scores keep a stable rank.
type accumulator struct {
	scores map[string]float64
	order  []string
}

func newAccumulator() *accumulator {
	return &accumulator{scores: make(map[string]float64)}
}

func (a *accumulator) add(itemID string, score float64) {
	if _, ok := a.scores[itemID]; !ok {
		a.order = append(a.order, itemID)
	}
	a.scores[itemID] += score
}

func (a *accumulator) ranked(limit int, strategy, reason string) []domain.RecommendationResult {
	results := make([]domain.RecommendationResult, 0, len(a.order))
	for _, itemID := range a.order {
		results = append(results, domain.RecommendationResult{
			ItemID:   itemID,
			Score:    a.scores[itemID],
			Strategy: strategy,
			Reason:   reason,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// CollaborativeFiltering recommends items bought by profile-similar users.
// Similarity is 1 - |scoreA - scoreB| / 100; candidates need > 0.5 and only
// the ten closest contribute. A user without a profile gets an empty list.
func (s *RecommendationService) CollaborativeFiltering(ctx context.Context, userID uint, limit int) ([]domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	target, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return []domain.RecommendationResult{}, nil
		}
		return nil, err
	}

	allProfiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	type similarUser struct {
		userID     uint
		similarity float64
	}

	similar := make([]similarUser, 0)
	for i := range allProfiles {
		p := &allProfiles[i]
		if p.UserID == userID {
			continue
		}
		sim := similarity(target.ProfileScore, p.ProfileScore)
		if sim > similarityThreshold {
			similar = append(similar, similarUser{userID: p.UserID, similarity: sim})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].similarity > similar[j].similarity
	})
	if len(similar) > maxSimilarUsers {
		similar = similar[:maxSimilarUsers]
	}

	logger.Debug("collaborative filtering", "user_id", userID, "similar_users", len(similar))

	purchased, err := s.purchasedItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator()
	for _, su := range similar {
		purchases, err := s.eventRepo.FindByUserAndType(ctx, su.userID, domain.EventPay)
		if err != nil {
			return nil, fmt.Errorf("load purchases of user %d: %w", su.userID, err)
		}

		for _, e := range purchases {
			itemID := e.DataString("productId")
			if itemID == "" {
				continue
			}
			if _, owned := purchased[itemID]; owned {
				continue
			}
			acc.add(itemID, su.similarity*e.Weight)
		}
	}

	results := acc.ranked(limit, StrategyCollaborative, "liked by similar users")
	RecommendationsServedTotal.WithLabelValues(StrategyCollaborative).Inc()
	return results, nil
}

// ContentBased scores the user's recently viewed, not yet purchased items by
// interest weight times a 30-day exponential recency decay.
func (s *RecommendationService) ContentBased(ctx context.Context, userID uint, limit int) ([]domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	interests, err := s.analytics.InterestWeights(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(interests) == 0 {
		return []domain.RecommendationResult{}, nil
	}

	since := time.Now().AddDate(0, 0, -30)
	events, err := s.eventRepo.FindRecent(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load recent events: %w", err)
	}

	purchased, err := s.purchasedItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator()
	for _, e := range events {
		if e.EventType != domain.EventProductView {
			continue
		}
		itemID := e.DataString("productId")
		category := e.DataString("category")
		if itemID == "" || category == "" {
			continue
		}
		if _, owned := purchased[itemID]; owned {
			continue
		}

		score := interests[category] * recencyWeight(e.EventTime) * 100
		acc.add(itemID, score)
	}

	results := acc.ranked(limit, StrategyContent, "matched to your interests")
	RecommendationsServedTotal.WithLabelValues(StrategyContent).Inc()
	return results, nil
}

// Trending ranks items by payment count over the last 7 days across all
// users, drawn from the unprocessed event pool.
func (s *RecommendationService) Trending(ctx context.Context, limit int) ([]domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	events, err := s.eventRepo.FindUnprocessed(ctx)
	if err != nil {
		return nil, fmt.Errorf("load unprocessed events: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -trendingWindowDays)

	acc := newAccumulator()
	for _, e := range events {
		if e.EventType != domain.EventPay || !e.EventTime.After(cutoff) {
			continue
		}
		if itemID := e.DataString("productId"); itemID != "" {
			acc.add(itemID, 1)
		}
	}

	results := acc.ranked(limit, StrategyTrending, "hot in the last 7 days")
	RecommendationsServedTotal.WithLabelValues(StrategyTrending).Inc()
	return results, nil
}

// Hybrid blends the three strategies: collaborative and content-based are
// oversampled at twice the limit and weighted 0.4 each, trending weighs 0.2.
// Results for the same item are merge-summed; reasons are concatenated.
func (s *RecommendationService) Hybrid(ctx context.Context, userID uint, limit int) ([]domain.RecommendationResult, error) {
	cf, err := s.CollaborativeFiltering(ctx, userID, limit*2)
	if err != nil {
		return nil, err
	}
	cb, err := s.ContentBased(ctx, userID, limit*2)
	if err != nil {
		return nil, err
	}
	trending, err := s.Trending(ctx, limit)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*domain.RecommendationResult)
	order := make([]string, 0, len(cf)+len(cb)+len(trending))

	blend := func(results []domain.RecommendationResult, weight float64) {
		for _, r := range results {
			r.Score *= weight
			if existing, ok := merged[r.ItemID]; ok {
				existing.Score += r.Score
				existing.Reason = existing.Reason + " + " + r.Strategy
				continue
			}
			rc := r
			merged[r.ItemID] = &rc
			order = append(order, r.ItemID)
		}
	}

	blend(cf, hybridWeightCollaborative)
	blend(cb, hybridWeightContent)
	blend(trending, hybridWeightTrending)

	results := make([]domain.RecommendationResult, 0, len(order))
	for _, itemID := range order {
		results = append(results, *merged[itemID])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	RecommendationsServedTotal.WithLabelValues("hybrid").Inc()
	return results, nil
}

// purchasedItems loads the set of item ids the user already paid for.
func (s *RecommendationService) purchasedItems(ctx context.Context, userID uint) (map[string]struct{}, error) {
	purchases, err := s.eventRepo.FindByUserAndType(ctx, userID, domain.EventPay)
	if err != nil {
		return nil, fmt.Errorf("load own purchases: %w", err)
	}

	owned := make(map[string]struct{}, len(purchases))
	for _, e := range purchases {
		if itemID := e.DataString("productId"); itemID != "" {
			owned[itemID] = struct{}{}
		}
	}
	return owned, nil
}

// similarity compares two profile scores on a 0..1 scale, clamped at 0.
func similarity(scoreA, scoreB float64) float64 {
	sim := 1.0 - math.Abs(scoreA-scoreB)/100.0
	if sim < 0 {
		return 0
	}
	return sim
}

// recencyWeight decays by e^(-daysAgo/30): yesterday counts almost fully, a
// month ago roughly a third.
func recencyWeight(eventTime time.Time) float64 {
	daysAgo := time.Since(eventTime).Hours() / 24
	if daysAgo < 0 {
		daysAgo = 0
	}
	return math.Exp(-daysAgo / recencyHalfLifeDays)
}
