package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"profileHub/domain"
	"profileHub/pkg/logger"
)

// ErrNotFound is returned when a user has no profile yet. Repositories map
// their own not-found errors onto this sentinel.
var ErrNotFound = errors.New("profile not found")

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*domain.UserProfile, error)
	Save(ctx context.Context, profile *domain.UserProfile) error
	FindAll(ctx context.Context) ([]domain.UserProfile, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}

// ProfileCache is a read-through cache; Get returns (nil, nil) on a miss.
type ProfileCache interface {
	Get(ctx context.Context, userID uint) (*domain.UserProfile, error)
	Set(ctx context.Context, profile *domain.UserProfile) error
	Invalidate(ctx context.Context, userID uint) error
}

// ProfileInput is the write shape accepted from callers. ProfileScore is
// deliberately absent: the engine always recomputes it.
type ProfileInput struct {
	UserID          uint                    `json:"user_id" validate:"required"`
	Username        string                  `json:"username"`
	DigitalBehavior *domain.DigitalBehavior `json:"digital_behavior"`
	CoreNeeds       *domain.CoreNeeds       `json:"core_needs"`
	ValueAssessment *domain.ValueAssessment `json:"value_assessment"`
	Stickiness      *domain.Stickiness      `json:"stickiness"`
}

type ProfileService struct {
	profileRepo ProfileRepository
	cache       ProfileCache
	engine      *ScoringEngine
	group       singleflight.Group
}

func NewProfileService(profileRepo ProfileRepository, cache ProfileCache, engine *ScoringEngine) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		cache:       cache,
		engine:      engine,
	}
}

// Get loads one profile. Concurrent reads for the same user collapse into a
// single cache/store lookup so a hot key cannot stampede the store.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	v, err, _ := s.group.Do(strconv.FormatUint(uint64(userID), 10), func() (any, error) {
		if s.cache != nil {
			if cached, err := s.cache.Get(ctx, userID); err == nil && cached != nil {
				return cached, nil
			}
		}

		p, err := s.profileRepo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, p); err != nil {
				logger.Warn("failed to cache profile", "user_id", userID, "error", err)
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.UserProfile), nil
}

// CreateOrUpdate writes the caller-supplied profile fields, recomputes the
// composite score and persists. One profile per user: first write creates,
// later writes update in place.
func (s *ProfileService) CreateOrUpdate(ctx context.Context, input ProfileInput) (*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	p, err := s.profileRepo.FindByUserID(ctx, input.UserID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		p = &domain.UserProfile{UserID: input.UserID}
	}

	p.Username = input.Username
	if input.DigitalBehavior != nil {
		p.DigitalBehavior = input.DigitalBehavior
	}
	if input.CoreNeeds != nil {
		p.CoreNeeds = input.CoreNeeds
	}
	if input.ValueAssessment != nil {
		p.ValueAssessment = input.ValueAssessment
	}
	if input.Stickiness != nil {
		p.Stickiness = input.Stickiness
	}

	p.ProfileScore = s.engine.ProfileScore(p)
	p.UpdatedAt = time.Now()

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	s.refreshCache(ctx, p)

	logger.Info("profile saved", "user_id", p.UserID, "score", p.ProfileScore)
	return p, nil
}

// Initialize creates the zero-score profile for a new user. Idempotent: an
// existing profile is returned untouched.
func (s *ProfileService) Initialize(ctx context.Context, userID uint, username string) (*domain.UserProfile, error) {
	existing, err := s.profileRepo.FindByUserID(ctx, userID)
	if err == nil {
		logger.Debug("profile already initialized", "user_id", userID)
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p := &domain.UserProfile{
		UserID:   userID,
		Username: username,
	}
	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to initialize profile: %w", err)
	}
	s.refreshCache(ctx, p)

	logger.Info("profile initialized", "user_id", userID)
	return p, nil
}

// RecalculateScore reloads the profile and rescores it from current fields.
func (s *ProfileService) RecalculateScore(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	p, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.ProfileScore = s.engine.ProfileScore(p)
	p.UpdatedAt = time.Now()

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	s.refreshCache(ctx, p)

	return p, nil
}

// UpdateLoyalty writes the stickiness loyalty score (the hourly batch derives
// it from RFM) without touching the other sub-objects.
func (s *ProfileService) UpdateLoyalty(ctx context.Context, userID uint, loyaltyScore float64) error {
	p, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if p.Stickiness == nil {
		p.Stickiness = &domain.Stickiness{}
	}
	p.Stickiness.LoyaltyScore = loyaltyScore
	p.ProfileScore = s.engine.ProfileScore(p)
	p.UpdatedAt = time.Now()

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	s.refreshCache(ctx, p)

	return nil
}

// UpdateInterests replaces the preference weights (the hourly batch derives
// them from recent view and search events) and rescores.
func (s *ProfileService) UpdateInterests(ctx context.Context, userID uint, weights map[string]float64) error {
	if len(weights) == 0 {
		return nil
	}

	p, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if p.ValueAssessment == nil {
		p.ValueAssessment = &domain.ValueAssessment{}
	}
	p.ValueAssessment.PreferenceWeights = weights
	p.ProfileScore = s.engine.ProfileScore(p)
	p.UpdatedAt = time.Now()

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	s.refreshCache(ctx, p)

	return nil
}

func (s *ProfileService) Delete(ctx context.Context, userID uint) error {
	if err := s.profileRepo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			logger.Warn("failed to invalidate profile cache", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (s *ProfileService) All(ctx context.Context) ([]domain.UserProfile, error) {
	return s.profileRepo.FindAll(ctx)
}

// Insights bundles the derived views on one profile.
type Insights struct {
	UserType string                   `json:"user_type"`
	Tags     []string                 `json:"tags"`
	Strategy domain.MarketingStrategy `json:"strategy"`
}

func (s *ProfileService) Analyze(ctx context.Context, userID uint) (*Insights, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Insights{
		UserType: s.engine.UserType(p.ProfileScore),
		Tags:     s.engine.GenerateTags(p),
		Strategy: s.engine.RecommendStrategy(p),
	}, nil
}

func (s *ProfileService) refreshCache(ctx context.Context, p *domain.UserProfile) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, p); err != nil {
		logger.Warn("failed to cache profile", "user_id", p.UserID, "error", err)
	}
}
