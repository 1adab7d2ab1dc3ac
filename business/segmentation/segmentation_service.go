package segmentation

import (
	"context"
	"fmt"
	"time"

	"profileHub/domain"
	"profileHub/pkg/logger"
)

type SegmentRepository interface {
	Save(ctx context.Context, segment *domain.UserSegment) error
	FindAll(ctx context.Context) ([]domain.UserSegment, error)
	FindByID(ctx context.Context, id uint) (*domain.UserSegment, error)
	FindByTypeAndActive(ctx context.Context, segmentType string, active bool) ([]domain.UserSegment, error)
}

type ProfileReader interface {
	FindAll(ctx context.Context) ([]domain.UserProfile, error)
}

// Analytics is the slice of the analytics service the auto-segmenters need.
type Analytics interface {
	RFM(ctx context.Context, userID uint) (domain.RFMResult, error)
	ChurnRisk(ctx context.Context, userID uint) (domain.ChurnRisk, error)
}

type SegmentationService struct {
	segmentRepo SegmentRepository
	profileRepo ProfileReader
	analytics   Analytics
}

func NewSegmentationService(segmentRepo SegmentRepository, profileRepo ProfileReader, analytics Analytics) *SegmentationService {
	return &SegmentationService{
		segmentRepo: segmentRepo,
		profileRepo: profileRepo,
		analytics:   analytics,
	}
}

// CreateSegment stores a segment. Dynamic segments are evaluated immediately
// so they never exist without a member list.
func (s *SegmentationService) CreateSegment(ctx context.Context, segment *domain.UserSegment) (*domain.UserSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	segment.Active = true

	if segment.Type == domain.SegmentDynamic {
		userIDs, err := s.ExecuteSegmentation(ctx, segment.Conditions)
		if err != nil {
			return nil, err
		}
		segment.UserIDs = userIDs
		segment.UserCount = len(userIDs)
	}

	if err := s.segmentRepo.Save(ctx, segment); err != nil {
		return nil, fmt.Errorf("failed to save segment: %w", err)
	}

	logger.Info("segment created", "name", segment.Name, "user_count", segment.UserCount)
	return segment, nil
}

// ExecuteSegmentation filters every profile through the condition list.
func (s *SegmentationService) ExecuteSegmentation(ctx context.Context, conditions []domain.SegmentCondition) ([]uint, error) {
	profiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	userIDs := make([]uint, 0)
	for i := range profiles {
		if MatchesConditions(&profiles[i], conditions) {
			userIDs = append(userIDs, profiles[i].UserID)
		}
	}

	return userIDs, nil
}

// rfmTiers are the five buckets SegmentByRFM produces. Users whose tier falls
// outside (no purchase history) are skipped.
var rfmTiers = []string{"top value", "developing", "retained", "general", "low value"}

// SegmentByRFM partitions all profiles into the RFM tier buckets. One user's
// analytics failure is logged and skipped, never fatal to the batch.
func (s *SegmentationService) SegmentByRFM(ctx context.Context) (map[string]*domain.UserSegment, error) {
	logger.Info("running RFM auto-segmentation")

	profiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	groups := make(map[string][]uint, len(rfmTiers))
	for _, tier := range rfmTiers {
		groups[tier] = []uint{}
	}

	for _, p := range profiles {
		rfm, err := s.analytics.RFM(ctx, p.UserID)
		if err != nil {
			logger.Error("RFM computation failed, skipping user", "user_id", p.UserID, "error", err)
			continue
		}
		if _, ok := groups[rfm.Tier]; !ok {
			continue
		}
		groups[rfm.Tier] = append(groups[rfm.Tier], p.UserID)
	}

	return s.saveGroups(ctx, groups, "RFM-", domain.SegmentRFM, "auto-segmented by RFM tier")
}

// scoreBuckets maps each profile score bracket to a bucket label.
var scoreBuckets = []struct {
	min   float64
	label string
}{
	{80, "high value (80+)"},
	{60, "active (60-79)"},
	{40, "potential (40-59)"},
	{20, "general (20-39)"},
	{0, "low activity (<20)"},
}

// SegmentByScore partitions all profiles by score bracket.
func (s *SegmentationService) SegmentByScore(ctx context.Context) (map[string]*domain.UserSegment, error) {
	logger.Info("running profile-score auto-segmentation")

	profiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	groups := make(map[string][]uint, len(scoreBuckets))
	for _, b := range scoreBuckets {
		groups[b.label] = []uint{}
	}

	for _, p := range profiles {
		for _, b := range scoreBuckets {
			if p.ProfileScore >= b.min {
				groups[b.label] = append(groups[b.label], p.UserID)
				break
			}
		}
	}

	return s.saveGroups(ctx, groups, "score-", domain.SegmentDynamic, "auto-segmented by profile score")
}

// SegmentByChurnRisk partitions all profiles into churn-risk tiers.
func (s *SegmentationService) SegmentByChurnRisk(ctx context.Context) (map[string]*domain.UserSegment, error) {
	logger.Info("running churn-risk auto-segmentation")

	profiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	groups := map[string][]uint{
		"high risk":   {},
		"medium risk": {},
		"low risk":    {},
	}

	for _, p := range profiles {
		risk, err := s.analytics.ChurnRisk(ctx, p.UserID)
		if err != nil {
			logger.Error("churn analysis failed, skipping user", "user_id", p.UserID, "error", err)
			continue
		}
		label := risk.Risk + " risk"
		if _, ok := groups[label]; !ok {
			continue
		}
		groups[label] = append(groups[label], p.UserID)
	}

	return s.saveGroups(ctx, groups, "churn-", domain.SegmentBehavior, "auto-segmented by churn risk")
}

// RefreshDynamicSegments re-evaluates the stored conditions of every active
// dynamic segment and persists the new member lists. Per-segment failures are
// logged and skipped.
func (s *SegmentationService) RefreshDynamicSegments(ctx context.Context) error {
	logger.Info("refreshing dynamic segments")

	segments, err := s.segmentRepo.FindByTypeAndActive(ctx, domain.SegmentDynamic, true)
	if err != nil {
		return fmt.Errorf("load dynamic segments: %w", err)
	}

	for i := range segments {
		segment := &segments[i]

		userIDs, err := s.ExecuteSegmentation(ctx, segment.Conditions)
		if err != nil {
			logger.Error("segment refresh failed", "name", segment.Name, "error", err)
			continue
		}

		segment.UserIDs = userIDs
		segment.UserCount = len(userIDs)
		segment.UpdatedAt = time.Now()

		if err := s.segmentRepo.Save(ctx, segment); err != nil {
			logger.Error("segment save failed", "name", segment.Name, "error", err)
			continue
		}

		logger.Info("segment refreshed", "name", segment.Name, "user_count", segment.UserCount)
	}

	return nil
}

func (s *SegmentationService) GetAll(ctx context.Context) ([]domain.UserSegment, error) {
	return s.segmentRepo.FindAll(ctx)
}

func (s *SegmentationService) GetByID(ctx context.Context, id uint) (*domain.UserSegment, error) {
	return s.segmentRepo.FindByID(ctx, id)
}

func (s *SegmentationService) saveGroups(
	ctx context.Context,
	groups map[string][]uint,
	namePrefix string,
	segmentType string,
	description string,
) (map[string]*domain.UserSegment, error) {

	segments := make(map[string]*domain.UserSegment, len(groups))
	for label, userIDs := range groups {
		segment := &domain.UserSegment{
			Name:        namePrefix + label,
			Description: description + ": " + label,
			Type:        segmentType,
			UserIDs:     userIDs,
			UserCount:   len(userIDs),
			Active:      true,
		}

		if err := s.segmentRepo.Save(ctx, segment); err != nil {
			return nil, fmt.Errorf("failed to save segment %s: %w", segment.Name, err)
		}
		segments[label] = segment
	}

	logger.Info("auto-segmentation complete", "segments", len(segments))
	return segments, nil
}
