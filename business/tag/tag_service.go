package tag

import (
	"context"
	"fmt"
	"time"

	"profileHub/domain"
	"profileHub/pkg/logger"
)

type TagRepository interface {
	Save(ctx context.Context, tag *domain.UserTag) error
	FindByUserAndName(ctx context.Context, userID uint, tagName string) (*domain.UserTag, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.UserTag, error)
	FindByUserAndCategory(ctx context.Context, userID uint, category string) ([]domain.UserTag, error)
	FindExpired(ctx context.Context, now time.Time) ([]domain.UserTag, error)
	Delete(ctx context.Context, id uint) error
}

type TagService struct {
	tagRepo TagRepository
}

func NewTagService(tagRepo TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// Upsert writes a tag for a user. A tag with the same name refreshes the
// existing row instead of duplicating it.
func (s *TagService) Upsert(ctx context.Context, tag *domain.UserTag) (*domain.UserTag, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if tag.TagName == "" {
		return nil, fmt.Errorf("tag name is required")
	}
	if tag.Weight == 0 {
		tag.Weight = 1
	}
	tag.Active = true

	existing, err := s.tagRepo.FindByUserAndName(ctx, tag.UserID, tag.TagName)
	if err != nil {
		return nil, fmt.Errorf("lookup tag: %w", err)
	}

	if existing != nil {
		existing.Category = tag.Category
		existing.Source = tag.Source
		existing.Weight = tag.Weight
		existing.ExpireAt = tag.ExpireAt
		existing.Active = true
		existing.UpdatedAt = time.Now()

		if err := s.tagRepo.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update tag: %w", err)
		}
		return existing, nil
	}

	if err := s.tagRepo.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to save tag: %w", err)
	}
	return tag, nil
}

// UpsertBatch applies Upsert over a list. A single bad tag fails the batch.
func (s *TagService) UpsertBatch(ctx context.Context, tags []domain.UserTag) ([]domain.UserTag, error) {
	saved := make([]domain.UserTag, 0, len(tags))
	for i := range tags {
		t, err := s.Upsert(ctx, &tags[i])
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", tags[i].TagName, err)
		}
		saved = append(saved, *t)
	}
	return saved, nil
}

func (s *TagService) UserTags(ctx context.Context, userID uint) ([]domain.UserTag, error) {
	return s.tagRepo.FindByUser(ctx, userID)
}

func (s *TagService) TagsByCategory(ctx context.Context, userID uint, category string) ([]domain.UserTag, error) {
	return s.tagRepo.FindByUserAndCategory(ctx, userID, category)
}

// AdjustWeight shifts a tag's weight by delta, clamped to [0, 1]. A missing
// tag is a quiet no-op.
func (s *TagService) AdjustWeight(ctx context.Context, userID uint, tagName string, delta float64) error {
	tag, err := s.tagRepo.FindByUserAndName(ctx, userID, tagName)
	if err != nil {
		return fmt.Errorf("lookup tag: %w", err)
	}
	if tag == nil {
		return nil
	}

	tag.Weight += delta
	if tag.Weight > 1 {
		tag.Weight = 1
	}
	if tag.Weight < 0 {
		tag.Weight = 0
	}
	tag.UpdatedAt = time.Now()

	if err := s.tagRepo.Save(ctx, tag); err != nil {
		return fmt.Errorf("failed to save tag: %w", err)
	}
	return nil
}

// Deduplicate removes older duplicates of the same tag name for a user,
// keeping the most recently updated row.
func (s *TagService) Deduplicate(ctx context.Context, userID uint) (int, error) {
	tags, err := s.tagRepo.FindByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load tags: %w", err)
	}

	newest := make(map[string]*domain.UserTag, len(tags))
	removed := 0
	for i := range tags {
		t := &tags[i]
		kept, seen := newest[t.TagName]
		if !seen {
			newest[t.TagName] = t
			continue
		}

		victim := t
		if t.UpdatedAt.After(kept.UpdatedAt) {
			victim = kept
			newest[t.TagName] = t
		}
		if err := s.tagRepo.Delete(ctx, victim.ID); err != nil {
			return removed, fmt.Errorf("delete duplicate tag %d: %w", victim.ID, err)
		}
		removed++
	}

	if removed > 0 {
		logger.Info("deduplicated tags", "user_id", userID, "removed", removed)
	}
	return removed, nil
}

// DeactivateExpired flips expired tags inactive and reports how many.
func (s *TagService) DeactivateExpired(ctx context.Context) (int, error) {
	expired, err := s.tagRepo.FindExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("load expired tags: %w", err)
	}

	for i := range expired {
		expired[i].Active = false
		expired[i].UpdatedAt = time.Now()
		if err := s.tagRepo.Save(ctx, &expired[i]); err != nil {
			return i, fmt.Errorf("deactivate tag %d: %w", expired[i].ID, err)
		}
	}

	if len(expired) > 0 {
		logger.Info("deactivated expired tags", "count", len(expired))
	}
	return len(expired), nil
}
