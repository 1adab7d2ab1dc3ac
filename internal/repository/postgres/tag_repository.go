package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"profileHub/business/tag"
	"profileHub/domain"
)

type TagRepository struct {
	DB *gorm.DB
}

var _ tag.TagRepository = (*TagRepository)(nil)

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

func (r *TagRepository) Save(ctx context.Context, t *domain.UserTag) error {
	return r.DB.WithContext(ctx).Save(t).Error
}

// FindByUserAndName returns (nil, nil) when the user has no such tag.
func (r *TagRepository) FindByUserAndName(ctx context.Context, userID uint, tagName string) (*domain.UserTag, error) {
	var t domain.UserTag
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND tag_name = ?", userID, tagName).
		Order("updated_at DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TagRepository) FindByUser(ctx context.Context, userID uint) ([]domain.UserTag, error) {
	var tags []domain.UserTag
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&tags).Error
	return tags, err
}

func (r *TagRepository) FindByUserAndCategory(ctx context.Context, userID uint, category string) ([]domain.UserTag, error) {
	var tags []domain.UserTag
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("id ASC").
		Find(&tags).Error
	return tags, err
}

func (r *TagRepository) FindExpired(ctx context.Context, now time.Time) ([]domain.UserTag, error) {
	var tags []domain.UserTag
	err := r.DB.WithContext(ctx).
		Where("active = ? AND expire_at IS NOT NULL AND expire_at < ?", true, now).
		Find(&tags).Error
	return tags, err
}

func (r *TagRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&domain.UserTag{}, id).Error
}
