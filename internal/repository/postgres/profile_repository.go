package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"profileHub/business/profile"
	"profileHub/business/recommendation"
	"profileHub/business/segmentation"
	"profileHub/domain"
)

type ProfileRepository struct {
	DB *gorm.DB
}

var (
	_ profile.ProfileRepository        = (*ProfileRepository)(nil)
	_ recommendation.ProfileRepository = (*ProfileRepository)(nil)
	_ segmentation.ProfileReader       = (*ProfileRepository)(nil)
)

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := r.DB.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, p *domain.UserProfile) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *ProfileRepository) FindAll(ctx context.Context) ([]domain.UserProfile, error) {
	var profiles []domain.UserProfile
	err := r.DB.WithContext(ctx).Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.UserProfile{}).Error
}
