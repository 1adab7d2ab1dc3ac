package postgres

import (
	"context"

	"gorm.io/gorm"

	"profileHub/business/segmentation"
	"profileHub/domain"
)

type SegmentRepository struct {
	DB *gorm.DB
}

var _ segmentation.SegmentRepository = (*SegmentRepository)(nil)

func NewSegmentRepository(db *gorm.DB) *SegmentRepository {
	return &SegmentRepository{DB: db}
}

func (r *SegmentRepository) Save(ctx context.Context, segment *domain.UserSegment) error {
	return r.DB.WithContext(ctx).Save(segment).Error
}

func (r *SegmentRepository) FindAll(ctx context.Context) ([]domain.UserSegment, error) {
	var segments []domain.UserSegment
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&segments).Error
	return segments, err
}

func (r *SegmentRepository) FindByID(ctx context.Context, id uint) (*domain.UserSegment, error) {
	var segment domain.UserSegment
	if err := r.DB.WithContext(ctx).First(&segment, id).Error; err != nil {
		return nil, err
	}
	return &segment, nil
}

func (r *SegmentRepository) FindByTypeAndActive(ctx context.Context, segmentType string, active bool) ([]domain.UserSegment, error) {
	var segments []domain.UserSegment
	err := r.DB.WithContext(ctx).
		Where("type = ? AND active = ?", segmentType, active).
		Find(&segments).Error
	return segments, err
}
