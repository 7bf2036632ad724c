package repository

import (
	"context"

	"gorm.io/gorm"

	"imagevault/internal/model"
)

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository builds a GORM-backed repository.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepository) ListByOwner(ctx context.Context, ownerID string, isPrivate *bool) ([]model.Image, error) {
	var images []model.Image
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if isPrivate != nil {
		q = q.Where("is_private = ?", *isPrivate)
	}
	if err := q.Order("created_at DESC").Limit(ListLimit).Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *imageRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.Image{})
	return res.RowsAffected, res.Error
}
