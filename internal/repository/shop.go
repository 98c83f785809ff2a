package repository

import (
	"context"

	"gorm.io/gorm"

	"shoplink/internal/model"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	FindByID(ctx context.Context, shopID uint) (*model.Shop, error)
	FindBySlug(ctx context.Context, slug string) (*model.Shop, error)
	SetActive(ctx context.Context, tx *gorm.DB, shopID uint, active bool) error
}

type shopRepoImpl struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepoImpl{
		db: db,
	}
}

func (r *shopRepoImpl) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepoImpl) FindByID(ctx context.Context, shopID uint) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).
		Where("id = ?", shopID).
		First(&shop).Error

	if err != nil {
		return nil, err
	}

	return &shop, nil
}

func (r *shopRepoImpl) FindBySlug(ctx context.Context, slug string) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&shop).Error

	if err != nil {
		return nil, err
	}

	return &shop, nil
}

func (r *shopRepoImpl) SetActive(ctx context.Context, tx *gorm.DB, shopID uint, active bool) error {
	result := tx.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		Update("is_active", active)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
