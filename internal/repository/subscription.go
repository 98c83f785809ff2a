package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shoplink/internal/model"
)

type SubscriptionRepository interface {
	// UpsertActive creates or renews the shop's subscription. The period is
	// always now..end regardless of what was stored before; renewals do not
	// accumulate unused time.
	UpsertActive(ctx context.Context, tx *gorm.DB, shopID uint, plan string, start, end time.Time) error
	GetByShopID(ctx context.Context, shopID uint) (*model.Subscription, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) UpsertActive(ctx context.Context, tx *gorm.DB, shopID uint, plan string, start, end time.Time) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"plan":                 plan,
			"status":               model.SubscriptionStatusActive,
			"current_period_start": start,
			"current_period_end":   end,
			"updated_at":           time.Now(),
		}),
	}).Create(&model.Subscription{
		ShopID:             shopID,
		Plan:               plan,
		Status:             model.SubscriptionStatusActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
	}).Error
}

func (r *subscriptionRepoImpl) GetByShopID(ctx context.Context, shopID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}
