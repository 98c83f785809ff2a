package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shoplink/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	CreateOrderItems(ctx context.Context, items []*model.OrderItem) error
	GetOrderItems(ctx context.Context, orderID uint) ([]*model.OrderItem, error)

	// MarkPaid flips payment_status pending→paid and status→processing.
	// Returns false when the order was already paid; callers treat that as
	// "another reconciliation path got here first", not as a failure.
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error)

	// MarkRedeemed flips status→completed and redemption_confirmed→true,
	// guarded on payment_status=paid and redemption_confirmed=false.
	MarkRedeemed(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error)

	// LinkRedemptionCode binds a code to the order if none is bound yet.
	LinkRedemptionCode(ctx context.Context, tx *gorm.DB, orderID, codeID uint) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, items []*model.OrderItem) error {
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, orderID uint) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"status":         model.OrderStatusProcessing,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) MarkRedeemed(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where(`
			id = ?
			AND payment_status = ?
			AND redemption_confirmed = ?
		`,
			orderID,
			model.PaymentStatusPaid,
			false,
		).
		Updates(map[string]interface{}{
			"status":               model.OrderStatusCompleted,
			"redemption_confirmed": true,
			"updated_at":           time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) LinkRedemptionCode(ctx context.Context, tx *gorm.DB, orderID, codeID uint) error {
	return tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND redemption_code_id IS NULL", orderID).
		Updates(map[string]interface{}{
			"redemption_code_id": codeID,
			"updated_at":         time.Now(),
		}).Error
}
