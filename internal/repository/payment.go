package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shoplink/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByReference(ctx context.Context, reference string) (*model.Payment, error)
	FindByID(ctx context.Context, paymentID uint) (*model.Payment, error)
	FindSuccessfulByOrderID(ctx context.Context, orderID uint) (*model.Payment, error)

	// MarkSuccess flips the row pending→success. Returns false when another
	// reconciliation path already marked it.
	MarkSuccess(ctx context.Context, tx *gorm.DB, reference, transactionID string) (bool, error)

	// AcquireCreditLatch flips credited_to_seller false→true. Exactly one
	// caller per payment ever sees true; the wallet credit rides on it.
	AcquireCreditLatch(ctx context.Context, tx *gorm.DB, paymentID uint) (bool, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByReference(ctx context.Context, reference string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("provider_reference = ?", reference).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, paymentID uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("id = ?", paymentID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) FindSuccessfulByOrderID(ctx context.Context, orderID uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, model.PaymentRowSuccess).
		Order("id DESC").
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) MarkSuccess(ctx context.Context, tx *gorm.DB, reference, transactionID string) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("provider_reference = ? AND status = ?", reference, model.PaymentRowPending).
		Updates(map[string]interface{}{
			"status":                  model.PaymentRowSuccess,
			"provider_transaction_id": transactionID,
			"updated_at":              time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *paymentRepoImpl) AcquireCreditLatch(ctx context.Context, tx *gorm.DB, paymentID uint) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND credited_to_seller = ?", paymentID, false).
		Updates(map[string]interface{}{
			"credited_to_seller": true,
			"credited_at":        time.Now(),
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
