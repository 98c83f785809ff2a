package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shoplink/internal/model"
)

type PaymentProofRepository interface {
	Create(ctx context.Context, proof *model.PaymentProof) error
	FindByID(ctx context.Context, proofID uint) (*model.PaymentProof, error)
	ListPendingByShop(ctx context.Context, shopID uint) ([]*model.PaymentProof, error)

	// MarkReviewed moves pending→approved/rejected. Returns false when the
	// proof was already reviewed.
	MarkReviewed(ctx context.Context, tx *gorm.DB, proofID uint, status, reviewedBy string) (bool, error)
}

type paymentProofRepoImpl struct {
	db *gorm.DB
}

func NewPaymentProofRepository(db *gorm.DB) PaymentProofRepository {
	return &paymentProofRepoImpl{
		db: db,
	}
}

func (r *paymentProofRepoImpl) Create(ctx context.Context, proof *model.PaymentProof) error {
	return r.db.WithContext(ctx).Create(proof).Error
}

func (r *paymentProofRepoImpl) FindByID(ctx context.Context, proofID uint) (*model.PaymentProof, error) {
	var proof model.PaymentProof
	err := r.db.WithContext(ctx).
		Where("id = ?", proofID).
		First(&proof).Error

	if err != nil {
		return nil, err
	}

	return &proof, nil
}

func (r *paymentProofRepoImpl) ListPendingByShop(ctx context.Context, shopID uint) ([]*model.PaymentProof, error) {
	var proofs []*model.PaymentProof
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND status = ?", shopID, model.ProofStatusPending).
		Find(&proofs).Error

	if err != nil {
		return nil, err
	}

	return proofs, nil
}

func (r *paymentProofRepoImpl) MarkReviewed(ctx context.Context, tx *gorm.DB, proofID uint, status, reviewedBy string) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.PaymentProof{}).
		Where("id = ? AND status = ?", proofID, model.ProofStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewedBy,
			"reviewed_at": time.Now(),
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
