package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shoplink/internal/model"
)

type RedemptionCodeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, code *model.RedemptionCode) error
	FindByID(ctx context.Context, codeID uint) (*model.RedemptionCode, error)
	FindByOrderID(ctx context.Context, orderID uint) (*model.RedemptionCode, error)
	FindActiveByCode(ctx context.Context, code string) (*model.RedemptionCode, error)
	CodeExists(ctx context.Context, code string) (bool, error)

	// MarkRedeemed flips active→redeemed. Returns false when the code was
	// not active anymore.
	MarkRedeemed(ctx context.Context, tx *gorm.DB, codeID uint, redeemedBy string) (bool, error)
}

type redemptionCodeRepoImpl struct {
	db *gorm.DB
}

func NewRedemptionCodeRepository(db *gorm.DB) RedemptionCodeRepository {
	return &redemptionCodeRepoImpl{
		db: db,
	}
}

func (r *redemptionCodeRepoImpl) Create(ctx context.Context, tx *gorm.DB, code *model.RedemptionCode) error {
	return tx.WithContext(ctx).Create(code).Error
}

func (r *redemptionCodeRepoImpl) FindByID(ctx context.Context, codeID uint) (*model.RedemptionCode, error) {
	var code model.RedemptionCode
	err := r.db.WithContext(ctx).
		Where("id = ?", codeID).
		First(&code).Error

	if err != nil {
		return nil, err
	}

	return &code, nil
}

func (r *redemptionCodeRepoImpl) FindByOrderID(ctx context.Context, orderID uint) (*model.RedemptionCode, error) {
	var code model.RedemptionCode
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&code).Error

	if err != nil {
		return nil, err
	}

	return &code, nil
}

func (r *redemptionCodeRepoImpl) FindActiveByCode(ctx context.Context, codeValue string) (*model.RedemptionCode, error) {
	var code model.RedemptionCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND status = ?", codeValue, model.CodeStatusActive).
		First(&code).Error

	if err != nil {
		return nil, err
	}

	return &code, nil
}

func (r *redemptionCodeRepoImpl) CodeExists(ctx context.Context, codeValue string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RedemptionCode{}).
		Where("code = ?", codeValue).
		Count(&count).Error

	return count > 0, err
}

func (r *redemptionCodeRepoImpl) MarkRedeemed(ctx context.Context, tx *gorm.DB, codeID uint, redeemedBy string) (bool, error) {
	updates := map[string]interface{}{
		"status":      model.CodeStatusRedeemed,
		"redeemed_at": time.Now(),
		"updated_at":  time.Now(),
	}
	if redeemedBy != "" {
		updates["redeemed_by"] = redeemedBy
	}

	result := tx.WithContext(ctx).Model(&model.RedemptionCode{}).
		Where("id = ? AND status = ?", codeID, model.CodeStatusActive).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
