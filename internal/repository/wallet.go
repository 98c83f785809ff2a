package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shoplink/internal/model"
)

type WalletRepository interface {
	// Credit adds amount to the shop's wallet, creating the wallet with
	// balance=amount when it does not exist yet. Returns the wallet row
	// after the credit.
	Credit(ctx context.Context, tx *gorm.DB, shopID uint, amount int64) (*model.SellerWallet, error)
	GetByShopID(ctx context.Context, shopID uint) (*model.SellerWallet, error)
	AppendTransaction(ctx context.Context, tx *gorm.DB, wtx *model.WalletTransaction) error
}

type walletRepoImpl struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepoImpl{
		db: db,
	}
}

func (r *walletRepoImpl) Credit(ctx context.Context, tx *gorm.DB, shopID uint, amount int64) (*model.SellerWallet, error) {
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":      gorm.Expr("seller_wallets.balance + ?", amount),
			"total_earned": gorm.Expr("seller_wallets.total_earned + ?", amount),
			"updated_at":   time.Now(),
		}),
	}).Create(&model.SellerWallet{
		ShopID:      shopID,
		Balance:     amount,
		TotalEarned: amount,
	}).Error
	if err != nil {
		return nil, err
	}

	var wallet model.SellerWallet
	err = tx.WithContext(ctx).
		Where("shop_id = ?", shopID).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

func (r *walletRepoImpl) GetByShopID(ctx context.Context, shopID uint) (*model.SellerWallet, error) {
	var wallet model.SellerWallet
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		First(&wallet).Error

	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

func (r *walletRepoImpl) AppendTransaction(ctx context.Context, tx *gorm.DB, wtx *model.WalletTransaction) error {
	return tx.WithContext(ctx).Create(wtx).Error
}
