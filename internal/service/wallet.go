package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"shoplink/internal/model"
	"shoplink/internal/repository"
)

// WalletService owns the shared "credit once" operation. Every path that can
// release seller funds (verify, webhook, receipt confirmation) goes through
// CreditSeller, and the credited_to_seller latch makes them idempotent
// against each other.
type WalletService interface {
	CreditSeller(ctx context.Context, paymentID uint) (bool, error)

	// GetWalletForOwner is the seller-facing balance read, gated on shop
	// ownership. A shop that has never been credited reads as a zero wallet.
	GetWalletForOwner(ctx context.Context, shopID uint, callerUserID string) (*model.SellerWallet, error)
}

type walletServiceImpl struct {
	db          *gorm.DB
	shopRepo    repository.ShopRepository
	paymentRepo repository.PaymentRepository
	walletRepo  repository.WalletRepository
}

func NewWalletService(
	db *gorm.DB,
	shopRepo repository.ShopRepository,
	paymentRepo repository.PaymentRepository,
	walletRepo repository.WalletRepository,
) WalletService {
	return &walletServiceImpl{
		db:          db,
		shopRepo:    shopRepo,
		paymentRepo: paymentRepo,
		walletRepo:  walletRepo,
	}
}

// CreditSeller returns true when this call performed the credit, false when
// another path already had. The latch flip and the wallet update commit
// together; a crash cannot leave one without the other.
func (s *walletServiceImpl) CreditSeller(ctx context.Context, paymentID uint) (bool, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return false, fmt.Errorf("find payment: %w", err)
	}

	if payment.SellerAmount <= 0 {
		return false, nil
	}

	credited := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.paymentRepo.AcquireCreditLatch(ctx, tx, payment.ID)
		if err != nil {
			return fmt.Errorf("acquire credit latch: %w", err)
		}
		if !ok {
			return nil
		}

		wallet, err := s.walletRepo.Credit(ctx, tx, payment.ShopID, payment.SellerAmount)
		if err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}

		err = s.walletRepo.AppendTransaction(ctx, tx, &model.WalletTransaction{
			WalletID:  wallet.ID,
			PaymentID: &payment.ID,
			OrderID:   payment.OrderID,
			Amount:    payment.SellerAmount,
			Type:      "credit",
		})
		if err != nil {
			return fmt.Errorf("append wallet transaction: %w", err)
		}

		credited = true
		return nil
	})

	return credited, err
}

func (s *walletServiceImpl) GetWalletForOwner(ctx context.Context, shopID uint, callerUserID string) (*model.SellerWallet, error) {
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("find shop: %w", err)
	}
	if shop.OwnerUserID != callerUserID {
		return nil, ErrUnauthorized
	}

	wallet, err := s.walletRepo.GetByShopID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.SellerWallet{ShopID: shopID}, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	return wallet, nil
}
