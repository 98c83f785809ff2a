package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"shoplink/internal/dto"
	"shoplink/internal/model"
	"shoplink/internal/repository"
)

const (
	codeLength      = 8
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeAttempts = 5
)

// RedemptionService drives the delivery-confirmation lifecycle: one active
// code per paid order, redeemed exactly once, with fund release hanging off
// receipt confirmation.
type RedemptionService interface {
	// EnsureCodeForOrder returns the order's redemption code, creating it
	// when no reconciliation path has yet. Safe to call from racing paths.
	EnsureCodeForOrder(ctx context.Context, order *model.Order) (*model.RedemptionCode, error)

	// ViewByCode resolves an active code to its order, shop and items
	// without mutating anything.
	ViewByCode(ctx context.Context, code string) (*dto.RedemptionView, error)

	// ConfirmDelivery is seller-initiated and gated on shop ownership.
	// It does not release funds; that stays with receipt confirmation.
	ConfirmDelivery(ctx context.Context, code, callerUserID string) error

	// ConfirmReceipt is buyer-initiated by code.
	ConfirmReceipt(ctx context.Context, code, customerID string) error

	// ConfirmReceiptByOrder is the anonymous direct-confirm variant for
	// flows without an auth session.
	ConfirmReceiptByOrder(ctx context.Context, orderID uint) error
}

type redemptionServiceImpl struct {
	db            *gorm.DB
	orderRepo     repository.OrderRepository
	shopRepo      repository.ShopRepository
	codeRepo      repository.RedemptionCodeRepository
	paymentRepo   repository.PaymentRepository
	walletService WalletService
}

func NewRedemptionService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	shopRepo repository.ShopRepository,
	codeRepo repository.RedemptionCodeRepository,
	paymentRepo repository.PaymentRepository,
	walletService WalletService,
) RedemptionService {
	return &redemptionServiceImpl{
		db:            db,
		orderRepo:     orderRepo,
		shopRepo:      shopRepo,
		codeRepo:      codeRepo,
		paymentRepo:   paymentRepo,
		walletService: walletService,
	}
}

func (s *redemptionServiceImpl) EnsureCodeForOrder(ctx context.Context, order *model.Order) (*model.RedemptionCode, error) {
	if order.RedemptionCodeID != nil {
		code, err := s.codeRepo.FindByID(ctx, *order.RedemptionCodeID)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find linked code: %w", err)
		}
	}

	code, err := s.codeRepo.FindByOrderID(ctx, order.ID)
	if err == nil {
		return code, s.linkCode(ctx, order.ID, code.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find code by order: %w", err)
	}

	code, err = s.generateCode(ctx, order)
	if err != nil {
		return nil, err
	}

	return code, s.linkCode(ctx, order.ID, code.ID)
}

func (s *redemptionServiceImpl) linkCode(ctx context.Context, orderID, codeID uint) error {
	return s.orderRepo.LinkRedemptionCode(ctx, s.db, orderID, codeID)
}

func (s *redemptionServiceImpl) generateCode(ctx context.Context, order *model.Order) (*model.RedemptionCode, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		value, err := randomCode(codeLength)
		if err != nil {
			return nil, fmt.Errorf("random code: %w", err)
		}

		exists, err := s.codeRepo.CodeExists(ctx, value)
		if err != nil {
			return nil, fmt.Errorf("check code exists: %w", err)
		}
		if exists {
			continue
		}

		code := &model.RedemptionCode{
			OrderID: order.ID,
			ShopID:  order.ShopID,
			Code:    value,
			Status:  model.CodeStatusActive,
		}
		if err := s.codeRepo.Create(ctx, s.db, code); err != nil {
			// Unique violation on order_id means the webhook or verifier
			// beat us to it; theirs wins.
			existing, findErr := s.codeRepo.FindByOrderID(ctx, order.ID)
			if findErr == nil {
				return existing, nil
			}
			continue
		}
		return code, nil
	}

	return nil, ErrCodeGeneration
}

func (s *redemptionServiceImpl) ViewByCode(ctx context.Context, codeValue string) (*dto.RedemptionView, error) {
	code, err := s.codeRepo.FindActiveByCode(ctx, codeValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("find active code: %w", err)
	}

	order, err := s.orderRepo.FindByID(ctx, code.OrderID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	shop, err := s.shopRepo.FindByID(ctx, code.ShopID)
	if err != nil {
		return nil, fmt.Errorf("find shop: %w", err)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}

	view := &dto.RedemptionView{
		Code:        code.Code,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderStatus: order.Status,
		Total:       order.Total,
		ShopName:    shop.Name,
		ShopSlug:    shop.Slug,
	}
	for _, item := range items {
		view.Items = append(view.Items, dto.RedemptionViewItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	return view, nil
}

func (s *redemptionServiceImpl) ConfirmDelivery(ctx context.Context, codeValue, callerUserID string) error {
	code, err := s.codeRepo.FindActiveByCode(ctx, codeValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("find active code: %w", err)
	}

	shop, err := s.shopRepo.FindByID(ctx, code.ShopID)
	if err != nil {
		return fmt.Errorf("find shop: %w", err)
	}
	if shop.OwnerUserID != callerUserID {
		return ErrUnauthorized
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.MarkRedeemed(ctx, tx, code.OrderID)
		if err != nil {
			return fmt.Errorf("mark order redeemed: %w", err)
		}
		if !ok {
			return ErrOrderNotFound
		}

		ok, err = s.codeRepo.MarkRedeemed(ctx, tx, code.ID, callerUserID)
		if err != nil {
			return fmt.Errorf("mark code redeemed: %w", err)
		}
		if !ok {
			return ErrCodeNotFound
		}

		return nil
	})
}

func (s *redemptionServiceImpl) ConfirmReceipt(ctx context.Context, codeValue, customerID string) error {
	code, err := s.codeRepo.FindActiveByCode(ctx, codeValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("find active code: %w", err)
	}

	order, err := s.orderRepo.FindByID(ctx, code.OrderID)
	if err != nil {
		return fmt.Errorf("find order: %w", err)
	}

	if customerID != "" && order.CustomerID != nil && *order.CustomerID != customerID {
		return ErrUnauthorized
	}

	return s.confirmReceipt(ctx, order, code, customerID)
}

func (s *redemptionServiceImpl) ConfirmReceiptByOrder(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("find order: %w", err)
	}

	var code *model.RedemptionCode
	code, err = s.codeRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find code by order: %w", err)
		}
		code = nil
	}

	return s.confirmReceipt(ctx, order, code, "")
}

// confirmReceipt is the fund-releasing transition. The order guard
// (payment_status=paid, not yet confirmed) rejects unpaid and
// double-confirmed orders; the wallet credit behind it is idempotent against
// the automatic reconciliation paths.
func (s *redemptionServiceImpl) confirmReceipt(ctx context.Context, order *model.Order, code *model.RedemptionCode, confirmedBy string) error {
	if order.PaymentStatus != model.PaymentStatusPaid || order.RedemptionConfirmed {
		return ErrOrderNotFound
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.MarkRedeemed(ctx, tx, order.ID)
		if err != nil {
			return fmt.Errorf("mark order redeemed: %w", err)
		}
		if !ok {
			return ErrOrderNotFound
		}

		if code != nil {
			if _, err := s.codeRepo.MarkRedeemed(ctx, tx, code.ID, confirmedBy); err != nil {
				return fmt.Errorf("mark code redeemed: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	payment, err := s.paymentRepo.FindSuccessfulByOrderID(ctx, order.ID)
	if err != nil {
		// A paid order without a tracked payment row cannot be credited
		// here; the initializer accepted that inconsistency.
		log.Printf("confirm receipt: no successful payment for order %d: %v", order.ID, err)
		return nil
	}

	if _, err := s.walletService.CreditSeller(ctx, payment.ID); err != nil {
		log.Printf("confirm receipt: credit seller for payment %d: %v", payment.ID, err)
	}

	return nil
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
