package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"

	"shoplink/internal/dto"
	"shoplink/internal/model"
	"shoplink/internal/repository"
)

// ProofService is the manual bank-transfer path. Buyers (orders) or sellers
// (subscriptions) upload a transfer proof; approval triggers the same side
// effects as automated verification.
type ProofService interface {
	Submit(ctx context.Context, req *dto.SubmitProofRequest) (*model.PaymentProof, error)
	Review(ctx context.Context, proofID uint, approve bool, reviewerUserID string) error
	ListPending(ctx context.Context, shopID uint, callerUserID string) ([]*model.PaymentProof, error)
}

type proofServiceImpl struct {
	db                *gorm.DB
	feePercent        int64
	adminUserIDs      []string
	proofRepo         repository.PaymentProofRepository
	orderRepo         repository.OrderRepository
	shopRepo          repository.ShopRepository
	paymentRepo       repository.PaymentRepository
	subscriptionRepo  repository.SubscriptionRepository
	redemptionService RedemptionService
	walletService     WalletService
}

func NewProofService(
	db *gorm.DB,
	feePercent int64,
	adminUserIDs []string,
	proofRepo repository.PaymentProofRepository,
	orderRepo repository.OrderRepository,
	shopRepo repository.ShopRepository,
	paymentRepo repository.PaymentRepository,
	subscriptionRepo repository.SubscriptionRepository,
	redemptionService RedemptionService,
	walletService WalletService,
) ProofService {
	return &proofServiceImpl{
		db:                db,
		feePercent:        feePercent,
		adminUserIDs:      adminUserIDs,
		proofRepo:         proofRepo,
		orderRepo:         orderRepo,
		shopRepo:          shopRepo,
		paymentRepo:       paymentRepo,
		subscriptionRepo:  subscriptionRepo,
		redemptionService: redemptionService,
		walletService:     walletService,
	}
}

func (s *proofServiceImpl) Submit(ctx context.Context, req *dto.SubmitProofRequest) (*model.PaymentProof, error) {
	amount := req.Amount

	switch req.PaymentType {
	case model.PaymentTypeOrder:
		order, err := s.orderRepo.FindByID(ctx, req.ReferenceID)
		if err != nil || order.ShopID != req.ShopID {
			return nil, ErrOrderNotFound
		}
		if amount <= 0 {
			amount = order.Total
		}
	case model.PaymentTypeSubscription:
		if _, err := s.shopRepo.FindByID(ctx, req.ShopID); err != nil {
			return nil, ErrShopNotFound
		}
	default:
		return nil, fmt.Errorf("unknown proof payment type %q", req.PaymentType)
	}

	proof := &model.PaymentProof{
		PaymentType:   req.PaymentType,
		ReferenceID:   req.ReferenceID,
		ShopID:        req.ShopID,
		Amount:        amount,
		ProofImageURL: req.ProofImageURL,
		Status:        model.ProofStatusPending,
	}
	if err := s.proofRepo.Create(ctx, proof); err != nil {
		return nil, fmt.Errorf("store payment proof: %w", err)
	}

	return proof, nil
}

func (s *proofServiceImpl) ListPending(ctx context.Context, shopID uint, callerUserID string) ([]*model.PaymentProof, error) {
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("find shop: %w", err)
	}
	if shop.OwnerUserID != callerUserID && !s.isAdmin(callerUserID) {
		return nil, ErrUnauthorized
	}

	return s.proofRepo.ListPendingByShop(ctx, shopID)
}

func (s *proofServiceImpl) Review(ctx context.Context, proofID uint, approve bool, reviewerUserID string) error {
	proof, err := s.proofRepo.FindByID(ctx, proofID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProofNotFound
		}
		return fmt.Errorf("find proof: %w", err)
	}

	if err := s.authorizeReviewer(ctx, proof, reviewerUserID); err != nil {
		return err
	}

	if proof.Status != model.ProofStatusPending {
		return ErrProofAlreadyReviewed
	}

	// Side effects run before the reviewed latch flips: a failed apply
	// leaves the proof pending so the review can be retried. The apply
	// routines are safe to re-run after a partial failure.
	if approve {
		if proof.PaymentType == model.PaymentTypeSubscription {
			err = s.applySubscriptionProof(ctx, proof)
		} else {
			err = s.applyOrderProof(ctx, proof)
		}
		if err != nil {
			return err
		}
	}

	status := model.ProofStatusRejected
	if approve {
		status = model.ProofStatusApproved
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.proofRepo.MarkReviewed(ctx, tx, proof.ID, status, reviewerUserID)
		if err != nil {
			return fmt.Errorf("mark proof reviewed: %w", err)
		}
		if !ok {
			return ErrProofAlreadyReviewed
		}
		return nil
	})
}

func (s *proofServiceImpl) authorizeReviewer(ctx context.Context, proof *model.PaymentProof, reviewerUserID string) error {
	if s.isAdmin(reviewerUserID) {
		return nil
	}

	// Order proofs may also be reviewed by the seller the transfer went to.
	if proof.PaymentType == model.PaymentTypeOrder {
		shop, err := s.shopRepo.FindByID(ctx, proof.ShopID)
		if err != nil {
			return fmt.Errorf("find shop: %w", err)
		}
		if shop.OwnerUserID == reviewerUserID {
			return nil
		}
	}

	return ErrUnauthorized
}

func (s *proofServiceImpl) isAdmin(userID string) bool {
	return userID != "" && slices.Contains(s.adminUserIDs, userID)
}

// applyOrderProof mirrors automated order reconciliation: a success Payment
// row is recorded for the transfer, the order moves to paid, the redemption
// code is ensured, and the seller is credited through the same latch.
func (s *proofServiceImpl) applyOrderProof(ctx context.Context, proof *model.PaymentProof) error {
	order, err := s.orderRepo.FindByID(ctx, proof.ReferenceID)
	if err != nil {
		return fmt.Errorf("find order: %w", err)
	}

	// A provider payment that already succeeded has credited the seller;
	// recording a second success row would double-pay. A manual row is our
	// own earlier partial apply and gets reused so the retry can finish.
	payment, err := s.paymentRepo.FindSuccessfulByOrderID(ctx, order.ID)
	switch {
	case err == nil && payment.Provider != "manual":
		return fmt.Errorf("order %d already paid via %s", order.ID, payment.Provider)
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		split := SplitFee(proof.Amount, s.feePercent)
		orderID := order.ID
		payment = &model.Payment{
			OrderID:           &orderID,
			ShopID:            order.ShopID,
			Amount:            proof.Amount,
			PlatformFee:       split.PlatformFee,
			SellerAmount:      split.SellerAmount,
			Provider:          "manual",
			ProviderReference: paymentReference("MAN", order.ID),
			PaymentType:       model.PaymentTypeOrder,
			Status:            model.PaymentRowSuccess,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return fmt.Errorf("store manual payment: %w", err)
		}
	default:
		return fmt.Errorf("find successful payment: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.orderRepo.MarkPaid(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	order, err = s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("find order: %w", err)
	}
	if _, err := s.redemptionService.EnsureCodeForOrder(ctx, order); err != nil {
		return fmt.Errorf("ensure redemption code: %w", err)
	}

	if _, err := s.walletService.CreditSeller(ctx, payment.ID); err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}

	return nil
}

func (s *proofServiceImpl) applySubscriptionProof(ctx context.Context, proof *model.PaymentProof) error {
	plan := s.planForAmount(ctx, proof)
	now := time.Now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.subscriptionRepo.UpsertActive(ctx, tx, proof.ShopID, plan, now, now.AddDate(0, 1, 0)); err != nil {
			return fmt.Errorf("upsert subscription: %w", err)
		}
		return s.shopRepo.SetActive(ctx, tx, proof.ShopID, true)
	})
}

func (s *proofServiceImpl) planForAmount(ctx context.Context, proof *model.PaymentProof) string {
	for plan, amount := range planAmounts {
		if amount == proof.Amount {
			return plan
		}
	}
	if sub, err := s.subscriptionRepo.GetByShopID(ctx, proof.ShopID); err == nil {
		return sub.Plan
	}
	return "basic"
}
