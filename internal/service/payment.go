package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shoplink/internal/client"
	"shoplink/internal/dto"
	"shoplink/internal/model"
	"shoplink/internal/provider"
	"shoplink/internal/repository"
)

// Subscription plan prices in minor units. Renewal always runs one month
// from "now"; plans longer than a month do not exist.
var planAmounts = map[string]int64{
	"basic": 150000,
	"pro":   450000,
}

type PaymentService interface {
	InitializeOrderPayment(ctx context.Context, req *dto.InitializePaymentRequest) (*dto.InitializeResponse, error)
	InitializeSubscriptionPayment(ctx context.Context, req *dto.InitializeSubscriptionRequest) (*dto.InitializeResponse, error)

	// VerifyPayment is the synchronous, browser-triggered reconciliation
	// path. It races the webhook receiver over the same rows; both run the
	// same guarded reconcile routine.
	VerifyPayment(ctx context.Context, providerName, reference string) (*dto.VerifyPaymentResponse, error)

	// HandleWebhook is the asynchronous provider-triggered path. It returns
	// an error only for failures that must be surfaced to the provider
	// (bad signature, unparseable payload); reconciliation errors are
	// logged and swallowed so the provider still gets its 200.
	HandleWebhook(ctx context.Context, providerName string, headers http.Header, body []byte) error
}

type paymentServiceImpl struct {
	db                *gorm.DB
	providers         map[string]provider.Client
	feePercent        int64
	orderRepo         repository.OrderRepository
	shopRepo          repository.ShopRepository
	paymentRepo       repository.PaymentRepository
	subscriptionRepo  repository.SubscriptionRepository
	proofRepo         repository.PaymentProofRepository
	redemptionService RedemptionService
	walletService     WalletService
	whatsappClient    client.WhatsAppClient
}

func NewPaymentService(
	db *gorm.DB,
	providers []provider.Client,
	feePercent int64,
	orderRepo repository.OrderRepository,
	shopRepo repository.ShopRepository,
	paymentRepo repository.PaymentRepository,
	subscriptionRepo repository.SubscriptionRepository,
	proofRepo repository.PaymentProofRepository,
	redemptionService RedemptionService,
	walletService WalletService,
	whatsappClient client.WhatsAppClient,
) PaymentService {
	providerMap := make(map[string]provider.Client, len(providers))
	for _, p := range providers {
		providerMap[p.Name()] = p
	}

	return &paymentServiceImpl{
		db:                db,
		providers:         providerMap,
		feePercent:        feePercent,
		orderRepo:         orderRepo,
		shopRepo:          shopRepo,
		paymentRepo:       paymentRepo,
		subscriptionRepo:  subscriptionRepo,
		proofRepo:         proofRepo,
		redemptionService: redemptionService,
		walletService:     walletService,
		whatsappClient:    whatsappClient,
	}
}

func (s *paymentServiceImpl) providerClient(name string) (provider.Client, error) {
	p, ok := s.providers[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// paymentReference builds the correlation id for one payment attempt. The
// uuid tail keeps two attempts inside the same millisecond distinct.
func paymentReference(prefix string, entityID uint) string {
	nonce := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s_%d_%d_%s", prefix, entityID, time.Now().UnixMilli(), nonce)
}

func (s *paymentServiceImpl) InitializeOrderPayment(ctx context.Context, req *dto.InitializePaymentRequest) (*dto.InitializeResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	pc, err := s.providerClient(req.Provider)
	if err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount <= 0 {
		amount = order.Total
	}

	reference := paymentReference("ORD", order.ID)
	hostedURL, err := pc.Initialize(ctx, &provider.InitializeRequest{
		Reference:   reference,
		Amount:      amount,
		Currency:    "NGN",
		Email:       req.Email,
		CallbackURL: req.CallbackURL,
		Metadata: provider.Metadata{
			OrderID: order.ID,
			ShopID:  order.ShopID,
		},
	})
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderInit, err)
	}

	split := SplitFee(amount, s.feePercent)
	orderID := order.ID
	err = s.paymentRepo.Create(ctx, &model.Payment{
		OrderID:           &orderID,
		ShopID:            order.ShopID,
		Amount:            amount,
		PlatformFee:       split.PlatformFee,
		SellerAmount:      split.SellerAmount,
		Provider:          pc.Name(),
		ProviderReference: reference,
		PaymentType:       model.PaymentTypeOrder,
		Status:            model.PaymentRowPending,
	})
	if err != nil {
		// The hosted page already exists; failing checkout now would only
		// hurt the buyer. Reconciliation falls back to metadata lookup.
		log.Printf("initialize: store payment row for %s: %v", reference, err)
	}

	return &dto.InitializeResponse{
		Reference: reference,
		HostedURL: hostedURL,
	}, nil
}

func (s *paymentServiceImpl) InitializeSubscriptionPayment(ctx context.Context, req *dto.InitializeSubscriptionRequest) (*dto.InitializeResponse, error) {
	shop, err := s.shopRepo.FindByID(ctx, req.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("find shop: %w", err)
	}

	pc, err := s.providerClient(req.Provider)
	if err != nil {
		return nil, err
	}

	amount, ok := planAmounts[req.Plan]
	if !ok {
		return nil, ErrUnknownPlan
	}

	reference := paymentReference("SUB", shop.ID)
	hostedURL, err := pc.Initialize(ctx, &provider.InitializeRequest{
		Reference:   reference,
		Amount:      amount,
		Currency:    "NGN",
		Email:       req.Email,
		CallbackURL: req.CallbackURL,
		Metadata: provider.Metadata{
			ShopID: shop.ID,
			Plan:   req.Plan,
		},
	})
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderInit, err)
	}

	err = s.paymentRepo.Create(ctx, &model.Payment{
		ShopID:            shop.ID,
		Amount:            amount,
		PlatformFee:       amount, // subscription revenue is all platform
		SellerAmount:      0,
		Provider:          pc.Name(),
		ProviderReference: reference,
		PaymentType:       model.PaymentTypeSubscription,
		Plan:              req.Plan,
		Status:            model.PaymentRowPending,
	})
	if err != nil {
		log.Printf("initialize: store payment row for %s: %v", reference, err)
	}

	return &dto.InitializeResponse{
		Reference: reference,
		HostedURL: hostedURL,
	}, nil
}

func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, providerName, reference string) (*dto.VerifyPaymentResponse, error) {
	pc, err := s.providerClient(providerName)
	if err != nil {
		return nil, err
	}

	result, err := pc.Verify(ctx, reference)
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	if !provider.IsSuccessStatus(result.Status) {
		return nil, fmt.Errorf("%w: provider status %q", ErrVerificationFailed, result.Status)
	}

	if err := s.reconcile(ctx, result.Reference, result.TransactionID, result.Metadata); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	resp := &dto.VerifyPaymentResponse{
		Reference: result.Reference,
		Status:    "success",
	}

	orderID := result.Metadata.OrderID
	if payment, err := s.paymentRepo.FindByReference(ctx, result.Reference); err == nil {
		if payment.OrderID == nil {
			return resp, nil // subscription payment
		}
		orderID = *payment.OrderID
	}
	if orderID == 0 {
		return resp, nil
	}

	resp.OrderID = orderID
	if order, err := s.orderRepo.FindByID(ctx, orderID); err == nil {
		if code, err := s.redemptionService.EnsureCodeForOrder(ctx, order); err == nil {
			resp.RedemptionCode = code.Code
		}
	}

	return resp, nil
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, providerName string, headers http.Header, body []byte) error {
	pc, err := s.providerClient(providerName)
	if err != nil {
		return err
	}

	event, err := pc.ParseWebhookEvent(ctx, headers, body)
	if err != nil {
		return err
	}

	if !event.ChargeCompleted {
		return nil
	}

	if err := s.reconcile(ctx, event.Reference, event.TransactionID, event.Metadata); err != nil {
		// The provider gets its 200 regardless; retry storms amplify
		// transient failures into duplicate deliveries.
		log.Printf("webhook %s: reconcile %s: %v", providerName, event.Reference, err)
	}

	return nil
}

// reconcile brings local state in line with a provider-confirmed success.
// Both the verifier and the webhook receiver funnel through here, in any
// order, any number of times.
func (s *paymentServiceImpl) reconcile(ctx context.Context, reference, transactionID string, meta provider.Metadata) error {
	payment, err := s.paymentRepo.FindByReference(ctx, reference)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find payment: %w", err)
		}
		return s.reconcileWithoutPayment(ctx, reference, meta)
	}

	if payment.PaymentType == model.PaymentTypeSubscription {
		return s.reconcileSubscription(ctx, payment, transactionID)
	}
	return s.reconcileOrder(ctx, payment, transactionID)
}

func (s *paymentServiceImpl) reconcileOrder(ctx context.Context, payment *model.Payment, transactionID string) error {
	if payment.OrderID == nil {
		return fmt.Errorf("order payment %s has no order id", payment.ProviderReference)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.paymentRepo.MarkSuccess(ctx, tx, payment.ProviderReference, transactionID); err != nil {
			return fmt.Errorf("mark payment success: %w", err)
		}
		if _, err := s.orderRepo.MarkPaid(ctx, tx, *payment.OrderID); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	order, err := s.orderRepo.FindByID(ctx, *payment.OrderID)
	if err != nil {
		return fmt.Errorf("find order: %w", err)
	}

	code, err := s.redemptionService.EnsureCodeForOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("ensure redemption code: %w", err)
	}

	if _, err := s.walletService.CreditSeller(ctx, payment.ID); err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}

	bestEffort("order paid notification", func() error {
		return s.notifyOrderPaid(ctx, order, code)
	})

	return nil
}

func (s *paymentServiceImpl) reconcileSubscription(ctx context.Context, payment *model.Payment, transactionID string) error {
	now := time.Now()
	periodEnd := now.AddDate(0, 1, 0)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.paymentRepo.MarkSuccess(ctx, tx, payment.ProviderReference, transactionID); err != nil {
			return fmt.Errorf("mark payment success: %w", err)
		}
		if err := s.subscriptionRepo.UpsertActive(ctx, tx, payment.ShopID, payment.Plan, now, periodEnd); err != nil {
			return fmt.Errorf("upsert subscription: %w", err)
		}
		if err := s.shopRepo.SetActive(ctx, tx, payment.ShopID, true); err != nil {
			return fmt.Errorf("activate shop: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	bestEffort("subscription audit proof", func() error {
		reviewedBy := "system"
		reviewedAt := time.Now()
		return s.proofRepo.Create(ctx, &model.PaymentProof{
			PaymentType:   model.PaymentTypeSubscription,
			ReferenceID:   payment.ShopID,
			ShopID:        payment.ShopID,
			Amount:        payment.Amount,
			Status:        model.ProofStatusApproved,
			ReviewedBy:    &reviewedBy,
			ReviewedAt:    &reviewedAt,
		})
	})

	return nil
}

// reconcileWithoutPayment handles the accepted inconsistency where the
// pending Payment row never made it to the store. The provider metadata
// carries enough to move the order or subscription forward; seller
// crediting is impossible without the row and is skipped.
func (s *paymentServiceImpl) reconcileWithoutPayment(ctx context.Context, reference string, meta provider.Metadata) error {
	if meta.OrderID != 0 {
		log.Printf("reconcile %s: payment row missing, updating order %d from metadata", reference, meta.OrderID)

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.orderRepo.MarkPaid(ctx, tx, meta.OrderID)
			return err
		})
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}

		order, err := s.orderRepo.FindByID(ctx, meta.OrderID)
		if err != nil {
			return fmt.Errorf("find order: %w", err)
		}
		if _, err := s.redemptionService.EnsureCodeForOrder(ctx, order); err != nil {
			return fmt.Errorf("ensure redemption code: %w", err)
		}
		return nil
	}

	if meta.ShopID != 0 && meta.Plan != "" {
		log.Printf("reconcile %s: payment row missing, activating shop %d from metadata", reference, meta.ShopID)

		now := time.Now()
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.subscriptionRepo.UpsertActive(ctx, tx, meta.ShopID, meta.Plan, now, now.AddDate(0, 1, 0)); err != nil {
				return fmt.Errorf("upsert subscription: %w", err)
			}
			return s.shopRepo.SetActive(ctx, tx, meta.ShopID, true)
		})
	}

	return fmt.Errorf("no payment row and no usable metadata for reference %s", reference)
}

func (s *paymentServiceImpl) notifyOrderPaid(ctx context.Context, order *model.Order, code *model.RedemptionCode) error {
	shop, err := s.shopRepo.FindByID(ctx, order.ShopID)
	if err != nil {
		return err
	}
	if shop.WhatsappNumber == "" {
		return nil
	}

	text := fmt.Sprintf("Order %s has been paid. Delivery code: %s", order.OrderNumber, code.Code)
	return s.whatsappClient.SendMessage(ctx, shop.WhatsappNumber, text)
}

// bestEffort runs a non-critical side effect. Failures are logged, never
// propagated; the primary state transition has already committed.
func bestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("best-effort %s: %v", name, err)
	}
}
