package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shoplink/internal/client"
	"shoplink/internal/model"
	"shoplink/internal/provider"
	"shoplink/internal/provider/mocks"
	"shoplink/internal/repository"
)

var testDBCounter int64

// Each test gets its own named in-memory database; cache=shared keeps the
// pool's connections on the same store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := client.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

type noopWhatsApp struct{}

func (noopWhatsApp) SendMessage(ctx context.Context, toNumber, text string) error {
	return nil
}

type testEnv struct {
	db            *gorm.DB
	providerMock  *mocks.MockClient
	shopRepo      repository.ShopRepository
	orderRepo     repository.OrderRepository
	paymentRepo   repository.PaymentRepository
	walletRepo    repository.WalletRepository
	codeRepo      repository.RedemptionCodeRepository
	subRepo       repository.SubscriptionRepository
	proofRepo     repository.PaymentProofRepository
	walletService WalletService
	redemption    RedemptionService
	payments      PaymentService
	proofs        ProofService
}

func newTestEnv(t *testing.T, ctrl *gomock.Controller) *testEnv {
	t.Helper()

	db := newTestDB(t)

	providerMock := mocks.NewMockClient(ctrl)
	providerMock.EXPECT().Name().Return("paystack").AnyTimes()

	e := &testEnv{
		db:           db,
		providerMock: providerMock,
		shopRepo:     repository.NewShopRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		paymentRepo:  repository.NewPaymentRepository(db),
		walletRepo:   repository.NewWalletRepository(db),
		codeRepo:     repository.NewRedemptionCodeRepository(db),
		subRepo:      repository.NewSubscriptionRepository(db),
		proofRepo:    repository.NewPaymentProofRepository(db),
	}

	e.walletService = NewWalletService(db, e.shopRepo, e.paymentRepo, e.walletRepo)
	e.redemption = NewRedemptionService(db, e.orderRepo, e.shopRepo, e.codeRepo, e.paymentRepo, e.walletService)
	e.payments = NewPaymentService(
		db, []provider.Client{providerMock}, 5,
		e.orderRepo, e.shopRepo, e.paymentRepo, e.subRepo, e.proofRepo,
		e.redemption, e.walletService, noopWhatsApp{},
	)
	e.proofs = NewProofService(
		db, 5, []string{"admin-1"},
		e.proofRepo, e.orderRepo, e.shopRepo, e.paymentRepo, e.subRepo,
		e.redemption, e.walletService,
	)
	return e
}

func (e *testEnv) seedShop(t *testing.T, owner string) *model.Shop {
	t.Helper()

	shop := &model.Shop{
		OwnerUserID:    owner,
		Name:           "Ada Fabrics",
		Slug:           fmt.Sprintf("ada-fabrics-%d", atomic.AddInt64(&testDBCounter, 1)),
		WhatsappNumber: "",
	}
	if err := e.shopRepo.Create(context.Background(), shop); err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	return shop
}

func (e *testEnv) seedOrder(t *testing.T, shopID uint, total int64) *model.Order {
	t.Helper()

	order := &model.Order{
		ShopID:        shopID,
		OrderNumber:   fmt.Sprintf("SL-%d", atomic.AddInt64(&testDBCounter, 1)),
		Subtotal:      total,
		Total:         total,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}
	if err := e.orderRepo.Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func (e *testEnv) walletBalance(t *testing.T, shopID uint) (balance, earned int64) {
	t.Helper()

	wallet, err := e.walletRepo.GetByShopID(context.Background(), shopID)
	if err != nil {
		return 0, 0
	}
	return wallet.Balance, wallet.TotalEarned
}

func (e *testEnv) codeCount(t *testing.T, orderID uint) int64 {
	t.Helper()

	var count int64
	if err := e.db.Model(&model.RedemptionCode{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		t.Fatalf("count codes: %v", err)
	}
	return count
}
