package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shoplink/internal/dto"
	"shoplink/internal/model"
	"shoplink/internal/repository"
)

func newStoreService(t *testing.T) (StoreService, repository.ShopRepository) {
	t.Helper()

	db := newTestDB(t)
	shopRepo := repository.NewShopRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	return NewStoreService(shopRepo, orderRepo), shopRepo
}

func TestCreateShop(t *testing.T) {
	svc, _ := newStoreService(t)

	shop, err := svc.CreateShop(context.Background(), "seller-1", &dto.CreateShopRequest{
		Name:           "Ada Fabrics",
		Slug:           "  Ada-Fabrics  ",
		WhatsappNumber: "+2348012345678",
	})
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}
	if shop.Slug != "ada-fabrics" {
		t.Fatalf("slug %q not normalized", shop.Slug)
	}
	if shop.IsActive {
		t.Fatal("new shop must start inactive")
	}

	if _, err := svc.CreateShop(context.Background(), "seller-1", &dto.CreateShopRequest{Name: "No Slug"}); err == nil {
		t.Fatal("shop without slug must be rejected")
	}
}

func TestCreateOrder(t *testing.T) {
	svc, shopRepo := newStoreService(t)

	shop := &model.Shop{OwnerUserID: "seller-1", Name: "Ada Fabrics", Slug: "ada-fabrics"}
	if err := shopRepo.Create(context.Background(), shop); err != nil {
		t.Fatalf("seed shop: %v", err)
	}

	order, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		ShopID:        shop.ID,
		CustomerID:    "buyer-1",
		PaymentMethod: "paystack",
		Items: []*dto.OrderItemRequest{
			{ProductName: "Ankara wrapper", Quantity: 2, UnitPrice: 4000},
			{ProductName: "Head tie", Quantity: 1, UnitPrice: 2000},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Total != 10000 || order.Subtotal != 10000 {
		t.Fatalf("total %d, want 10000", order.Total)
	}
	if !strings.HasPrefix(order.OrderNumber, "SL-") {
		t.Fatalf("order number %q missing SL prefix", order.OrderNumber)
	}
	if order.Status != model.OrderStatusPending || order.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("new order state status=%q payment_status=%q", order.Status, order.PaymentStatus)
	}

	got, items, err := svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.ID != order.ID || len(items) != 2 {
		t.Fatalf("get order returned %d items", len(items))
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, shopRepo := newStoreService(t)

	shop := &model.Shop{OwnerUserID: "seller-1", Name: "Ada Fabrics", Slug: "ada-fabrics"}
	if err := shopRepo.Create(context.Background(), shop); err != nil {
		t.Fatalf("seed shop: %v", err)
	}

	if _, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		ShopID: 999,
		Items:  []*dto.OrderItemRequest{{ProductName: "X", Quantity: 1, UnitPrice: 100}},
	}); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}

	if _, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{ShopID: shop.ID}); err == nil {
		t.Fatal("order without items must be rejected")
	}

	if _, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		ShopID: shop.ID,
		Items:  []*dto.OrderItemRequest{{ProductName: "X", Quantity: 0, UnitPrice: 100}},
	}); err == nil {
		t.Fatal("zero quantity must be rejected")
	}
}
