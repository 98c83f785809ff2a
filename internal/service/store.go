package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shoplink/internal/dto"
	"shoplink/internal/model"
	"shoplink/internal/repository"
)

// StoreService covers the thin storefront surface the reconciliation core
// depends on: shops exist, orders exist. Catalog, cart and chat stay with
// the UI collaborators.
type StoreService interface {
	CreateShop(ctx context.Context, ownerUserID string, req *dto.CreateShopRequest) (*model.Shop, error)
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*model.Order, []*model.OrderItem, error)
}

type storeServiceImpl struct {
	shopRepo  repository.ShopRepository
	orderRepo repository.OrderRepository
}

func NewStoreService(shopRepo repository.ShopRepository, orderRepo repository.OrderRepository) StoreService {
	return &storeServiceImpl{
		shopRepo:  shopRepo,
		orderRepo: orderRepo,
	}
}

func (s *storeServiceImpl) CreateShop(ctx context.Context, ownerUserID string, req *dto.CreateShopRequest) (*model.Shop, error) {
	shop := &model.Shop{
		OwnerUserID:    ownerUserID,
		Name:           req.Name,
		Slug:           strings.ToLower(strings.TrimSpace(req.Slug)),
		WhatsappNumber: req.WhatsappNumber,
	}
	if shop.Name == "" || shop.Slug == "" {
		return nil, fmt.Errorf("shop name and slug are required")
	}

	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("store shop: %w", err)
	}

	return shop, nil
}

func (s *storeServiceImpl) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*model.Order, error) {
	if _, err := s.shopRepo.FindByID(ctx, req.ShopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("find shop: %w", err)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must have at least one item")
	}

	subtotal := int64(0)
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item quantity must be positive")
		}
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	order := &model.Order{
		ShopID:        req.ShopID,
		OrderNumber:   orderNumber(),
		Subtotal:      subtotal,
		Total:         subtotal,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: req.PaymentMethod,
	}
	if req.CustomerID != "" {
		customerID := req.CustomerID
		order.CustomerID = &customerID
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	items := make([]*model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = &model.OrderItem{
			OrderID:     order.ID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	if err := s.orderRepo.CreateOrderItems(ctx, items); err != nil {
		return nil, fmt.Errorf("store order items: %w", err)
	}

	return order, nil
}

func (s *storeServiceImpl) GetOrder(ctx context.Context, orderID uint) (*model.Order, []*model.OrderItem, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("find order: %w", err)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("get order items: %w", err)
	}

	return order, items, nil
}

func orderNumber() string {
	nonce := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("SL-%d-%s", time.Now().Unix(), nonce)
}
