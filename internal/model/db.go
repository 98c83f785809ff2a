package model

import "time"

// All amounts are stored in minor currency units.

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusShipped    = "shipped"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	PaymentRowPending = "pending"
	PaymentRowSuccess = "success"

	PaymentTypeOrder        = "order"
	PaymentTypeSubscription = "subscription"

	CodeStatusActive   = "active"
	CodeStatusRedeemed = "redeemed"

	SubscriptionStatusActive = "active"

	ProofStatusPending  = "pending"
	ProofStatusApproved = "approved"
	ProofStatusRejected = "rejected"
)

type Shop struct {
	ID             uint   `gorm:"primaryKey"`
	OwnerUserID    string `gorm:"size:64;index;not null"`
	Name           string `gorm:"size:128;not null"`
	Slug           string `gorm:"size:64;uniqueIndex;not null"`
	WhatsappNumber string `gorm:"size:32"`
	IsActive       bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Order struct {
	ID                  uint    `gorm:"primaryKey"`
	ShopID              uint    `gorm:"index;not null"`
	CustomerID          *string `gorm:"size:64;index"`
	OrderNumber         string  `gorm:"size:32;uniqueIndex;not null"`
	Subtotal            int64   `gorm:"not null"`
	Total               int64   `gorm:"not null"`
	Status              string  `gorm:"size:32;index;not null"` // pending, processing, completed, cancelled, shipped
	PaymentStatus       string  `gorm:"size:16;index;not null"` // pending, paid
	PaymentMethod       string  `gorm:"size:32"`
	RedemptionConfirmed bool    `gorm:"not null;default:false"`
	RedemptionCodeID    *uint
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type OrderItem struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     uint   `gorm:"index;not null"`
	ProductName string `gorm:"size:128;not null"`
	Quantity    int32  `gorm:"not null"`
	UnitPrice   int64  `gorm:"not null"`
	CreatedAt   time.Time
}

type Payment struct {
	ID                    uint   `gorm:"primaryKey"`
	OrderID               *uint  `gorm:"index"` // nil for subscription payments
	ShopID                uint   `gorm:"index;not null"`
	Amount                int64  `gorm:"not null"`
	PlatformFee           int64  `gorm:"not null"`
	SellerAmount          int64  `gorm:"not null"`
	Provider              string `gorm:"size:32;not null"`
	ProviderReference     string `gorm:"size:96;uniqueIndex;not null"`
	ProviderTransactionID string `gorm:"size:96;index"`
	PaymentType           string `gorm:"size:16;index;not null"` // order, subscription
	Plan                  string `gorm:"size:32"`
	Status                string `gorm:"size:16;index;not null"` // pending, success
	CreditedToSeller      bool   `gorm:"not null;default:false"`
	CreditedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type SellerWallet struct {
	ID          uint  `gorm:"primaryKey"`
	ShopID      uint  `gorm:"uniqueIndex;not null"`
	Balance     int64 `gorm:"not null;default:0"`
	TotalEarned int64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WalletTransaction is an append-only audit row written with every credit.
type WalletTransaction struct {
	ID        uint   `gorm:"primaryKey"`
	WalletID  uint   `gorm:"index;not null"`
	PaymentID *uint  `gorm:"index"`
	OrderID   *uint  `gorm:"index"`
	Amount    int64  `gorm:"not null"`
	Type      string `gorm:"size:16;not null"` // credit
	CreatedAt time.Time
}

type RedemptionCode struct {
	ID         uint    `gorm:"primaryKey"`
	OrderID    uint    `gorm:"uniqueIndex;not null"`
	ShopID     uint    `gorm:"index;not null"`
	Code       string  `gorm:"size:8;uniqueIndex;not null"`
	Status     string  `gorm:"size:16;index;not null"` // active, redeemed
	RedeemedBy *string `gorm:"size:64"`
	RedeemedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Subscription struct {
	ID                 uint   `gorm:"primaryKey"`
	ShopID             uint   `gorm:"uniqueIndex;not null"`
	Plan               string `gorm:"size:32;not null"`
	Status             string `gorm:"size:16;index;not null"`
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type PaymentProof struct {
	ID            uint    `gorm:"primaryKey"`
	PaymentType   string  `gorm:"size:16;index;not null"` // order, subscription
	ReferenceID   uint    `gorm:"index;not null"`         // order id, or shop id for subscriptions
	ShopID        uint    `gorm:"index;not null"`
	Amount        int64   `gorm:"not null"`
	ProofImageURL string  `gorm:"size:512"`
	Status        string  `gorm:"size:16;index;not null"` // pending, approved, rejected
	ReviewedBy    *string `gorm:"size:64"`
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
