package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrInvalidSignature means the webhook request could not be authenticated.
// Handlers must reject the request before any state is touched.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrNotConfigured means the provider secret is absent.
var ErrNotConfigured = errors.New("payment provider not configured")

// Metadata is round-tripped through the provider so reconciliation can find
// the local entities even when the pending Payment row went missing.
type Metadata struct {
	OrderID uint   `json:"order_id,omitempty"`
	ShopID  uint   `json:"shop_id,omitempty"`
	Plan    string `json:"plan,omitempty"`
}

type InitializeRequest struct {
	Reference   string
	Amount      int64 // minor units
	Currency    string
	Email       string
	CallbackURL string
	Metadata    Metadata
}

type VerifyResult struct {
	Reference     string
	TransactionID string
	Amount        int64
	Status        string
	Metadata      Metadata
}

// WebhookEvent is the canonical form of a provider push. ChargeCompleted is
// true only for the single event type that means "charge completed with
// successful status"; everything else is acknowledged and dropped.
type WebhookEvent struct {
	ChargeCompleted bool
	Reference       string
	TransactionID   string
	Amount          int64
	Status          string
	Metadata        Metadata
}

//go:generate mockgen -destination=mocks/provider.go -package=mocks shoplink/internal/provider Client

// Client is the adapter every payment provider implements. One canonical
// reconciliation routine consumes it; provider quirks stay in the adapters.
type Client interface {
	Name() string
	Initialize(ctx context.Context, req *InitializeRequest) (string, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
	ParseWebhookEvent(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error)
}

// IsSuccessStatus matches the providers' differing success vocabularies.
func IsSuccessStatus(status string) bool {
	switch strings.ToLower(status) {
	case "success", "successful", "completed":
		return true
	}
	return false
}
