package dto

type CreateShopRequest struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	WhatsappNumber string `json:"whatsapp_number"`
}

type OrderItemRequest struct {
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type CreateOrderRequest struct {
	ShopID        uint                `json:"shop_id"`
	CustomerID    string              `json:"customer_id"`
	PaymentMethod string              `json:"payment_method"`
	Items         []*OrderItemRequest `json:"items"`
}

type InitializePaymentRequest struct {
	Provider    string `json:"provider"`
	OrderID     uint   `json:"order_id"`
	Email       string `json:"email"`
	CallbackURL string `json:"callback_url"`
	Amount      int64  `json:"amount,omitempty"` // defaults to the order total
}

type InitializeSubscriptionRequest struct {
	Provider    string `json:"provider"`
	ShopID      uint   `json:"shop_id"`
	Plan        string `json:"plan"`
	Email       string `json:"email"`
	CallbackURL string `json:"callback_url"`
}

type InitializeResponse struct {
	Reference string `json:"reference"`
	HostedURL string `json:"hosted_url"`
}

type VerifyPaymentRequest struct {
	Provider  string `json:"provider"`
	Reference string `json:"reference"`
}

type VerifyPaymentResponse struct {
	Reference      string `json:"reference"`
	Status         string `json:"status"`
	OrderID        uint   `json:"order_id,omitempty"`
	RedemptionCode string `json:"redemption_code,omitempty"`
}

type RedemptionViewItem struct {
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type RedemptionView struct {
	Code        string               `json:"code"`
	OrderID     uint                 `json:"order_id"`
	OrderNumber string               `json:"order_number"`
	OrderStatus string               `json:"order_status"`
	Total       int64                `json:"total"`
	ShopName    string               `json:"shop_name"`
	ShopSlug    string               `json:"shop_slug"`
	Items       []RedemptionViewItem `json:"items"`
}

type ConfirmDeliveryRequest struct {
	Code string `json:"code"`
}

type ConfirmReceiptRequest struct {
	Code string `json:"code"`
}

type DirectConfirmRequest struct {
	OrderID uint `json:"order_id"`
}

type SubmitProofRequest struct {
	PaymentType   string `json:"payment_type"` // order, subscription
	ReferenceID   uint   `json:"reference_id"`
	ShopID        uint   `json:"shop_id"`
	Amount        int64  `json:"amount"`
	ProofImageURL string `json:"proof_image_url"`
}

type ReviewProofRequest struct {
	Approve bool `json:"approve"`
}
