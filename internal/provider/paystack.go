package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"shoplink/internal/config"
)

const paystackChargeSuccess = "charge.success"

type paystackClient struct {
	httpClient *http.Client
	baseApiURL string
	secretKey  string
}

func NewPaystackClient(cfg *config.Paystack) Client {
	return &paystackClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: cfg.BaseApiURL,
		secretKey:  cfg.SecretKey,
	}
}

func (c *paystackClient) Name() string { return "paystack" }

type paystackInitResult struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackTransaction struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Metadata  json.RawMessage `json:"metadata"`
}

type paystackVerifyResult struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    paystackTransaction `json:"data"`
}

type paystackWebhookPayload struct {
	Event string              `json:"event"`
	Data  paystackTransaction `json:"data"`
}

func (c *paystackClient) Initialize(ctx context.Context, initReq *InitializeRequest) (string, error) {
	if c.secretKey == "" {
		return "", ErrNotConfigured
	}

	payload := map[string]interface{}{
		"email":        initReq.Email,
		"amount":       initReq.Amount,
		"currency":     initReq.Currency,
		"reference":    initReq.Reference,
		"callback_url": initReq.CallbackURL,
		"metadata":     initReq.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paystack error %d: %s", resp.StatusCode, string(b))
	}

	var result paystackInitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode paystack response: %w", err)
	}
	if !result.Status {
		return "", fmt.Errorf("paystack rejected initialize: %s", result.Message)
	}

	return result.Data.AuthorizationURL, nil
}

func (c *paystackClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/transaction/verify/%s", c.baseApiURL, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paystack error %d: %s", resp.StatusCode, string(b))
	}

	var result paystackVerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}
	if !result.Status {
		return nil, fmt.Errorf("paystack rejected verify: %s", result.Message)
	}

	return &VerifyResult{
		Reference:     result.Data.Reference,
		TransactionID: strconv.FormatInt(result.Data.ID, 10),
		Amount:        result.Data.Amount,
		Status:        result.Data.Status,
		Metadata:      decodeMetadata(result.Data.Metadata),
	}, nil
}

// ParseWebhookEvent authenticates the push with HMAC-SHA512 over the raw body
// before decoding anything from it.
func (c *paystackClient) ParseWebhookEvent(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	signature := headers.Get("x-paystack-signature")
	if signature == "" {
		return nil, ErrInvalidSignature
	}

	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrInvalidSignature
	}

	var payload paystackWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	return &WebhookEvent{
		ChargeCompleted: payload.Event == paystackChargeSuccess && IsSuccessStatus(payload.Data.Status),
		Reference:       payload.Data.Reference,
		TransactionID:   strconv.FormatInt(payload.Data.ID, 10),
		Amount:          payload.Data.Amount,
		Status:          payload.Data.Status,
		Metadata:        decodeMetadata(payload.Data.Metadata),
	}, nil
}

// Paystack echoes metadata back either as the object we sent or as a string
// when the charge was created outside the API.
func decodeMetadata(raw json.RawMessage) Metadata {
	var meta Metadata
	if len(raw) == 0 {
		return meta
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			_ = json.Unmarshal([]byte(s), &meta)
		}
	}
	return meta
}
