package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shoplink/internal/config"
)

// WhatsAppClient sends outbound messages through the gateway. The core never
// depends on delivery succeeding; callers treat every send as best-effort.
type WhatsAppClient interface {
	SendMessage(ctx context.Context, toNumber, text string) error
}

type whatsAppClientImpl struct {
	httpClient *http.Client
	gatewayURL string
	apiKey     string
}

func NewWhatsAppClient(cfg *config.WhatsApp) WhatsAppClient {
	return &whatsAppClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
	}
}

func (c *whatsAppClientImpl) SendMessage(ctx context.Context, toNumber, text string) error {
	if c.gatewayURL == "" {
		return fmt.Errorf("whatsapp gateway not configured")
	}

	payload := map[string]string{
		"to":   toNumber,
		"body": text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.gatewayURL+"/messages", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp gateway error %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
