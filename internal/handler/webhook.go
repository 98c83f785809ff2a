package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"shoplink/internal/provider"
	"shoplink/internal/service"
)

type WebhookHandler struct {
	paymentService service.PaymentService
}

func NewWebhookHandler(paymentService service.PaymentService) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
	}
}

// HandleProviderWebhook acknowledges the provider with a bare 200 once the
// request is authenticated, no matter how reconciliation went; anything else
// invites a retry storm. Signature failures are the one hard rejection and
// happen before any state is touched.
func (h *WebhookHandler) HandleProviderWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	providerName := c.Param("provider")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "cannot read body")
	}

	err = h.paymentService.HandleWebhook(ctx, providerName, c.Request().Header, body)
	switch {
	case err == nil:
		return c.String(http.StatusOK, "OK")
	case errors.Is(err, provider.ErrInvalidSignature):
		log.Printf("webhook %s: rejected signature from %s", providerName, c.RealIP())
		return c.String(http.StatusUnauthorized, "invalid signature")
	case errors.Is(err, provider.ErrNotConfigured):
		return c.String(http.StatusInternalServerError, "provider not configured")
	case errors.Is(err, service.ErrUnknownProvider):
		return c.String(http.StatusNotFound, "unknown provider")
	default:
		// Parse failures: nothing was mutated, a retry cannot help.
		log.Printf("webhook %s: %v", providerName, err)
		return c.String(http.StatusBadRequest, "bad payload")
	}
}
