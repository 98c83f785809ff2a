package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"shoplink/internal/provider"
	"shoplink/internal/service"
)

func respondOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// respondError maps the service error taxonomy onto HTTP statuses and the
// `{success:false, error}` body the storefront expects.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrShopNotFound),
		errors.Is(err, service.ErrCodeNotFound),
		errors.Is(err, service.ErrProofNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrUnknownProvider),
		errors.Is(err, service.ErrUnknownPlan),
		errors.Is(err, service.ErrProofAlreadyReviewed):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrVerificationFailed),
		errors.Is(err, service.ErrProviderInit):
		status = http.StatusBadGateway
	case errors.Is(err, provider.ErrNotConfigured):
		status = http.StatusInternalServerError
	}

	return c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}
