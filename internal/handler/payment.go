package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shoplink/internal/dto"
	"shoplink/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) InitializeOrderPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.InitializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.paymentService.InitializeOrderPayment(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, result)
}

func (h *PaymentHandler) InitializeSubscriptionPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.InitializeSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.paymentService.InitializeSubscriptionPayment(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, result)
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing reference")
	}

	result, err := h.paymentService.VerifyPayment(ctx, req.Provider, req.Reference)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, result)
}
