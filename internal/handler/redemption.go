package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shoplink/internal/dto"
	"shoplink/internal/middleware"
	"shoplink/internal/service"
)

type RedemptionHandler struct {
	redemptionService service.RedemptionService
}

func NewRedemptionHandler(redemptionService service.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionService,
	}
}

func (h *RedemptionHandler) ViewByCode(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.Param("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing code")
	}

	view, err := h.redemptionService.ViewByCode(ctx, code)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, view)
}

func (h *RedemptionHandler) ConfirmDelivery(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.redemptionService.ConfirmDelivery(ctx, req.Code, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}

	return respondOK(c, map[string]string{"status": "redeemed"})
}

func (h *RedemptionHandler) ConfirmReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmReceiptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.redemptionService.ConfirmReceipt(ctx, req.Code, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}

	return respondOK(c, map[string]string{"status": "redeemed"})
}

// DirectConfirm is the session-less receipt confirmation used by buyers who
// checked out anonymously over WhatsApp.
func (h *RedemptionHandler) DirectConfirm(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DirectConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.redemptionService.ConfirmReceiptByOrder(ctx, req.OrderID); err != nil {
		return respondError(c, err)
	}

	return respondOK(c, map[string]string{"status": "confirmed"})
}
