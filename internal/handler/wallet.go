package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shoplink/internal/middleware"
	"shoplink/internal/service"
)

type WalletHandler struct {
	walletService service.WalletService
}

func NewWalletHandler(walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

func (h *WalletHandler) GetWallet(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := strconv.ParseUint(c.Param("shop_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid shop id")
	}

	wallet, err := h.walletService.GetWalletForOwner(ctx, uint(shopID), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, wallet)
}
