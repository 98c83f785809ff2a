package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shoplink/internal/dto"
	"shoplink/internal/middleware"
	"shoplink/internal/service"
)

type StoreHandler struct {
	storeService service.StoreService
}

func NewStoreHandler(storeService service.StoreService) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
	}
}

func (h *StoreHandler) CreateShop(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateShopRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	shop, err := h.storeService.CreateShop(ctx, middleware.UserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, shop)
}

func (h *StoreHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.storeService.CreateOrder(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, order)
}

func (h *StoreHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, items, err := h.storeService.GetOrder(ctx, uint(orderID))
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, map[string]interface{}{
		"order": order,
		"items": items,
	})
}
