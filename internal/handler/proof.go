package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shoplink/internal/dto"
	"shoplink/internal/middleware"
	"shoplink/internal/service"
)

type ProofHandler struct {
	proofService service.ProofService
}

func NewProofHandler(proofService service.ProofService) *ProofHandler {
	return &ProofHandler{
		proofService: proofService,
	}
}

func (h *ProofHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SubmitProofRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	proof, err := h.proofService.Submit(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, proof)
}

func (h *ProofHandler) Review(c echo.Context) error {
	ctx := c.Request().Context()

	proofID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid proof id")
	}

	var req dto.ReviewProofRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.proofService.Review(ctx, uint(proofID), req.Approve, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}

	return respondOK(c, map[string]bool{"approved": req.Approve})
}

func (h *ProofHandler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := strconv.ParseUint(c.QueryParam("shop_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid shop id")
	}

	proofs, err := h.proofService.ListPending(ctx, uint(shopID), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, proofs)
}
