package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/service"
)

type AdminHandler struct {
	settlementService service.SettlementService
}

func NewAdminHandler(settlementService service.SettlementService) *AdminHandler {
	return &AdminHandler{
		settlementService: settlementService,
	}
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := pageParams(c)

	result, err := h.settlementService.AdminListOrders(ctx, page, pageSize)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) SetReleaseSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SetReleaseScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.settlementService.SetReleaseSchedule(ctx, c.Param("id"), req.ReleaseAt, req.HoldDays)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) ReleaseOrder(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.settlementService.Release(ctx, c.Param("id")); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "released"})
}

func (h *AdminHandler) ReleaseAllDue(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.settlementService.ReleaseAllDue(ctx)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) RetryPayout(c echo.Context) error {
	ctx := c.Request().Context()

	payout, err := h.settlementService.RetryPayout(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, payout)
}

func (h *AdminHandler) SellerAccountStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.settlementService.RefreshSellerAccount(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, status)
}
