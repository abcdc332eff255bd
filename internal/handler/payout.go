package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/middleware"
	"marketplace-settlement/internal/service"
)

type PayoutHandler struct {
	payoutService service.PayoutService
}

func NewPayoutHandler(payoutService service.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

func (h *PayoutHandler) ListPayouts(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := pageParams(c)

	result, err := h.payoutService.ListForSeller(ctx, middleware.UserID(c), page, pageSize)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PayoutHandler) GetPayout(c echo.Context) error {
	ctx := c.Request().Context()

	payout, err := h.payoutService.GetPayout(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, payout)
}

func (h *PayoutHandler) GetSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	schedule, err := h.payoutService.GetSchedule(ctx, middleware.UserID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, schedule)
}

func (h *PayoutHandler) SetSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	schedule, err := h.payoutService.SetSchedule(ctx, middleware.UserID(c), &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, schedule)
}
