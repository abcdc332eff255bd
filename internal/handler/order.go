package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/middleware"
	"marketplace-settlement/internal/service"
)

type OrderHandler struct {
	settlementService service.SettlementService
}

func NewOrderHandler(settlementService service.SettlementService) *OrderHandler {
	return &OrderHandler{
		settlementService: settlementService,
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.settlementService.CreateOrder(ctx, middleware.UserID(c), req.Items)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *OrderHandler) ConfirmPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.PaymentRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing payment_ref")
	}

	order, err := h.settlementService.ConfirmPayment(ctx, middleware.UserID(c), req.PaymentRef)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.settlementService.GetOrder(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := pageParams(c)

	result, err := h.settlementService.ListOrders(ctx, middleware.UserID(c), page, pageSize)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	return page, pageSize
}
