package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-settlement/internal/service"
)

type WebhookHandler struct {
	settlementService service.SettlementService
}

func NewWebhookHandler(settlementService service.SettlementService) *WebhookHandler {
	return &WebhookHandler{
		settlementService: settlementService,
	}
}

// HandleProcessorEvent ingests the processor's asynchronous notifications.
// The raw body is passed through untouched so signature verification sees
// exactly the signed bytes.
func (h *WebhookHandler) HandleProcessorEvent(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	if err := h.settlementService.HandleWebhook(ctx, body, sig); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
