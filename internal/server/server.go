package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"marketplace-settlement/internal/handler"
	"marketplace-settlement/internal/middleware"
	"marketplace-settlement/internal/service"
)

type Server struct {
	echo           *echo.Echo
	orderHandler   *handler.OrderHandler
	payoutHandler  *handler.PayoutHandler
	adminHandler   *handler.AdminHandler
	webhookHandler *handler.WebhookHandler
	authSecret     string
}

func NewServer(
	settlementService service.SettlementService,
	payoutService service.PayoutService,
	authSecret string,
) *Server {
	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	s := &Server{
		echo:           e,
		orderHandler:   handler.NewOrderHandler(settlementService),
		payoutHandler:  handler.NewPayoutHandler(payoutService),
		adminHandler:   handler.NewAdminHandler(settlementService),
		webhookHandler: handler.NewWebhookHandler(settlementService),
		authSecret:     authSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- processor webhook (signature-verified, no auth) --------
	api.POST("/webhook", s.webhookHandler.HandleProcessorEvent)

	auth := middleware.Auth(s.authSecret)

	// -------- buyer --------
	orders := api.Group("/orders", auth)
	orders.POST("", s.orderHandler.CreateOrder)
	orders.POST("/confirm", s.orderHandler.ConfirmPayment)
	orders.GET("", s.orderHandler.ListOrders)
	orders.GET("/:id", s.orderHandler.GetOrder)

	// -------- seller --------
	payouts := api.Group("/payouts", auth)
	payouts.GET("", s.payoutHandler.ListPayouts)
	payouts.GET("/schedule", s.payoutHandler.GetSchedule)
	payouts.PUT("/schedule", s.payoutHandler.SetSchedule)
	payouts.GET("/:id", s.payoutHandler.GetPayout)

	// -------- admin --------
	admin := api.Group("/admin", auth, middleware.RequireRole("admin"))
	admin.GET("/orders", s.adminHandler.ListOrders)
	admin.PATCH("/orders/:id/release-schedule", s.adminHandler.SetReleaseSchedule)
	admin.POST("/orders/:id/release", s.adminHandler.ReleaseOrder)
	admin.POST("/release-due", s.adminHandler.ReleaseAllDue)
	admin.POST("/payouts/:id/retry", s.adminHandler.RetryPayout)
	admin.GET("/sellers/:id/account", s.adminHandler.SellerAccountStatus)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
