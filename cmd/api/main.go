package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"marketplace-settlement/internal/client"
	"marketplace-settlement/internal/clock"
	"marketplace-settlement/internal/config"
	"marketplace-settlement/internal/logger"
	"marketplace-settlement/internal/repository"
	"marketplace-settlement/internal/server"
	"marketplace-settlement/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	zaplog, err := logger.NewZapLog(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer zaplog.Sync()

	db := client.InitMysqlClient(cfg.DatabaseURL)
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	clk := clock.NewSystem()

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	settlementService, err := service.NewSettlementService(
		db, stripeClient, clk, zaplog, cfg.Settlement,
		productRepo,
		orderRepo,
		payoutRepo,
		sellerRepo,
		webhookEventRepo,
	)
	if err != nil {
		zaplog.Fatal("init settlement service", zap.Error(err))
	}

	payoutService := service.NewPayoutService(clk, zaplog, payoutRepo, sellerRepo)

	interval, err := time.ParseDuration(cfg.Settlement.ReleaseInterval)
	if err != nil {
		zaplog.Fatal("parse release interval", zap.Error(err))
	}

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	scheduler := service.NewReleaseScheduler(settlementService, interval, zaplog)
	go scheduler.Run(schedulerCtx)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(settlementService, payoutService, cfg.AuthSecret)

	zaplog.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			zaplog.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	zaplog.Info("signal received, starting graceful shutdown")

	schedulerCancel()

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		zaplog.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
