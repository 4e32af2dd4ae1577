package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"vietqr-order-service/internal/client"
	"vietqr-order-service/internal/config"
	"vietqr-order-service/internal/logging"
	"vietqr-order-service/internal/repository"
	"vietqr-order-service/internal/server"
	"vietqr-order-service/internal/service"
	"vietqr-order-service/internal/sweeper"
	"vietqr-order-service/internal/webhook"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
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

	logger := logging.NewSugaredLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	db, err := client.InitSqliteClient(cfg.DatabasePath)
	if err != nil {
		logger.Fatalw("init database", "err", err)
	}
	qrClient := client.NewVietQRClient(&cfg.VietQR)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	if err := productRepo.Seed(context.Background()); err != nil {
		logger.Fatalw("seed products", "err", err)
	}

	reconciler := service.NewReconciler(orderRepo, productRepo, qrClient, cfg.Payment.AmountTolerance, logger)

	dedup := webhook.NewDedupWindow(cfg.Webhook.DedupWindow)
	ingress := webhook.NewIngress(cfg.Webhook.Secret, dedup, reconciler, logger)

	var sweep *sweeper.Sweeper
	if cfg.Payment.GracePeriod > 0 {
		sweep = sweeper.New(reconciler, cfg.Payment.GracePeriod, cfg.Payment.SweepInterval, logger)
		sweep.Start()
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(reconciler, ingress, cfg.JWTSecret, logger)

	logger.Infow("starting HTTP server", "addr", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("HTTP server error", "err", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown...")

	if sweep != nil {
		sweep.Stop()
	}
	if err := srv.Shutdown(); err != nil {
		logger.Fatalw("HTTP server shutdown error", "err", err)
	}
}
