package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchpay/internal/config"
	"matchpay/internal/db"
	"matchpay/internal/events"
	"matchpay/internal/jobs"
	"matchpay/internal/logger"
	"matchpay/internal/notify"
	"matchpay/internal/premium"
	"matchpay/internal/server"
	"matchpay/internal/settlement"
	"matchpay/internal/vnpay"
	"matchpay/internal/wallet"
)

func main() {
	logger.Init()
	logger.Info("starting matchpay payment service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}
	logger.Info("migrations completed")

	ledger := wallet.NewRepository(database)
	catalog := premium.NewRepository(database)

	notifier := notify.New(cfg.RedisAddr, notify.NewRepository(database))
	defer notifier.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.Start(ctx)

	var publisher settlement.Publisher
	if cfg.AmqpURL != "" {
		p, err := events.NewPublisher(cfg.AmqpURL)
		if err != nil {
			logger.Warnf("settlement event publisher unavailable: %v", err)
		} else {
			defer p.Close()
			publisher = p
			logger.Info("settlement event publisher connected")
		}
	}

	engine := settlement.NewEngine(settlement.Deps{
		Gateway: &vnpay.Config{
			TmnCode:    cfg.VNPTmnCode,
			HashSecret: cfg.VNPHashSecret,
			PayURL:     cfg.VNPPayURL,
			ReturnURL:  cfg.VNPReturnURL,
		},
		Ledger:         ledger,
		Catalog:        catalog,
		Activator:      catalog,
		Notifier:       notifier,
		Publisher:      publisher,
		OperatorUserID: cfg.OperatorUserID,
		SuccessURL:     cfg.PaymentSuccessURL,
		FailureURL:     cfg.PaymentFailureURL,
	})

	scheduler := jobs.NewScheduler(ledger, catalog, time.Duration(cfg.PendingTTLMinutes)*time.Minute)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := server.New(database, cfg, engine)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("server error: %v", err)
	}

	logger.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("error during server shutdown: %v", err)
	}

	logger.Info("server stopped")
}
