package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/acostajs/vanier-ceramic-shop/internal/clients"
	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/events"
	"github.com/acostajs/vanier-ceramic-shop/internal/gateway"
	"github.com/acostajs/vanier-ceramic-shop/internal/handlers"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/repository"
	"github.com/acostajs/vanier-ceramic-shop/internal/server"
	"github.com/acostajs/vanier-ceramic-shop/internal/service"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New("shop")

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	productRepo := repository.NewPostgresProductRepository(db, logger)
	accountRepo := repository.NewPostgresAccountRepository(db, logger)
	cartRepo := repository.NewPostgresCartRepository(db, logger)
	orderRepo := repository.NewPostgresOrderRepository(db, logger)
	productCache := repository.NewRedisProductCache(cfg.Redis)

	stripeClient := gateway.NewStripeClient(cfg.Stripe, logger)
	notificationClient := clients.NewHTTPNotificationClient(cfg.NotificationService, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	catalogService := service.NewCatalogService(productRepo, productCache, cfg)
	cartService := service.NewCartService(cartRepo, catalogService)
	orderService := service.NewOrderService(orderRepo, catalogService, eventPublisher, notificationClient, cfg)
	checkoutService := service.NewCheckoutService(cartRepo, orderRepo, accountRepo, stripeClient, eventPublisher, cfg)
	webhookService := service.NewWebhookService(orderRepo, accountRepo, orderService)

	h := handlers.NewHandlers(
		catalogService,
		cartService,
		checkoutService,
		orderService,
		webhookService,
		stripeClient,
		cfg,
	)

	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{"port": cfg.Server.Port})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server", logging.Fields{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited", logging.Fields{})
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
