package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	app_carts "storefront/internal/app/carts"
	app_catalog "storefront/internal/app/catalog"
	app_checkout "storefront/internal/app/checkout"
	app_orders "storefront/internal/app/orders"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/domain"
	http_carts "storefront/internal/handler/http/carts"
	http_catalog "storefront/internal/handler/http/catalog"
	http_checkout "storefront/internal/handler/http/checkout"
	"storefront/internal/handler/http/middleware"
	http_orders "storefront/internal/handler/http/orders"
	"storefront/internal/infrastructure/database"
	"storefront/internal/infrastructure/kafka"
	"storefront/internal/outbox"
	"storefront/internal/payment"
	postgres_cart_repo "storefront/internal/repository/cart_repo/postgres"
	postgres_order_repo "storefront/internal/repository/order_repo/postgres"
	postgres_outbox_repo "storefront/internal/repository/outbox_repo/postgres"
	postgres_product_repo "storefront/internal/repository/product_repo/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Storefront starting...")

	dbConfig := database.DBConfig{
		Host:     cfg.DBConfig.DBHost,
		Port:     cfg.DBConfig.DBPort,
		User:     cfg.DBConfig.DBUser,
		Password: cfg.DBConfig.DBPassword,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.DBSSLMode,
	}

	var db *sql.DB
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			appLogger.Info("Connected to PostgreSQL database")
			break
		}
		appLogger.Warn(fmt.Sprintf("Failed to connect to database (attempt %d/%d): %v. Retrying in %s...", i+1, maxRetries, err, retryDelay))
		time.Sleep(retryDelay)
	}
	if db == nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		}
	}()

	appLogger.Info("Running database migrations...")
	migrateDSN := "postgres://" + cfg.GetDBMigrationConnectionString()
	m, err := migrate.New(cfg.MigrationsPath, migrateDSN)
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed")

	kafkaProducer, err := kafka.NewProducer(cfg.GetKafkaBrokers(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Kafka producer", zap.Error(err))
	}
	defer func() {
		if err := kafkaProducer.Close(); err != nil {
			appLogger.Error("Error closing Kafka producer", zap.Error(err))
		}
	}()

	// One cache per entity type, injected everywhere that reads it and closed
	// on shutdown. Stock checks never consult these.
	productCache := cache.New[string, *domain.Product](cfg.CacheTTL, cfg.CacheSweep)
	orderCache := cache.New[string, *domain.Order](cfg.CacheTTL, cfg.CacheSweep)
	defer productCache.Close()
	defer orderCache.Close()

	orderRepository := postgres_order_repo.NewOrderRepository(db, appLogger)
	productRepository := postgres_product_repo.NewProductRepository(db, appLogger)
	cartRepository := postgres_cart_repo.NewCartRepository(db, appLogger)
	outboxRepository := postgres_outbox_repo.NewOutboxRepository(db, appLogger)

	gateway := payment.NewPayPalGateway(
		cfg.Payment.BaseURL,
		cfg.Payment.ClientID,
		cfg.Payment.ClientSecret,
		cfg.Payment.Currency,
		cfg.Payment.Timeout,
		appLogger.With(zap.String("component", "PaymentGateway")),
	)

	checkoutService := app_checkout.NewCheckoutService(
		database.NewTxManager(db),
		orderRepository,
		productRepository,
		cartRepository,
		outboxRepository,
		gateway,
		productCache,
		orderCache,
		app_checkout.Options{
			EventTopic:     cfg.KafkaOrderEventTopic,
			ReturnURL:      cfg.Payment.ReturnURL,
			CancelURL:      cfg.Payment.CancelURL,
			GatewayTimeout: cfg.Payment.Timeout,
		},
		appLogger.With(zap.String("component", "CheckoutService")),
	)
	cartService := app_carts.NewCartService(cartRepository, productRepository, appLogger.With(zap.String("component", "CartService")))
	orderService := app_orders.NewOrderService(orderRepository, orderCache, appLogger.With(zap.String("component", "OrderService")))
	catalogService := app_catalog.NewCatalogService(productRepository, productCache, appLogger.With(zap.String("component", "CatalogService")))

	outboxProcessor := outbox.NewProcessor(outboxRepository, kafkaProducer, appLogger.With(zap.String("component", "OutboxProcessor")))
	outboxCtx, outboxCancel := context.WithCancel(context.Background())
	defer outboxCancel()
	go outboxProcessor.Run(outboxCtx, cfg.OutboxPollInterval, cfg.OutboxPollTimeout)
	appLogger.Info("Transactional outbox sender started")

	r := chi.NewRouter()
	r.Use(chi_middleware.RequestID)
	r.Use(chi_middleware.Recoverer)

	authn := middleware.Auth([]byte(cfg.JWTSecret), appLogger.With(zap.String("component", "AuthMiddleware")))

	r.Route("/api", func(r chi.Router) {
		http_catalog.RegisterRoutes(r, catalogService, appLogger)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			http_checkout.RegisterRoutes(r, checkoutService, appLogger)
			http_carts.RegisterRoutes(r, cartService, appLogger)
			http_orders.RegisterRoutes(r, orderService, appLogger)
		})
	})

	serverAddr := fmt.Sprintf(":%d", cfg.ServerPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	appLogger.Info("Storefront started", zap.String("address", serverAddr))

	<-sigChan

	appLogger.Info("Shutting down storefront...")
	outboxCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Graceful shutdown failed", zap.Error(err))
	}
	appLogger.Info("Storefront stopped.")
}
