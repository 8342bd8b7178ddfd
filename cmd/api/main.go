package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/inventory"
	"storefront/internal/metrics"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	"storefront/internal/promo"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file loaded, using process environment")
	}
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	outboxRepo := repository.NewOutboxRepository(pool, logger)

	validator, err := newPromoValidator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize promo validator: %w", err)
	}
	defer validator.Close()

	m := metrics.New()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(pool, cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, logger)
	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		DB:          pool,
		Orders:      orderRepo,
		Carts:       cartRepo,
		Products:    productRepo,
		Users:       repository.NewUserRepository(pool, logger),
		Idempotency: repository.NewIdempotencyRepository(pool, logger),
		Outbox:      outboxRepo,
		Stock:       inventory.NewGuard(m, logger),
		Pricing: pricing.NewEngine(pricing.Config{
			TaxRate:               cfg.Pricing.TaxRate,
			FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
			FlatShippingFee:       cfg.Pricing.FlatShippingFee,
		}),
		Promo:    validator,
		Payments: payment.NewMockGateway(logger),
		Recorder: m,
	}, service.CheckoutOptions{
		Timeout:                cfg.Checkout.Timeout,
		MaxOrderNumberAttempts: cfg.Checkout.MaxOrderNumberAttempts,
	}, logger)

	// Outbox relay
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		relay := events.NewRelay(outboxRepo, publisher, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize, logger)
		go relay.Run(ctx)
	} else {
		logger.Info().Msg("KAFKA_BROKERS not set, outbox relay disabled")
	}

	// Initialize router
	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Metrics:  m.Handler(),
	}, auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL), m, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the relay before draining requests
		cancel()

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newPromoValidator builds the promo validator: disabled, local files only,
// or S3 with local fallback.
func newPromoValidator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (promo.Validator, error) {
	if !cfg.Promo.Enabled {
		logger.Info().Msg("promo codes disabled")
		return promo.Disabled(), nil
	}

	fileLoader := promo.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := promo.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = promo.NewFallbackLoader(s3Loader, fileLoader, logger)
		}
	} else {
		logger.Info().Msg("using local file system for promo files (S3 disabled)")
	}

	return promo.NewValidator(ctx, promo.Config{
		Files:           cfg.Promo.Files,
		MinMatches:      cfg.Promo.MinMatches,
		DiscountPercent: cfg.Promo.DiscountPercent,
	}, loader, logger)
}
