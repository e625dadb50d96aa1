package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/neoaplicacoes/customer-api/app/db"
	appLogger "github.com/neoaplicacoes/customer-api/app/logger"
	"github.com/neoaplicacoes/customer-api/app/observability/metrics"
	"github.com/neoaplicacoes/customer-api/config"
	"github.com/neoaplicacoes/customer-api/internal/api/address"
	"github.com/neoaplicacoes/customer-api/internal/api/auth"
	"github.com/neoaplicacoes/customer-api/internal/api/customer"
	"github.com/neoaplicacoes/customer-api/internal/api/user"
	"github.com/neoaplicacoes/customer-api/internal/router"
	"github.com/neoaplicacoes/customer-api/internal/seed"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	metricsHandler := metrics.InitProviders()
	appMetrics := metrics.InitAppMetrics()

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Dependency Injection ---
	tokenCodec, err := auth.NewTokenCodec(cfg.JWT)
	if err != nil {
		logger.Error("Invalid JWT configuration", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, tokenCodec, appMetrics, logger)
	loginThrottle := auth.NewLoginThrottle(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	authHandler := auth.NewAuthHandlerImpl(authService, loginThrottle, logger)

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, appMetrics, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	customerRepo := customer.NewPostgresCustomerRepo(pool, appMetrics, logger)
	customerService := customer.NewCustomerService(customerRepo, logger)
	customerHandler := customer.NewHandlerImpl(customerService, logger)

	addressRepo := address.NewPostgresAddressRepo(pool, logger)
	addressService := address.NewAddressService(addressRepo, logger)
	addressHandler := address.NewHandlerImpl(addressService, logger)

	if err := seed.Users(ctx, userRepo, logger); err != nil {
		logger.Error("Failed to seed default users", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Router ---
	apiRouter := router.SetupRouter(&router.Config{
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		CustomerHandler: customerHandler,
		AddressHandler:  addressHandler,
		Authenticate:    auth.Authenticate(logger, tokenCodec, authRepo),
		RequireAuth:     auth.RequireAuth(logger),
		RequireAdmin:    auth.RequireRole(logger, "ADMIN"),
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Handlers.Prometheus.Port),
		Handler: metricsMux,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		return slog.New(tint.NewHandler(os.Stdout, tintOpts))
	}

	jsonOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
}
