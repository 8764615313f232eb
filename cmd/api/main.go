package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/fleetstock-backend/api/routes"
	"github.com/angelmondragon/fleetstock-backend/internal/auth"
	"github.com/angelmondragon/fleetstock-backend/internal/fleets"
	"github.com/angelmondragon/fleetstock-backend/internal/inventory"
	"github.com/angelmondragon/fleetstock-backend/internal/orders"
	"github.com/angelmondragon/fleetstock-backend/internal/otp"
	"github.com/angelmondragon/fleetstock-backend/internal/summary"
	"github.com/angelmondragon/fleetstock-backend/internal/users"
	"github.com/angelmondragon/fleetstock-backend/pkg/auth/session"
	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/mailer"
	"github.com/angelmondragon/fleetstock-backend/pkg/metrics"
	"github.com/angelmondragon/fleetstock-backend/pkg/migrate"
	"github.com/angelmondragon/fleetstock-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Env:         cfg.App.Env,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx := context.Background()

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	fleetRepo := fleets.NewRepository(dbClient.DB())
	fleetService, err := fleets.NewService(fleetRepo, dbClient, logg)
	if err != nil {
		return err
	}
	if cfg.FeatureFlags.SeedFleets {
		if err := fleetService.EnsureDefaults(ctx, fleets.DefaultCatalog); err != nil {
			return err
		}
	}

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, logg)
	if err != nil {
		return err
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:      orderRepo,
		Inventory: inventoryRepo,
		Fleets:    fleetRepo,
		DB:        dbClient,
		Logger:    logg,
		Metrics:   metrics.NewOrderMetrics(registry),
		Location:  loc,
	})
	if err != nil {
		return err
	}

	summaryService, err := summary.NewService(orderRepo, fleetRepo, logg, loc, summary.DefaultLayout)
	if err != nil {
		return err
	}

	mail, err := mailer.New(*cfg, logg)
	if err != nil {
		return err
	}
	userRepo := users.NewRepository(dbClient.DB())
	otpService, err := otp.NewService(otp.ServiceParams{
		Repo:     otp.NewRepository(dbClient.DB()),
		Users:    userRepo,
		Mailer:   mail,
		Security: cfg.Security,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          userRepo,
		OTP:            otpService,
		SessionManager: sessionManager,
		Tx:             dbClient,
		JWTConfig:      cfg.JWT,
		Security:       cfg.Security,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		sessionManager,
		metrics.NewHTTPMetrics(registry),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		authService,
		otpService,
		inventoryService,
		orderService,
		fleetService,
		summaryService,
		loc,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"timezone": loc.String(),
		"driver":   cfg.DB.Driver,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCtx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
