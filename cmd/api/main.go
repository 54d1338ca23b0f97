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
	"go.uber.org/multierr"

	"github.com/medstore/medstore-backend/api/routes"
	"github.com/medstore/medstore-backend/internal/customers"
	"github.com/medstore/medstore-backend/internal/inventory"
	"github.com/medstore/medstore-backend/internal/medicines"
	"github.com/medstore/medstore-backend/internal/purchases"
	"github.com/medstore/medstore-backend/internal/reports"
	"github.com/medstore/medstore-backend/internal/sales"
	"github.com/medstore/medstore-backend/pkg/config"
	"github.com/medstore/medstore-backend/pkg/db"
	"github.com/medstore/medstore-backend/pkg/enums"
	"github.com/medstore/medstore-backend/pkg/instance"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/metrics"
	"github.com/medstore/medstore-backend/pkg/migrate"
	"github.com/medstore/medstore-backend/pkg/redis"
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
		Format:      cfg.App.LogFormat,
		Instance:    instance.GetID(),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	var redisClient *redis.Client
	if cfg.FeatureFlags.Idempotency {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			if cfg.App.IsProd() {
				return err
			}
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "redis unavailable, idempotency keys disabled")
			redisClient, err = nil, nil
		}
	}
	if redisClient != nil {
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	salesService, err := sales.NewService(sales.ServiceParams{
		Repo:        sales.NewRepository(dbClient.DB()),
		TxRunner:    dbClient,
		Stock:       inventory.Engine{},
		PricePolicy: enums.PricePolicy(cfg.Sales.PricePolicy),
		Metrics:     metrics.NewSalesMetrics(reg),
		Logger:      logg,
	})
	if err != nil {
		return err
	}
	medicineService, err := medicines.NewService(medicines.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	customerService, err := customers.NewService(customers.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	purchaseService, err := purchases.NewService(purchases.ServiceParams{
		Repo:     purchases.NewRepository(dbClient.DB()),
		TxRunner: dbClient,
		Stock:    inventory.Engine{},
		Logger:   logg,
	})
	if err != nil {
		return err
	}
	reportService, err := reports.NewService(dbClient.DB(), nil)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": dbClient.Driver(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, metrics.NewHTTPMetrics(reg), reg,
			salesService, medicineService, customerService, purchaseService, reportService),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
