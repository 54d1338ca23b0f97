package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medstore/medstore-backend/api/controllers"
	"github.com/medstore/medstore-backend/api/middleware"
	"github.com/medstore/medstore-backend/internal/customers"
	"github.com/medstore/medstore-backend/internal/medicines"
	"github.com/medstore/medstore-backend/internal/purchases"
	"github.com/medstore/medstore-backend/internal/reports"
	"github.com/medstore/medstore-backend/internal/sales"
	"github.com/medstore/medstore-backend/pkg/config"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/metrics"
	"github.com/medstore/medstore-backend/pkg/redis"
)

// Database is what the health endpoints need from the connection pool.
type Database interface {
	controllers.Pinger
	controllers.DBProber
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database Database,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	salesService sales.Service,
	medicineService medicines.Service,
	customerService customers.Service,
	purchaseService purchases.Service,
	reportService reports.Service,
) http.Handler {
	readyDeps := map[string]controllers.Pinger{"db": database}
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		readyDeps["redis"] = redisClient
		if cfg.FeatureFlags.Idempotency {
			idempotencyStore = redisClient
		}
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins),
		middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", controllers.DBHealth(database, logg))

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(salesService, logg))
			r.Post("/", controllers.SalesCreate(salesService, logg))
			r.Get("/{id}", controllers.SalesGet(salesService, logg))
			r.Put("/{id}", controllers.SalesUpdate(salesService, logg))
			r.Delete("/{id}", controllers.SalesDelete(salesService, logg))
		})

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", controllers.MedicinesList(medicineService, logg))
			r.Post("/", controllers.MedicinesCreate(medicineService, logg))
			r.Get("/{id}", controllers.MedicinesGet(medicineService, logg))
			r.Get("/{id}/stock", controllers.MedicinesStock(medicineService, logg))
			r.Put("/{id}", controllers.MedicinesUpdate(medicineService, logg))
			r.Delete("/{id}", controllers.MedicinesDelete(medicineService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomersList(customerService, logg))
			r.Post("/", controllers.CustomersCreate(customerService, logg))
			r.Get("/{id}", controllers.CustomersGet(customerService, logg))
			r.Put("/{id}", controllers.CustomersUpdate(customerService, logg))
			r.Delete("/{id}", controllers.CustomersDelete(customerService, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.PurchasesList(purchaseService, logg))
			r.Post("/", controllers.PurchasesCreate(purchaseService, logg))
			r.Delete("/{id}", controllers.PurchasesDelete(purchaseService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/low-stock", controllers.ReportsLowStock(reportService, logg))
			r.Get("/expiring", controllers.ReportsExpiring(reportService, logg))
			r.Get("/expired", controllers.ReportsExpired(reportService, logg))
			r.Get("/revenue", controllers.ReportsRevenue(reportService, logg))
			r.Get("/inventory-value", controllers.ReportsInventoryValue(reportService, logg))
		})
	})

	return r
}
