package controllers

import (
	"context"
	"net/http"

	"github.com/medstore/medstore-backend/api/responses"
	"github.com/medstore/medstore-backend/pkg/config"
	"github.com/medstore/medstore-backend/pkg/logger"
)

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DBProber runs the trivial query behind /api/health.
type DBProber interface {
	ProbeOne(ctx context.Context) (int, error)
}

// DBHealth answers {status:"ok", db:1} when SELECT 1 succeeds.
func DBHealth(db DBProber, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if db == nil {
			responses.WriteSuccessStatus(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		one, err := db.ProbeOne(ctx)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "health.db_failed", err)
			}
			responses.WriteSuccessStatus(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ok", "db": one})
	}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Medstore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports 503 while any named dependency fails its ping. Nil
// pingers are skipped so optional dependencies can be passed unconditionally.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Medstore-Env", cfg.App.Env)

		checks := map[string]string{}
		ready := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				ready = false
				checks[name] = "down"
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "dependency", name), "health.dependency_down")
				}
				continue
			}
			checks[name] = "up"
		}

		if !ready {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": checks})
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
