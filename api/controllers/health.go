package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/maisonnoor/boutique-backend/api/responses"
	"github.com/maisonnoor/boutique-backend/pkg/config"
	"github.com/maisonnoor/boutique-backend/pkg/db"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/redis"
	"github.com/maisonnoor/boutique-backend/pkg/storage/gcs"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Boutique-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each wired dependency. GCS is optional: a nil client is
// reported as skipped, not failed.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Boutique-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		ping := func(name string, p interface{ Ping(context.Context) error }) {
			if p == nil {
				checks[name] = "skipped"
				return
			}
			if err := p.Ping(ctx); err != nil {
				logg.Error(ctx, "health."+name+".unreachable", err)
				checks[name] = "unavailable"
				healthy = false
				return
			}
			checks[name] = "ok"
		}

		ping("database", dbP)
		ping("redis", redisP)
		ping("gcs", gcsP)

		status := http.StatusOK
		state := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}
