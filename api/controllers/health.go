package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/nakawin/casino-backend/api/responses"
	"github.com/nakawin/casino-backend/pkg/config"
	"github.com/nakawin/casino-backend/pkg/db"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/logger"
	"github.com/nakawin/casino-backend/pkg/redis"
)

const readinessTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Nakawin-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the dependencies the API cannot serve without.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Nakawin-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = "down"
				healthy = false
			} else {
				checks["database"] = "up"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
			} else {
				checks["redis"] = "up"
			}
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").
				WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
