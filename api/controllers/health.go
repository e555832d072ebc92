package controllers

import (
	"net/http"

	"github.com/tomasvidal/stockpilot-backend/api/responses"
	"github.com/tomasvidal/stockpilot-backend/pkg/config"
	"github.com/tomasvidal/stockpilot-backend/pkg/db"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
	"github.com/tomasvidal/stockpilot-backend/pkg/logger"
	"github.com/tomasvidal/stockpilot-backend/pkg/redis"
)

const envHeader = "X-StockPilot-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when both backing stores answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
