package controllers

import (
	"context"
	"net/http"

	"github.com/kalaconnect/kalaconnect-backend/api/responses"
	"github.com/kalaconnect/kalaconnect-backend/pkg/config"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

// Pinger is the readiness surface shared by the backing clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KalaConnect-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency; nil pingers are skipped so the
// API can run without optional backends in dev.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KalaConnect-Env", cfg.App.Env)

		for name, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
