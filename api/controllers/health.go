package controllers

import (
	"context"
	"net/http"

	"github.com/sampleloop/sampleloop-backend/api/responses"
	"github.com/sampleloop/sampleloop-backend/pkg/config"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

// Pinger is the readiness surface a dependency has to expose.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SampleLoop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the hard dependencies. A nil pinger is treated as not
// configured and skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SampleLoop-Env", cfg.App.Env)

		checks := map[string]Pinger{
			"database": db,
			"redis":    cache,
		}
		for name, pinger := range checks {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" not ready"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
