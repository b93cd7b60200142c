package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/accounts-backend/api/responses"
	pkgerrors "github.com/angelmondragon/accounts-backend/pkg/errors"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
)

const (
	envHeader    = "X-Accounts-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is anything readiness should check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency. Nil entries are skipped.
func HealthReady(env string, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var failed error
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable")
				}
				continue
			}
			checks[name] = "ok"
		}

		if failed != nil {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "checks", checks), "health.ready.failed")
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": checks})
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
