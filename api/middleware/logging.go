package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"method":    r.Method,
					"path":      r.URL.Path,
					"remote_ip": clientIP(r),
				})
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			if logg != nil {
				logg.Debug(ctx, "request.start")
			}

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			if logg != nil {
				fields := map[string]any{
					"status":      rec.status,
					"duration_ms": time.Since(start).Milliseconds(),
				}
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					fields["route"] = rctx.RoutePattern()
				}
				logg.Info(logg.WithFields(ctx, fields), "request.complete")
			}
		})
	}
}
