package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/accounts-backend/api/responses"
	"github.com/angelmondragon/accounts-backend/pkg/auth"
	"github.com/angelmondragon/accounts-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/accounts-backend/pkg/errors"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
)

// PerformerHeader names the caller when no token verification is configured.
const PerformerHeader = "X-Performing-User-Id"

// Performer resolves who is acting on the request. With a JWT secret the
// bearer token's subject is authoritative and the header is ignored; without
// one the header is trusted, which assumes a gateway in front. Authorization
// against the stored role happens in the service either way.
func Performer(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cfg.Enabled() {
				token := bearerToken(r)
				if token != "" {
					claims, err := auth.ParsePerformerToken(cfg, token)
					if err != nil {
						if logg != nil {
							logg.Warn(logg.WithField(r.Context(), "reason", err.Error()), "performer.token.invalid")
						}
						responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token"))
						return
					}
					id = claims.Subject
				}
			} else {
				id = strings.TrimSpace(r.Header.Get(PerformerHeader))
			}

			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithPerformerID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithPerformerID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
