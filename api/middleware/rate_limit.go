package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/accounts-backend/api/responses"
	"github.com/angelmondragon/accounts-backend/internal/users"
	pkgerrors "github.com/angelmondragon/accounts-backend/pkg/errors"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, limit int64, window time.Duration, scope ...string) (bool, int64, error)
}

// RateLimitPolicy throttles one traffic surface per client IP and per
// submitted email address.
type RateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

// RateLimit is a no-op when the policy is disabled or no store is wired.
func RateLimit(policy RateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if ip := clientIP(r); policy.ipLimit > 0 && ip != "" {
				allowed, count, err := store.FixedWindowAllow(ctx, int64(policy.ipLimit), policy.window, policy.normalizedName(), "ip", ip)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					respondRateLimited(ctx, logg, w, policy, "ip", map[string]any{"ip": ip}, count, policy.ipLimit)
					return
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := users.NormalizeEmail(extractEmail(body)); email != nil {
					hash := hashValue(*email)
					allowed, count, err := store.FixedWindowAllow(ctx, int64(policy.emailLimit), policy.window, policy.normalizedName(), "email", hash)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if !allowed {
						respondRateLimited(ctx, logg, w, policy, "email", map[string]any{"email_hash": hash}, count, policy.emailLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy RateLimitPolicy, scope string, extra map[string]any, count int64, limit int) {
	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		for k, v := range extra {
			fields[k] = v
		}
		logg.Warn(logg.WithFields(ctx, fields), "rate_limit.blocked")
	}
	w.Header().Set("Retry-After", retryAfter(policy.window))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts. Please try again later."))
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
