package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS applies the configured allowed-origin policy.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", PerformerHeader, requestIDHeader, "X-Requested-With"},
		ExposedHeaders:   []string{"Location", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
