package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/config"
)

// requiredHeaders are sent by the editor client on every origin: retried
// saves carry an Idempotency-Key and the event stream resumes with
// Last-Event-ID.
var requiredHeaders = []string{"Authorization", "Idempotency-Key", "Last-Event-ID", "Cache-Control"}

// exposedHeaders lets browser clients read download names, replay markers
// and rate limit state.
var exposedHeaders = []string{
	"Content-Disposition",
	"X-Request-ID",
	"X-Idempotency-Replayed",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"Retry-After",
}

// CORSMiddleware creates a CORS middleware for the invoicing API
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     allowedHeaders(cfg.AllowedHeaders),
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}

	return cors.New(corsConfig)
}

// allowedHeaders merges the configured headers with the ones the editor
// client depends on.
func allowedHeaders(configured []string) []string {
	headers := append([]string{}, configured...)
	if len(headers) == 0 {
		headers = []string{"Accept", "Content-Type", "Origin", "X-Request-ID"}
	}

	seen := make(map[string]bool, len(headers))
	out := make([]string, 0, len(headers)+len(requiredHeaders))
	for _, h := range append(headers, requiredHeaders...) {
		key := http.CanonicalHeaderKey(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}
