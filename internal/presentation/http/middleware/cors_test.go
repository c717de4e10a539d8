package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/config"
)

func TestAllowedHeaders(t *testing.T) {
	tests := []struct {
		name       string
		configured []string
		want       []string
		absent     string
	}{
		{"defaults", nil, []string{"Content-Type", "Idempotency-Key", "Last-Event-ID", "Authorization"}, "X-CSRF-Token"},
		{"configured keeps required", []string{"Content-Type", "idempotency-key"}, []string{"Content-Type", "idempotency-key", "Last-Event-ID", "Cache-Control"}, "Accept"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allowedHeaders(tt.configured)
			joined := "," + strings.ToLower(strings.Join(got, ",")) + ","
			for _, h := range tt.want {
				if !strings.Contains(joined, ","+strings.ToLower(h)+",") {
					t.Fatalf("expected %s in %v", h, got)
				}
			}
			if strings.Contains(joined, ","+strings.ToLower(tt.absent)+",") {
				t.Fatalf("did not expect %s in %v", tt.absent, got)
			}
			if strings.Count(joined, ",idempotency-key,") != 1 {
				t.Fatalf("headers must not repeat: %v", got)
			}
		})
	}
}

func TestCORSPreflightForEventStream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"http://app.example.test"}}))
	r.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set("Origin", "http://app.example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "last-event-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.example.test" {
		t.Fatalf("unexpected allowed origin %q", got)
	}
	if allow := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")); !strings.Contains(allow, "last-event-id") {
		t.Fatalf("Last-Event-ID must be allowed, got %q", allow)
	}
}
