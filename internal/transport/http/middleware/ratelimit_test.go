package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/expense-tracker/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func TestRateLimiter_PerClientBurst(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/login", limiter.Middleware(slog.New(slog.NewTextHandler(io.Discard, nil))), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	post := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := post("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := post("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", code)
	}
	if code := post("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client: status = %d, want 200", code)
	}
}
