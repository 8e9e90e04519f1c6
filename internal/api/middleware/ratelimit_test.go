package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"porchlight/internal/utils"
)

func newUnreachableRedis() *utils.RedisClient {
	return &utils.RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})}
}

// When chained after auth, the limiter must see the verified uid so
// authenticated traffic is keyed per user rather than per IP.
func TestRateLimiterAfterAuthKeysByUser(t *testing.T) {
	e := echo.New()

	identity := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("uid", "uid-1")
			return next(c)
		}
	}

	var clientID string
	g := e.Group("", identity, RateLimiter(RateLimitConfig{RedisClient: newUnreachableRedis()}))
	g.GET("/api/v1/notifications", func(c echo.Context) error {
		clientID = getClientID(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// Redis is unreachable here, so the limiter fails open
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if clientID != "user:uid-1" {
		t.Errorf("client id = %q, want user:uid-1", clientID)
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("missing X-RateLimit-Limit header")
	}
}

func TestRateLimiterFailsOpenWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/api/v1/properties", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimiter(RateLimitConfig{RedisClient: newUnreachableRedis()}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when redis is down", rec.Code)
	}
}
