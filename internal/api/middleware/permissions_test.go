package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"porchlight/internal/models"
)

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		allowed    []models.UserRole
		wantStatus int
	}{
		{
			name:       "admin always passes",
			role:       "ADMIN",
			allowed:    []models.UserRole{models.UserRoleAgent},
			wantStatus: http.StatusOK,
		},
		{
			name:       "matching role passes",
			role:       "AGENT",
			allowed:    []models.UserRole{models.UserRoleAgent},
			wantStatus: http.StatusOK,
		},
		{
			name:       "resident rejected from agent route",
			role:       "RESIDENT",
			allowed:    []models.UserRole{models.UserRoleAgent},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing role rejected",
			role:       "",
			allowed:    []models.UserRole{models.UserRoleAgent},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", nil)
			c := e.NewContext(req, httptest.NewRecorder())
			if tt.role != "" {
				c.Set("role", tt.role)
			}

			handler := RequireRoles(tt.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})

			err := handler(c)
			if tt.wantStatus == http.StatusOK {
				if err != nil {
					t.Fatalf("expected pass, got %v", err)
				}
				return
			}

			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("error type = %T, want *echo.HTTPError", err)
			}
			if httpErr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", httpErr.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetEndpointKey(t *testing.T) {
	e := echo.New()
	e.POST("/api/v1/chat/messageSent", func(c echo.Context) error {
		if got := getEndpointKey(c); got != "POST:/api/v1/chat/messageSent" {
			t.Errorf("getEndpointKey = %q", got)
		}
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/messageSent", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)
}

func TestGetLimitConfig(t *testing.T) {
	cfg := RateLimitConfig{
		DefaultLimit:   100.0 / 60.0,
		DefaultBurst:   50,
		EndpointLimits: defaultEndpointLimits,
	}

	login := getLimitConfig("POST:/api/v1/auth/log-in", cfg)
	if login.Limit != 5.0/60.0 {
		t.Errorf("login limit = %v, want 5 per minute", login.Limit)
	}

	other := getLimitConfig("GET:/api/v1/properties", cfg)
	if other.Limit != cfg.DefaultLimit {
		t.Errorf("default limit = %v, want %v", other.Limit, cfg.DefaultLimit)
	}
	if other.Burst != cfg.DefaultBurst {
		t.Errorf("default burst = %d, want %d", other.Burst, cfg.DefaultBurst)
	}
}

func TestGetClientID(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "203.0.113.9")
	c := e.NewContext(req, httptest.NewRecorder())

	if got := getClientID(c); got != "ip:203.0.113.9" {
		t.Errorf("anonymous client id = %q, want ip:203.0.113.9", got)
	}

	c.Set("uid", "uid-1")
	if got := getClientID(c); got != "user:uid-1" {
		t.Errorf("authenticated client id = %q, want user:uid-1", got)
	}
}
