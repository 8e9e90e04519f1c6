package middleware

import (
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"porchlight/internal/models"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

var (
	errMissingAuthorizationHeader = errors.New("missing Authorization header")
	errInvalidAuthorizationHeader = errors.New("invalid Authorization header")
)

// AuthMiddleware authenticates requests with a Firebase ID token (Bearer) or
// a server-minted Firebase session cookie. On success the verified uid, email
// and role land in the echo context; handlers never read identifiers from the
// request body.
type AuthMiddleware struct {
	client     *auth.Client
	cookieName string
}

// NewAuthMiddleware creates the middleware. The client may be nil when the
// Admin SDK was skipped at startup; requests then answer 503 instead of
// panicking, matching the degraded-init contract.
func NewAuthMiddleware(client *auth.Client, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{client: client, cookieName: cookieName}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.client == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "authentication is not configured")
			}

			ctx := c.Request().Context()

			// Bearer ID token first
			if token, err := parseBearerToken(c.Request()); err == nil {
				decoded, err := m.client.VerifyIDToken(ctx, token)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				setIdentity(c, decoded)
				return next(c)
			}

			// Session cookie second
			if m.cookieName != "" {
				if cookie, err := c.Cookie(m.cookieName); err == nil {
					decoded, err := m.client.VerifySessionCookieAndCheckRevoked(ctx, cookie.Value)
					if err != nil {
						return echo.NewHTTPError(http.StatusUnauthorized, "invalid or revoked session")
					}
					setIdentity(c, decoded)
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
		}
	}
}

func setIdentity(c echo.Context, token *auth.Token) {
	c.Set("uid", token.UID)

	if email, ok := token.Claims["email"].(string); ok {
		c.Set("email", email)
	}
	if role, ok := token.Claims["role"].(string); ok && role != "" {
		c.Set("role", role)
	}
}

func parseBearerToken(r *http.Request) (string, error) {
	reqToken := r.Header.Get(authorizationHeader)
	if reqToken == "" {
		return "", errMissingAuthorizationHeader
	}
	splitToken := strings.Split(reqToken, bearerPrefix)
	if len(splitToken) != 2 {
		return "", errInvalidAuthorizationHeader
	}
	token := strings.TrimSpace(splitToken[1])
	if token == "" {
		return "", errInvalidAuthorizationHeader
	}
	return token, nil
}

// Helper functions to get values from context
func GetUID(c echo.Context) string {
	if uid, ok := c.Get("uid").(string); ok {
		return uid
	}
	return ""
}

func GetEmail(c echo.Context) string {
	if email, ok := c.Get("email").(string); ok {
		return email
	}
	return ""
}

func GetRole(c echo.Context) models.UserRole {
	if role, ok := c.Get("role").(string); ok {
		return models.UserRole(role)
	}
	return ""
}
