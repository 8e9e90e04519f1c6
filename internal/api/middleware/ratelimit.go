package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"porchlight/internal/utils"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Redis client for storing rate limit data
	RedisClient *utils.RedisClient

	// Default rate limits
	DefaultLimit rate.Limit
	DefaultBurst int

	// Endpoint-specific limits
	EndpointLimits map[string]EndpointLimit
}

// EndpointLimit defines rate limits for specific endpoints
type EndpointLimit struct {
	Limit  rate.Limit
	Burst  int
	Window time.Duration
}

// Auth endpoints get stricter limits; everything else uses the default.
var defaultEndpointLimits = map[string]EndpointLimit{
	"POST:/api/v1/auth/log-in": {
		Limit:  5.0 / 60.0, // 5 requests per minute
		Burst:  3,
		Window: time.Minute,
	},
	"POST:/api/v1/auth/sign-up": {
		Limit:  3.0 / 3600.0, // 3 requests per hour
		Burst:  1,
		Window: time.Hour,
	},
	"POST:/api/v1/chat/messageSent": {
		Limit:  30.0 / 60.0, // 30 requests per minute
		Burst:  10,
		Window: time.Minute,
	},
}

// RateLimiter creates a new rate limiting middleware
func RateLimiter(config RateLimitConfig) echo.MiddlewareFunc {
	if config.DefaultLimit == 0 {
		config.DefaultLimit = 100.0 / 60.0 // 100 requests per minute
	}
	if config.DefaultBurst == 0 {
		config.DefaultBurst = 50
	}
	if config.EndpointLimits == nil {
		config.EndpointLimits = defaultEndpointLimits
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := getClientID(c)
			endpointKey := getEndpointKey(c)
			limitConfig := getLimitConfig(endpointKey, config)

			allowed, remaining, reset, retryAfter := checkRateLimit(
				c.Request().Context(),
				config.RedisClient,
				clientID,
				endpointKey,
				limitConfig,
			)

			setRateLimitHeaders(c, limitConfig.Limit, remaining, reset)

			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "rate_limit_exceeded",
					"message":     "Rate limit exceeded. Try again later.",
					"retry_after": retryAfter,
				})
			}

			return next(c)
		}
	}
}

// getClientID returns a unique identifier for the client: the verified uid
// when authenticated, the IP address otherwise.
func getClientID(c echo.Context) string {
	if uid := GetUID(c); uid != "" {
		return fmt.Sprintf("user:%s", uid)
	}
	return fmt.Sprintf("ip:%s", getClientIP(c))
}

// getClientIP returns the client's IP address
func getClientIP(c echo.Context) string {
	if forwardedFor := c.Request().Header.Get("X-Forwarded-For"); forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if realIP := c.Request().Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.RealIP()
}

// getEndpointKey returns a unique key for the endpoint
func getEndpointKey(c echo.Context) string {
	return fmt.Sprintf("%s:%s", c.Request().Method, c.Path())
}

// getLimitConfig returns the rate limit configuration for an endpoint
func getLimitConfig(endpointKey string, config RateLimitConfig) EndpointLimit {
	if limit, exists := config.EndpointLimits[endpointKey]; exists {
		return limit
	}
	return EndpointLimit{
		Limit:  config.DefaultLimit,
		Burst:  config.DefaultBurst,
		Window: time.Minute,
	}
}

// checkRateLimit checks if the request is within rate limits
func checkRateLimit(
	ctx context.Context,
	redisClient *utils.RedisClient,
	clientID string,
	endpointKey string,
	limitConfig EndpointLimit,
) (allowed bool, remaining int, reset time.Time, retryAfter int) {
	key := redisClient.GetRateLimitKey(clientID, endpointKey)
	now := time.Now()
	limit := int(float64(limitConfig.Limit) * limitConfig.Window.Seconds())

	count, err := redisClient.IncrementRateLimit(ctx, key, limitConfig.Window)
	if err != nil {
		// Redis down: fail open rather than lock everyone out
		return true, limit, now.Add(limitConfig.Window), 0
	}

	if count > limit {
		retryAfter = int(limitConfig.Window.Seconds())
		return false, 0, now.Add(limitConfig.Window), retryAfter
	}

	return true, limit - count, now.Add(limitConfig.Window), 0
}

// setRateLimitHeaders sets rate limit headers in the response
func setRateLimitHeaders(c echo.Context, limit rate.Limit, remaining int, reset time.Time) {
	limitInt := int(float64(limit) * 60) // requests per minute

	c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limitInt))
	c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}
