package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "imagevault/internal/errors"
	"imagevault/internal/metrics"
)

// Counter increments a windowed counter. *cache.Client satisfies it.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitConfig bounds requests per client IP within a fixed window.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RateLimit is a fixed window limiter keyed by route and client IP. Counter
// failures let the request through.
type RateLimit struct {
	config  RateLimitConfig
	counter Counter
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewRateLimit builds the limiter. A nil counter disables it.
func NewRateLimit(cfg RateLimitConfig, counter Counter, logger logrus.FieldLogger, m *metrics.Metrics) *RateLimit {
	return &RateLimit{
		config:  cfg,
		counter: counter,
		logger:  logger,
		metrics: m,
	}
}

// Handle returns the echo middleware.
func (r *RateLimit) Handle() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.counter == nil || r.config.Limit <= 0 {
				return next(c)
			}

			route := c.Path()
			key := fmt.Sprintf("ratelimit:%s:%s", route, c.RealIP())

			count, err := r.counter.Incr(c.Request().Context(), key, r.config.Window)
			if err != nil {
				r.logger.WithError(err).Warn("rate limit check failed, allowing request")
				return next(c)
			}

			remaining := int64(r.config.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(r.config.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(r.config.Limit) {
				h.Set("Retry-After", strconv.Itoa(int(r.config.Window.Seconds())))
				r.metrics.RateLimited(route)
				r.logger.WithFields(logrus.Fields{
					"route": route,
					"ip":    c.RealIP(),
					"count": count,
				}).Warn("rate limit exceeded")
				return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{
					Detail: "Rate limit exceeded. Please try again later.",
					Code:   "RATE_LIMITED",
				})
			}

			return next(c)
		}
	}
}
