// Package middleware holds Echo middleware specific to this service.
package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
)

// RateLimiter returns a fixed-window request limiter backed by Redis.
// Each client IP gets cfg.Limit requests per route per cfg.Window.
// The limiter fails open: when Redis is unavailable or disabled the
// middleware is a passthrough, and a runtime Redis error lets the
// request proceed rather than turning an outage into a denial of
// service.
func RateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	windowSecs := int64(cfg.Window / time.Second)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			// The window index is part of the key so each window
			// starts counting from zero and old keys simply expire.
			window := time.Now().Unix() / windowSecs
			key := fmt.Sprintf("%s:%s:%s %s:%d", cfg.Prefix, ip, c.Request().Method, c.Path(), window)

			ctx := c.Request().Context()
			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, cfg.Window)
			if _, err := pipe.Exec(ctx); err != nil {
				return next(c)
			}

			count := incr.Val()
			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				retry := windowSecs - time.Now().Unix()%windowSecs
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
