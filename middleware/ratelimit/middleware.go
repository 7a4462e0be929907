package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type CountingMode string

const (
	CountAll      CountingMode = "all"
	CountFailures CountingMode = "failures"
	CountSuccess  CountingMode = "success"
)

type Config struct {
	Store          Store
	Rate           int
	Period         time.Duration
	CountMode      CountingMode
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
	Now            func() time.Time
}

// Middleware applies cfg. Without a Store it keeps counters in an unswept
// MemoryStore; long-running servers pass the store from ProvideRateLimitStore.
func Middleware(cfg *Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStoreWithInterval(0)
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}

	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}

	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultKeyGenerator
	}

	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	if cfg.CountMode == "" {
		cfg.CountMode = CountAll
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.KeyGenerator(c)
			resetTime := cfg.Now().Add(cfg.Period)

			count, existingResetTime, exists := cfg.Store.Get(key)
			if exists {
				resetTime = existingResetTime
			}

			if count >= cfg.Rate {
				setHeaders(c, cfg.Rate, 0, resetTime)
				return cfg.OnLimitReached(c)
			}

			var newCount int
			if cfg.CountMode == CountAll {
				newCount = cfg.Store.Increment(key, resetTime)
			} else {
				newCount = count + 1
			}

			setHeaders(c, cfg.Rate, max(cfg.Rate-newCount, 0), resetTime)

			err := next(c)

			if cfg.CountMode != CountAll {
				status := c.Response().Status
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}

				shouldCount := false
				switch cfg.CountMode {
				case CountFailures:
					shouldCount = status >= 400
				case CountSuccess:
					shouldCount = status < 400
				}

				if shouldCount {
					cfg.Store.Increment(key, resetTime)
				}
			}

			return err
		}
	}
}

func setHeaders(c echo.Context, limit, remaining int, resetTime time.Time) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
}

func DefaultKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()

	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}

	return "rate_limit:" + realIP
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
}
