package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// RateLimitOptions configures middleware behavior for one limit type
type RateLimitOptions struct {
	// LimitType selects which configured limit applies
	LimitType string

	// SkipLimitCheck bypasses limiting for matching requests
	SkipLimitCheck func(*http.Request) bool
}

// Middleware creates an HTTP middleware enforcing the given limit
// type. Responses carry standard RateLimit headers and exceeded
// requests get a 429 with Retry-After per RFC 6585.
func Middleware(service Service, logger *slog.Logger, options RateLimitOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.GetReqID(r.Context())
			reqLogger := logger.With("requestId", reqID)

			if options.SkipLimitCheck != nil && options.SkipLimitCheck(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := LimitKey{
				Type:     options.LimitType,
				RemoteIP: realIP(r),
				Endpoint: r.URL.Path,
			}

			err := service.Allow(r.Context(), key)
			if err == nil {
				if status, statusErr := service.Status(r.Context(), key); statusErr == nil {
					setRateLimitHeaders(w, status)
				}
				next.ServeHTTP(w, r)
				return
			}

			if err != ErrLimitExceeded {
				reqLogger.Error("rate limit check failed",
					"error", err,
					"type", options.LimitType,
					"path", r.URL.Path,
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			handleLimitExceeded(w, r, service.GetLimit(key.Type), reqLogger)
		})
	}
}

// setRateLimitHeaders adds standard rate limit headers to the response
func setRateLimitHeaders(w http.ResponseWriter, status *LimitStatus) {
	w.Header().Set("RateLimit-Limit", strconv.Itoa(status.Limit.Rate))
	w.Header().Set("RateLimit-Remaining", strconv.Itoa(status.Remaining))
	w.Header().Set("RateLimit-Reset", strconv.FormatInt(status.Reset.Unix(), 10))

	if status.Limit.BurstSize > 0 {
		w.Header().Set("RateLimit-Burst", strconv.Itoa(status.Limit.BurstSize))
	}
}

// handleLimitExceeded sends a 429 Too Many Requests response
func handleLimitExceeded(w http.ResponseWriter, r *http.Request, limit Limit, logger *slog.Logger) {
	retryAfter := int(limit.Period.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	logger.Warn("rate limit exceeded",
		"path", r.URL.Path,
		"method", r.Method,
		"remoteIP", realIP(r),
		"retryAfter", retryAfter,
	)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	fmt.Fprintf(w, `{"error":"rate_limit_exceeded","message":"Too many requests, please retry after %d seconds"}`, retryAfter)
}

// realIP extracts the client IP using standard proxy headers
func realIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if parts := strings.Split(xff, ","); len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

// CommonRateLimiters provides pre-configured middleware for the
// standard endpoint classes
type CommonRateLimiters struct {
	service Service
	logger  *slog.Logger
}

// NewCommonRateLimiters creates a provider of standard rate limiters
func NewCommonRateLimiters(service Service, logger *slog.Logger) *CommonRateLimiters {
	return &CommonRateLimiters{
		service: service,
		logger:  logger,
	}
}

// APIRequestLimiter creates middleware for general API endpoints
func (c *CommonRateLimiters) APIRequestLimiter() func(http.Handler) http.Handler {
	return Middleware(c.service, c.logger, RateLimitOptions{
		LimitType: TypeAPIRequest,
		SkipLimitCheck: func(r *http.Request) bool {
			// Skip health checks and monitoring endpoints
			return strings.HasPrefix(r.URL.Path, "/healthz") ||
				strings.HasPrefix(r.URL.Path, "/readyz")
		},
	})
}

// StatusPollLimiter creates middleware for the status endpoints that
// dashboards poll aggressively
func (c *CommonRateLimiters) StatusPollLimiter() func(http.Handler) http.Handler {
	return Middleware(c.service, c.logger, RateLimitOptions{
		LimitType: TypeStatusPoll,
	})
}

// WebSocketLimiter creates middleware for WebSocket upgrade requests
func (c *CommonRateLimiters) WebSocketLimiter() func(http.Handler) http.Handler {
	return Middleware(c.service, c.logger, RateLimitOptions{
		LimitType: TypeWSConnect,
	})
}
