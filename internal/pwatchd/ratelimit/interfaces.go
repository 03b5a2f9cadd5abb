// Package ratelimit protects the HTTP API from request floods
package ratelimit

import (
	"context"
	"time"

	"github.com/printwatch/printwatch/internal/pwatchd/config"
)

// LimitKey identifies a specific rate limit counter
type LimitKey struct {
	Type     string // e.g. "api_request", "status_poll"
	RemoteIP string // client address the limit applies to
	Endpoint string // API endpoint for per-endpoint limits
}

// Limit defines one rate limit bucket
type Limit struct {
	// Rate is the number of operations allowed per period
	Rate int

	// Period is the time window for the rate
	Period time.Duration

	// BurstSize allows a short burst over the rate
	BurstSize int
}

// LimitStatus reports the state of one counter
type LimitStatus struct {
	Limit     Limit
	Count     int
	Remaining int
	Reset     time.Time
}

// Store handles rate limit state persistence
type Store interface {
	// Increment bumps a counter and returns the current count.
	// Returns ErrLimitExceeded when the count passes the limit.
	Increment(ctx context.Context, key LimitKey, limit Limit) (int, error)

	// Count returns the current count without side effects
	Count(ctx context.Context, key LimitKey) (int, error)

	// Reset clears a rate limit counter
	Reset(ctx context.Context, key LimitKey) error
}

// Service manages rate limiting for the daemon
type Service interface {
	// Allow checks if an operation should be allowed, counting it
	Allow(ctx context.Context, key LimitKey) error

	// Status reports the current state of a counter without counting
	Status(ctx context.Context, key LimitKey) (*LimitStatus, error)

	// GetLimit returns the configured limit for a key type
	GetLimit(limitType string) Limit

	// Reset clears rate limit counters for a key
	Reset(ctx context.Context, key LimitKey) error

	// RegisterConfiguredLimits installs the limits from configuration
	RegisterConfiguredLimits(cfg config.RateLimitConfig)
}

// Error types for rate limiting
var (
	ErrLimitExceeded = NewError("RATE_LIMITED", "rate limit exceeded")
	ErrStoreError    = NewError("STORE_ERROR", "rate limit store error")
	ErrInvalidLimit  = NewError("INVALID_LIMIT", "invalid rate limit configuration")
	ErrInvalidKey    = NewError("INVALID_KEY", "invalid rate limit key")
)

// Error represents a rate limiting error
type Error struct {
	Code    string
	Message string
}

func (e Error) Error() string {
	return e.Message
}

// NewError creates a new rate limit error
func NewError(code string, message string) Error {
	return Error{
		Code:    code,
		Message: message,
	}
}
