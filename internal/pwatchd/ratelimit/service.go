package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/printwatch/printwatch/internal/pwatchd/config"
)

// Limit type names used by the HTTP layer
const (
	TypeAPIRequest = "api_request"
	TypeStatusPoll = "status_poll"
	TypeWSConnect  = "ws_connect"
)

type service struct {
	store   Store
	logger  *slog.Logger
	limits  map[string]Limit
	limitsM sync.RWMutex
}

// NewService creates a new rate limiting service
func NewService(store Store, logger *slog.Logger) Service {
	return &service{
		store:  store,
		logger: logger,
		limits: make(map[string]Limit),
	}
}

// RegisterLimit adds or updates a rate limit configuration
func (s *service) RegisterLimit(limitType string, limit Limit) error {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return ErrInvalidLimit
	}

	s.limitsM.Lock()
	defer s.limitsM.Unlock()

	s.limits[limitType] = limit
	return nil
}

// RegisterConfiguredLimits installs the limits from configuration
func (s *service) RegisterConfiguredLimits(cfg config.RateLimitConfig) {
	register := func(limitType string, l config.Limit) {
		if err := s.RegisterLimit(limitType, Limit{
			Rate:      l.Rate,
			Period:    l.Period,
			BurstSize: l.BurstSize,
		}); err != nil {
			s.logger.Warn("skipping invalid rate limit",
				"type", limitType,
				"rate", l.Rate,
				"period", l.Period,
			)
		}
	}

	register(TypeAPIRequest, cfg.APIRequests)
	register(TypeStatusPoll, cfg.StatusPolls)
	register(TypeWSConnect, cfg.WSConnections)
}

// Allow checks if an operation should be allowed
func (s *service) Allow(ctx context.Context, key LimitKey) error {
	if key.Type == "" {
		return ErrInvalidKey
	}

	limit := s.GetLimit(key.Type)
	if limit.Rate == 0 {
		s.logger.Warn("no rate limit configured for type",
			"type", key.Type,
		)
		// Allow if no limit configured
		return nil
	}

	count, err := s.store.Increment(ctx, key, limit)
	if err != nil {
		if err == ErrLimitExceeded {
			return err
		}
		s.logger.Error("rate limit check failed",
			"error", err,
			"type", key.Type,
			"remoteIP", key.RemoteIP,
			"endpoint", key.Endpoint,
		)
		return err
	}

	s.logger.Debug("rate limit check",
		"type", key.Type,
		"count", count,
		"limit", limit.Rate,
		"burst", limit.BurstSize,
	)

	return nil
}

// Status reports the current state of a counter without counting
func (s *service) Status(ctx context.Context, key LimitKey) (*LimitStatus, error) {
	if key.Type == "" {
		return nil, ErrInvalidKey
	}

	limit := s.GetLimit(key.Type)
	count, err := s.store.Count(ctx, key)
	if err != nil {
		return nil, err
	}

	remaining := limit.Rate + limit.BurstSize - count
	if remaining < 0 {
		remaining = 0
	}

	return &LimitStatus{
		Limit:     limit,
		Count:     count,
		Remaining: remaining,
		Reset:     time.Now().Add(limit.Period),
	}, nil
}

// GetLimit returns the configured limit for a key type
func (s *service) GetLimit(limitType string) Limit {
	s.limitsM.RLock()
	defer s.limitsM.RUnlock()

	return s.limits[limitType]
}

// Reset clears rate limit counters for a key
func (s *service) Reset(ctx context.Context, key LimitKey) error {
	if key.Type == "" {
		return ErrInvalidKey
	}

	if err := s.store.Reset(ctx, key); err != nil {
		s.logger.Error("failed to reset rate limit",
			"error", err,
			"type", key.Type,
			"remoteIP", key.RemoteIP,
			"endpoint", key.Endpoint,
		)
		return err
	}

	return nil
}
