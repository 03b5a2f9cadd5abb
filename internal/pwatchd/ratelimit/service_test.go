package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printwatch/printwatch/internal/pwatchd/config"
)

// memStore is a minimal in-memory Store for service tests
type memStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMemStore() *memStore {
	return &memStore{counts: make(map[string]int)}
}

func (s *memStore) key(k LimitKey) string {
	return k.Type + ":" + k.RemoteIP + ":" + k.Endpoint
}

func (s *memStore) Increment(_ context.Context, key LimitKey, limit Limit) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[s.key(key)]++
	count := s.counts[s.key(key)]
	if count > limit.Rate+limit.BurstSize {
		return count, ErrLimitExceeded
	}
	return count, nil
}

func (s *memStore) Count(_ context.Context, key LimitKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[s.key(key)], nil
}

func (s *memStore) Reset(_ context.Context, key LimitKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, s.key(key))
	return nil
}

func newTestService(store Store) Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAllowEnforcesLimit(t *testing.T) {
	svc := newTestService(newMemStore())
	svc.RegisterConfiguredLimits(config.RateLimitConfig{
		APIRequests: config.Limit{Rate: 2, Period: time.Minute, BurstSize: 1},
	})

	key := LimitKey{Type: TypeAPIRequest, RemoteIP: "10.0.0.1", Endpoint: "/api/v1alpha1/printers"}
	ctx := context.Background()

	// Rate plus burst requests pass
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Allow(ctx, key), "request %d should be allowed", i+1)
	}
	assert.ErrorIs(t, svc.Allow(ctx, key), ErrLimitExceeded)

	// A different client is unaffected
	other := LimitKey{Type: TypeAPIRequest, RemoteIP: "10.0.0.2", Endpoint: "/api/v1alpha1/printers"}
	assert.NoError(t, svc.Allow(ctx, other))
}

func TestAllowWithoutConfiguredLimit(t *testing.T) {
	svc := newTestService(newMemStore())

	// Unconfigured types pass through rather than failing closed
	err := svc.Allow(context.Background(), LimitKey{Type: "unconfigured"})
	assert.NoError(t, err)
}

func TestAllowRejectsEmptyType(t *testing.T) {
	svc := newTestService(newMemStore())
	assert.ErrorIs(t, svc.Allow(context.Background(), LimitKey{}), ErrInvalidKey)
}

func TestStatusReportsRemaining(t *testing.T) {
	svc := newTestService(newMemStore())
	svc.RegisterConfiguredLimits(config.RateLimitConfig{
		StatusPolls: config.Limit{Rate: 10, Period: time.Minute, BurstSize: 2},
	})

	key := LimitKey{Type: TypeStatusPoll, RemoteIP: "10.0.0.1"}
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.Allow(ctx, key))
	}

	status, err := svc.Status(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 4, status.Count)
	assert.Equal(t, 8, status.Remaining)
}

func TestResetClearsCounter(t *testing.T) {
	svc := newTestService(newMemStore())
	svc.RegisterConfiguredLimits(config.RateLimitConfig{
		WSConnections: config.Limit{Rate: 1, Period: time.Minute},
	})

	key := LimitKey{Type: TypeWSConnect, RemoteIP: "10.0.0.1"}
	ctx := context.Background()

	require.NoError(t, svc.Allow(ctx, key))
	require.ErrorIs(t, svc.Allow(ctx, key), ErrLimitExceeded)

	require.NoError(t, svc.Reset(ctx, key))
	assert.NoError(t, svc.Allow(ctx, key))
}

func TestRegisterConfiguredLimitsSkipsInvalid(t *testing.T) {
	svc := newTestService(newMemStore())
	svc.RegisterConfiguredLimits(config.RateLimitConfig{
		APIRequests: config.Limit{Rate: 0, Period: time.Minute},
	})

	assert.Equal(t, 0, svc.GetLimit(TypeAPIRequest).Rate)
}
