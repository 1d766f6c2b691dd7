package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/gym_client/internal/domain"
	"github.com/fjod/gym_client/pkg/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache struct {
	err   error
	calls int
	snap  *domain.CartSnapshot
}

func (s *stubCache) Get(context.Context, string) (*domain.CartSnapshot, error) {
	s.calls++
	return s.snap, s.err
}

func (s *stubCache) Set(context.Context, string, domain.CartSnapshot) error {
	s.calls++
	return s.err
}

func (s *stubCache) Delete(context.Context, string) error {
	s.calls++
	return s.err
}

func newBreaker(maxFailures uint32) *circuitbreaker.Breaker {
	return circuitbreaker.New("test", circuitbreaker.Config{
		MaxFailures: maxFailures,
		OpenTimeout: time.Minute,
		Ignore:      []error{ErrCacheMiss},
	}, nil)
}

func TestGuarded_PassesThrough(t *testing.T) {
	next := &stubCache{snap: &domain.CartSnapshot{UserID: "u1", TotalItems: 2}}
	g := NewGuarded(next, newBreaker(2))

	got, err := g.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalItems)
	require.NoError(t, g.Set(context.Background(), "u1", domain.CartSnapshot{}))
	require.NoError(t, g.Delete(context.Background(), "u1"))
	assert.Equal(t, 3, next.calls)
}

func TestGuarded_OpensAfterFailures(t *testing.T) {
	boom := errors.New("connection refused")
	next := &stubCache{err: boom}
	g := NewGuarded(next, newBreaker(2))
	ctx := context.Background()

	assert.ErrorIs(t, g.Set(ctx, "u1", domain.CartSnapshot{}), boom)
	assert.ErrorIs(t, g.Set(ctx, "u1", domain.CartSnapshot{}), boom)

	_, err := g.Get(ctx, "u1")
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, 2, next.calls)
}

func TestGuarded_CacheMissDoesNotTrip(t *testing.T) {
	next := &stubCache{err: ErrCacheMiss}
	g := NewGuarded(next, newBreaker(2))

	for i := 0; i < 5; i++ {
		_, err := g.Get(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrCacheMiss)
	}
	assert.Equal(t, 5, next.calls)
}
