package cache

import (
	"context"

	"github.com/fjod/gym_client/internal/domain"
	"github.com/fjod/gym_client/pkg/circuitbreaker"
)

// Guarded routes every cache call through a circuit breaker.
type Guarded struct {
	next    CartCache
	breaker *circuitbreaker.Breaker
}

func NewGuarded(next CartCache, breaker *circuitbreaker.Breaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) Get(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	var cart *domain.CartSnapshot
	err := g.breaker.Do(func() error {
		var err error
		cart, err = g.next.Get(ctx, userID)
		return err
	})
	return cart, err
}

func (g *Guarded) Set(ctx context.Context, userID string, cart domain.CartSnapshot) error {
	return g.breaker.Do(func() error {
		return g.next.Set(ctx, userID, cart)
	})
}

func (g *Guarded) Delete(ctx context.Context, userID string) error {
	return g.breaker.Do(func() error {
		return g.next.Delete(ctx, userID)
	})
}
