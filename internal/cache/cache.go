package cache

import (
	"context"
	"errors"

	"github.com/fjod/gym_client/internal/domain"
)

// CartCache keeps the session cart between client restarts within a session.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.CartSnapshot, error)
	Set(ctx context.Context, userID string, cart domain.CartSnapshot) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
