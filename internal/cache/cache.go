package cache

import (
	"context"
	"errors"

	"github.com/komyg/rm-shop-v2/internal/domain"
)

// SnapshotCache holds the cart snapshot served to views between mutations.
// The in-memory store stays authoritative; a cache failure never affects
// correctness.
type SnapshotCache interface {
	Get(ctx context.Context, sessionID string) (*domain.ShoppingCart, error)
	Set(ctx context.Context, sessionID string, cart *domain.ShoppingCart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
