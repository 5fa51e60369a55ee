package cache

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/komyg/rm-shop-v2/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Hash fields of a cached snapshot. The snapshot is a fixed-size record, so
// it is stored field-per-field instead of as one serialized blob.
const (
	fieldID         = "id"
	fieldTotalPrice = "total_price"
	fieldNumFigures = "num_action_figures"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, sessionID string) (*domain.ShoppingCart, error) {
	key := cacheKey(sessionID)

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(fields) == 0 {
		// HGETALL reports a missing key as an empty hash.
		return nil, ErrCacheMiss
	}

	totalPrice, errPrice := strconv.Atoi(fields[fieldTotalPrice])
	if errPrice != nil {
		return nil, fmt.Errorf("parse %s: %w", fieldTotalPrice, errPrice)
	}
	numFigures, errNum := strconv.Atoi(fields[fieldNumFigures])
	if errNum != nil {
		return nil, fmt.Errorf("parse %s: %w", fieldNumFigures, errNum)
	}

	return &domain.ShoppingCart{
		ID:               fields[fieldID],
		TotalPrice:       totalPrice,
		NumActionFigures: numFigures,
	}, nil
}

func (r RedisCache) Set(ctx context.Context, sessionID string, cart *domain.ShoppingCart) error {
	key := cacheKey(sessionID)

	err := r.client.HSet(ctx, key,
		fieldID, cart.ID,
		fieldTotalPrice, cart.TotalPrice,
		fieldNumFigures, cart.NumActionFigures,
	).Err()
	if err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}

	// Jitter spreads expirations so snapshots do not all drop at once.
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if errExpire := r.client.Expire(ctx, key, r.baseTTL+jitter).Err(); errExpire != nil {
		return fmt.Errorf("redis expire failed: %w", errExpire)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, sessionID string) error {
	key := cacheKey(sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("session:%s:cart", sessionID)
}
