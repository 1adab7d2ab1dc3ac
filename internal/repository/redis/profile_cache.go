package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"profileHub/business/profile"
	"profileHub/domain"
)

// ProfileCache stores serialized profiles in redis with a TTL, so hot profile
// reads skip postgres.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ profile.ProfileCache = (*ProfileCache)(nil)

func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func cacheKey(userID uint) string {
	return fmt.Sprintf("profile:user:%d", userID)
}

// Get returns (nil, nil) on a cache miss.
func (c *ProfileCache) Get(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var p domain.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &p, nil
}

func (c *ProfileCache) Set(ctx context.Context, p *domain.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(p.UserID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}
