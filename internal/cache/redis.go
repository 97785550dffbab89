package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitgroup/pkg/api"
)

// Config is the redis configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache implements Cache on top of redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache connects to redis and verifies the connection with a PING.
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

func (c *RedisCache) GetBalances(ctx context.Context, groupID string) (*api.GetBalancesResponse, bool, error) {
	data, err := c.client.Get(ctx, balancesKey(groupID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read balances from redis: %w", err)
	}
	report, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return report, true, nil
}

func (c *RedisCache) SetBalances(ctx context.Context, groupID string, report *api.GetBalancesResponse) error {
	data, err := encode(report)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, balancesKey(groupID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write balances to redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, groupID string) error {
	if err := c.client.Del(ctx, balancesKey(groupID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate balances in redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
