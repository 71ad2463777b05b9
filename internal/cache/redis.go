package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akulagin/flightbook/config"
	"github.com/akulagin/flightbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

// NewRedisCacheWithClient is used by tests to inject a mock client.
func NewRedisCacheWithClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

// InvalidateFlights drops the cached listing after any mutation that changes
// occupancy or price.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// AcquireSeatLock is an advisory fast-fail in front of the transactional seat
// claim; correctness does not depend on it.
func (c *RedisCache) AcquireSeatLock(ctx context.Context, flightID int64, seat int, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatLockKey(flightID, seat), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, flightID int64, seat int) error {
	return c.client.Del(ctx, seatLockKey(flightID, seat)).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatLockKey(flightID int64, seat int) string {
	return fmt.Sprintf("lock:flight:%d:seat:%d", flightID, seat)
}
