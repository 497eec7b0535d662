package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the Redis-backed OTP store: code cache, replay guard and rate counters
type Client struct {
	rdb     *redis.Client
	breaker *CircuitBreaker
}

// ErrKeyNotFound is returned by get for missing keys
var ErrKeyNotFound = errors.New("key not found")

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int

	BreakerThreshold int
	BreakerReset     time.Duration
}

// NewClient connects to Redis and fails when the first PING does
func NewClient(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	breaker := NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerReset, func(from, to CircuitState) {
		slog.Warn("Redis circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()))
	})
	return &Client{rdb: rdb, breaker: breaker}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection directly, ignoring the breaker, for readiness probes
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// do runs fn through the circuit breaker. Missing keys count as success.
func (c *Client) do(fn func() error) error {
	if c.breaker != nil && !c.breaker.Allow() {
		return ErrCircuitOpen
	}
	err := fn()
	if c.breaker != nil {
		if errors.Is(err, redis.Nil) {
			c.breaker.Record(nil)
		} else {
			c.breaker.Record(err)
		}
	}
	return err
}

func (c *Client) get(ctx context.Context, key string) (string, error) {
	var val string
	err := c.do(func() (err error) {
		val, err = c.rdb.Get(ctx, key).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, err
}

func (c *Client) set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.do(func() error {
		return c.rdb.Set(ctx, key, value, expiration).Err()
	})
}

func (c *Client) setNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	var ok bool
	err := c.do(func() (err error) {
		ok, err = c.rdb.SetNX(ctx, key, value, expiration).Result()
		return err
	})
	return ok, err
}

// incrWithExpiry increments key and returns the count with the time left in
// its window. A key without a TTL, whether new or left behind by a failed
// EXPIRE, gets the full window so the counter always resets.
func (c *Client) incrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var count int64
	var ttl time.Duration
	err := c.do(func() error {
		pipe := c.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		count, ttl = incr.Val(), ttlCmd.Val()
		if ttl < 0 {
			ttl = window
			return c.rdb.Expire(ctx, key, window).Err()
		}
		return nil
	})
	return count, ttl, err
}
