package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string

	// OpTimeout bounds each command. Default: 500ms
	OpTimeout time.Duration
}

// RedisStore records nonces as keys with a TTL, so expiry is handled by Redis.
type RedisStore struct {
	client  redis.UniversalClient
	logger  *slog.Logger
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(cfg RedisConfig, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	store := newRedisStore(client, cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("replay: connect to redis at %s: %w", cfg.Address, err)
	}

	return store, nil
}

func newRedisStore(client redis.UniversalClient, cfg RedisConfig, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "aimend:nonce:"
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 500 * time.Millisecond
	}
	return &RedisStore{
		client:  client,
		logger:  logger.With("component", "replay.redis"),
		prefix:  cfg.KeyPrefix,
		timeout: cfg.OpTimeout,
		now:     time.Now,
	}
}

// Remember implements Store with SET key NX PX ttl.
func (r *RedisStore) Remember(ctx context.Context, nonce string, expires time.Time) (bool, error) {
	ttl := expires.Sub(r.now())
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ok, err := r.client.SetNX(ctx, r.prefix+nonce, 1, ttl).Result()
	if err != nil {
		r.logger.Error("redis nonce store error", "op", "setnx", "error", err)
		return false, fmt.Errorf("replay: redis setnx: %w", err)
	}
	return ok, nil
}

// Ping implements Pinger.
func (r *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

// Close implements Store.
func (r *RedisStore) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
