package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mnbossa/AImend/pkg/config"
)

// ErrCapacity is returned when a bounded store is full of unexpired nonces.
var ErrCapacity = errors.New("replay: nonce store is full")

// Store records nonces until they expire.
type Store interface {
	// Remember records nonce until expires. It returns false when the
	// nonce is already recorded and unexpired.
	Remember(ctx context.Context, nonce string, expires time.Time) (bool, error)

	// Close releases resources held by the store.
	Close() error
}

// Pruner is implemented by stores that need expired entries removed.
type Pruner interface {
	Prune(ctx context.Context, now time.Time) (int, error)
}

// Pinger is implemented by stores backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Open creates the store selected by cfg.Backend.
func Open(cfg config.ReplayConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.MaxEntries), nil
	case "redis":
		return NewRedisStore(RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			OpTimeout: cfg.Redis.OpTimeout,
		}, logger)
	case "sqlite":
		return NewSQLiteStore(SQLiteConfig{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("replay: unknown backend %q", cfg.Backend)
	}
}
