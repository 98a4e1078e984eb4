package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/config"
	"github.com/aretw0/cadence/pkg/adapters/file"
	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/adapters/redis"
	"github.com/aretw0/cadence/pkg/adapters/sqlite"
	"github.com/aretw0/cadence/pkg/persistence/middleware"
	"github.com/aretw0/cadence/pkg/ports"
	goredis "github.com/redis/go-redis/v9"
)

// lockPrefix namespaces lock keys; the redis lockers append their own
// "lock:" and "object:" segments.
const lockPrefix = "cadence:"

// backend is the history store selected by the configuration, plus the
// lockers it can provide.
type backend struct {
	store   ports.HistoryStore
	options []cadence.Option
	close   func() error
}

func openBackend(cfg config.Config) (*backend, error) {
	b := &backend{close: func() error { return nil }}
	switch cfg.History.Backend {
	case config.BackendMemory:
		b.store = memory.NewStore()
	case config.BackendFile:
		b.store = file.New(cfg.History.Dir)
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.History.SQLite); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
		s, err := sqlite.Open(cfg.History.SQLite)
		if err != nil {
			return nil, err
		}
		b.store, b.close = s, s.Close
	case config.BackendRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		b.store, b.close = s, s.Close
		if cfg.Redis.Locks {
			docs, objects := redisLockers(s.Client(), cfg.LockTTL)
			b.options = append(b.options,
				cadence.WithLocker(docs, cfg.LockTTL),
				cadence.WithObjectLocker(objects),
			)
		}
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}

	active, fallback, err := cfg.History.Keys()
	if err != nil {
		_ = b.close()
		return nil, err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			_ = b.close()
			return nil, err
		}
		b.store = middleware.Chain(b.store, mw)
	}
	return b, nil
}

func redisLockers(client *goredis.Client, ttl time.Duration) (*redis.Locker, *redis.ObjectLocker) {
	return redis.NewLocker(client, lockPrefix), redis.NewObjectLocker(client, lockPrefix, ttl)
}

// editor opens the backend and builds an Editor over it.
func (a *app) editor(extra ...cadence.Option) (*cadence.Editor, func() error, error) {
	b, err := openBackend(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := append([]cadence.Option{
		cadence.WithLogger(a.logger),
		cadence.WithDocumentDuration(a.cfg.DocumentDuration),
	}, b.options...)
	opts = append(opts, extra...)
	ed, err := cadence.New(b.store, opts...)
	if err != nil {
		_ = b.close()
		return nil, nil, err
	}
	return ed, b.close, nil
}
