// Package bootstrap assembles the runtime shared by the binaries: the slot
// backend chosen by configuration, the store over it, the seeded admin and
// the domain services.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"psocial/internal/cache"
	"psocial/internal/config"
	"psocial/internal/database"
	"psocial/internal/featureflags"
	"psocial/internal/observability"
	"psocial/internal/service"
	"psocial/internal/store"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces the aggregate key in a shared Redis.
const RedisKeyPrefix = "psocial:"

// Runtime is everything a binary needs to serve domain calls.
type Runtime struct {
	Config   *config.Config
	Store    *store.Store
	Services *service.Services
	Flags    *featureflags.Manager
	Hasher   service.PasswordHasher
	// Redis is set for the redis backend and, in production, for rate
	// limiting. It may be nil.
	Redis *redis.Client

	ownsRedis bool
}

// New opens the configured backend and seeds it. Callers must Close the
// runtime.
func New(ctx context.Context, cfg *config.Config, opts ...service.Option) (*Runtime, error) {
	hasher, err := service.NewPasswordHasher(cfg.PasswordHashing)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config: cfg,
		Flags:  featureflags.NewManager(cfg.FeatureFlags),
		Hasher: hasher,
	}

	slot, err := rt.openSlot(ctx)
	if err != nil {
		rt.closeRedis()
		return nil, err
	}
	rt.Store = store.New(slot, store.WithKey(cfg.StoreKey))

	if err := rt.Store.Seed(ctx, hasher.Hash); err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("seed store: %w", err)
	}

	opts = append([]service.Option{service.WithFlags(rt.Flags)}, opts...)
	rt.Services = service.NewServices(rt.Store, hasher, opts...)

	observability.Logger.Info("Runtime ready",
		slog.String("backend", slot.Name()),
		slog.String("key", cfg.StoreKey),
		slog.String("password_hashing", cfg.PasswordHashing),
	)
	return rt, nil
}

func (rt *Runtime) openSlot(ctx context.Context) (store.Slot, error) {
	cfg := rt.Config
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemorySlot(), rt.connectRateLimitRedis(ctx)
	case config.BackendFile:
		slot, err := store.NewFileSlot(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return slot, rt.connectRateLimitRedis(ctx)
	case config.BackendBadger:
		slot, err := store.OpenBadgerSlot(store.BadgerConfig{
			Path:       filepath.Join(cfg.DataDir, "badger"),
			SyncWrites: true,
			Logger:     observability.Logger,
		})
		if err != nil {
			return nil, err
		}
		return slot, rt.connectRateLimitRedis(ctx)
	case config.BackendRedis:
		client, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		// Closed through the slot.
		rt.Redis = client
		return store.NewRedisSlot(client, RedisKeyPrefix), nil
	case config.BackendSQLite, config.BackendPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewSQLSlot(db), rt.connectRateLimitRedis(ctx)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// connectRateLimitRedis connects the rate limiter's Redis in production.
// Failure is logged and limiting fails open.
func (rt *Runtime) connectRateLimitRedis(ctx context.Context) error {
	if !rt.Config.IsProduction() || rt.Config.RedisURL == "" {
		return nil
	}
	client, err := cache.NewClient(ctx, rt.Config.RedisURL)
	if err != nil {
		observability.Logger.Warn("Redis unavailable, rate limiting disabled", slog.String("error", err.Error()))
		return nil
	}
	rt.Redis = client
	rt.ownsRedis = true
	return nil
}

func (rt *Runtime) closeRedis() error {
	if rt.ownsRedis && rt.Redis != nil {
		rt.ownsRedis = false
		return rt.Redis.Close()
	}
	return nil
}

// Close releases the store backend and any Redis connection.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Store != nil {
		errs = append(errs, rt.Store.Close())
	}
	errs = append(errs, rt.closeRedis())
	return errors.Join(errs...)
}

// InitTracing starts the tracer configured by cfg and returns its shutdown
// function.
func InitTracing(cfg *config.Config, serviceName string) (func(context.Context) error, error) {
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
}
