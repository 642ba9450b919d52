package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"resumeforge/internal/config"
	apperrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/redis/go-redis/v9"
)

// LatestCache holds serialized latest records by key.
type LatestCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// RedisCache is a LatestCache on a redis server.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings redis.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewStorageError(apperrors.ErrCodeStorageFailed, "redis cache unavailable", err).
			WithContext("addr", cfg.Addr)
	}
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Cached keeps each owner's latest record in a LatestCache in front of
// another repository. Cache failures are logged and never fail a request.
type Cached struct {
	next   Repository
	cache  LatestCache
	prefix string
	ttl    time.Duration
	logger *apperrors.Logger
}

func NewCached(next Repository, cache LatestCache, prefix string, ttl time.Duration, logger *apperrors.Logger) *Cached {
	if logger == nil {
		logger = apperrors.Discard()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cached{next: next, cache: cache, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *Cached) key(owner string) string {
	return c.prefix + owner
}

func (c *Cached) Save(ctx context.Context, owner string, doc json.RawMessage) (types.ResumeRecord, error) {
	rec, err := c.next.Save(ctx, owner, doc)
	if err != nil {
		return rec, err
	}
	c.store(ctx, rec)
	return rec, nil
}

func (c *Cached) Latest(ctx context.Context, owner string) (types.ResumeRecord, error) {
	raw, ok, err := c.cache.Get(ctx, c.key(owner))
	if err != nil {
		c.logger.Warn("Resume cache read failed", "owner", owner, "error", err.Error())
	}
	if ok {
		var rec types.ResumeRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			return rec, nil
		}
		c.logger.Warn("Discarding undecodable cached resume", "owner", owner)
	}

	rec, err := c.next.Latest(ctx, owner)
	if err != nil {
		return rec, err
	}
	c.store(ctx, rec)
	return rec, nil
}

func (c *Cached) store(ctx context.Context, rec types.ResumeRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.key(rec.OwnerID), raw, c.ttl); err != nil {
		c.logger.Warn("Resume cache write failed", "owner", rec.OwnerID, "error", err.Error())
	}
}

func (c *Cached) Close() error {
	cacheErr := c.cache.Close()
	if err := c.next.Close(); err != nil {
		return err
	}
	return cacheErr
}

// Open builds the repository configured in cfg.
func Open(ctx context.Context, cfg config.RepositoryConfig, logger *apperrors.Logger) (Repository, error) {
	var repo Repository
	switch cfg.Backend {
	case "", "memory":
		repo = NewMemory()
	case "postgres":
		pg, err := Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		repo = pg
	default:
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"unknown repository backend "+cfg.Backend+" (use memory or postgres)", nil)
	}

	if !cfg.Cache.Enabled {
		return repo, nil
	}
	cache, err := NewRedisCache(ctx, cfg.Cache.Redis)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return NewCached(repo, cache, cfg.Cache.Redis.KeyPrefix, cfg.Cache.Redis.TTL, logger), nil
}
