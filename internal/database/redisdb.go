package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/y0ug/defacemon/internal/database/models"
)

const defaultRedisKey = "defacemon:baseline"

// RedisDB implements the Database interface using Redis.
type RedisDB struct {
	client *redis.Client
	key    string
}

// NewRedisDB initializes a new RedisDB instance.
func NewRedisDB(ctx context.Context, cfg *DatabaseConfig) (*RedisDB, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	key := cfg.RedisKey
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisDB{client: rdb, key: key}, nil
}

// Initialize is a no-op; Redis is schema-less.
func (r *RedisDB) Initialize(ctx context.Context) error {
	return nil
}

func (r *RedisDB) Close(context.Context) error {
	return r.client.Close()
}

// SaveBaseline overwrites the record key.
func (r *RedisDB) SaveBaseline(ctx context.Context, b models.Baseline) error {
	data, err := encodeBaseline(b)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}

// LoadBaseline retrieves and decodes the record key.
func (r *RedisDB) LoadBaseline(ctx context.Context) (models.Baseline, error) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return models.Baseline{}, ErrBaselineNotFound
		}
		return models.Baseline{}, err
	}
	return decodeBaseline(val)
}

// BaselineExists reports whether the record key is set.
func (r *RedisDB) BaselineExists(ctx context.Context) (bool, error) {
	n, err := r.client.Exists(ctx, r.key).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteBaseline removes the record key.
func (r *RedisDB) DeleteBaseline(ctx context.Context) (bool, error) {
	n, err := r.client.Del(ctx, r.key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
