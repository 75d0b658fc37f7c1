package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/models"
)

const (
	redisEntryPrefix = "global_query_cache:"
	redisIndexKey    = "global_query_cache:index"
)

// Redis backs the cache with one JSON value per key plus a sorted set scored
// by completed_at, which gives the sweeper its oldest-first ordered scan.
type Redis struct {
	client *redis.Client
}

// NewRedis connects and pings a redis server.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Get(ctx context.Context, key string) (cache.Entry, error) {
	val, err := r.client.Get(ctx, redisEntryPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return cache.Entry{}, models.ErrCacheMiss
	}
	if err != nil {
		return cache.Entry{}, fmt.Errorf("get cache entry: %w", err)
	}
	var entry cache.Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return cache.Entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, nil
}

func (r *Redis) Upsert(ctx context.Context, entry cache.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, redisEntryPrefix+entry.QueryKey, data, 0)
	pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(entry.CompletedAt), Member: entry.QueryKey})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, redisEntryPrefix+key)
	pipe.ZRem(ctx, redisIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func (r *Redis) ScanOldest(ctx context.Context, afterCompletedAt int64, limit int) ([]cache.Entry, error) {
	keys, err := r.client.ZRangeByScore(ctx, redisIndexKey, &redis.ZRangeBy{
		Min:   fmt.Sprintf("(%d", afterCompletedAt),
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("scan cache index: %w", err)
	}

	var entries []cache.Entry
	for _, key := range keys {
		entry, err := r.Get(ctx, key)
		if errors.Is(err, models.ErrCacheMiss) {
			// Index is ahead of a deleted value; drop the stale member.
			r.client.ZRem(ctx, redisIndexKey, key)
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
