// Package store provides the persistent backends for the global query cache.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// Postgres backs the cache with the global_query_cache table (see
// migrations/). completed_at carries an index for the oldest-first sweep scan.
type Postgres struct {
	DB *sql.DB
}

// NewPostgres opens and pings a postgres connection.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{DB: db}, nil
}

func (p *Postgres) Close() error { return p.DB.Close() }

func (p *Postgres) Get(ctx context.Context, key string) (cache.Entry, error) {
	var entry cache.Entry
	err := p.DB.QueryRowContext(ctx,
		`SELECT query_key, tool_name, cached_response, completed_at, ttl_ms
		   FROM global_query_cache WHERE query_key = $1`, key,
	).Scan(&entry.QueryKey, &entry.ToolName, &entry.CachedResponse, &entry.CompletedAt, &entry.TTLMs)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, models.ErrCacheMiss
	}
	if err != nil {
		return cache.Entry{}, fmt.Errorf("get cache entry: %w", err)
	}
	return entry, nil
}

func (p *Postgres) Upsert(ctx context.Context, entry cache.Entry) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO global_query_cache (query_key, tool_name, cached_response, completed_at, ttl_ms)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (query_key) DO UPDATE
		 SET tool_name = EXCLUDED.tool_name,
		     cached_response = EXCLUDED.cached_response,
		     completed_at = EXCLUDED.completed_at,
		     ttl_ms = EXCLUDED.ttl_ms`,
		entry.QueryKey, entry.ToolName, entry.CachedResponse, entry.CompletedAt, entry.TTLMs)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.DB.ExecContext(ctx, `DELETE FROM global_query_cache WHERE query_key = $1`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func (p *Postgres) ScanOldest(ctx context.Context, afterCompletedAt int64, limit int) ([]cache.Entry, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT query_key, tool_name, cached_response, completed_at, ttl_ms
		   FROM global_query_cache
		  WHERE completed_at > $1
		  ORDER BY completed_at ASC
		  LIMIT $2`, afterCompletedAt, limit)
	if err != nil {
		return nil, fmt.Errorf("scan cache entries: %w", err)
	}
	defer rows.Close()

	var entries []cache.Entry
	for rows.Next() {
		var entry cache.Entry
		if err := rows.Scan(&entry.QueryKey, &entry.ToolName, &entry.CachedResponse, &entry.CompletedAt, &entry.TTLMs); err != nil {
			return nil, fmt.Errorf("scan cache row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
