package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mohammad-safakhou/searchfusion/models"
)

// Entry is one cached response row in the global query cache.
type Entry struct {
	QueryKey       string
	ToolName       string
	CachedResponse []byte
	CompletedAt    int64 // epoch ms
	TTLMs          int64
}

// Expired reports whether the entry is past its own TTL at nowMs.
func (e Entry) Expired(nowMs int64) bool { return nowMs-e.CompletedAt > e.TTLMs }

// Store is the persistence contract for the global query cache: unique-key
// upsert, point lookup, idempotent delete and an ordered scan by completion
// time for the sweeper.
type Store interface {
	// Get returns models.ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) (Entry, error)
	Upsert(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, key string) error
	// ScanOldest returns up to limit entries with CompletedAt strictly greater
	// than afterCompletedAt, oldest first.
	ScanOldest(ctx context.Context, afterCompletedAt int64, limit int) ([]Entry, error)
}

// Hit is a fresh cache read.
type Hit struct {
	Response []byte
	AgeMs    int64
}

// Cache is the TTL cache service. Store failures degrade to misses and
// best-effort writes; they never fail a search.
type Cache struct {
	store  Store
	policy TTLPolicy
	logger *log.Logger
	now    func() time.Time
}

func New(store Store, policy TTLPolicy) *Cache {
	return &Cache{
		store:  store,
		policy: policy,
		logger: log.New(log.Writer(), "[CACHE] ", log.LstdFlags),
		now:    time.Now,
	}
}

// TTLFor exposes the policy classification for callers that need the chosen
// TTL (e.g. to report it).
func (c *Cache) TTLFor(query string, hasDateFilter bool) time.Duration {
	return c.policy.For(query, hasDateFilter)
}

// Get returns a hit only for a present, unexpired entry. Expired entries are
// left for the sweeper.
func (c *Cache) Get(ctx context.Context, key string) (Hit, bool) {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, models.ErrCacheMiss) {
			c.logger.Printf("read %s: %v", key, err)
		}
		return Hit{}, false
	}
	nowMs := c.now().UnixMilli()
	if entry.Expired(nowMs) {
		return Hit{}, false
	}
	return Hit{Response: entry.CachedResponse, AgeMs: nowMs - entry.CompletedAt}, true
}

// Set upserts a response under key. Write failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key, toolName string, response []byte, ttl time.Duration) {
	entry := Entry{
		QueryKey:       key,
		ToolName:       toolName,
		CachedResponse: response,
		CompletedAt:    c.now().UnixMilli(),
		TTLMs:          ttl.Milliseconds(),
	}
	if err := c.store.Upsert(ctx, entry); err != nil {
		c.logger.Printf("write %s: %v", key, err)
	}
}

// Invalidate hard-deletes a key. Deleting an absent key is a no-op.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Sweep scans entries oldest-first and deletes those past their own TTL,
// stopping after batchSize deletions or when the scan is exhausted. Returns
// the number of deletions.
func (c *Cache) Sweep(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		return 0, nil
	}
	deleted := 0
	cursor := int64(-1)
	nowMs := c.now().UnixMilli()
	for deleted < batchSize {
		page, err := c.store.ScanOldest(ctx, cursor, batchSize)
		if err != nil {
			return deleted, err
		}
		if len(page) == 0 {
			break
		}
		for _, entry := range page {
			cursor = entry.CompletedAt
			if !entry.Expired(nowMs) {
				continue
			}
			if err := c.store.Delete(ctx, entry.QueryKey); err != nil {
				c.logger.Printf("sweep delete %s: %v", entry.QueryKey, err)
				continue
			}
			deleted++
			if deleted >= batchSize {
				break
			}
		}
		if len(page) < batchSize {
			break
		}
	}
	return deleted, nil
}
