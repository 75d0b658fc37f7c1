package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/models"
)

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "qc_x"); !errors.Is(err, models.ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}

	entry := cache.Entry{QueryKey: "qc_x", ToolName: "fusion_search", CachedResponse: []byte("{}"), CompletedAt: 100, TTLMs: 1000}
	if err := m.Upsert(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := m.Get(ctx, "qc_x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompletedAt != 100 || got.TTLMs != 1000 {
		t.Fatalf("entry = %+v", got)
	}

	entry.TTLMs = 2000
	if err := m.Upsert(ctx, entry); err != nil {
		t.Fatalf("upsert overwrite: %v", err)
	}
	got, _ = m.Get(ctx, "qc_x")
	if got.TTLMs != 2000 {
		t.Fatal("upsert did not overwrite existing entry")
	}

	if err := m.Delete(ctx, "qc_x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(ctx, "qc_x"); !errors.Is(err, models.ErrCacheMiss) {
		t.Fatal("entry survived delete")
	}
}

func TestMemoryScanOldest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < 5; i++ {
		err := m.Upsert(ctx, cache.Entry{
			QueryKey:    fmt.Sprintf("qc_%d", i),
			ToolName:    "fusion_search",
			CompletedAt: int64(100 * (i + 1)),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, err := m.ScanOldest(ctx, -1, 3)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page len = %d, want 3", len(page))
	}
	for i := 1; i < len(page); i++ {
		if page[i].CompletedAt < page[i-1].CompletedAt {
			t.Fatal("page not ordered oldest first")
		}
	}
	if page[0].CompletedAt != 100 {
		t.Fatalf("first entry CompletedAt = %d, want oldest", page[0].CompletedAt)
	}

	// Cursor is exclusive: resuming from the last CompletedAt skips it.
	next, err := m.ScanOldest(ctx, page[2].CompletedAt, 3)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(next) != 2 || next[0].CompletedAt != 400 {
		t.Fatalf("resumed page = %+v", next)
	}
}
