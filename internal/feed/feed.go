// Package feed keeps the current blog list fresh. Fetches may overlap; only
// the response of the most recently started fetch is ever applied.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"blogdesk/internal/blog"
	"blogdesk/internal/models"
)

// DefaultInterval is the periodic refresh interval.
const DefaultInterval = 30 * time.Second

// FetchFunc loads the full normalized blog list.
type FetchFunc func(ctx context.Context) ([]models.Blog, error)

// Feed holds the latest applied blog list.
type Feed struct {
	fetch   FetchFunc
	onError func(error)

	seq atomic.Uint64

	mu        sync.RWMutex
	applied   uint64
	blogs     []models.Blog
	updatedAt time.Time
}

// New creates a feed backed by fetch. onError receives fetch failures; it
// may be nil.
func New(fetch FetchFunc, onError func(error)) *Feed {
	return &Feed{fetch: fetch, onError: onError}
}

// Refresh fetches the list and applies it unless a newer fetch has already
// been applied. It reports whether this response was applied. On error the
// current list is left unchanged.
func (f *Feed) Refresh(ctx context.Context) (bool, error) {
	seq := f.seq.Add(1)
	blogs, err := f.fetch(ctx)
	if err != nil {
		slog.Debug("feed refresh failed", "seq", seq, "error", err)
		if f.onError != nil {
			f.onError(err)
		}
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq <= f.applied {
		slog.Debug("feed dropped stale response", "seq", seq, "applied", f.applied)
		return false, nil
	}
	f.applied = seq
	f.blogs = append([]models.Blog(nil), blogs...)
	f.updatedAt = time.Now()
	return true, nil
}

// Run refreshes immediately and then every interval until ctx is done.
// A non-positive interval uses DefaultInterval.
func (f *Feed) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	_, _ = f.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = f.Refresh(ctx)
		}
	}
}

// Snapshot returns a copy of the current list.
func (f *Feed) Snapshot() []models.Blog {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Blog(nil), f.blogs...)
}

// UpdatedAt returns when the current list was applied.
func (f *Feed) UpdatedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.updatedAt
}

// View returns the visible subset of the current list.
func (f *Feed) View(query string, sel blog.VisibilitySelector) []models.Blog {
	return blog.Filter(f.Snapshot(), query, sel)
}
