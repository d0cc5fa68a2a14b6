package featurestore

import (
	"context"
	"errors"
	"sync"
	"time"

	"ticket-risk-scoring/internal/domain/scoring"
)

// Reader implements scoring.SnapshotReader with a bounded in-process
// cache in front of the store. Cache reads never block on another
// request's write: lookups take the read lock only, and a miss fetches
// outside any lock.
type Reader struct {
	store Store

	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
}

type cacheEntry struct {
	snapshot *scoring.FeatureSnapshot
	cachedAt time.Time
}

// NewReader creates a snapshot reader. maxSize bounds the cache entry
// count; ttl bounds staleness.
func NewReader(store Store, ttl time.Duration, maxSize int) *Reader {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &Reader{
		store:   store,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Read returns the current feature snapshot for a customer. A customer
// unknown to the feature store yields the neutral all-zero snapshot, not
// an error; only transport failures surface as errors, and callers may
// still fall back to the empty snapshot for degraded scoring.
func (r *Reader) Read(ctx context.Context, customerID string) (*scoring.FeatureSnapshot, error) {
	if cached, ok := r.lookup(customerID); ok {
		return cached, nil
	}

	snapshot, err := r.store.Fetch(ctx, customerID)
	if err != nil {
		if errors.Is(err, scoring.ErrSnapshotUnavailable) {
			snapshot = scoring.EmptySnapshot(customerID)
			r.put(customerID, snapshot)
			return snapshot, nil
		}
		return nil, err
	}

	r.put(customerID, snapshot)
	return snapshot, nil
}

func (r *Reader) lookup(customerID string) (*scoring.FeatureSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[customerID]
	if !ok || time.Since(entry.cachedAt) > r.ttl {
		return nil, false
	}
	return entry.snapshot, true
}

func (r *Reader) put(customerID string, snapshot *scoring.FeatureSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Bounded cache: evict expired entries first, then arbitrary ones
	// until there is room. Snapshots are small and re-fetchable, so an
	// unsophisticated eviction is fine here.
	if len(r.entries) >= r.maxSize {
		for key, entry := range r.entries {
			if time.Since(entry.cachedAt) > r.ttl {
				delete(r.entries, key)
			}
		}
		for key := range r.entries {
			if len(r.entries) < r.maxSize {
				break
			}
			delete(r.entries, key)
		}
	}

	r.entries[customerID] = cacheEntry{snapshot: snapshot, cachedAt: time.Now()}
}
