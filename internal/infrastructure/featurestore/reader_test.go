package featurestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-risk-scoring/internal/domain/scoring"
)

type fakeStore struct {
	snapshots map[string]*scoring.FeatureSnapshot
	err       error
	fetches   int
}

func (s *fakeStore) Fetch(_ context.Context, customerID string) (*scoring.FeatureSnapshot, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	snapshot, ok := s.snapshots[customerID]
	if !ok {
		return nil, scoring.ErrSnapshotUnavailable
	}
	return snapshot, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func storedSnapshot(customerID string) *scoring.FeatureSnapshot {
	return &scoring.FeatureSnapshot{
		CustomerID: customerID,
		Version:    "v12",
		TakenAt:    time.Now(),
		Features: map[string]decimal.Decimal{
			"chargeback_count": decimal.NewFromInt(2),
		},
	}
}

func TestReadFetchesAndCaches(t *testing.T) {
	store := &fakeStore{snapshots: map[string]*scoring.FeatureSnapshot{
		"cust-1": storedSnapshot("cust-1"),
	}}
	reader := NewReader(store, time.Minute, 16)

	first, err := reader.Read(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "v12", first.Version)

	second, err := reader.Read(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, store.fetches, "second read must hit the cache")
}

func TestReadUnknownCustomerYieldsEmptySnapshot(t *testing.T) {
	store := &fakeStore{}
	reader := NewReader(store, time.Minute, 16)

	snapshot, err := reader.Read(context.Background(), "cust-unknown")
	require.NoError(t, err, "a customer with no features is not an error")
	assert.True(t, snapshot.Empty)
	assert.Empty(t, snapshot.Features)

	// The empty snapshot is cached like any other.
	_, err = reader.Read(context.Background(), "cust-unknown")
	require.NoError(t, err)
	assert.Equal(t, 1, store.fetches)
}

func TestReadPropagatesTransportErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	reader := NewReader(store, time.Minute, 16)

	_, err := reader.Read(context.Background(), "cust-1")
	assert.Error(t, err)
}

func TestReadExpiredEntryRefetches(t *testing.T) {
	store := &fakeStore{snapshots: map[string]*scoring.FeatureSnapshot{
		"cust-1": storedSnapshot("cust-1"),
	}}
	reader := NewReader(store, 10*time.Millisecond, 16)

	_, err := reader.Read(context.Background(), "cust-1")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = reader.Read(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 2, store.fetches)
}

func TestCacheStaysBounded(t *testing.T) {
	store := &fakeStore{snapshots: map[string]*scoring.FeatureSnapshot{}}
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		store.snapshots[id] = storedSnapshot(id)
	}
	reader := NewReader(store, time.Minute, 4)

	for id := range store.snapshots {
		_, err := reader.Read(context.Background(), id)
		require.NoError(t, err)
	}

	reader.mu.RLock()
	defer reader.mu.RUnlock()
	assert.LessOrEqual(t, len(reader.entries), 4)
}
