package featurestore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"ticket-risk-scoring/internal/domain/scoring"
)

// Store reads versioned feature snapshots from the external feature
// store. The batch pipeline that writes snapshots is out of scope; this
// client only reads.
type Store interface {
	Fetch(ctx context.Context, customerID string) (*scoring.FeatureSnapshot, error)
	Ping(ctx context.Context) error
}

// Config holds the feature store connection settings.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore is the Redis-backed feature store client. The pipeline
// publishes one hash per customer (features:<customer_id>) plus metadata
// fields for the snapshot version and timestamp.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to the feature store and verifies the
// connection.
func NewRedisStore(cfg Config) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to feature store: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// Metadata fields stored alongside the features in the customer hash.
const (
	metaVersionField = "__version"
	metaTakenAtField = "__taken_at"
)

// Fetch reads a customer's snapshot. A customer with no published
// features returns ErrSnapshotUnavailable, which callers convert to the
// neutral all-zero snapshot.
func (s *RedisStore) Fetch(ctx context.Context, customerID string) (*scoring.FeatureSnapshot, error) {
	key := fmt.Sprintf("features:%s", customerID)

	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("feature store read failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, scoring.ErrSnapshotUnavailable
	}

	snapshot := &scoring.FeatureSnapshot{
		CustomerID: customerID,
		Version:    fields[metaVersionField],
		Features:   make(map[string]decimal.Decimal, len(fields)),
	}
	if raw, ok := fields[metaTakenAtField]; ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			snapshot.TakenAt = t
		}
	}

	for name, raw := range fields {
		if name == metaVersionField || name == metaTakenAtField {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			// A single unparseable feature must not poison the
			// snapshot; skip it and let the rule engine treat it as
			// absent.
			continue
		}
		snapshot.Features[name] = value
	}

	return snapshot, nil
}

// Ping tests the feature store connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
