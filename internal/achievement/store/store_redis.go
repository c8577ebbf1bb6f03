package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"laurel/internal/achievement/models"
)

var (
	loadDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "laurel_registry_load_duration_ms",
		Help:    "Latency of full registry sequence loads in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
	replaceBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "laurel_registry_replace_bytes",
		Help:    "Encoded size of full registry rewrites in bytes",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	})
)

// RedisStore is the production registry store. The entire achievement
// sequence is one JSON value under RegistryKey, mirroring the host ledger's
// instance-storage layout: every mutation rewrites the value in full, and
// the key carries a finite TTL renewed only on mutation.
type RedisStore struct {
	client *redis.Client
	cfg    TTLConfig
}

// NewRedis constructs a Redis-backed registry store. The client lifecycle is
// managed externally.
func NewRedis(client *redis.Client, cfg TTLConfig) *RedisStore {
	return &RedisStore{
		client: client,
		cfg:    cfg,
	}
}

func (s *RedisStore) Load(ctx context.Context) ([]models.Achievement, error) {
	start := time.Now()
	defer func() {
		loadDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	payload, err := s.client.Get(ctx, RegistryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Absent entry loads as an empty registry; same for a reclaimed one.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	var records []models.Achievement
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return records, nil
}

func (s *RedisStore) Replace(ctx context.Context, records []models.Achievement) error {
	if records == nil {
		records = []models.Achievement{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	replaceBytes.Observe(float64(len(payload)))

	// KEEPTTL preserves the remaining lifetime across the rewrite; renewal
	// is ExtendTTL's job.
	if err := s.client.Set(ctx, RegistryKey, payload, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

func (s *RedisStore) ExtendTTL(ctx context.Context) error {
	remaining, err := s.client.PTTL(ctx, RegistryKey).Result()
	if err != nil {
		return fmt.Errorf("read registry ttl: %w", err)
	}
	// go-redis passes the protocol's sentinel replies through unscaled:
	// -2 means the key is absent (nothing to renew), -1 means a freshly
	// written key with no lifetime yet (give it one so storage stays
	// bounded).
	if remaining == time.Duration(-2) {
		return nil
	}
	if remaining >= 0 && remaining >= s.cfg.Threshold {
		return nil
	}
	if err := s.client.Expire(ctx, RegistryKey, s.cfg.Extension).Err(); err != nil {
		return fmt.Errorf("extend registry ttl: %w", err)
	}
	return nil
}
