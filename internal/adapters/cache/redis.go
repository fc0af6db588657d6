// Package cache provides the Redis-backed result cache adapter.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"quotesuggest/internal/domain"
)

// Redis stores ranked suggestion sets as JSON arrays under their query key.
// Every read refreshes the entry's TTL, so a key stays warm for as long as
// clients keep asking for it.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Config contains the Redis cache settings.
type Config struct {
	Addr   string
	DB     int
	TTL    time.Duration
	Logger *slog.Logger
}

// quoteRecord is the wire form of a cached quote.
type quoteRecord struct {
	Text        string `json:"text"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
}

// NewRedis creates a Redis result cache. The connection is lazy; use Check
// to verify reachability.
func NewRedis(cfg Config) *Redis {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr: cfg.Addr,
			DB:   cfg.DB,
		}),
		ttl:    cfg.TTL,
		logger: logger.With(slog.String("component", "cache.Redis")),
	}
}

// NewRedisWithClient creates a cache around an existing client. Used by tests.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With(slog.String("component", "cache.Redis")),
	}
}

// Exists reports whether a result set is stored under the key.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, domain.NewUnavailableError("cache", err.Error())
	}

	return n > 0, nil
}

// Put stores the full ranked sequence under the key with the configured TTL,
// replacing any previous entry.
func (r *Redis) Put(ctx context.Context, key string, quotes []domain.Quote) error {
	records := make([]quoteRecord, len(quotes))
	for i, q := range quotes {
		records[i] = quoteRecord{Text: q.Text, Author: q.Author, Description: q.Description}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	err = r.client.Set(ctx, key, payload, r.ttl).Err()
	if err != nil {
		return domain.NewUnavailableError("cache", err.Error())
	}

	return nil
}

// Get returns the requested page of the stored sequence and refreshes the
// entry's TTL in the same command. When the requested window reaches past the
// end of the stored sequence the whole sequence is returned instead of a
// truncated page. A missing key yields a nil slice, not an error.
func (r *Redis) Get(ctx context.Context, key string, limit, offset int) ([]domain.Quote, error) {
	payload, err := r.client.GetEx(ctx, key, r.ttl).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}

		return nil, domain.NewUnavailableError("cache", err.Error())
	}

	var records []quoteRecord

	err = json.Unmarshal(payload, &records)
	if err != nil {
		return nil, fmt.Errorf("decoding cached quotes: %w", err)
	}

	if limit >= 0 && offset >= 0 && offset+limit <= len(records) {
		records = records[offset : offset+limit]
	}

	quotes := make([]domain.Quote, len(records))
	for i, rec := range records {
		quotes[i] = domain.Quote{Text: rec.Text, Author: rec.Author, Description: rec.Description}
	}

	return quotes, nil
}

// Reset drops every cached result set in the configured database.
func (r *Redis) Reset(ctx context.Context) error {
	err := r.client.FlushDB(ctx).Err()
	if err != nil {
		return domain.NewUnavailableError("cache", err.Error())
	}

	r.logger.InfoContext(ctx, "cache flushed")

	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Name implements ports.HealthChecker.
func (r *Redis) Name() string {
	return "redis-cache"
}

// Check implements ports.HealthChecker by pinging the server.
func (r *Redis) Check(ctx context.Context) error {
	err := r.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}

	return nil
}
