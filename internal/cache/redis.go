package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const eventsListKeyPrefix = "events:list:"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Client caches the public approved-events list as raw JSON so cache hits
// skip the unmarshal/marshal round trip.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

func eventsListKey(page, pageSize int) string {
	return fmt.Sprintf("%s%d:%d", eventsListKeyPrefix, page, pageSize)
}

// GetEventsListRaw returns the cached JSON for a page of the public events
// list, or an error on a miss.
func (c *Client) GetEventsListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	data, err := c.rdb.Get(ctx, eventsListKey(page, pageSize)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("cache miss")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetEventsList stores a page of the public events list. Failures are logged
// and swallowed; the cache is best-effort.
func (c *Client) SetEventsList(ctx context.Context, page, pageSize int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal events list for cache", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, eventsListKey(page, pageSize), payload, c.ttl).Err(); err != nil {
		slog.Error("Failed to store events list in cache", "error", err)
	}
}

// InvalidateEventsList drops every cached page. Called whenever an event's
// public visibility or fields may have changed.
func (c *Client) InvalidateEventsList(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, eventsListKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Error("Failed to scan events list cache keys", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Error("Failed to invalidate events list cache", "error", err)
	}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
