package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/af-corp/shetkari-gateway/internal/telemetry"
)

// Cache is the read-through layer used by the AI client. Backend failures
// are logged and counted but never surfaced: a failed read is a miss and a
// failed write is dropped.
type Cache struct {
	store   Store
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

func New(store Store, logger *slog.Logger, metrics *telemetry.Metrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, logger: logger, metrics: metrics}
}

// LookupJSON decodes the entry under key into dest. It reports false on a
// miss, a backend error, or an entry that no longer decodes.
func (c *Cache) LookupJSON(ctx context.Context, kind, key string, dest any) bool {
	raw, ok := c.get(ctx, kind, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		c.recordError("decode")
		return false
	}
	return true
}

// StoreJSON encodes v and writes it under key if the key is not yet present.
func (c *Cache) StoreJSON(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		c.recordError("encode")
		return
	}
	c.put(ctx, key, raw)
}

// LookupString returns a raw string entry, used for image data URLs.
func (c *Cache) LookupString(ctx context.Context, kind, key string) (string, bool) {
	raw, ok := c.get(ctx, kind, key)
	if !ok {
		return "", false
	}
	return string(raw), true
}

func (c *Cache) StoreString(ctx context.Context, key, v string) {
	c.put(ctx, key, []byte(v))
}

func (c *Cache) get(ctx context.Context, kind, key string) ([]byte, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
		c.recordError("get")
		ok = false
	}
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(kind, ok)
	}
	return raw, ok
}

func (c *Cache) put(ctx context.Context, key string, raw []byte) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Put(ctx, key, raw); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
		c.recordError("put")
	}
}

func (c *Cache) recordError(op string) {
	if c.metrics != nil {
		c.metrics.RecordCacheError(op)
	}
}
