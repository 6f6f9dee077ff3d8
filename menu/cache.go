package menu

import (
	"context"
	"encoding/json"
	"time"

	"servecart/models"
	"servecart/rdx"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const allKey = "menu:all"

func itemKey(id string) string { return "menu:item:" + id }

// Cache is the key/value store behind CachedSource; rdx.Cache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// CachedSource reads through Cache in front of another Source. Cache errors
// degrade to a direct read.
type CachedSource struct {
	Source Source
	Cache  Cache
	TTL    time.Duration
}

func NewCachedSource(src Source, cache Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{Source: src, Cache: cache, TTL: ttl}
}

func (c *CachedSource) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if c.lookup(ctx, allKey, &items) {
		return items, nil
	}
	items, err := c.Source.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, allKey, items)
	return items, nil
}

func (c *CachedSource) Get(ctx context.Context, id string) (models.MenuItem, error) {
	var item models.MenuItem
	if c.lookup(ctx, itemKey(id), &item) {
		return item, nil
	}
	item, err := c.Source.Get(ctx, id)
	if err != nil {
		return item, err
	}
	c.store(ctx, itemKey(id), item)
	return item, nil
}

// Invalidate drops the cached list and the cached item.
func (c *CachedSource) Invalidate(ctx context.Context, id string) error {
	return c.Cache.Del(ctx, allKey, itemKey(id))
}

func (c *CachedSource) lookup(ctx context.Context, key string, dst any) bool {
	raw, err := c.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, rdx.ErrMiss) {
			log.Warn().Err(err).Str("key", key).Msg("menu cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("menu cache entry unreadable")
		return false
	}
	return true
}

func (c *CachedSource) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Cache.Set(ctx, key, string(data), c.TTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("menu cache write failed")
	}
}
