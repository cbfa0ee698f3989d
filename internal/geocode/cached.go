package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/mealprep-builder/internal/pkg/cache"
)

// CacheTTL is how long a resolved address is reused.
const CacheTTL = 24 * time.Hour

// Cached serves repeated lookups from a cache. Only successful lookups are
// stored, and cache failures fall through to the wrapped geocoder.
type Cached struct {
	next  Geocoder
	cache cache.Cache
}

func NewCached(next Geocoder, c cache.Cache) *Cached {
	return &Cached{next: next, cache: c}
}

func (c *Cached) Geocode(ctx context.Context, address string) (*Location, error) {
	normalized := normalize(address)
	if normalized == "" {
		return c.next.Geocode(ctx, address)
	}
	key := c.cache.GenerateKey("geocode", normalized)

	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "geocode cache read failed", "error", err)
	}
	if ok {
		var loc Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil {
			return &loc, nil
		}
		slog.WarnContext(ctx, "discarding corrupt geocode cache entry", "key", key)
		if err := c.cache.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "geocode cache delete failed", "key", key, "error", err)
		}
	}

	loc, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(loc); err == nil {
		if err := c.cache.Set(ctx, key, string(b), CacheTTL); err != nil {
			slog.WarnContext(ctx, "geocode cache write failed", "error", err)
		}
	}
	return loc, nil
}
