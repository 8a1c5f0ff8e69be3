package geocoding

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/pkg/helpers"
)

// CachedGeocoder memoizes successful lookups in Redis. Failures are never
// cached, and a Redis outage degrades to calling Next directly.
type CachedGeocoder struct {
	Next   service.Geocoder
	Redis  *redis.Client
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewCachedGeocoder(next service.Geocoder, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) service.Geocoder {
	if rdb == nil {
		return next
	}
	return &CachedGeocoder{Next: next, Redis: rdb, TTL: ttl, Logger: logger}
}

func cacheKey(address string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(address))))
	return "geo:addr:" + hex.EncodeToString(sum[:])
}

func (c *CachedGeocoder) ResolveAddress(ctx context.Context, address string) (service.Coordinates, error) {
	key := cacheKey(address)
	var cached service.Coordinates
	hit, err := helpers.RedisGetJSON(ctx, c.Redis, key, &cached)
	if err != nil {
		helpers.LogWarn(c.Logger, "geocode cache read failed", err, logrus.Fields{"key": key})
	} else if hit {
		return cached, nil
	}

	coords, err := c.Next.ResolveAddress(ctx, address)
	if err != nil {
		return service.Coordinates{}, err
	}
	if err := helpers.RedisSetJSON(ctx, c.Redis, key, coords, c.TTL); err != nil {
		helpers.LogWarn(c.Logger, "geocode cache write failed", err, logrus.Fields{"key": key})
	}
	return coords, nil
}
