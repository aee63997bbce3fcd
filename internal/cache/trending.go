// Package cache provides an optional Redis-backed cache for trending list
// responses. The engine is fully functional without it; handlers treat a nil
// cache as a miss on every request.
package cache

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 60 * time.Second

// TrendingCache caches marshaled trending responses keyed by
// (timeframe, limit, category) with a short TTL.
type TrendingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTrendingCacheFromEnv returns a cache backed by REDIS_ADDR, or nil when
// the variable is unset.
func NewTrendingCacheFromEnv() *TrendingCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return NewTrendingCache(client, defaultTTL)
}

// NewTrendingCache creates a new trending cache
func NewTrendingCache(client *redis.Client, ttl time.Duration) *TrendingCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &TrendingCache{client: client, ttl: ttl}
}

func key(timeframe string, limit int, categorySlug string) string {
	return fmt.Sprintf("trending:%s:%d:%s", timeframe, limit, categorySlug)
}

// Get returns the cached response bytes for the request, or false on a miss.
// Cache errors degrade to misses.
func (tc *TrendingCache) Get(ctx context.Context, timeframe string, limit int, categorySlug string) ([]byte, bool) {
	if tc == nil {
		return nil, false
	}
	data, err := tc.client.Get(ctx, key(timeframe, limit, categorySlug)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores the response bytes for the request.
func (tc *TrendingCache) Set(ctx context.Context, timeframe string, limit int, categorySlug string, data []byte) {
	if tc == nil {
		return
	}
	if err := tc.client.Set(ctx, key(timeframe, limit, categorySlug), data, tc.ttl).Err(); err != nil {
		log.Printf("Failed to cache trending response: %v", err)
	}
}

// InvalidateTimeframe drops every cached response for a timeframe. Called
// after each recompute so readers never wait out the TTL for fresh scores.
func (tc *TrendingCache) InvalidateTimeframe(ctx context.Context, timeframe string) {
	if tc == nil {
		return
	}

	pattern := fmt.Sprintf("trending:%s:*", timeframe)
	iter := tc.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := tc.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("Failed to invalidate trending cache key %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("Failed to scan trending cache keys: %v", err)
	}
}
