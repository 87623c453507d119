// Package cache provides the result cache backends: an in-process map for a
// single instance and Redis for shared deployments.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/clothesfinder/backend/internal/domain"
)

// Backend names accepted by New
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Store is a cache backend that owns resources
type Store interface {
	domain.CacheRepository
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Type            string
	RedisURL        string
	KeyPrefix       string
	CleanupInterval time.Duration
}

// New builds the configured backend. When Redis cannot be reached it falls
// back to the in-memory cache so the service still starts.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "", TypeMemory:
		return NewMemoryCache(opts.CleanupInterval), nil
	case TypeRedis:
		rc, err := NewRedisCache(ctx, opts.RedisURL, opts.KeyPrefix)
		if err != nil {
			log.Printf("[CACHE] redis unavailable, using in-memory cache: %v", err)
			return NewMemoryCache(opts.CleanupInterval), nil
		}
		log.Printf("[CACHE] using redis cache")
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", opts.Type)
	}
}
