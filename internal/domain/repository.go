package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PageFetcher performs outbound GET requests. It never panics and reports
// every failure through FetchResult.Err.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// SiteAdapter searches one marketplace. Any failure yields an empty slice.
type SiteAdapter interface {
	Site() Site
	Search(ctx context.Context, query string) []Listing
}

// PageReader fetches a listing page and extracts its readable content
type PageReader interface {
	ReadPage(ctx context.Context, url string) (*PageContent, error)
}
