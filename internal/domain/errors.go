package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoResults is returned when no marketplace produced a usable candidate
	ErrNoResults = errors.New("no matching listings found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrFetchFailed is returned when an outbound request could not be completed
	ErrFetchFailed = errors.New("marketplace request failed")

	// ErrUpstreamStatus is returned when a marketplace answers with a non-2xx status
	ErrUpstreamStatus = errors.New("unexpected upstream status")

	// ErrDisallowedByRobots is returned when robots.txt forbids fetching a URL
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

	// ErrBodyTooLarge is returned when a response body exceeds the configured cap
	ErrBodyTooLarge = errors.New("response body too large")
)
