// Package fetch performs the outbound page requests for the marketplace
// adapters and the page enricher.
package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"

	"github.com/clothesfinder/backend/internal/domain"
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (compatible; ClothesFinder/2.0; +https://github.com/clothesfinder)"
	defaultAcceptLanguage = "sv-SE,sv;q=0.9,en;q=0.8"
	defaultTimeout        = 8 * time.Second
	defaultMaxBodyBytes   = 5 * 1024 * 1024
	pageCachePrefix       = "page:"
	maxCachedPageBytes    = 512 * 1024
)

// Options controls outbound request behaviour
type Options struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	MaxBodyBytes   int64

	// Retries is the number of extra attempts after a transient failure
	// (network error, 5xx, 429). Capped at one.
	Retries    int
	RetryDelay time.Duration

	// RespectRobots checks robots.txt before every fetch, caching each
	// host's rules for RobotsTTL.
	RespectRobots bool
	RobotsTTL     time.Duration

	// Limiter and PageCache are optional.
	Limiter   *HostLimiter
	PageCache domain.CacheRepository
	PageTTL   time.Duration
}

// Client fetches marketplace pages. It never panics and reports every
// failure through domain.FetchResult.
type Client struct {
	httpClient *http.Client
	robots     *RobotsAgent
	opts       Options
}

// NewClient creates a fetch client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = defaultAcceptLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Retries > 1 {
		opts.Retries = 1
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts: opts,
	}
	if opts.RespectRobots {
		c.robots = NewRobotsAgent(c.httpClient, opts.UserAgent, opts.RobotsTTL)
	}
	return c
}

// Fetch downloads rawURL. Only 2xx responses with a body count as success.
func (c *Client) Fetch(ctx context.Context, rawURL string) domain.FetchResult {
	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() || (target.Scheme != "http" && target.Scheme != "https") {
		return domain.FetchFailure(rawURL, fmt.Errorf("%w: invalid url %q", domain.ErrFetchFailed, rawURL))
	}

	if body, ok := c.cachedBody(ctx, rawURL); ok {
		return domain.FetchResult{URL: rawURL, StatusCode: http.StatusOK, Body: body}
	}

	if c.robots != nil && !c.robots.Allowed(ctx, target) {
		log.Printf("[FETCH] robots.txt disallows %s", rawURL)
		return domain.FetchFailure(rawURL, domain.ErrDisallowedByRobots)
	}

	var result domain.FetchResult
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, c.opts.RetryDelay); err != nil {
				return domain.FetchFailure(rawURL, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err))
			}
		}

		if err := c.opts.Limiter.Wait(ctx, target.Hostname()); err != nil {
			return domain.FetchFailure(rawURL, fmt.Errorf("%w: rate limiter: %v", domain.ErrFetchFailed, err))
		}

		var retryable bool
		result, retryable = c.do(ctx, rawURL)
		if result.Err == nil || !retryable || ctx.Err() != nil {
			break
		}
		log.Printf("[FETCH] attempt %d for %s failed: %v", attempt+1, rawURL, result.Err)
	}

	if result.Err == nil {
		c.storeBody(ctx, rawURL, result.Body)
	}
	return result
}

// do runs a single attempt and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, rawURL string) (domain.FetchResult, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.FetchFailure(rawURL, fmt.Errorf("%w: build request: %v", domain.ErrFetchFailed, err)), false
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", c.opts.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FetchFailure(rawURL, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)), true
	}

	body, err := c.readBody(resp)
	if err != nil {
		return domain.FetchResult{URL: rawURL, StatusCode: resp.StatusCode, Err: err}, !errors.Is(err, domain.ErrBodyTooLarge)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return domain.FetchResult{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: status %d", domain.ErrUpstreamStatus, resp.StatusCode),
		}, retryable
	}
	if len(body) == 0 {
		return domain.FetchResult{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: empty body", domain.ErrFetchFailed),
		}, false
	}

	return domain.FetchResult{URL: rawURL, StatusCode: resp.StatusCode, Body: body}, false
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	closers := []io.Closer{resp.Body}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: gzip decode: %v", domain.ErrFetchFailed, err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(reader, c.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrFetchFailed, err)
	}
	if int64(len(body)) > c.opts.MaxBodyBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", domain.ErrBodyTooLarge, c.opts.MaxBodyBytes)
	}
	return body, nil
}

func (c *Client) cachedBody(ctx context.Context, rawURL string) ([]byte, bool) {
	if c.opts.PageCache == nil || c.opts.PageTTL <= 0 {
		return nil, false
	}
	cached, err := c.opts.PageCache.Get(ctx, pageCachePrefix+rawURL)
	if err != nil {
		return nil, false
	}
	s, ok := cached.(string)
	if !ok || s == "" {
		return nil, false
	}
	return []byte(s), true
}

// storeBody caches small UTF-8 pages only. Cache values are JSON strings,
// which cannot carry arbitrary bytes.
func (c *Client) storeBody(ctx context.Context, rawURL string, body []byte) {
	if c.opts.PageCache == nil || c.opts.PageTTL <= 0 {
		return
	}
	if len(body) > maxCachedPageBytes || !utf8.Valid(body) {
		return
	}
	if err := c.opts.PageCache.Set(ctx, pageCachePrefix+rawURL, string(body), c.opts.PageTTL); err != nil {
		log.Printf("[FETCH] page cache write failed for %s: %v", rawURL, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
