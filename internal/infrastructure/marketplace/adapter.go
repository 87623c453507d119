package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/clothesfinder/backend/internal/domain"
)

// anchorStrategy finds candidate result anchors on a search page
type anchorStrategy struct {
	name string
	find func(doc *goquery.Document) *goquery.Selection
}

// HTMLAdapter scrapes one marketplace's server-rendered search page. Results
// come from the site's CSS selector when it matches anything, otherwise from
// a scan of all anchors whose href contains the site's listing path.
type HTMLAdapter struct {
	cfg        SiteConfig
	fetcher    domain.PageFetcher
	base       *url.URL
	strategies []anchorStrategy
}

// NewHTMLAdapter creates an adapter for cfg.
func NewHTMLAdapter(cfg SiteConfig, fetcher domain.PageFetcher) (*HTMLAdapter, error) {
	if cfg.Site == "" || cfg.SearchURL == "" {
		return nil, fmt.Errorf("site config needs a name and a search url")
	}
	if strings.Count(cfg.SearchURL, "%s") != 1 {
		return nil, fmt.Errorf("%s: search url must contain exactly one %%s", cfg.Site)
	}
	if cfg.LinkSelector == "" && cfg.PathContains == "" {
		return nil, fmt.Errorf("%s: needs a link selector or a path pattern", cfg.Site)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%s: invalid base url %q", cfg.Site, cfg.BaseURL)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultPerSiteLimit
	}

	a := &HTMLAdapter{cfg: cfg, fetcher: fetcher, base: base}
	if cfg.LinkSelector != "" {
		a.strategies = append(a.strategies, anchorStrategy{name: "selector", find: a.selectorAnchors})
	}
	if cfg.PathContains != "" {
		a.strategies = append(a.strategies, anchorStrategy{name: "path-scan", find: a.pathScanAnchors})
	}
	return a, nil
}

// NewAdapters builds an adapter for every config.
func NewAdapters(configs []SiteConfig, fetcher domain.PageFetcher) ([]domain.SiteAdapter, error) {
	adapters := make([]domain.SiteAdapter, 0, len(configs))
	for _, cfg := range configs {
		a, err := NewHTMLAdapter(cfg, fetcher)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// Site returns the marketplace this adapter searches
func (a *HTMLAdapter) Site() domain.Site {
	return a.cfg.Site
}

// SearchURL builds the marketplace search URL for query
func (a *HTMLAdapter) SearchURL(query string) string {
	return fmt.Sprintf(a.cfg.SearchURL, url.QueryEscape(query))
}

// Search fetches the search page for query. Any failure yields no listings.
func (a *HTMLAdapter) Search(ctx context.Context, query string) []domain.Listing {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	searchURL := a.SearchURL(query)
	result := a.fetcher.Fetch(ctx, searchURL)
	if !result.OK() {
		log.Printf("[SITE] %s search failed: %v", a.cfg.Site, result.Err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		log.Printf("[SITE] %s: parse search page: %v", a.cfg.Site, err)
		return nil
	}

	for _, strategy := range a.strategies {
		listings := a.collect(strategy.find(doc))
		if len(listings) > 0 {
			log.Printf("[SITE] %s: %d listings via %s", a.cfg.Site, len(listings), strategy.name)
			return listings
		}
	}

	log.Printf("[SITE] %s: no listings for %q", a.cfg.Site, query)
	return nil
}

func (a *HTMLAdapter) selectorAnchors(doc *goquery.Document) *goquery.Selection {
	return doc.Find(a.cfg.LinkSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		_, ok := s.Attr("href")
		return ok
	})
}

func (a *HTMLAdapter) pathScanAnchors(doc *goquery.Document) *goquery.Selection {
	return doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		return strings.Contains(href, a.cfg.PathContains)
	})
}

// collect maps anchors to listings, deduplicated by URL and capped at the
// site limit.
func (a *HTMLAdapter) collect(anchors *goquery.Selection) []domain.Listing {
	var listings []domain.Listing
	seen := make(map[string]bool)

	anchors.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		listing, ok := mapAnchor(a.cfg, a.base, s)
		if !ok || seen[listing.URL] {
			return true
		}
		seen[listing.URL] = true
		listings = append(listings, listing)
		return len(listings) < a.cfg.Limit
	})

	return listings
}
