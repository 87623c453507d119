// Package marketplace adapts marketplace search pages and listing pages into
// domain listings and page content.
package marketplace

import (
	"strings"

	"github.com/clothesfinder/backend/internal/domain"
)

// DefaultPerSiteLimit caps the candidates taken from one search page
const DefaultPerSiteLimit = 10

// SiteConfig describes how to search one marketplace.
type SiteConfig struct {
	Site domain.Site
	// SearchURL holds a single %s for the query-escaped search terms
	SearchURL string
	// BaseURL resolves relative links
	BaseURL string
	// LinkSelector is the primary strategy: a CSS selector for result anchors
	LinkSelector string
	// PriceSelector is looked up inside each anchor
	PriceSelector string
	// PathContains is the fallback strategy: any anchor whose href contains it
	PathContains string
	Used         bool
	Limit        int
}

// DefaultSites returns the supported Swedish marketplaces.
func DefaultSites() []SiteConfig {
	return []SiteConfig{
		{
			Site:          domain.SiteVinted,
			SearchURL:     "https://www.vinted.se/catalog?search_text=%s",
			BaseURL:       "https://www.vinted.se",
			LinkSelector:  "a.catalog-item__link, a.new-item-box__overlay",
			PriceSelector: ".catalog-item__price, [data-testid$='--price-text']",
			PathContains:  "/items/",
			Used:          true,
		},
		{
			Site:          domain.SiteTradera,
			SearchURL:     "https://www.tradera.com/search?q=%s",
			BaseURL:       "https://www.tradera.com",
			LinkSelector:  "a.listing-card__link, a.item-card-details-header",
			PriceSelector: ".listing-card__price, .item-card-details-price",
			PathContains:  "/item/",
			Used:          true,
		},
		{
			Site:         domain.SiteBlocket,
			SearchURL:    "https://www.blocket.se/annonser/hela_sverige?q=%s",
			BaseURL:      "https://www.blocket.se",
			LinkSelector: "article a[href*='/annons/']",
			PathContains: "/annons/",
			Used:         true,
		},
		{
			Site:         domain.SiteZalando,
			SearchURL:    "https://www.zalando.se/catalog/?q=%s",
			BaseURL:      "https://www.zalando.se",
			LinkSelector: "article a[href*='/p/']",
			PathContains: "/p/",
			Used:         false,
		},
		{
			Site:          domain.SiteAmazon,
			SearchURL:     "https://www.amazon.se/s?k=%s",
			BaseURL:       "https://www.amazon.se",
			LinkSelector:  "div[data-component-type='s-search-result'] h2 a",
			PriceSelector: "span.a-price span.a-offscreen",
			PathContains:  "/dp/",
			Used:          false,
		},
		{
			Site:         domain.SitePlick,
			SearchURL:    "https://plick.se/search?q=%s",
			BaseURL:      "https://plick.se",
			PathContains: "/p/",
			Used:         true,
		},
		{
			Site:         domain.SiteSellpy,
			SearchURL:    "https://www.sellpy.se/search?q=%s",
			BaseURL:      "https://www.sellpy.se",
			PathContains: "/product/",
			Used:         true,
		},
		{
			Site:         domain.SiteFacebook,
			SearchURL:    "https://m.facebook.com/marketplace/search/?query=%s",
			BaseURL:      "https://m.facebook.com",
			PathContains: "/marketplace/item/",
			Used:         true,
		},
	}
}

// SelectSites filters DefaultSites by name (case-insensitive) and applies the
// per-site limit. An empty names list selects every site.
func SelectSites(names []string, limit int) []SiteConfig {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			wanted[n] = true
		}
	}

	var out []SiteConfig
	for _, cfg := range DefaultSites() {
		if len(wanted) > 0 && !wanted[siteKey(cfg.Site)] && !wanted[strings.ToLower(string(cfg.Site))] {
			continue
		}
		cfg.Limit = limit
		out = append(out, cfg)
	}
	return out
}

// KnownSite reports whether name matches a supported marketplace.
func KnownSite(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, cfg := range DefaultSites() {
		if name == siteKey(cfg.Site) || name == strings.ToLower(string(cfg.Site)) {
			return true
		}
	}
	return false
}

// siteKey is the config-friendly name: "Facebook Marketplace" -> "facebook"
func siteKey(site domain.Site) string {
	return strings.ToLower(strings.Fields(string(site))[0])
}
