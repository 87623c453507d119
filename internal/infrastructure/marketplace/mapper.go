package marketplace

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/clothesfinder/backend/internal/domain"
	"github.com/clothesfinder/backend/internal/textmatch"
)

// mapAnchor converts a search-result anchor into a listing
func mapAnchor(cfg SiteConfig, base *url.URL, s *goquery.Selection) (domain.Listing, bool) {
	href, _ := s.Attr("href")
	link, ok := resolveURL(base, href)
	if !ok {
		return domain.Listing{}, false
	}

	listing := domain.Listing{
		Site:  cfg.Site,
		Title: anchorTitle(s),
		URL:   link,
		Used:  cfg.Used,
	}
	if price, ok := anchorPrice(cfg, s); ok {
		listing.Price = &price
	}
	return listing, true
}

// resolveURL makes href absolute against base and drops the fragment.
func resolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

// anchorTitle takes the link text, falling back to title/aria-label/img alt
func anchorTitle(s *goquery.Selection) string {
	if title := cleanText(s.Text()); title != "" {
		return title
	}
	for _, attr := range []string{"title", "aria-label"} {
		if v, ok := s.Attr(attr); ok && cleanText(v) != "" {
			return cleanText(v)
		}
	}
	if alt, ok := s.Find("img[alt]").First().Attr("alt"); ok {
		return cleanText(alt)
	}
	return ""
}

// anchorPrice reads the site's price element inside the anchor. Without one,
// the anchor's parent and grandparent are searched for a currency-marked
// amount, as long as they wrap this result alone.
func anchorPrice(cfg SiteConfig, s *goquery.Selection) (float64, bool) {
	if cfg.PriceSelector != "" {
		if text := s.Find(cfg.PriceSelector).First().Text(); text != "" {
			if price, ok := textmatch.ExtractPrice(text); ok {
				return price, true
			}
		}
	}
	if price, ok := textmatch.ExtractMarkedPrice(s.Text()); ok {
		return price, true
	}
	for p, depth := s.Parent(), 0; p.Length() > 0 && depth < 2; p, depth = p.Parent(), depth+1 {
		if p.Find("a[href]").Length() > 1 {
			break
		}
		if price, ok := textmatch.ExtractMarkedPrice(p.Text()); ok {
			return price, true
		}
	}
	return 0, false
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
