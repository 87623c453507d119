package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/clothesfinder/backend/internal/domain"
)

const defaultMaxTextRunes = 20000

// PageReader fetches a listing page and extracts its readable content.
type PageReader struct {
	fetcher      domain.PageFetcher
	policy       *bluemonday.Policy
	maxTextRunes int
}

// NewPageReader creates a reader. maxTextRunes bounds the visible text kept
// per page; non-positive uses the default.
func NewPageReader(fetcher domain.PageFetcher, maxTextRunes int) *PageReader {
	if maxTextRunes <= 0 {
		maxTextRunes = defaultMaxTextRunes
	}
	return &PageReader{
		fetcher:      fetcher,
		policy:       bluemonday.StrictPolicy(),
		maxTextRunes: maxTextRunes,
	}
}

// ReadPage fetches pageURL and extracts title, description, visible text and
// any structured price.
func (r *PageReader) ReadPage(ctx context.Context, pageURL string) (*domain.PageContent, error) {
	result := r.fetcher.Fetch(ctx, pageURL)
	if result.Err != nil {
		return nil, result.Err
	}
	if !result.OK() {
		return nil, fmt.Errorf("%w: empty page", domain.ErrFetchFailed)
	}
	return r.Parse(result.Body)
}

// Parse extracts page content from raw HTML.
func (r *PageReader) Parse(body []byte) (*domain.PageContent, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	content := &domain.PageContent{
		Title:       r.pageTitle(doc),
		Description: r.sanitize(metaContent(doc, "meta[name='description']", "meta[property='og:description']")),
		Text:        truncateRunes(mainText(doc), r.maxTextRunes),
	}
	if price, ok := structuredPrice(doc); ok {
		content.StructuredPrice = &price
	}
	return content, nil
}

func (r *PageReader) pageTitle(doc *goquery.Document) string {
	if t := metaContent(doc, "meta[property='og:title']"); t != "" {
		return r.sanitize(t)
	}
	if t := cleanText(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return cleanText(doc.Find("h1").First().Text())
}

// sanitize strips any markup smuggled into meta attributes
func (r *PageReader) sanitize(s string) string {
	if s == "" {
		return ""
	}
	return cleanText(html.UnescapeString(r.policy.Sanitize(s)))
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// mainText prefers the page's main content regions so navigation menus do
// not leak into the text; it falls back to the whole body.
func mainText(doc *goquery.Document) string {
	var parts []string
	doc.Find("main, article, [itemprop='description']").Each(func(_ int, s *goquery.Selection) {
		// nested regions are covered by their outermost match
		if s.ParentsFiltered("main, article, [itemprop='description']").Length() > 0 {
			return
		}
		for _, n := range s.Nodes {
			if text := visibleText(n); text != "" {
				parts = append(parts, text)
			}
		}
	})
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	return visibleText(body.Nodes[0])
}

// visibleText collects the text a reader would see, skipping non-content
// elements, page chrome and inline-hidden nodes.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipNode(n) {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return cleanText(sb.String())
}

func skipNode(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg,
		atom.Nav, atom.Header, atom.Footer, atom.Aside, atom.Form, atom.Button, atom.Select:
		return true
	}
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(a.Val, "true") {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

// structuredPrice reads schema.org offer prices from JSON-LD, then from
// product meta tags and itemprop=price.
func structuredPrice(doc *goquery.Document) (float64, bool) {
	var price float64
	var found bool
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		price, found = offerPrice(data, false)
		return !found
	})
	if found {
		return price, true
	}

	if v := metaContent(doc, "meta[property='product:price:amount']", "meta[property='og:price:amount']"); v != "" {
		if p, ok := parsePriceValue(v); ok {
			return p, true
		}
	}
	if s := doc.Find("[itemprop='price']").First(); s.Length() > 0 {
		v, ok := s.Attr("content")
		if !ok {
			v = s.Text()
		}
		if p, ok := parsePriceValue(v); ok {
			return p, true
		}
	}
	return 0, false
}

// offerPrice walks decoded JSON-LD looking for offers.price or
// offers.lowPrice. inOffer is true below an "offers" key.
func offerPrice(v interface{}, inOffer bool) (float64, bool) {
	switch node := v.(type) {
	case []interface{}:
		for _, item := range node {
			if p, ok := offerPrice(item, inOffer); ok {
				return p, true
			}
		}
	case map[string]interface{}:
		if inOffer {
			for _, key := range []string{"price", "lowPrice"} {
				if p, ok := parsePriceValue(node[key]); ok {
					return p, true
				}
			}
		}
		if offers, ok := node["offers"]; ok {
			if p, ok := offerPrice(offers, true); ok {
				return p, true
			}
		}
		if graph, ok := node["@graph"]; ok {
			return offerPrice(graph, false)
		}
	}
	return 0, false
}

func parsePriceValue(v interface{}) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, p > 0
	case string:
		s := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(p))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
