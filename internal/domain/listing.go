package domain

import "time"

// Site identifies a marketplace
type Site string

const (
	SiteVinted   Site = "Vinted"
	SiteTradera  Site = "Tradera"
	SiteBlocket  Site = "Blocket"
	SiteZalando  Site = "Zalando"
	SiteAmazon   Site = "Amazon"
	SitePlick    Site = "Plick"
	SiteSellpy   Site = "Sellpy"
	SiteFacebook Site = "Facebook Marketplace"
)

// Veto reasons recorded in Breakdown.Veto
const (
	VetoItemMissing    = "item_missing"
	VetoGenderMismatch = "gender_mismatch"
	VetoExpectedChild  = "expected_child_but_not_detected"
	VetoExpectedAdult  = "expected_adult_but_child_detected"
)

// JeansSize is a waist/length pair such as W32 L34. Length is 0 when unknown.
type JeansSize struct {
	Waist  int `json:"waist"`
	Length int `json:"length,omitempty"`
}

// Breakdown explains how a rating was reached
type Breakdown struct {
	Scores map[string]float64 `json:"scores"`
	Veto   string             `json:"veto,omitempty"`
}

// Listing is one marketplace product reference. Site adapters fill the first
// group of fields, the enricher the second and the scorer the last.
type Listing struct {
	Site  Site     `json:"site"`
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Price *float64 `json:"price,omitempty"`
	Used  bool     `json:"used"`

	FullText          string     `json:"-"`
	Enriched          bool       `json:"enriched"`
	PagePrice         *float64   `json:"page_price,omitempty"`
	JeansSize         *JeansSize `json:"jeans_size,omitempty"`
	InferredTextSize  string     `json:"inferred_text_size,omitempty"`
	InferredChildSize int        `json:"inferred_child_size,omitempty"`

	Rating    float64   `json:"rating"`
	Breakdown Breakdown `json:"breakdown"`
}

// EffectivePrice is the page price when known, otherwise the search-page price.
func (l *Listing) EffectivePrice() *float64 {
	if l.PagePrice != nil {
		return l.PagePrice
	}
	return l.Price
}

// Vetoed reports whether the scorer rejected the listing outright.
func (l *Listing) Vetoed() bool {
	return l.Breakdown.Veto != ""
}

// FindResult is the ranked outcome of a FindRequest
type FindResult struct {
	Query      string    `json:"query"`
	BestMatch  *Listing  `json:"best_match"`
	TopResults []Listing `json:"top_results"`
	Count      int       `json:"count"`
	Fallback   bool      `json:"fallback"`
	Source     string    `json:"source"` // "live" or "cache"
	CachedAt   time.Time `json:"cached_at,omitempty"`
}
