package usecase

import (
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/clothesfinder/backend/internal/domain"
	"github.com/clothesfinder/backend/internal/textmatch"
)

// Breakdown keys
const (
	scoreItem   = "item"
	scoreBrand  = "brand"
	scoreStyle  = "style"
	scoreColor  = "color"
	scoreGender = "gender"
	scoreKids   = "kids"
	scoreSize   = "size"
	scorePrice  = "price"
	scoreUsed   = "used"
	scoreBonus  = "bonus"
)

const maxRating = 100.0

// Weights are the points each signal can contribute to a rating
type Weights struct {
	Item   float64
	Brand  float64
	Style  float64
	Gender float64
	Kids   float64
	Color  float64
	Size   float64
	Price  float64
	Used   float64
	URL    float64
	Title  float64
}

// DefaultWeights returns the standard weighting
func DefaultWeights() Weights {
	return Weights{
		Item:   30,
		Brand:  20,
		Style:  15,
		Gender: 10,
		Kids:   15,
		Color:  5,
		Size:   10,
		Price:  10,
		Used:   5,
		URL:    2,
		Title:  1,
	}
}

// ScorerConfig holds configuration for the scorer
type ScorerConfig struct {
	Weights            Weights
	EnableDebugLogging bool
}

// Scorer rates listings against a filter set
type Scorer struct {
	matcher            *textmatch.Matcher
	vocab              *textmatch.Vocabulary
	weights            Weights
	enableDebugLogging bool
}

// NewScorer creates a scorer. Zero weights fall back to DefaultWeights.
func NewScorer(matcher *textmatch.Matcher, config ScorerConfig) *Scorer {
	if matcher == nil {
		matcher = textmatch.NewMatcher(nil, 0)
	}
	weights := config.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Scorer{
		matcher:            matcher,
		vocab:              matcher.Vocabulary(),
		weights:            weights,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Score rates a listing from 0 to 100 and records the breakdown. A vetoed
// listing is rated 0 and Breakdown.Veto names the reason.
func (s *Scorer) Score(l domain.Listing, f domain.FilterSet) domain.Listing {
	text := l.FullText
	if text == "" {
		text = textmatch.Normalize(l.Title)
	}
	w := s.weights
	scores := make(map[string]float64)
	l.Breakdown = domain.Breakdown{Scores: scores}

	veto := func(reason string) domain.Listing {
		l.Rating = 0
		l.Breakdown.Veto = reason
		if s.enableDebugLogging {
			log.Printf("[SCORE] %q vetoed: %s", l.Title, reason)
		}
		return l
	}

	if f.Item != "" {
		if !s.matcher.TermInText(text, f.Item) && !s.matcher.AnyTokenInText(text, f.Item) {
			return veto(domain.VetoItemMissing)
		}
		scores[scoreItem] = w.Item
	}

	if f.Brand != "" && s.matcher.TermInText(text, f.Brand) {
		scores[scoreBrand] = w.Brand
	}
	if f.Style != "" && (s.matcher.TermInText(text, f.Style) || s.matcher.AnyTokenInText(text, f.Style)) {
		scores[scoreStyle] = w.Style
	}
	if f.Color != "" && s.matcher.TermInText(text, f.Color) {
		scores[scoreColor] = w.Color
	}

	if f.Gender != domain.GenderUnset {
		signal := s.vocab.InferGender(text)
		switch {
		case signal.Gender == domain.GenderUnset:
		case signal.Gender != f.Gender && !signal.Weak:
			return veto(domain.VetoGenderMismatch)
		case signal.Gender == f.Gender && !signal.Weak:
			scores[scoreGender] = w.Gender
		case signal.Gender == f.Gender:
			scores[scoreGender] = w.Gender / 2
		}
	}

	isKids := l.InferredChildSize > 0 || s.vocab.DetectKids(l.Title, text)
	switch {
	case f.Kids != nil && *f.Kids && !isKids:
		return veto(domain.VetoExpectedChild)
	case f.Kids != nil && !*f.Kids && isKids:
		return veto(domain.VetoExpectedAdult)
	case f.Kids != nil:
		scores[scoreKids] = w.Kids
	case !isKids:
		scores[scoreKids] = w.Kids / 2
	}

	if f.Size != "" && s.sizeMatches(l, text, f.Size) {
		scores[scoreSize] = w.Size
	}

	if f.PriceMax != nil && *f.PriceMax > 0 {
		if price := l.EffectivePrice(); price != nil {
			scores[scorePrice] = w.Price * priceFactor(*price, *f.PriceMax)
		}
	}

	if f.Used != nil && *f.Used == l.Used {
		scores[scoreUsed] = w.Used
	}

	bonus := 0.0
	if l.URL != "" {
		bonus += w.URL
	}
	if l.Title != "" {
		bonus += w.Title
	}
	scores[scoreBonus] = bonus

	total := 0.0
	for _, v := range scores {
		total += v
	}
	l.Rating = math.Round(math.Min(math.Max(total, 0), maxRating)*10) / 10

	if s.enableDebugLogging {
		log.Printf("[SCORE] %q (%s) | Rating: %.1f | Breakdown: %v", l.Title, l.Site, l.Rating, scores)
	}
	return l
}

// priceFactor is 1 at or below the budget and falls linearly to 0 at twice
// the budget.
func priceFactor(price, budget float64) float64 {
	if price <= budget {
		return 1
	}
	return math.Max(0, 1-(price-budget)/budget)
}

// sizeMatches compares the requested size with what the listing shows. Letter
// sizes match the inferred letter size or the letter size of the jeans waist;
// numbers match a jeans waist, a child size or a literal token.
func (s *Scorer) sizeMatches(l domain.Listing, text, want string) bool {
	if letter, ok := textmatch.NormalizeLetterSize(want); ok {
		got := l.InferredTextSize
		if got == "" {
			got, _ = s.vocab.InferTextSize(text)
		}
		if got == "" {
			if js := s.jeansSize(l, text); js != nil {
				got = s.vocab.WaistToTextSize(js.Waist)
			}
		}
		return got == letter
	}

	if js, ok := s.vocab.ParseJeansSize(want); ok {
		if have := s.jeansSize(l, text); have != nil && have.Waist == js.Waist {
			return js.Length == 0 || have.Length == 0 || have.Length == js.Length
		}
	}

	if n, err := strconv.Atoi(strings.TrimSpace(want)); err == nil {
		child := l.InferredChildSize
		if child == 0 {
			child, _ = s.vocab.ChildSize(text, true)
		}
		if child == n {
			return true
		}
	}

	wantTokens := textmatch.Tokens(want)
	if len(wantTokens) == 0 {
		return false
	}
	have := make(map[string]bool)
	for _, tok := range textmatch.Tokens(text) {
		have[tok] = true
	}
	for _, tok := range wantTokens {
		if !have[tok] {
			return false
		}
	}
	return true
}

func (s *Scorer) jeansSize(l domain.Listing, text string) *domain.JeansSize {
	if l.JeansSize != nil {
		return l.JeansSize
	}
	if parsed, ok := s.vocab.ParseJeansSize(text); ok {
		return &domain.JeansSize{Waist: parsed.Waist, Length: parsed.Length}
	}
	return nil
}
