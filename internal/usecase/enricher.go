package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/clothesfinder/backend/internal/domain"
	"github.com/clothesfinder/backend/internal/textmatch"
)

// Enricher fetches a candidate's own page and derives price and size signals
// from it.
type Enricher struct {
	reader domain.PageReader
	vocab  *textmatch.Vocabulary
}

// NewEnricher creates an enricher. A nil vocabulary uses the embedded default.
func NewEnricher(reader domain.PageReader, vocab *textmatch.Vocabulary) *Enricher {
	if vocab == nil {
		vocab = textmatch.DefaultVocabulary()
	}
	return &Enricher{reader: reader, vocab: vocab}
}

// Unenriched returns the listing with FullText set to its normalized title.
// Candidates that are not, or could not be, enriched are scored on this.
func Unenriched(l domain.Listing) domain.Listing {
	l.FullText = textmatch.Normalize(l.Title)
	l.Enriched = false
	return l
}

// Enrich reads the listing page. On any failure the listing is returned
// unenriched.
func (e *Enricher) Enrich(ctx context.Context, l domain.Listing) domain.Listing {
	l = Unenriched(l)
	if l.URL == "" {
		return l
	}

	page, err := e.reader.ReadPage(ctx, l.URL)
	if err != nil {
		log.Printf("[ENRICH] %s: %v", l.URL, err)
		return l
	}

	l.FullText = textmatch.Normalize(strings.Join([]string{l.Title, page.Title, page.Description, page.Text}, " "))
	l.Enriched = true

	if page.StructuredPrice != nil {
		price := *page.StructuredPrice
		l.PagePrice = &price
	} else if price, ok := textmatch.ExtractPrice(l.FullText); ok {
		l.PagePrice = &price
	}

	if js, ok := e.vocab.ParseJeansSize(l.FullText); ok {
		l.JeansSize = &domain.JeansSize{Waist: js.Waist, Length: js.Length}
	}
	if size, ok := e.vocab.InferTextSize(l.FullText); ok {
		l.InferredTextSize = size
	} else if l.JeansSize != nil {
		l.InferredTextSize = e.vocab.WaistToTextSize(l.JeansSize.Waist)
	}
	// page text is noisy, so a child size needs a marker there; the title
	// may use a bare number
	if size, ok := e.vocab.ChildSize(l.FullText, true); ok {
		l.InferredChildSize = size
	} else if size, ok := e.vocab.ChildSize(l.Title, false); ok {
		l.InferredChildSize = size
	}

	return l
}
