package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/clothesfinder/backend/internal/domain"
)

// MockPageReader is a mock implementation of domain.PageReader
type MockPageReader struct {
	mu    sync.Mutex
	pages map[string]*domain.PageContent
	err   error
	calls int
}

func NewMockPageReader() *MockPageReader {
	return &MockPageReader{pages: make(map[string]*domain.PageContent)}
}

func (m *MockPageReader) ReadPage(ctx context.Context, url string) (*domain.PageContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	page, ok := m.pages[url]
	if !ok {
		return nil, domain.ErrFetchFailed
	}
	return page, nil
}

func TestEnrich(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to title on failure", func(t *testing.T) {
		reader := NewMockPageReader()
		reader.err = errors.New("boom")
		e := NewEnricher(reader, nil)

		got := e.Enrich(ctx, domain.Listing{Title: "Nike  Jeans", URL: "https://x/1"})
		if got.Enriched {
			t.Error("expected listing not to be enriched")
		}
		if got.FullText != "nike jeans" {
			t.Errorf("FullText = %q, want %q", got.FullText, "nike jeans")
		}
		if got.PagePrice != nil {
			t.Errorf("PagePrice = %v, want nil", *got.PagePrice)
		}
	})

	t.Run("skips listings without url", func(t *testing.T) {
		reader := NewMockPageReader()
		e := NewEnricher(reader, nil)

		got := e.Enrich(ctx, domain.Listing{Title: "Jacka"})
		if got.Enriched || reader.calls != 0 {
			t.Errorf("enriched = %v, calls = %d", got.Enriched, reader.calls)
		}
	})

	t.Run("prefers structured price", func(t *testing.T) {
		reader := NewMockPageReader()
		reader.pages["https://x/1"] = &domain.PageContent{
			Title:           "Levis 501",
			Text:            "Nypris 1200 kr",
			StructuredPrice: floatPtr(350),
		}
		e := NewEnricher(reader, nil)

		got := e.Enrich(ctx, domain.Listing{Title: "Jeans", URL: "https://x/1"})
		if !got.Enriched {
			t.Fatal("expected listing to be enriched")
		}
		if got.PagePrice == nil || *got.PagePrice != 350 {
			t.Errorf("PagePrice = %v, want 350", got.PagePrice)
		}
		if got.FullText != "jeans levis 501 nypris 1200 kr" {
			t.Errorf("FullText = %q", got.FullText)
		}
	})

	t.Run("extracts price from text", func(t *testing.T) {
		reader := NewMockPageReader()
		reader.pages["https://x/1"] = &domain.PageContent{Description: "Pris: 299 kr, fint skick"}
		e := NewEnricher(reader, nil)

		got := e.Enrich(ctx, domain.Listing{Title: "Jeans", URL: "https://x/1"})
		if got.PagePrice == nil || *got.PagePrice != 299 {
			t.Errorf("PagePrice = %v, want 299", got.PagePrice)
		}
	})

	t.Run("infers jeans and letter size", func(t *testing.T) {
		reader := NewMockPageReader()
		reader.pages["https://x/1"] = &domain.PageContent{Text: "Storlek W32 L34"}
		e := NewEnricher(reader, nil)

		got := e.Enrich(ctx, domain.Listing{Title: "Jeans", URL: "https://x/1"})
		if got.JeansSize == nil || got.JeansSize.Waist != 32 || got.JeansSize.Length != 34 {
			t.Fatalf("JeansSize = %+v, want 32/34", got.JeansSize)
		}
		if got.InferredTextSize != "M" {
			t.Errorf("InferredTextSize = %q, want M", got.InferredTextSize)
		}
	})

	t.Run("child size needs a marker in page text", func(t *testing.T) {
		reader := NewMockPageReader()
		reader.pages["https://x/1"] = &domain.PageContent{Text: "Barnjacka storlek 128"}
		reader.pages["https://x/2"] = &domain.PageContent{Text: "Visad 128 gånger"}
		e := NewEnricher(reader, nil)

		got := e.Enrich(ctx, domain.Listing{Title: "Jacka", URL: "https://x/1"})
		if got.InferredChildSize != 128 {
			t.Errorf("InferredChildSize = %d, want 128", got.InferredChildSize)
		}
		got = e.Enrich(ctx, domain.Listing{Title: "Jacka", URL: "https://x/2"})
		if got.InferredChildSize != 0 {
			t.Errorf("InferredChildSize = %d, want 0", got.InferredChildSize)
		}
	})
}

func TestUnenriched(t *testing.T) {
	got := Unenriched(domain.Listing{Title: " Röd  Jacka ", Enriched: true})
	if got.Enriched {
		t.Error("expected Enriched to be false")
	}
	if got.FullText != "röd jacka" {
		t.Errorf("FullText = %q, want %q", got.FullText, "röd jacka")
	}
}
