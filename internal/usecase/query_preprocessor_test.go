package usecase

import (
	"strings"
	"testing"

	"github.com/clothesfinder/backend/internal/domain"
)

func TestNewQueryPreprocessor(t *testing.T) {
	t.Run("uses default vocabulary when nil", func(t *testing.T) {
		p := NewQueryPreprocessor(nil, false)
		if p.vocab == nil {
			t.Error("expected default vocabulary")
		}
		if p.enableDebugLogging {
			t.Error("expected debug logging to be disabled")
		}
	})

	t.Run("creates preprocessor with debug logging enabled", func(t *testing.T) {
		p := NewQueryPreprocessor(nil, true)
		if !p.enableDebugLogging {
			t.Error("expected debug logging to be enabled")
		}
	})
}

func TestBuildQuery(t *testing.T) {
	p := NewQueryPreprocessor(nil, false)

	testCases := []struct {
		name string
		req  domain.FindRequest
		want string
	}{
		{
			name: "cleans free text query",
			req:  domain.FindRequest{Query: "Snygga Nike jeans begagnad"},
			want: "nike jeans",
		},
		{
			name: "builds query from filters",
			req: domain.FindRequest{Filters: domain.FilterSet{
				Brand: "Nike", Item: "jeans", Color: "svart", Gender: domain.GenderMale, Size: "M",
			}},
			want: "nike jeans svart herr",
		},
		{
			name: "query wins over filters",
			req:  domain.FindRequest{Query: "adidas jacka", Filters: domain.FilterSet{Item: "jeans"}},
			want: "adidas jacka",
		},
		{
			name: "removes prices",
			req:  domain.FindRequest{Query: "nike jeans under 500 kr"},
			want: "nike jeans under",
		},
		{
			name: "removes special characters",
			req:  domain.FindRequest{Query: "Levi's (501) #jeans!"},
			want: "levi's 501 jeans",
		},
		{
			name: "removes repeated words",
			req:  domain.FindRequest{Query: "jeans Jeans nike"},
			want: "jeans nike",
		},
		{
			name: "keeps a query made only of noise",
			req:  domain.FindRequest{Query: "Begagnad"},
			want: "begagnad",
		},
		{
			name: "empty request",
			req:  domain.FindRequest{},
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.BuildQuery(tc.req)
			if got != tc.want {
				t.Errorf("BuildQuery(%+v) = %q, want %q", tc.req, got, tc.want)
			}
		})
	}
}

func TestBuildQuery_LongInput(t *testing.T) {
	p := NewQueryPreprocessor(nil, false)

	longQuery := strings.Repeat("vintage oversize hoodie carhartt fjällräven ", 10)
	for i := 0; i < 10; i++ {
		longQuery += " ord" + string(rune('a'+i)) + "ett ord" + string(rune('a'+i)) + "två"
	}

	result := p.BuildQuery(domain.FindRequest{Query: longQuery})
	if len(result) > maxQueryLength {
		t.Errorf("result length = %d, want <= %d", len(result), maxQueryLength)
	}
	if strings.HasSuffix(result, " ") {
		t.Errorf("result %q ends with a space", result)
	}
}

func TestRemoveNoiseWords(t *testing.T) {
	p := NewQueryPreprocessor(nil, false)

	testCases := []struct {
		input string
		want  string
	}{
		{"begagnad nike jeans", "nike jeans"},
		{"Säljes fin jacka", "jacka"},
		{"ny oanvänd keps", "keps"},
		{"", ""},
		{"nike nike", "nike"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := p.removeNoiseWords(tc.input)
			if got != tc.want {
				t.Errorf("removeNoiseWords(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
