package usecase

import (
	"log"
	"regexp"
	"strings"

	"github.com/clothesfinder/backend/internal/domain"
	"github.com/clothesfinder/backend/internal/textmatch"
)

const maxQueryLength = 100

var (
	// characters that marketplace search boxes choke on
	querySpecialChars = regexp.MustCompile(`[#%+@!?^*()=\[\]{}<>|\\~"` + "`" + `;,]`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// QueryPreprocessor turns a request into the search string sent to every
// marketplace.
type QueryPreprocessor struct {
	vocab              *textmatch.Vocabulary
	enableDebugLogging bool
}

// NewQueryPreprocessor creates a preprocessor. A nil vocabulary uses the
// embedded default.
func NewQueryPreprocessor(vocab *textmatch.Vocabulary, enableDebugLogging bool) *QueryPreprocessor {
	if vocab == nil {
		vocab = textmatch.DefaultVocabulary()
	}
	return &QueryPreprocessor{vocab: vocab, enableDebugLogging: enableDebugLogging}
}

// BuildQuery uses the free-text query when given, otherwise joins brand,
// item, color and gender. The result is cleaned of prices, special
// characters and noise words and cut to 100 characters at a word boundary.
func (p *QueryPreprocessor) BuildQuery(req domain.FindRequest) string {
	raw := strings.TrimSpace(req.Query)
	if raw == "" {
		f := req.Filters
		raw = strings.Join(nonEmpty(f.Brand, f.Item, f.Color, string(f.Gender)), " ")
	}
	if raw == "" {
		return ""
	}

	// Step 1: drop prices ("under 500 kr") and special characters
	cleaned := textmatch.StripPrices(raw)
	cleaned = querySpecialChars.ReplaceAllString(cleaned, " ")

	// Step 2: drop noise words and repeated words
	cleaned = p.removeNoiseWords(cleaned)

	// Step 3: normalise whitespace
	cleaned = strings.TrimSpace(multiSpacePattern.ReplaceAllString(cleaned, " "))

	// Step 4: limit length, cutting at a word boundary where possible
	if len(cleaned) > maxQueryLength {
		cut := cleaned[:maxQueryLength]
		if lastSpace := strings.LastIndex(cut, " "); lastSpace > maxQueryLength/2 {
			cut = cut[:lastSpace]
		}
		cleaned = strings.ToValidUTF8(cut, "")
	}

	// a query made only of noise is still better than none
	if cleaned == "" {
		cleaned = textmatch.Normalize(raw)
	}

	if p.enableDebugLogging {
		log.Printf("[QUERY] Input: %q -> Output: %q", raw, cleaned)
	}
	return cleaned
}

// removeNoiseWords drops words with no search value and repeats
func (p *QueryPreprocessor) removeNoiseWords(s string) string {
	seen := make(map[string]bool)
	var kept []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".:-'")
		if word == "" || seen[word] || p.vocab.IsNoiseWord(word) {
			continue
		}
		seen[word] = true
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
