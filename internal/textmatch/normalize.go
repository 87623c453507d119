package textmatch

import (
	"strings"
	"unicode"
)

// Normalize collapses whitespace runs (non-breaking spaces included) to one
// space, trims and lower-cases.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Tokens splits normalized text into letter/digit runs.
func Tokens(text string) []string {
	return strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var apostrophes = strings.NewReplacer("'", "", "\u2019", "", "`", "")

// wordTokens is Tokens with apostrophes dropped first, so "men's" reads as
// the single word "mens".
func wordTokens(text string) []string {
	return Tokens(apostrophes.Replace(text))
}

// minFuzzyTokenLen keeps fuzzy matching away from short tokens, where a single
// edit turns one word into another.
const minFuzzyTokenLen = 4

// Matcher answers "does this text mention that term" using the vocabulary's
// synonym groups and an optional bounded fuzzy fallback.
type Matcher struct {
	vocab          *Vocabulary
	fuzzyThreshold float64
}

// NewMatcher creates a matcher. A fuzzyThreshold of 0 disables fuzzy matching;
// otherwise it is the minimum similarity (0-1) for a near-match.
func NewMatcher(vocab *Vocabulary, fuzzyThreshold float64) *Matcher {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if fuzzyThreshold < 0 || fuzzyThreshold > 1 {
		fuzzyThreshold = 0
	}
	return &Matcher{vocab: vocab, fuzzyThreshold: fuzzyThreshold}
}

// Vocabulary returns the vocabulary backing the matcher.
func (m *Matcher) Vocabulary() *Vocabulary {
	return m.vocab
}

// TermInText reports whether term, or any surface form grouped with it,
// occurs in text.
func (m *Matcher) TermInText(text, term string) bool {
	text = Normalize(text)
	forms := m.vocab.Expand(term)
	if text == "" || len(forms) == 0 {
		return false
	}
	for _, f := range forms {
		if strings.Contains(text, f) {
			return true
		}
	}
	if m.fuzzyThreshold <= 0 {
		return false
	}

	tokens := Tokens(text)
	for _, f := range forms {
		if strings.ContainsAny(f, " -") || len([]rune(f)) < minFuzzyTokenLen {
			continue
		}
		for _, tok := range tokens {
			if fuzzyTokenMatch(f, tok, m.fuzzyThreshold) {
				return true
			}
		}
	}
	return false
}

// AnyTokenInText reports whether any word of a multi-word term (three letters
// or longer) is mentioned in text.
func (m *Matcher) AnyTokenInText(text, term string) bool {
	for _, tok := range Tokens(term) {
		if len([]rune(tok)) < 3 {
			continue
		}
		if m.TermInText(text, tok) {
			return true
		}
	}
	return false
}

// fuzzyTokenMatch checks whether two tokens are similar enough. Similarity is
// 1 - editDistance/longerLength.
func fuzzyTokenMatch(a, b string, threshold float64) bool {
	if a == b {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < minFuzzyTokenLen || len(rb) < minFuzzyTokenLen {
		return false
	}

	longer := max(len(ra), len(rb))
	lenDiff := len(ra) - len(rb)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	maxEdits := int(float64(longer) * (1 - threshold))
	if lenDiff > maxEdits {
		return false
	}

	dist := levenshteinDistance(ra, rb)
	return 1-float64(dist)/float64(longer) >= threshold
}

// levenshteinDistance calculates the edit distance between two rune slices
func levenshteinDistance(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	m := len(r1)
	n := len(r2)

	// two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
