package textmatch

import (
	"strings"

	"github.com/clothesfinder/backend/internal/domain"
)

// GenderSignal is an inferred gender. Weak signals come from sizing
// conventions only and must never be used to veto a listing.
type GenderSignal struct {
	Gender domain.Gender
	Weak   bool
}

// InferGender reads gendered vocabulary ("herr", "damjacka", "women's") from
// text. Unisex wording or vocabulary for both genders yields no signal. When
// no word matches, EU numeric sizes after a size marker give a weak hint.
func (v *Vocabulary) InferGender(text string) GenderSignal {
	tokens := wordTokens(text)
	if len(tokens) == 0 {
		return GenderSignal{}
	}
	g := v.Gender

	var male, female bool
	for _, tok := range tokens {
		if containsWord(g.NeutralWords, tok) {
			return GenderSignal{}
		}
		if containsWord(g.MaleWords, tok) || hasCompoundPrefix(g.MalePrefixes, tok) {
			male = true
		}
		if containsWord(g.FemaleWords, tok) || hasCompoundPrefix(g.FemalePrefixes, tok) {
			female = true
		}
	}
	switch {
	case male && female:
		return GenderSignal{}
	case male:
		return GenderSignal{Gender: domain.GenderMale}
	case female:
		return GenderSignal{Gender: domain.GenderFemale}
	}

	for _, n := range v.numbers(Normalize(StripPrices(text))) {
		if !n.afterMarker || n.hasUnit || n.value%2 != 0 {
			continue
		}
		if inRange(n.value, g.FemaleSizeMin, g.FemaleSizeMax) {
			return GenderSignal{Gender: domain.GenderFemale, Weak: true}
		}
		if inRange(n.value, g.MaleSizeMin, g.MaleSizeMax) {
			return GenderSignal{Gender: domain.GenderMale, Weak: true}
		}
	}
	return GenderSignal{}
}

func containsWord(words []string, tok string) bool {
	for _, w := range words {
		if strings.EqualFold(w, tok) {
			return true
		}
	}
	return false
}

// hasCompoundPrefix matches Swedish compounds such as herrjacka or damjeans.
// The remainder must be at least three letters so "dam" alone or short words
// are left to the word list.
func hasCompoundPrefix(prefixes []string, tok string) bool {
	for _, p := range prefixes {
		p = strings.ToLower(p)
		if strings.HasPrefix(tok, p) && len([]rune(tok))-len([]rune(p)) >= 3 {
			return true
		}
	}
	return false
}
