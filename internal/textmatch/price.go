package textmatch

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// a number (optionally grouped in thousands by space, nbsp or dot, with
	// optional decimals) directly followed by a currency marker
	currencyPricePattern = regexp.MustCompile(`(?i)(\d{1,3}(?:[ \x{00a0}.]\d{3})+|\d+)(?:[.,](\d{1,2}))?[\s\x{00a0}]*(?:kr|:-|sek)`)

	// any standalone 3-5 digit number, used only when nothing is currency-marked
	barePricePattern = regexp.MustCompile(`\b\d{3,5}\b`)

	groupSeparator = regexp.MustCompile(`[ \x{00a0}.]`)
)

// words that announce a size, so "stl 38 299 kr" is size 38 and 299 kr
var sizeWords = map[string]bool{
	"stl": true, "storlek": true, "strl": true, "str": true, "size": true,
	"eu": true, "us": true, "uk": true, "midja": true, "waist": true, "längd": true,
}

// no second-hand garment costs this much; a larger grouped amount has
// swallowed a neighbouring number
const maxPlausiblePrice = 100000

type priceSpan struct {
	start, end int
	value      float64
}

// ExtractPrice pulls an asking price out of free-form page text. Listings
// often show both the current and a crossed-out original price, so the lowest
// currency-marked amount wins. Without any currency marker the lowest
// standalone 3-5 digit number is used as a low-confidence guess.
func ExtractPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	if price, ok := ExtractMarkedPrice(text); ok {
		return price, true
	}

	best, found := 0.0, false
	for _, m := range barePricePattern.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || v <= 0 {
			continue
		}
		if !found || v < best {
			best, found = v, true
		}
	}
	return best, found
}

// ExtractMarkedPrice returns the lowest amount that carries a currency marker
// (kr, :-, SEK). Use it on text that may hold unrelated numbers.
func ExtractMarkedPrice(text string) (float64, bool) {
	best, found := 0.0, false
	for _, span := range markedPrices(text) {
		if !found || span.value < best {
			best, found = span.value, true
		}
	}
	return best, found
}

// StripPrices removes currency-marked amounts so that the numbers left behind
// can be read as sizes.
func StripPrices(text string) string {
	spans := markedPrices(text)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, span := range spans {
		b.WriteString(text[last:span.start])
		b.WriteByte(' ')
		last = span.end
	}
	b.WriteString(text[last:])
	return b.String()
}

// markedPrices finds the currency-marked amounts in text. A thousands group
// whose leading part is really a size ("W32 450 kr", "stl 38 299 kr") is cut
// back to the amount after it.
func markedPrices(text string) []priceSpan {
	var spans []priceSpan
	for _, m := range currencyPricePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		integer := text[m[2]:m[3]]
		decimals := ""
		if m[4] >= 0 {
			decimals = text[m[4]:m[5]]
		}
		if loc := groupSeparator.FindStringIndex(integer); loc != nil && leadingGroupIsSize(text[:start], integer, decimals) {
			start += loc[1]
			integer = integer[loc[1]:]
		}
		v, ok := parseGroupedNumber(integer, decimals)
		if !ok || v <= 0 {
			continue
		}
		spans = append(spans, priceSpan{start: start, end: end, value: v})
	}
	return spans
}

func leadingGroupIsSize(prefix, integer, decimals string) bool {
	if v, ok := parseGroupedNumber(integer, decimals); ok && v > maxPlausiblePrice {
		return true
	}
	trimmed := strings.TrimRightFunc(prefix, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == ':'
	})
	if trimmed == "" {
		return false
	}
	if r, _ := utf8.DecodeLastRuneInString(prefix); unicode.IsLetter(r) {
		return true
	}
	return sizeWords[strings.ToLower(wordBefore(trimmed, 0))]
}

func parseGroupedNumber(integer, decimals string) (float64, bool) {
	integer = strings.NewReplacer(" ", "", "\u00a0", "", ".", "").Replace(integer)
	if integer == "" {
		return 0, false
	}
	raw := integer
	if decimals != "" {
		raw += "." + decimals
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
