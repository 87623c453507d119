package textmatch

import (
	"regexp"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Jeans size notations in priority order
var jeansPairPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bw\s?(\d{2})\s*[/x×-]?\s*l\s?(\d{2})\b`), // W32 L34, w32/l34
	regexp.MustCompile(`\b(\d{2})\s?/\s?(\d{2})\b`),               // 32/34
	regexp.MustCompile(`\b(\d{2})\s?[x×]\s?(\d{2})\b`),            // 32x34
	regexp.MustCompile(`\b(\d{2}) (\d{2})\b`),                     // 32 34
}

var (
	explicitWaistPattern = regexp.MustCompile(`\b(?:w|midja|waist)\s?:?\s?(\d{2})\b`)
	childRangePattern    = regexp.MustCompile(`\b(\d{2,3})\s?/\s?(\d{2,3})\b`)

	// a number directly followed by one of these is a measurement, not a size
	unitAfterNumber = regexp.MustCompile(`^\s*(?:%|cm\b|mm\b|kg\b|km\b|g\b|gr\b|ml\b|st\b|år\b|dagar\b|dag\b|min\b|timmar\b|visningar\b|gillar\b|följare\b|recensioner\b|betyg\b|bilder\b)`)
	childSuffix     = regexp.MustCompile(`^\s*cl\b`)
)

// letterSizeAliases folds the letter notations seen in listings onto XS..XXL
var letterSizeAliases = map[string]string{
	"xxs": "XS", "xs": "XS", "s": "S", "m": "M", "l": "L",
	"xl": "XL", "xxl": "XXL", "2xl": "XXL", "xxxl": "XXL", "3xl": "XXL",
}

// JeansSize is a parsed waist/length pair; Length is 0 when only a waist was found
type JeansSize struct {
	Waist  int
	Length int
}

// ParseJeansSize reads W/L jeans sizing from text. Pairs are tried in the
// order W32 L34, 32/34, 32x34, "32 34"; if none is plausible a single waist
// within the configured waist range is accepted.
func (v *Vocabulary) ParseJeansSize(text string) (JeansSize, bool) {
	text = Normalize(StripPrices(text))
	if text == "" {
		return JeansSize{}, false
	}
	rules := v.Sizes

	for _, p := range jeansPairPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			waist, _ := strconv.Atoi(m[1])
			length, _ := strconv.Atoi(m[2])
			if inRange(waist, rules.WaistMin, rules.WaistMax) && inRange(length, rules.LengthMin, rules.LengthMax) {
				return JeansSize{Waist: waist, Length: length}, true
			}
		}
	}

	for _, m := range explicitWaistPattern.FindAllStringSubmatch(text, -1) {
		waist, _ := strconv.Atoi(m[1])
		if inRange(waist, rules.WaistMin, rules.WaistMax) {
			return JeansSize{Waist: waist}, true
		}
	}

	for _, n := range v.numbers(text) {
		if n.digits == 2 && !n.hasUnit && !n.slashed && inRange(n.value, rules.WaistMin, rules.WaistMax) {
			return JeansSize{Waist: n.value}, true
		}
	}
	return JeansSize{}, false
}

// WaistToTextSize maps a jeans waist (inches) to a letter size using the
// vocabulary's ladder. The ladder is an approximation, not a sizing standard.
func (v *Vocabulary) WaistToTextSize(waist int) string {
	for _, step := range v.Sizes.WaistLadder {
		if waist <= step.Max {
			return step.Size
		}
	}
	return v.Sizes.WaistLadderTop
}

// InferTextSize finds a letter size (XS..XXL) in text, either after a size
// marker ("stl M", "storlek: xl") or as an unambiguous standalone token (xs, xl, xxl).
func (v *Vocabulary) InferTextSize(text string) (string, bool) {
	text = Normalize(text)
	if text == "" {
		return "", false
	}
	if m := v.letterSizes.FindStringSubmatch(text); m != nil {
		return letterSizeAliases[m[1]], true
	}
	for _, tok := range Tokens(text) {
		switch tok {
		case "xxs", "xs", "xl", "xxl", "xxxl", "2xl", "3xl":
			return letterSizeAliases[tok], true
		}
	}
	return "", false
}

// NormalizeLetterSize maps a requested size such as "xl" or "2XL" onto XS..XXL.
func NormalizeLetterSize(size string) (string, bool) {
	s, ok := letterSizeAliases[Normalize(size)]
	return s, ok
}

// ChildSize looks for a children's height-based size (e.g. 128). A number
// after a size marker, followed by "cl", or written as a range such as
// 122/128 always counts; with requireMarker false a bare standalone number in
// range counts too. Prices and measurements are never read as sizes.
func (v *Vocabulary) ChildSize(text string, requireMarker bool) (int, bool) {
	text = Normalize(StripPrices(text))
	if text == "" {
		return 0, false
	}
	rules := v.Sizes

	for _, m := range childRangePattern.FindAllStringSubmatch(text, -1) {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if inRange(a, rules.ChildMin, rules.ChildMax) && inRange(b, rules.ChildMin, rules.ChildMax) {
			return a, true
		}
	}

	fallback := 0
	for _, n := range v.numbers(text) {
		if n.slashed || n.hasUnit || !inRange(n.value, rules.ChildMin, rules.ChildMax) {
			continue
		}
		if n.afterMarker || n.childSuffix {
			return n.value, true
		}
		if fallback == 0 {
			fallback = n.value
		}
	}
	if !requireMarker && fallback > 0 {
		return fallback, true
	}
	return 0, false
}

// HasKidsTerm reports whether text contains kids' vocabulary, either as a
// whole word or as the start of a compound (barnjeans, babyoverall). Listed
// exclusions such as the colour babyblå never count.
func (v *Vocabulary) HasKidsTerm(text string) bool {
	for _, tok := range wordTokens(text) {
		if v.kidsExclusions[tok] {
			continue
		}
		if v.kids[tok] || hasCompoundPrefix(v.kidsPrefixes, tok) {
			return true
		}
	}
	return false
}

// DetectKids reports whether a listing describes a kids' item: kids'
// vocabulary anywhere, a marked children's size in the body text, or a bare
// children's size in the title.
func (v *Vocabulary) DetectKids(title, text string) bool {
	if v.HasKidsTerm(title) || v.HasKidsTerm(text) {
		return true
	}
	if _, ok := v.ChildSize(text, true); ok {
		return true
	}
	_, ok := v.ChildSize(title, false)
	return ok
}

const (
	// bytes after a number searched for a unit
	unitWindow = 32
	// non-letters allowed between a size marker and its number ("stl.: 128")
	markerGap = 4
	// longer words are never size markers
	maxMarkerLen = 12
)

type numberToken struct {
	value       int
	digits      int
	afterMarker bool
	hasUnit     bool
	childSuffix bool
	slashed     bool
}

// numbers lists the standalone integers of normalized text with the context
// needed to decide whether they can be sizes. Numbers glued to letters on the
// left (w32, l34) or part of decimals/ratios are skipped. Each number only
// looks at a short window around it.
func (v *Vocabulary) numbers(text string) []numberToken {
	var out []numberToken
	for i := 0; i < len(text); {
		if !isASCIIDigit(text[i]) {
			i++
			continue
		}
		start := i
		for i < len(text) && isASCIIDigit(text[i]) {
			i++
		}
		end := i

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if start == 0 {
			before = 0
		}
		if end == len(text) {
			after = 0
		}
		if unicode.IsLetter(before) || before == '.' || before == ',' || before == ':' || before == '#' || before == '+' {
			continue
		}
		if (after == '.' || after == ',') && end+1 < len(text) && isASCIIDigit(text[end+1]) {
			continue
		}

		value, err := strconv.Atoi(text[start:end])
		if err != nil {
			continue
		}
		rest := text[end:min(end+unitWindow, len(text))]
		out = append(out, numberToken{
			value:       value,
			digits:      end - start,
			hasUnit:     unitAfterNumber.MatchString(rest) || after == 'x' || after == '×',
			childSuffix: childSuffix.MatchString(rest),
			slashed:     before == '/' || after == '/' || before == '-' || after == '-',
			afterMarker: v.markers[wordBefore(text[:start], markerGap)],
		})
	}
	return out
}

// wordBefore returns the letter run that ends at most maxGap non-letters
// before the end of prefix ("stl. 128" -> "stl"), or "" when there is none
// or it is longer than any marker.
func wordBefore(prefix string, maxGap int) string {
	end := len(prefix)
	for gap := 0; ; gap++ {
		if end == 0 || gap > maxGap {
			return ""
		}
		r, size := utf8.DecodeLastRuneInString(prefix[:end])
		if unicode.IsLetter(r) {
			break
		}
		end -= size
	}
	start := end
	for n := 0; start > 0; n++ {
		r, size := utf8.DecodeLastRuneInString(prefix[:start])
		if !unicode.IsLetter(r) {
			break
		}
		if n == maxMarkerLen {
			return ""
		}
		start -= size
	}
	return prefix[start:end]
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func inRange(n, lo, hi int) bool {
	return n >= lo && n <= hi
}
