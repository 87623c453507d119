// Package textmatch holds the text heuristics shared by the marketplace
// adapters and the scorer: normalisation, synonym matching, price extraction
// and size/gender/kids inference.
package textmatch

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// GenderVocabulary lists the words that mark a garment as men's or women's
type GenderVocabulary struct {
	MaleWords      []string `yaml:"male_words"`
	FemaleWords    []string `yaml:"female_words"`
	MalePrefixes   []string `yaml:"male_prefixes"`
	FemalePrefixes []string `yaml:"female_prefixes"`
	NeutralWords   []string `yaml:"neutral_words"`
	FemaleSizeMin  int      `yaml:"female_size_min"`
	FemaleSizeMax  int      `yaml:"female_size_max"`
	MaleSizeMin    int      `yaml:"male_size_min"`
	MaleSizeMax    int      `yaml:"male_size_max"`
}

// WaistStep maps waists up to Max onto a letter size
type WaistStep struct {
	Max  int    `yaml:"max"`
	Size string `yaml:"size"`
}

// SizeRules holds the tunable size heuristics
type SizeRules struct {
	ChildMin       int         `yaml:"child_min"`
	ChildMax       int         `yaml:"child_max"`
	WaistMin       int         `yaml:"waist_min"`
	WaistMax       int         `yaml:"waist_max"`
	LengthMin      int         `yaml:"length_min"`
	LengthMax      int         `yaml:"length_max"`
	WaistLadder    []WaistStep `yaml:"waist_ladder"`
	WaistLadderTop string      `yaml:"waist_ladder_top"`
	Markers        []string    `yaml:"markers"`
}

// Vocabulary is the versioned mapping table asset. Load it once and share it;
// it is read-only after construction.
type Vocabulary struct {
	Version        int                 `yaml:"version"`
	Synonyms       map[string][]string `yaml:"synonyms"`
	KidsTerms      []string            `yaml:"kids_terms"`
	KidsPrefixes   []string            `yaml:"kids_prefixes"`
	KidsExclusions []string            `yaml:"kids_exclusions"`
	Gender         GenderVocabulary    `yaml:"gender"`
	Sizes          SizeRules           `yaml:"sizes"`
	NoiseWords     []string            `yaml:"noise_words"`

	groups         [][]string
	index          map[string][]int
	noise          map[string]bool
	markers        map[string]bool
	kids           map[string]bool
	kidsPrefixes   []string
	kidsExclusions map[string]bool
	letterSizes    *regexp.Regexp
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// DefaultVocabulary returns the embedded vocabulary.
func DefaultVocabulary() *Vocabulary {
	defaultOnce.Do(func() {
		v, err := ParseVocabulary(defaultVocabularyYAML)
		if err != nil {
			panic(fmt.Sprintf("textmatch: embedded vocabulary is invalid: %v", err))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// LoadVocabulary reads a vocabulary file. An empty path yields the embedded default.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes and indexes a YAML vocabulary.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if err := v.validate(); err != nil {
		return nil, err
	}
	v.build()
	return &v, nil
}

func (v *Vocabulary) validate() error {
	s := v.Sizes
	if s.ChildMin <= 0 || s.ChildMax < s.ChildMin {
		return fmt.Errorf("invalid child size range %d-%d", s.ChildMin, s.ChildMax)
	}
	if s.WaistMin <= 0 || s.WaistMax < s.WaistMin {
		return fmt.Errorf("invalid waist range %d-%d", s.WaistMin, s.WaistMax)
	}
	if s.LengthMin <= 0 || s.LengthMax < s.LengthMin {
		return fmt.Errorf("invalid length range %d-%d", s.LengthMin, s.LengthMax)
	}
	if len(s.WaistLadder) == 0 || s.WaistLadderTop == "" {
		return fmt.Errorf("waist ladder is empty")
	}
	for i := 1; i < len(s.WaistLadder); i++ {
		if s.WaistLadder[i].Max <= s.WaistLadder[i-1].Max {
			return fmt.Errorf("waist ladder must be strictly increasing at step %d", i)
		}
	}
	return nil
}

// build indexes every surface form to the synonym groups it belongs to, so a
// lookup by either the canonical key or any of its forms expands to the group.
func (v *Vocabulary) build() {
	v.index = make(map[string][]int)
	v.groups = v.groups[:0]
	for canonical, forms := range v.Synonyms {
		group := []string{Normalize(canonical)}
		for _, f := range forms {
			if nf := Normalize(f); nf != "" {
				group = append(group, nf)
			}
		}
		id := len(v.groups)
		v.groups = append(v.groups, group)
		for _, member := range group {
			v.index[member] = append(v.index[member], id)
		}
	}

	v.noise = make(map[string]bool, len(v.NoiseWords))
	for _, w := range v.NoiseWords {
		v.noise[Normalize(w)] = true
	}

	v.kids = wordSet(v.KidsTerms)
	v.kidsExclusions = wordSet(v.KidsExclusions)
	v.kidsPrefixes = v.kidsPrefixes[:0]
	for _, p := range v.KidsPrefixes {
		if np := Normalize(p); np != "" {
			v.kidsPrefixes = append(v.kidsPrefixes, np)
		}
	}

	v.markers = make(map[string]bool, len(v.Sizes.Markers))
	quoted := make([]string, 0, len(v.Sizes.Markers))
	for _, m := range v.Sizes.Markers {
		nm := Normalize(m)
		if nm == "" {
			continue
		}
		v.markers[nm] = true
		quoted = append(quoted, regexp.QuoteMeta(nm))
	}
	if len(quoted) == 0 {
		quoted = append(quoted, "stl")
	}
	v.letterSizes = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\.?:?\s*(xxxl|xxl|xxs|xl|xs|3xl|2xl|s|m|l)\b`)
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if nw := Normalize(w); nw != "" {
			set[nw] = true
		}
	}
	return set
}

// Expand returns the term together with every synonym it is grouped with.
func (v *Vocabulary) Expand(term string) []string {
	term = Normalize(term)
	if term == "" {
		return nil
	}
	seen := map[string]bool{term: true}
	forms := []string{term}
	for _, id := range v.index[term] {
		for _, f := range v.groups[id] {
			if !seen[f] {
				seen[f] = true
				forms = append(forms, f)
			}
		}
	}
	return forms
}

// IsNoiseWord reports whether a query word carries no search value.
func (v *Vocabulary) IsNoiseWord(word string) bool {
	return v.noise[Normalize(word)]
}
