package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Gender is the requested or inferred target group of a garment
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "herr"
	GenderFemale Gender = "dam"
)

// ParseGender maps free-form input ("men", "kvinna", "K", ...) onto a Gender.
// Unrecognised values are treated as unset.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "herr", "herrar", "man", "män", "men", "mens", "men's", "male", "m", "h":
		return GenderMale
	case "dam", "damer", "kvinna", "kvinnor", "women", "womens", "women's", "female", "f", "k", "d":
		return GenderFemale
	default:
		return GenderUnset
	}
}

// FilterSet is the immutable set of preferences a search is ranked against.
// Empty strings and nil pointers mean "not specified".
type FilterSet struct {
	Brand    string   `json:"brand,omitempty"`
	Item     string   `json:"item,omitempty"`
	Color    string   `json:"color,omitempty"`
	Style    string   `json:"style,omitempty"`
	Size     string   `json:"size,omitempty"`
	Gender   Gender   `json:"gender,omitempty"`
	Kids     *bool    `json:"kids,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Used     *bool    `json:"used,omitempty"`
}

// CacheKey returns a stable representation of the filter set for cache keys.
func (f FilterSet) CacheKey() string {
	return fmt.Sprintf("b=%s|i=%s|c=%s|st=%s|sz=%s|g=%s|k=%s|p=%s|u=%s",
		keyPart(f.Brand), keyPart(f.Item), keyPart(f.Color), keyPart(f.Style), keyPart(f.Size),
		string(f.Gender), boolPart(f.Kids), floatPart(f.PriceMax), boolPart(f.Used))
}

func keyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func boolPart(b *bool) string {
	if b == nil {
		return "-"
	}
	return strconv.FormatBool(*b)
}

func floatPart(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// FindRequest is a single search against all marketplaces.
type FindRequest struct {
	Query   string
	Filters FilterSet
}
