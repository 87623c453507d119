package textmatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customVocabulary = `
version: 99
synonyms:
  jeans: [denim]
kids_terms: [barn]
gender:
  male_words: [herr]
  female_words: [dam]
  female_size_min: 32
  female_size_max: 42
  male_size_min: 46
  male_size_max: 58
sizes:
  child_min: 100
  child_max: 160
  waist_min: 26
  waist_max: 44
  length_min: 26
  length_max: 38
  waist_ladder:
    - {max: 30, size: S}
    - {max: 34, size: M}
  waist_ladder_top: L
  markers: [stl]
noise_words: [begagnad]
`

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	require.NotNil(t, v)

	assert.Same(t, v, DefaultVocabulary(), "default vocabulary should be loaded once")
	assert.Positive(t, v.Version)
	assert.NotEmpty(t, v.Synonyms)
	assert.NotEmpty(t, v.KidsTerms)
	assert.Equal(t, 90, v.Sizes.ChildMin)
	assert.Equal(t, 170, v.Sizes.ChildMax)
}

func TestVocabularyExpand(t *testing.T) {
	v := DefaultVocabulary()

	t.Run("canonical expands to forms", func(t *testing.T) {
		assert.Contains(t, v.Expand("Nike"), "najk")
	})

	t.Run("form expands to canonical", func(t *testing.T) {
		forms := v.Expand("najk")
		assert.Equal(t, "najk", forms[0])
		assert.Contains(t, forms, "nike")
	})

	t.Run("unknown term expands to itself", func(t *testing.T) {
		assert.Equal(t, []string{"okänt"}, v.Expand("Okänt"))
	})

	t.Run("empty term", func(t *testing.T) {
		assert.Nil(t, v.Expand("  "))
	})
}

func TestVocabularyIsNoiseWord(t *testing.T) {
	v := DefaultVocabulary()

	assert.True(t, v.IsNoiseWord("Begagnad"))
	assert.True(t, v.IsNoiseWord("säljes"))
	assert.False(t, v.IsNoiseWord("jeans"))
}

func TestParseVocabulary(t *testing.T) {
	t.Run("custom tables", func(t *testing.T) {
		v, err := ParseVocabulary([]byte(customVocabulary))
		require.NoError(t, err)

		assert.Equal(t, 99, v.Version)
		assert.Equal(t, "L", v.WaistToTextSize(40))
		assert.Equal(t, "M", v.WaistToTextSize(32))

		_, found := v.ChildSize("stl 95", true)
		assert.False(t, found, "95 is below the custom child range")
		size, found := v.ChildSize("stl 110", true)
		assert.True(t, found)
		assert.Equal(t, 110, size)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseVocabulary([]byte("synonyms: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("invalid child range", func(t *testing.T) {
		_, err := ParseVocabulary([]byte(`
sizes:
  child_min: 170
  child_max: 90
`))
		assert.ErrorContains(t, err, "child size range")
	})

	t.Run("ladder must increase", func(t *testing.T) {
		_, err := ParseVocabulary([]byte(`
sizes:
  child_min: 90
  child_max: 170
  waist_min: 26
  waist_max: 44
  length_min: 26
  length_max: 38
  waist_ladder:
    - {max: 32, size: M}
    - {max: 30, size: S}
  waist_ladder_top: XL
`))
		assert.ErrorContains(t, err, "strictly increasing")
	})
}

func TestLoadVocabulary(t *testing.T) {
	t.Run("empty path returns default", func(t *testing.T) {
		v, err := LoadVocabulary("")
		require.NoError(t, err)
		assert.Same(t, DefaultVocabulary(), v)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocabulary.yaml")
		require.NoError(t, os.WriteFile(path, []byte(customVocabulary), 0o644))

		v, err := LoadVocabulary(path)
		require.NoError(t, err)
		assert.Equal(t, 99, v.Version)
		assert.Contains(t, v.Expand("denim"), "jeans")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
