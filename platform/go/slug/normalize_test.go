package slug

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "empty", input: "", expect: ""},
		{name: "whitespace only", input: "   \t ", expect: ""},
		{name: "lowercases and trims", input: "  Villa Sousse ", expect: "villa sousse"},
		{name: "folds accents", input: "Évasion à Hammamet", expect: "evasion a hammamet"},
		{name: "strips punctuation", input: "Maison (vue mer)!", expect: "maison vue mer"},
		{name: "keeps hyphen and underscore", input: "pied-à-terre_centre", expect: "pied-a-terre_centre"},
		{name: "collapses whitespace", input: "Dar   el\n\tBahr", expect: "dar el bahr"},
		{name: "drops non latin script", input: "Villa 海 Nabeul", expect: "villa nabeul"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expect, Normalize(tt.input))
		})
	}
}

func TestNormalizeOutputShapeAndFixedPoint(t *testing.T) {
	t.Parallel()

	shape := regexp.MustCompile(`^[a-z0-9_ -]*$`)
	inputs := []string{
		"Coucher de Soleil",
		"  ÇA VA? Très bien!! ",
		"--Déjà--vu--",
		"Ærø Ōsaka Straße",
		"tab\tseparated\nlines",
		"ÀÉÎÕÜ ñ ç",
		"",
	}

	for _, in := range inputs {
		out := Normalize(in)
		require.Regexp(t, shape, out, "input %q", in)
		require.Equal(t, strings.TrimSpace(out), out, "input %q", in)
		require.Equal(t, out, Normalize(out), "input %q", in)
	}
}

func TestGenerateSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		opts   Options
		expect string
	}{
		{name: "defaults", input: "Coucher de Soleil", expect: "coucher-de-soleil"},
		{name: "empty input", input: "  ", expect: ""},
		{name: "removes stop words", input: "La Villa de la Plage", opts: Options{RemoveStopWords: true}, expect: "villa-plage"},
		{name: "custom separator", input: "Dar el Bahr", opts: Options{Separator: "_"}, expect: "dar_el_bahr"},
		{name: "underscore becomes separator", input: "vue_mer", expect: "vue-mer"},
		{name: "collapses hyphens", input: "a -- b", expect: "a-b"},
		{name: "strips edge hyphens", input: "-villa-", expect: "villa"},
		{name: "preserves case", input: "Villa Sousse", opts: Options{PreserveCase: true}, expect: "Villa-Sousse"},
		{name: "truncates on word boundary", input: "appartement lumineux centre ville", opts: Options{MaxLength: 20}, expect: "appartement-lumineux"},
		{name: "truncates when cut lands on separator", input: "villa sousse plage", opts: Options{MaxLength: 12}, expect: "villa-sousse"},
		{name: "hard cuts a single long word", input: "supercalifragilistic", opts: Options{MaxLength: 5}, expect: "super"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expect, GenerateSlug(tt.input, tt.opts))
		})
	}
}

func TestGeneratePropertySlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		region *string
		expect string
	}{
		{name: "no region", expect: "villa-sousse-coucher-de-soleil"},
		{name: "with region", region: strPtr("Nord"), expect: "villa-nord-sousse-coucher-de-soleil"},
		{name: "catch-all french region", region: strPtr("Autre"), expect: "villa-sousse-coucher-de-soleil"},
		{name: "catch-all english region", region: strPtr(" OTHER "), expect: "villa-sousse-coucher-de-soleil"},
		{name: "blank region", region: strPtr("  "), expect: "villa-sousse-coucher-de-soleil"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := GeneratePropertySlug("Villa", "Sousse", "Coucher de Soleil", tt.region)
			require.NoError(t, err)
			require.Equal(t, tt.expect, got)
		})
	}
}

func TestGeneratePropertySlugSegmentLimits(t *testing.T) {
	t.Parallel()

	title := "magnifique appartement avec vue panoramique sur la mer et piscine"
	got, err := GeneratePropertySlug("Appartement", "Hammamet", title, nil)
	require.NoError(t, err)
	require.Equal(t, "appartement-hammamet-magnifique-appartement-avec-vue", got)
	require.True(t, ValidateSlug(got).IsValid)
}

func TestGeneratePropertySlugEmptyComponents(t *testing.T) {
	t.Parallel()

	_, err := GeneratePropertySlug("", " ", "!!!", strPtr("Autre"))
	require.ErrorIs(t, err, ErrEmptySlugComponents)

	got, err := GeneratePropertySlug("", "", "Dar", nil)
	require.NoError(t, err)
	require.Equal(t, "dar", got)
}
