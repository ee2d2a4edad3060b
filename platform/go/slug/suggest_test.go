package slug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSlugSuggestions(t *testing.T) {
	t.Parallel()

	got, err := GenerateSlugSuggestions("Villa", "Sousse", "Coucher de Soleil sur la Mer Bleue", nil, 4)
	require.NoError(t, err)
	require.Equal(t, []string{
		"villa-sousse-coucher-de-soleil-sur-la-mer-bleue",
		"villa-sousse-coucher-soleil-mer-bleue",
		"villa-sousse-coucher-de-soleil",
		"sousse-coucher-de-soleil-sur-la-mer-bleue-villa",
	}, got)
}

func TestGenerateSlugSuggestionsDeduplicatesAndCaps(t *testing.T) {
	t.Parallel()

	got, err := GenerateSlugSuggestions("Villa", "Sousse", "Plage", strPtr("Nord"), 10)
	require.NoError(t, err)
	require.Equal(t, []string{
		"villa-nord-sousse-plage",
		"sousse-plage-villa",
	}, got)

	capped, err := GenerateSlugSuggestions("Villa", "Sousse", "Coucher de Soleil sur la Mer Bleue", nil, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
}

func TestGenerateSlugSuggestionsEmpty(t *testing.T) {
	t.Parallel()

	_, err := GenerateSlugSuggestions("", "", "", nil, 3)
	require.ErrorIs(t, err, ErrEmptySlugComponents)
}
