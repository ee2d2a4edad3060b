package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		token       string
		valid       bool
		errorCount  int
		hasWarnings bool
	}{
		{name: "valid composite", token: "villa-sousse-plage", valid: true},
		{name: "empty", token: "", errorCount: 1},
		{name: "too short", token: "ab", errorCount: 1, hasWarnings: true},
		{name: "uppercase", token: "Villa-Sousse", errorCount: 1},
		{name: "underscore", token: "villa_sousse", errorCount: 1, hasWarnings: true},
		{name: "too long", token: "a" + strings.Repeat("b", 100), errorCount: 1, hasWarnings: true},
		{name: "consecutive hyphens warn only", token: "villa--sousse", valid: true, hasWarnings: true},
		{name: "edge hyphen warns only", token: "-villa-sousse", valid: true, hasWarnings: true},
		{name: "stop word warns only", token: "villa-de-sousse", valid: true, hasWarnings: true},
		{name: "single segment warns only", token: "villa", valid: true, hasWarnings: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := ValidateSlug(tt.token)
			require.Equal(t, tt.valid, result.IsValid)
			require.Len(t, result.Errors, tt.errorCount)
			require.Equal(t, tt.hasWarnings, len(result.Warnings) > 0, "warnings: %v", result.Warnings)
		})
	}
}

func TestGeneratedSlugsValidate(t *testing.T) {
	t.Parallel()

	inputs := [][3]string{
		{"Villa", "Sousse", "Coucher de Soleil"},
		{"Studio", "Tunis", "Proche de l'Avenue Habib Bourguiba"},
		{"Maison d'hôtes", "Djerba", "Houch traditionnel à Midoun"},
	}
	for _, in := range inputs {
		token, err := GeneratePropertySlug(in[0], in[1], in[2], nil)
		require.NoError(t, err)
		require.True(t, ValidateSlug(token).IsValid, "token %q", token)
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]string{"villa", "sousse", "coucher", "soleil"},
		ExtractKeywords("villa-sousse-coucher-de-soleil"),
	)
	require.Equal(t, []string{"maison", "plage"}, ExtractKeywords("la-maison-on-the-plage"))
	require.Empty(t, ExtractKeywords(""))
}
