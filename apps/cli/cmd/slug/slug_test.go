package slug

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/slug"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := Command()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSlugCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		expect string
	}{
		{name: "generate", args: []string{"generate", "Coucher", "de", "Soleil"}, expect: "coucher-de-soleil\n"},
		{name: "generate without stop words", args: []string{"generate", "--remove-stop-words", "La Villa de la Plage"}, expect: "villa-plage\n"},
		{name: "generate custom separator", args: []string{"generate", "--separator", "_", "Dar el Bahr"}, expect: "dar_el_bahr\n"},
		{name: "property", args: []string{"property", "--type", "Villa", "--city", "Sousse", "--title", "Coucher de Soleil"}, expect: "villa-sousse-coucher-de-soleil\n"},
		{name: "property with region", args: []string{"property", "--type", "Villa", "--city", "Sousse", "--title", "Plage", "--region", "Nord"}, expect: "villa-nord-sousse-plage\n"},
		{name: "property with catch-all region", args: []string{"property", "--type", "Villa", "--city", "Sousse", "--title", "Plage", "--region", "Autre"}, expect: "villa-sousse-plage\n"},
		{name: "suggest", args: []string{"suggest", "--type", "Villa", "--city", "Sousse", "--title", "Plage", "--region", "Nord"}, expect: "villa-nord-sousse-plage\nsousse-plage-villa\n"},
		{name: "keywords", args: []string{"keywords", "villa-sousse-de-la-plage"}, expect: "villa\nsousse\nplage\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, tt.args...)
			require.NoError(t, err)
			require.Equal(t, tt.expect, out)
		})
	}
}

func TestSlugCommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "generate empty result", args: []string{"generate", "!!!"}},
		{name: "generate without text", args: []string{"generate"}},
		{name: "property without components", args: []string{"property"}},
		{name: "resolve without database", args: []string{"resolve", "--type", "Villa"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "validate", "villa-sousse-plage")
	require.NoError(t, err)

	var got slug.Validation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.True(t, got.IsValid)
	require.Empty(t, got.Errors)

	out, err = run(t, "validate", "Villa Sousse")
	require.Error(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.False(t, got.IsValid)
	require.NotEmpty(t, got.Errors)
}
