package slug

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/slug"
)

// Command groups the slug helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slug",
		Short: "Generate, validate and resolve property slugs",
	}

	cmd.AddCommand(
		generateCommand(),
		propertyCommand(),
		suggestCommand(),
		validateCommand(),
		keywordsCommand(),
		resolveCommand(),
	)
	return cmd
}

func generateCommand() *cobra.Command {
	var opts slug.Options

	cmd := &cobra.Command{
		Use:   "generate <text>",
		Short: "Normalize free text into a slug",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := slug.GenerateSlug(strings.Join(args, " "), opts)
			if out == "" {
				return fmt.Errorf("text %q produces an empty slug", strings.Join(args, " "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Separator, "separator", slug.DefaultSeparator, "word separator")
	cmd.Flags().IntVar(&opts.MaxLength, "max-length", slug.DefaultMaxLength, "maximum length, truncated at a word boundary")
	cmd.Flags().BoolVar(&opts.RemoveStopWords, "remove-stop-words", false, "drop French/English stop words")
	cmd.Flags().BoolVar(&opts.PreserveCase, "preserve-case", false, "keep the original letter case")
	return cmd
}

type propertyFlags struct {
	propertyType string
	city         string
	title        string
	region       string
}

func (f *propertyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.propertyType, "type", "", "property type name (e.g. Villa)")
	cmd.Flags().StringVar(&f.city, "city", "", "city name")
	cmd.Flags().StringVar(&f.title, "title", "", "listing title")
	cmd.Flags().StringVar(&f.region, "region", "", "optional region name")
}

func (f *propertyFlags) regionPtr(cmd *cobra.Command) *string {
	if !cmd.Flags().Changed("region") {
		return nil
	}
	return &f.region
}

func propertyCommand() *cobra.Command {
	var flags propertyFlags

	cmd := &cobra.Command{
		Use:   "property",
		Short: "Compose the base slug of a listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := slug.GeneratePropertySlug(flags.propertyType, flags.city, flags.title, flags.regionPtr(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

func suggestCommand() *cobra.Command {
	var (
		flags propertyFlags
		count int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Print alternative slugs for a listing, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestions, err := slug.GenerateSlugSuggestions(flags.propertyType, flags.city, flags.title, flags.regionPtr(cmd), count)
			if err != nil {
				return err
			}
			for _, s := range suggestions {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&count, "count", slug.DefaultSuggestionCount, "maximum number of suggestions")
	return cmd
}

func validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <slug>",
		Short: "Check a slug against the public URL rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := slug.ValidateSlug(args[0])
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.IsValid {
				return fmt.Errorf("slug %q is invalid", args[0])
			}
			return nil
		},
	}
	return cmd
}

func keywordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords <slug>",
		Short: "List the searchable keywords of a slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kw := range slug.ExtractKeywords(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), kw)
			}
			return nil
		},
	}
}

func resolveCommand() *cobra.Command {
	var (
		flags       propertyFlags
		databaseURL string
		excludeID   string
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a collision-free slug against the properties table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var exclude *uuid.UUID
			if excludeID != "" {
				id, err := uuid.Parse(excludeID)
				if err != nil {
					return fmt.Errorf("invalid --exclude-id: %w", err)
				}
				exclude = &id
			}

			base, err := slug.GeneratePropertySlug(flags.propertyType, flags.city, flags.title, flags.regionPtr(cmd))
			if err != nil {
				return err
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			store, err := persistence.NewPropertyStore(ctx, pool)
			if err != nil {
				return fmt.Errorf("init property store: %w", err)
			}

			resolved, err := slug.Resolver{MaxAttempts: maxAttempts}.EnsureUnique(ctx, base, func(ctx context.Context, candidate string) (bool, error) {
				taken, err := store.SlugTaken(ctx, candidate, exclude)
				return !taken, err
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resolved)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string")
	cmd.Flags().StringVar(&excludeID, "exclude-id", "", "property id whose own slug does not count as taken")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", slug.DefaultMaxAttempts, "numeric suffixes tried before the timestamp fallback")
	_ = cmd.MarkFlagRequired("database-url")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
