package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
)

// Notes/constraints:
// - schema is idempotent; it can run on every deploy.
// - seed upserts by id, so re-running a seed file renames rows instead of duplicating them.
// - cities may reference a region declared in the same file; regions are written first.

// Command groups bootstrap helpers (schema DDL, reference data).
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap the rentals database (schema, reference data)",
	}

	cmd.AddCommand(schemaCommand(), seedCommand())
	return cmd
}

func schemaCommand() *cobra.Command {
	var databaseURL string

	c := &cobra.Command{
		Use:   "schema",
		Short: "Apply the properties DDL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			if err := persistence.BootstrapPropertySchema(ctx, pool); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "properties schema applied")
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string")
	_ = c.MarkFlagRequired("database-url")
	return c
}

// SeedFile is the JSON document accepted by `bootstrap seed`.
type SeedFile struct {
	PropertyTypes   []namedRow   `json:"propertyTypes"`
	Regions         []namedRow   `json:"regions"`
	Cities          []cityRow    `json:"cities"`
	Characteristics []namedRow   `json:"characteristics"`
	Profiles        []profileRow `json:"profiles"`
}

type namedRow struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type cityRow struct {
	ID       uuid.UUID  `json:"id"`
	RegionID *uuid.UUID `json:"regionId"`
	Name     string     `json:"name"`
}

type profileRow struct {
	UserID    string   `json:"userId"`
	FullName  *string  `json:"fullName"`
	AvatarURL *string  `json:"avatarUrl"`
	Languages []string `json:"languages"`
}

// ReadSeedFile decodes and checks a seed document.
func ReadSeedFile(r io.Reader) (SeedFile, error) {
	var seed SeedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return SeedFile{}, fmt.Errorf("decode seed file: %w", err)
	}
	if err := seed.validate(); err != nil {
		return SeedFile{}, err
	}
	return seed, nil
}

func (s SeedFile) validate() error {
	var errs []error
	checkNamed := func(kind string, rows []namedRow) {
		for i, row := range rows {
			if row.ID == uuid.Nil {
				errs = append(errs, fmt.Errorf("%s[%d]: id is required", kind, i))
			}
			if row.Name == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: name is required", kind, i))
			}
		}
	}
	checkNamed("propertyTypes", s.PropertyTypes)
	checkNamed("regions", s.Regions)
	checkNamed("characteristics", s.Characteristics)

	for i, city := range s.Cities {
		if city.ID == uuid.Nil || city.Name == "" {
			errs = append(errs, fmt.Errorf("cities[%d]: id and name are required", i))
		}
	}
	for i, p := range s.Profiles {
		if p.UserID == "" {
			errs = append(errs, fmt.Errorf("profiles[%d]: userId is required", i))
		}
	}
	return errors.Join(errs...)
}

// referenceWriter is the subset of persistence.ReferenceStore used by seeding.
type referenceWriter interface {
	UpsertPropertyType(ctx context.Context, id uuid.UUID, name string) error
	UpsertRegion(ctx context.Context, id uuid.UUID, name string) error
	UpsertCity(ctx context.Context, id uuid.UUID, regionID *uuid.UUID, name string) error
	UpsertCharacteristic(ctx context.Context, id uuid.UUID, name string) error
	UpsertProfile(ctx context.Context, rec persistence.ProfileRecord) error
}

// Apply writes every row of the seed and returns how many were upserted.
func (s SeedFile) Apply(ctx context.Context, w referenceWriter) (int, error) {
	n := 0
	for _, row := range s.PropertyTypes {
		if err := w.UpsertPropertyType(ctx, row.ID, row.Name); err != nil {
			return n, fmt.Errorf("property type %s: %w", row.ID, err)
		}
		n++
	}
	for _, row := range s.Regions {
		if err := w.UpsertRegion(ctx, row.ID, row.Name); err != nil {
			return n, fmt.Errorf("region %s: %w", row.ID, err)
		}
		n++
	}
	for _, row := range s.Cities {
		if err := w.UpsertCity(ctx, row.ID, row.RegionID, row.Name); err != nil {
			return n, fmt.Errorf("city %s: %w", row.ID, err)
		}
		n++
	}
	for _, row := range s.Characteristics {
		if err := w.UpsertCharacteristic(ctx, row.ID, row.Name); err != nil {
			return n, fmt.Errorf("characteristic %s: %w", row.ID, err)
		}
		n++
	}
	for _, p := range s.Profiles {
		rec := persistence.ProfileRecord{
			UserID:    p.UserID,
			FullName:  p.FullName,
			AvatarURL: p.AvatarURL,
			Languages: p.Languages,
		}
		if err := w.UpsertProfile(ctx, rec); err != nil {
			return n, fmt.Errorf("profile %s: %w", p.UserID, err)
		}
		n++
	}
	return n, nil
}

func seedCommand() *cobra.Command {
	var (
		databaseURL string
		file        string
	)

	c := &cobra.Command{
		Use:   "seed",
		Short: "Upsert reference data (types, regions, cities, characteristics, profiles) from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			seed, err := ReadSeedFile(f)
			if err != nil {
				return err
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			store, err := persistence.NewReferenceStore(ctx, pool)
			if err != nil {
				return fmt.Errorf("init reference store: %w", err)
			}

			n, err := seed.Apply(ctx, store)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows\n", n)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string")
	c.Flags().StringVar(&file, "file", "", "path to the seed JSON document")
	_ = c.MarkFlagRequired("database-url")
	_ = c.MarkFlagRequired("file")
	return c
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
