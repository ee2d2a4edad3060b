package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	PropertyTypesTable   = "property_types"
	CitiesTable          = "cities"
	RegionsTable         = "regions"
	ProfilesTable        = "profiles"
	CharacteristicsTable = "characteristics"
)

// ErrReferenceNotFound indicates a missing row in one of the reference tables.
var ErrReferenceNotFound = errors.New("reference not found")

// ProfileRecord represents a row in the profiles table.
type ProfileRecord struct {
	UserID    string   `db:"user_id"`
	FullName  *string  `db:"full_name"`
	AvatarURL *string  `db:"avatar_url"`
	Languages []string `db:"languages"`
}

// ReferenceStore reads the lookup tables listings point at.
type ReferenceStore struct {
	pool *pgxpool.Pool
}

// NewReferenceStore returns a store over the reference tables.
func NewReferenceStore(ctx context.Context, pool *pgxpool.Pool) (*ReferenceStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &ReferenceStore{pool: pool}, nil
}

// PropertyTypeName returns the display name of a property type.
func (s *ReferenceStore) PropertyTypeName(ctx context.Context, id uuid.UUID) (string, error) {
	return s.name(ctx, PropertyTypesTable, "type_id", id)
}

// CityName returns the display name of a city.
func (s *ReferenceStore) CityName(ctx context.Context, id uuid.UUID) (string, error) {
	return s.name(ctx, CitiesTable, "city_id", id)
}

// RegionName returns the display name of a region.
func (s *ReferenceStore) RegionName(ctx context.Context, id uuid.UUID) (string, error) {
	return s.name(ctx, RegionsTable, "region_id", id)
}

func (s *ReferenceStore) name(ctx context.Context, table, column string, id uuid.UUID) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT name FROM %s WHERE %s = $1`, table, column), id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s %s: %w", strings.TrimSuffix(table, "s"), id, ErrReferenceNotFound)
		}
		return "", fmt.Errorf("lookup %s: %w", table, err)
	}
	return name, nil
}

// GetProfile returns the public profile of a user.
func (s *ReferenceStore) GetProfile(ctx context.Context, userID string) (ProfileRecord, error) {
	var rec ProfileRecord
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT user_id, full_name, avatar_url, languages
        FROM %s WHERE user_id = $1
    `, ProfilesTable), userID).Scan(&rec.UserID, &rec.FullName, &rec.AvatarURL, &rec.Languages)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, fmt.Errorf("profile %s: %w", userID, ErrReferenceNotFound)
		}
		return ProfileRecord{}, fmt.Errorf("lookup profile: %w", err)
	}
	if rec.Languages == nil {
		rec.Languages = []string{}
	}
	return rec, nil
}

// UpsertPropertyType inserts or renames a property type.
func (s *ReferenceStore) UpsertPropertyType(ctx context.Context, id uuid.UUID, name string) error {
	return s.upsertName(ctx, PropertyTypesTable, "type_id", id, name)
}

// UpsertRegion inserts or renames a region.
func (s *ReferenceStore) UpsertRegion(ctx context.Context, id uuid.UUID, name string) error {
	return s.upsertName(ctx, RegionsTable, "region_id", id, name)
}

// UpsertCity inserts or renames a city, optionally attached to a region.
func (s *ReferenceStore) UpsertCity(ctx context.Context, id uuid.UUID, regionID *uuid.UUID, name string) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (city_id, region_id, name) VALUES ($1, $2, $3)
        ON CONFLICT (city_id) DO UPDATE SET region_id = EXCLUDED.region_id, name = EXCLUDED.name
    `, CitiesTable), id, regionID, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("upsert city: %w", err)
	}
	return nil
}

// UpsertCharacteristic inserts or renames a characteristic.
func (s *ReferenceStore) UpsertCharacteristic(ctx context.Context, id uuid.UUID, name string) error {
	return s.upsertName(ctx, CharacteristicsTable, "characteristic_id", id, name)
}

// UpsertProfile inserts or replaces a public profile.
func (s *ReferenceStore) UpsertProfile(ctx context.Context, rec ProfileRecord) error {
	if rec.Languages == nil {
		rec.Languages = []string{}
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (user_id, full_name, avatar_url, languages) VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE SET
            full_name = EXCLUDED.full_name,
            avatar_url = EXCLUDED.avatar_url,
            languages = EXCLUDED.languages,
            updated_at = NOW()
    `, ProfilesTable), rec.UserID, rec.FullName, rec.AvatarURL, rec.Languages)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *ReferenceStore) upsertName(ctx context.Context, table, column string, id uuid.UUID, name string) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %[1]s (%[2]s, name) VALUES ($1, $2)
        ON CONFLICT (%[2]s) DO UPDATE SET name = EXCLUDED.name
    `, table, column), id, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}
