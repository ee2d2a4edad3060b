package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	PropertiesTable               = "properties"
	PropertyCharacteristicsTable  = "property_characteristics"
	propertyTitleUniqueConstraint = "properties_title_unique"
	propertySlugUniqueConstraint  = "properties_slug_unique"
)

var (
	// ErrPropertyNotFound indicates a missing listing (or one not owned by the caller on the owner path).
	ErrPropertyNotFound = errors.New("property not found")
	// ErrPropertyTitleConflict indicates another listing already uses the trimmed title.
	ErrPropertyTitleConflict = errors.New("property title conflict")
	// ErrPropertySlugConflict indicates another listing already uses the slug.
	ErrPropertySlugConflict = errors.New("property slug conflict")
	// ErrPropertyConflict covers any other uniqueness violation on the listing tables.
	ErrPropertyConflict = errors.New("property conflict")
)

// PropertyRecord represents a row in the properties table.
type PropertyRecord struct {
	PropertyID      uuid.UUID   `db:"property_id"`
	OwnerID         string      `db:"owner_id"`
	Title           string      `db:"title"`
	Slug            string      `db:"slug"`
	Description     string      `db:"description"`
	Address         *string     `db:"address"`
	Longitude       float64     `db:"longitude"`
	Latitude        float64     `db:"latitude"`
	TypeID          uuid.UUID   `db:"type_id"`
	CityID          uuid.UUID   `db:"city_id"`
	RegionID        *uuid.UUID  `db:"region_id"`
	Bathrooms       int         `db:"bathrooms"`
	Bedrooms        int         `db:"bedrooms"`
	MaxGuests       int         `db:"max_guests"`
	Price           float64     `db:"price"`
	MinNights       int         `db:"min_nights"`
	Images          []string    `db:"images"`
	EquipmentIDs    []uuid.UUID `db:"equipment_ids"`
	SmokingAllowed  bool        `db:"smoking_allowed"`
	PetsAllowed     bool        `db:"pets_allowed"`
	PartiesAllowed  bool        `db:"parties_allowed"`
	ChildrenAllowed bool        `db:"children_allowed"`
	Status          string      `db:"status"`
	IsVisible       bool        `db:"is_visible"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

// PropertyWrite is the payload handed to the create/update procedures.
// Status and IsVisible are only honoured by the admin procedure.
type PropertyWrite struct {
	PropertyID        uuid.UUID   `json:"propertyId"`
	OwnerID           string      `json:"ownerId"`
	Title             string      `json:"title"`
	Slug              string      `json:"slug"`
	Description       string      `json:"description"`
	Address           *string     `json:"address,omitempty"`
	Longitude         float64     `json:"longitude"`
	Latitude          float64     `json:"latitude"`
	TypeID            uuid.UUID   `json:"typeId"`
	CityID            uuid.UUID   `json:"cityId"`
	RegionID          *uuid.UUID  `json:"regionId,omitempty"`
	Bathrooms         int         `json:"bathrooms"`
	Bedrooms          int         `json:"bedrooms"`
	MaxGuests         int         `json:"maxGuests"`
	Price             float64     `json:"price"`
	MinNights         int         `json:"minNights"`
	Images            []string    `json:"images"`
	EquipmentIDs      []uuid.UUID `json:"equipmentIds"`
	CharacteristicIDs []uuid.UUID `json:"characteristicIds"`
	SmokingAllowed    bool        `json:"smokingAllowed"`
	PetsAllowed       bool        `json:"petsAllowed"`
	PartiesAllowed    bool        `json:"partiesAllowed"`
	ChildrenAllowed   bool        `json:"childrenAllowed"`
	Status            *string     `json:"status,omitempty"`
	IsVisible         *bool       `json:"isVisible,omitempty"`
}

func (w PropertyWrite) payload() (string, error) {
	if w.Images == nil {
		w.Images = []string{}
	}
	if w.EquipmentIDs == nil {
		w.EquipmentIDs = []uuid.UUID{}
	}
	if w.CharacteristicIDs == nil {
		w.CharacteristicIDs = []uuid.UUID{}
	}
	w.Title = strings.TrimSpace(w.Title)

	raw, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode property payload: %w", err)
	}
	return string(raw), nil
}

// PropertyStore exposes persistence helpers for listings.
type PropertyStore struct {
	pool *pgxpool.Pool
}

// NewPropertyStore returns a store; BootstrapPropertySchema must have run beforehand.
func NewPropertyStore(ctx context.Context, pool *pgxpool.Pool) (*PropertyStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &PropertyStore{pool: pool}, nil
}

const propertyColumns = `
        property_id, owner_id, title, slug, description, address,
        longitude, latitude, type_id, city_id, region_id::text,
        bathrooms, bedrooms, max_guests, price, min_nights,
        images, equipment_ids::text[],
        smoking_allowed, pets_allowed, parties_allowed, children_allowed,
        status, is_visible, created_at, updated_at`

// TitleTaken reports whether another listing already uses the trimmed title.
func (s *PropertyStore) TitleTaken(ctx context.Context, title string, excludeID *uuid.UUID) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT EXISTS (
            SELECT 1 FROM %s
            WHERE btrim(title) = btrim($1)
              AND ($2::uuid IS NULL OR property_id <> $2::uuid)
        )
    `, PropertiesTable), title, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check property title: %w", err)
	}
	return taken, nil
}

// SlugTaken reports whether another listing already uses slug.
func (s *PropertyStore) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT EXISTS (
            SELECT 1 FROM %s
            WHERE slug = $1
              AND ($2::uuid IS NULL OR property_id <> $2::uuid)
        )
    `, PropertiesTable), slug, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check property slug: %w", err)
	}
	return taken, nil
}

// CreateProperty runs create_property and returns the new id.
func (s *PropertyStore) CreateProperty(ctx context.Context, params PropertyWrite) (uuid.UUID, error) {
	if params.PropertyID == uuid.Nil {
		return uuid.Nil, errors.New("property id is required")
	}
	if strings.TrimSpace(params.OwnerID) == "" {
		return uuid.Nil, errors.New("owner id is required")
	}

	payload, err := params.payload()
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, `SELECT create_property($1::jsonb)`, payload).Scan(&id); err != nil {
		if conflict := mapPropertyConflict(err); conflict != nil {
			return uuid.Nil, conflict
		}
		return uuid.Nil, fmt.Errorf("create property: %w", err)
	}

	return id, nil
}

// UpdateProperty runs the owner procedure. A missing row or a row owned by
// someone else yields ErrPropertyNotFound.
func (s *PropertyStore) UpdateProperty(ctx context.Context, id uuid.UUID, ownerID string, params PropertyWrite) error {
	params.Status = nil
	params.IsVisible = nil

	payload, err := params.payload()
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `SELECT update_property($1, $2, $3::jsonb)`, id, ownerID, payload)
	return mapUpdateError(err)
}

// AdminUpdateProperty runs the admin procedure, which may also change status and visibility.
func (s *PropertyStore) AdminUpdateProperty(ctx context.Context, id uuid.UUID, params PropertyWrite) error {
	payload, err := params.payload()
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `SELECT admin_update_property($1, $2::jsonb)`, id, payload)
	return mapUpdateError(err)
}

func mapUpdateError(err error) error {
	if err == nil {
		return nil
	}
	if isNoDataFound(err) {
		return ErrPropertyNotFound
	}
	if conflict := mapPropertyConflict(err); conflict != nil {
		return conflict
	}
	return fmt.Errorf("update property: %w", err)
}

func mapPropertyConflict(err error) error {
	switch uniqueViolationConstraint(err) {
	case "":
		return nil
	case propertyTitleUniqueConstraint:
		return ErrPropertyTitleConflict
	case propertySlugUniqueConstraint:
		return ErrPropertySlugConflict
	default:
		return ErrPropertyConflict
	}
}

// SetPropertyImages replaces the image list of a listing.
func (s *PropertyStore) SetPropertyImages(ctx context.Context, id uuid.UUID, images []string) error {
	if images == nil {
		images = []string{}
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`
        UPDATE %s SET images = $1, updated_at = NOW()
        WHERE property_id = $2
    `, PropertiesTable), images, id)
	if err != nil {
		return fmt.Errorf("set property images: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// GetProperty returns a single listing by identifier.
func (s *PropertyStore) GetProperty(ctx context.Context, id uuid.UUID) (PropertyRecord, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE property_id = $1`, propertyColumns, PropertiesTable), id)
	return scanPropertyOrNotFound(row)
}

// GetPropertyBySlug returns a single listing by slug.
func (s *PropertyStore) GetPropertyBySlug(ctx context.Context, slug string) (PropertyRecord, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, propertyColumns, PropertiesTable), slug)
	return scanPropertyOrNotFound(row)
}

// DeleteProperty hard-deletes a listing; characteristics go with it.
func (s *PropertyStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrPropertyNotFound
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE property_id = $1`, PropertiesTable), id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// ListCharacteristicIDs returns the characteristics assigned to a listing.
func (s *PropertyStore) ListCharacteristicIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT characteristic_id::text FROM %s
        WHERE property_id = $1
        ORDER BY characteristic_id
    `, PropertyCharacteristicsTable), id)
	if err != nil {
		return nil, fmt.Errorf("list property characteristics: %w", err)
	}

	raw, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan property characteristics: %w", err)
	}
	return parseUUIDs(raw)
}

func scanPropertyOrNotFound(row pgx.Row) (PropertyRecord, error) {
	rec, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PropertyRecord{}, ErrPropertyNotFound
		}
		return PropertyRecord{}, err
	}
	return rec, nil
}

func scanProperty(row pgx.Row) (PropertyRecord, error) {
	var (
		rec       PropertyRecord
		regionID  *string
		equipment []string
	)

	if err := row.Scan(
		&rec.PropertyID, &rec.OwnerID, &rec.Title, &rec.Slug, &rec.Description, &rec.Address,
		&rec.Longitude, &rec.Latitude, &rec.TypeID, &rec.CityID, &regionID,
		&rec.Bathrooms, &rec.Bedrooms, &rec.MaxGuests, &rec.Price, &rec.MinNights,
		&rec.Images, &equipment,
		&rec.SmokingAllowed, &rec.PetsAllowed, &rec.PartiesAllowed, &rec.ChildrenAllowed,
		&rec.Status, &rec.IsVisible, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return PropertyRecord{}, err
	}

	if regionID != nil {
		parsed, err := uuid.Parse(*regionID)
		if err != nil {
			return PropertyRecord{}, fmt.Errorf("parse region id: %w", err)
		}
		rec.RegionID = &parsed
	}

	ids, err := parseUUIDs(equipment)
	if err != nil {
		return PropertyRecord{}, fmt.Errorf("parse equipment ids: %w", err)
	}
	rec.EquipmentIDs = ids
	if rec.Images == nil {
		rec.Images = []string{}
	}

	return rec, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
