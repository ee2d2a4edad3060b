package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
)

// Repository defines the persistence operations required by the properties service.
type Repository interface {
	TitleTaken(ctx context.Context, title string, excludeID *uuid.UUID) (bool, error)
	SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, params persistence.PropertyWrite) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.PropertyRecord, error)
	GetBySlug(ctx context.Context, slug string) (persistence.PropertyRecord, error)
	Update(ctx context.Context, id uuid.UUID, ownerID string, params persistence.PropertyWrite) error
	AdminUpdate(ctx context.Context, id uuid.UUID, params persistence.PropertyWrite) error
	SetImages(ctx context.Context, id uuid.UUID, images []string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CharacteristicIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

// Lookups resolves the display names a listing references.
type Lookups interface {
	PropertyTypeName(ctx context.Context, id uuid.UUID) (string, error)
	CityName(ctx context.Context, id uuid.UUID) (string, error)
	RegionName(ctx context.Context, id uuid.UUID) (string, error)
	Profile(ctx context.Context, userID string) (persistence.ProfileRecord, error)
}

type postgresRepository struct {
	store *persistence.PropertyStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.PropertyStore) Repository {
	if store == nil {
		panic("property store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) TitleTaken(ctx context.Context, title string, excludeID *uuid.UUID) (bool, error) {
	return r.store.TitleTaken(ctx, title, excludeID)
}

func (r *postgresRepository) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return r.store.SlugTaken(ctx, slug, excludeID)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.PropertyWrite) (uuid.UUID, error) {
	return r.store.CreateProperty(ctx, params)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.PropertyRecord, error) {
	return r.store.GetProperty(ctx, id)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (persistence.PropertyRecord, error) {
	return r.store.GetPropertyBySlug(ctx, slug)
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, ownerID string, params persistence.PropertyWrite) error {
	return r.store.UpdateProperty(ctx, id, ownerID, params)
}

func (r *postgresRepository) AdminUpdate(ctx context.Context, id uuid.UUID, params persistence.PropertyWrite) error {
	return r.store.AdminUpdateProperty(ctx, id, params)
}

func (r *postgresRepository) SetImages(ctx context.Context, id uuid.UUID, images []string) error {
	return r.store.SetPropertyImages(ctx, id, images)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.DeleteProperty(ctx, id)
}

func (r *postgresRepository) CharacteristicIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return r.store.ListCharacteristicIDs(ctx, id)
}

type postgresLookups struct {
	store *persistence.ReferenceStore
}

// NewPostgresLookups constructs Lookups backed by the reference tables.
func NewPostgresLookups(store *persistence.ReferenceStore) Lookups {
	if store == nil {
		panic("reference store is required")
	}
	return &postgresLookups{store: store}
}

func (l *postgresLookups) PropertyTypeName(ctx context.Context, id uuid.UUID) (string, error) {
	return l.store.PropertyTypeName(ctx, id)
}

func (l *postgresLookups) CityName(ctx context.Context, id uuid.UUID) (string, error) {
	return l.store.CityName(ctx, id)
}

func (l *postgresLookups) RegionName(ctx context.Context, id uuid.UUID) (string, error) {
	return l.store.RegionName(ctx, id)
}

func (l *postgresLookups) Profile(ctx context.Context, userID string) (persistence.ProfileRecord, error) {
	return l.store.GetProfile(ctx, userID)
}
