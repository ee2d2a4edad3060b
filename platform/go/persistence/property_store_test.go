package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type propertyFixture struct {
	pool     *pgxpool.Pool
	props    *PropertyStore
	refs     *ReferenceStore
	typeID   uuid.UUID
	cityID   uuid.UUID
	regionID uuid.UUID
	charA    uuid.UUID
	charB    uuid.UUID
}

func newPropertyFixture(t *testing.T) propertyFixture {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping property store integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rentals"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() { ClosePool(pool) })

	require.NoError(t, BootstrapPropertySchema(ctx, pool))
	// second run must be a no-op
	require.NoError(t, BootstrapPropertySchema(ctx, pool))

	props, err := NewPropertyStore(ctx, pool)
	require.NoError(t, err)
	refs, err := NewReferenceStore(ctx, pool)
	require.NoError(t, err)

	fx := propertyFixture{
		pool:     pool,
		props:    props,
		refs:     refs,
		typeID:   uuid.New(),
		cityID:   uuid.New(),
		regionID: uuid.New(),
		charA:    uuid.New(),
		charB:    uuid.New(),
	}

	require.NoError(t, refs.UpsertPropertyType(ctx, fx.typeID, "Villa"))
	require.NoError(t, refs.UpsertRegion(ctx, fx.regionID, "Nord"))
	require.NoError(t, refs.UpsertCity(ctx, fx.cityID, &fx.regionID, "Sousse"))
	require.NoError(t, refs.UpsertCharacteristic(ctx, fx.charA, "Vue mer"))
	require.NoError(t, refs.UpsertCharacteristic(ctx, fx.charB, "Piscine"))

	return fx
}

func (fx propertyFixture) write(owner, title, slug string) PropertyWrite {
	return PropertyWrite{
		PropertyID:        uuid.New(),
		OwnerID:           owner,
		Title:             title,
		Slug:              slug,
		Description:       "Une villa lumineuse avec jardin et terrasse",
		Longitude:         10.6,
		Latitude:          35.8,
		TypeID:            fx.typeID,
		CityID:            fx.cityID,
		RegionID:          &fx.regionID,
		Bathrooms:         2,
		Bedrooms:          3,
		MaxGuests:         6,
		Price:             250,
		MinNights:         2,
		EquipmentIDs:      []uuid.UUID{uuid.New()},
		CharacteristicIDs: []uuid.UUID{fx.charA},
		ChildrenAllowed:   true,
	}
}

func TestPropertyStoreLifecycle(t *testing.T) {
	t.Parallel()

	fx := newPropertyFixture(t)
	ctx := context.Background()
	owner := "firebase-uid-" + uuid.NewString()[:8]

	params := fx.write(owner, "  Villa Coucher de Soleil ", "villa-nord-sousse-coucher-de-soleil")
	id, err := fx.props.CreateProperty(ctx, params)
	require.NoError(t, err)
	require.Equal(t, params.PropertyID, id)

	rec, err := fx.props.GetProperty(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Villa Coucher de Soleil", rec.Title)
	require.Equal(t, owner, rec.OwnerID)
	require.Equal(t, "pending_payment", rec.Status)
	require.False(t, rec.IsVisible)
	require.Empty(t, rec.Images)
	require.NotNil(t, rec.RegionID)
	require.Equal(t, fx.regionID, *rec.RegionID)
	require.Equal(t, params.EquipmentIDs, rec.EquipmentIDs)

	bySlug, err := fx.props.GetPropertyBySlug(ctx, "villa-nord-sousse-coucher-de-soleil")
	require.NoError(t, err)
	require.Equal(t, id, bySlug.PropertyID)

	chars, err := fx.props.ListCharacteristicIDs(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{fx.charA}, chars)

	taken, err := fx.props.TitleTaken(ctx, "Villa Coucher de Soleil  ", nil)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = fx.props.TitleTaken(ctx, "Villa Coucher de Soleil", &id)
	require.NoError(t, err)
	require.False(t, taken)

	taken, err = fx.props.SlugTaken(ctx, "villa-nord-sousse-coucher-de-soleil", nil)
	require.NoError(t, err)
	require.True(t, taken)

	images := []string{"https://cdn.example.com/properties/a.jpg", "https://cdn.example.com/properties/b.jpg"}
	require.NoError(t, fx.props.SetPropertyImages(ctx, id, images))

	rec, err = fx.props.GetProperty(ctx, id)
	require.NoError(t, err)
	require.Equal(t, images, rec.Images)

	require.NoError(t, fx.props.DeleteProperty(ctx, id))
	_, err = fx.props.GetProperty(ctx, id)
	require.ErrorIs(t, err, ErrPropertyNotFound)
	require.ErrorIs(t, fx.props.DeleteProperty(ctx, id), ErrPropertyNotFound)
	require.ErrorIs(t, fx.props.SetPropertyImages(ctx, id, nil), ErrPropertyNotFound)

	chars, err = fx.props.ListCharacteristicIDs(ctx, id)
	require.NoError(t, err)
	require.Empty(t, chars)
}

func TestPropertyStoreUniqueness(t *testing.T) {
	t.Parallel()

	fx := newPropertyFixture(t)
	ctx := context.Background()
	owner := "firebase-uid-" + uuid.NewString()[:8]

	_, err := fx.props.CreateProperty(ctx, fx.write(owner, "Dar El Bahr", "villa-sousse-dar-el-bahr"))
	require.NoError(t, err)

	_, err = fx.props.CreateProperty(ctx, fx.write(owner, " Dar El Bahr", "villa-sousse-dar-el-bahr-1"))
	require.ErrorIs(t, err, ErrPropertyTitleConflict)

	_, err = fx.props.CreateProperty(ctx, fx.write(owner, "Dar El Bahr II", "villa-sousse-dar-el-bahr"))
	require.ErrorIs(t, err, ErrPropertySlugConflict)
}

func TestPropertyStoreUpdatePaths(t *testing.T) {
	t.Parallel()

	fx := newPropertyFixture(t)
	ctx := context.Background()
	owner := "firebase-uid-" + uuid.NewString()[:8]

	params := fx.write(owner, "Studio Medina", "studio-sousse-medina")
	id, err := fx.props.CreateProperty(ctx, params)
	require.NoError(t, err)

	update := params
	update.Title = "Studio Medina Rénové"
	update.Slug = "studio-sousse-medina-renove"
	update.RegionID = nil
	update.Images = []string{"https://cdn.example.com/x.jpg"}
	update.CharacteristicIDs = []uuid.UUID{fx.charB}
	status := "active"
	update.Status = &status

	err = fx.props.UpdateProperty(ctx, id, "someone-else", update)
	require.ErrorIs(t, err, ErrPropertyNotFound)

	require.NoError(t, fx.props.UpdateProperty(ctx, id, owner, update))

	rec, err := fx.props.GetProperty(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Studio Medina Rénové", rec.Title)
	require.Equal(t, "studio-sousse-medina-renove", rec.Slug)
	require.Nil(t, rec.RegionID)
	require.Equal(t, update.Images, rec.Images)
	require.Equal(t, "pending_payment", rec.Status, "owner path must not change status")

	chars, err := fx.props.ListCharacteristicIDs(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{fx.charB}, chars)

	visible := true
	update.IsVisible = &visible
	require.NoError(t, fx.props.AdminUpdateProperty(ctx, id, update))

	rec, err = fx.props.GetProperty(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "active", rec.Status)
	require.True(t, rec.IsVisible)

	require.ErrorIs(t, fx.props.AdminUpdateProperty(ctx, uuid.New(), update), ErrPropertyNotFound)
}

func TestReferenceStoreLookups(t *testing.T) {
	t.Parallel()

	fx := newPropertyFixture(t)
	ctx := context.Background()

	name, err := fx.refs.PropertyTypeName(ctx, fx.typeID)
	require.NoError(t, err)
	require.Equal(t, "Villa", name)

	name, err = fx.refs.CityName(ctx, fx.cityID)
	require.NoError(t, err)
	require.Equal(t, "Sousse", name)

	name, err = fx.refs.RegionName(ctx, fx.regionID)
	require.NoError(t, err)
	require.Equal(t, "Nord", name)

	_, err = fx.refs.CityName(ctx, uuid.New())
	require.ErrorIs(t, err, ErrReferenceNotFound)

	userID := "owner-uid-1"
	fullName := "Amira Ben Salah"
	require.NoError(t, fx.refs.UpsertProfile(ctx, ProfileRecord{UserID: userID, FullName: &fullName, Languages: []string{"fr", "ar"}}))

	profile, err := fx.refs.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, fullName, *profile.FullName)
	require.Nil(t, profile.AvatarURL)
	require.Equal(t, []string{"fr", "ar"}, profile.Languages)

	_, err = fx.refs.GetProfile(ctx, "missing-uid")
	require.ErrorIs(t, err, ErrReferenceNotFound)
}
