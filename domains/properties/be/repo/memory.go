package repo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
)

// MemoryRepository is an in-memory implementation suitable for tests and local development.
// It enforces the same title/slug uniqueness and ownership rules as the database procedures.
type MemoryRepository struct {
	mu              sync.RWMutex
	byID            map[uuid.UUID]persistence.PropertyRecord
	characteristics map[uuid.UUID][]uuid.UUID
	now             func() time.Time
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:            make(map[uuid.UUID]persistence.PropertyRecord),
		characteristics: make(map[uuid.UUID][]uuid.UUID),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) TitleTaken(ctx context.Context, title string, excludeID *uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.titleTakenLocked(title, excludeID), nil
}

func (r *MemoryRepository) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slugTakenLocked(slug, excludeID), nil
}

func (r *MemoryRepository) Create(ctx context.Context, params persistence.PropertyWrite) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if params.PropertyID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("property id is required")
	}
	if err := r.checkUniqueLocked(params, nil); err != nil {
		return uuid.Nil, err
	}

	now := r.now()
	rec := persistence.PropertyRecord{
		PropertyID: params.PropertyID,
		OwnerID:    params.OwnerID,
		Status:     "pending_payment",
		CreatedAt:  now,
	}
	r.byID[params.PropertyID] = r.apply(rec, params, now)
	r.characteristics[params.PropertyID] = slices.Clone(params.CharacteristicIDs)
	return params.PropertyID, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (persistence.PropertyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return persistence.PropertyRecord{}, persistence.ErrPropertyNotFound
	}
	return clone(rec), nil
}

func (r *MemoryRepository) GetBySlug(ctx context.Context, slug string) (persistence.PropertyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.byID {
		if rec.Slug == slug {
			return clone(rec), nil
		}
	}
	return persistence.PropertyRecord{}, persistence.ErrPropertyNotFound
}

func (r *MemoryRepository) Update(ctx context.Context, id uuid.UUID, ownerID string, params persistence.PropertyWrite) error {
	params.Status = nil
	params.IsVisible = nil
	return r.update(id, &ownerID, params)
}

func (r *MemoryRepository) AdminUpdate(ctx context.Context, id uuid.UUID, params persistence.PropertyWrite) error {
	return r.update(id, nil, params)
}

func (r *MemoryRepository) update(id uuid.UUID, ownerID *string, params persistence.PropertyWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok || (ownerID != nil && rec.OwnerID != *ownerID) {
		return persistence.ErrPropertyNotFound
	}
	if err := r.checkUniqueLocked(params, &id); err != nil {
		return err
	}

	if params.Status != nil {
		rec.Status = *params.Status
	}
	if params.IsVisible != nil {
		rec.IsVisible = *params.IsVisible
	}
	r.byID[id] = r.apply(rec, params, r.now())
	r.characteristics[id] = slices.Clone(params.CharacteristicIDs)
	return nil
}

func (r *MemoryRepository) SetImages(ctx context.Context, id uuid.UUID, images []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return persistence.ErrPropertyNotFound
	}
	rec.Images = append([]string{}, images...)
	rec.UpdatedAt = r.now()
	r.byID[id] = rec
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return persistence.ErrPropertyNotFound
	}
	delete(r.byID, id)
	delete(r.characteristics, id)
	return nil
}

func (r *MemoryRepository) CharacteristicIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]uuid.UUID{}, r.characteristics[id]...), nil
}

// Len returns the number of stored listings.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *MemoryRepository) checkUniqueLocked(params persistence.PropertyWrite, excludeID *uuid.UUID) error {
	if r.titleTakenLocked(params.Title, excludeID) {
		return persistence.ErrPropertyTitleConflict
	}
	if r.slugTakenLocked(params.Slug, excludeID) {
		return persistence.ErrPropertySlugConflict
	}
	return nil
}

func (r *MemoryRepository) titleTakenLocked(title string, excludeID *uuid.UUID) bool {
	title = strings.TrimSpace(title)
	for id, rec := range r.byID {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if strings.TrimSpace(rec.Title) == title {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) slugTakenLocked(slug string, excludeID *uuid.UUID) bool {
	for id, rec := range r.byID {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if rec.Slug == slug {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) apply(rec persistence.PropertyRecord, params persistence.PropertyWrite, now time.Time) persistence.PropertyRecord {
	rec.Title = strings.TrimSpace(params.Title)
	rec.Slug = params.Slug
	rec.Description = params.Description
	rec.Address = params.Address
	rec.Longitude = params.Longitude
	rec.Latitude = params.Latitude
	rec.TypeID = params.TypeID
	rec.CityID = params.CityID
	rec.RegionID = params.RegionID
	rec.Bathrooms = params.Bathrooms
	rec.Bedrooms = params.Bedrooms
	rec.MaxGuests = params.MaxGuests
	rec.Price = params.Price
	rec.MinNights = params.MinNights
	rec.Images = append([]string{}, params.Images...)
	rec.EquipmentIDs = append([]uuid.UUID{}, params.EquipmentIDs...)
	rec.SmokingAllowed = params.SmokingAllowed
	rec.PetsAllowed = params.PetsAllowed
	rec.PartiesAllowed = params.PartiesAllowed
	rec.ChildrenAllowed = params.ChildrenAllowed
	rec.UpdatedAt = now
	return rec
}

func clone(rec persistence.PropertyRecord) persistence.PropertyRecord {
	rec.Images = append([]string{}, rec.Images...)
	rec.EquipmentIDs = append([]uuid.UUID{}, rec.EquipmentIDs...)
	return rec
}

// MemoryLookups serves reference names from maps. Missing keys yield ErrReferenceNotFound.
type MemoryLookups struct {
	mu       sync.RWMutex
	Types    map[uuid.UUID]string
	Cities   map[uuid.UUID]string
	Regions  map[uuid.UUID]string
	Profiles map[string]persistence.ProfileRecord
}

// NewMemoryLookups constructs empty MemoryLookups.
func NewMemoryLookups() *MemoryLookups {
	return &MemoryLookups{
		Types:    make(map[uuid.UUID]string),
		Cities:   make(map[uuid.UUID]string),
		Regions:  make(map[uuid.UUID]string),
		Profiles: make(map[string]persistence.ProfileRecord),
	}
}

func (l *MemoryLookups) PropertyTypeName(ctx context.Context, id uuid.UUID) (string, error) {
	return l.lookup(l.Types, "property type", id)
}

func (l *MemoryLookups) CityName(ctx context.Context, id uuid.UUID) (string, error) {
	return l.lookup(l.Cities, "city", id)
}

func (l *MemoryLookups) RegionName(ctx context.Context, id uuid.UUID) (string, error) {
	return l.lookup(l.Regions, "region", id)
}

func (l *MemoryLookups) Profile(ctx context.Context, userID string) (persistence.ProfileRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.Profiles[userID]
	if !ok {
		return persistence.ProfileRecord{}, fmt.Errorf("profile %s: %w", userID, persistence.ErrReferenceNotFound)
	}
	return rec, nil
}

func (l *MemoryLookups) lookup(names map[uuid.UUID]string, kind string, id uuid.UUID) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	name, ok := names[id]
	if !ok {
		return "", fmt.Errorf("%s %s: %w", kind, id, persistence.ErrReferenceNotFound)
	}
	return name, nil
}
