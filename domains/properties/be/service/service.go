package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-rentals/domains/properties/be/repo"
	platformauth "github.com/zenGate-Global/palmyra-rentals/platform/go/auth"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/logging"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/requesttrace"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/slug"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/storage"
)

const (
	DefaultImageBucket   = "property-images"
	DefaultMaxImageBytes = 10 << 20

	// titles shorter than this skip the availability probe
	minProbeTitleLength = 3
)

// BlobStore stores listing images. Remove ignores objects that are already gone.
type BlobStore interface {
	Upload(ctx context.Context, bucket, objectPath string, obj storage.Object) (string, error)
	Remove(ctx context.Context, bucket string, paths []string) error
	ObjectPath(bucket, rawURL string) (string, bool)
}

// IdentityProvider returns the caller of the current request.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*platformauth.UserCredentials, bool)
}

// Indexer receives fully written listings. Failures never fail the write.
type Indexer interface {
	IndexProperty(ctx context.Context, l Lookup) error
	RemoveProperty(ctx context.Context, id uuid.UUID) error
}

// Service defines the business operations for the properties domain.
type Service interface {
	Create(ctx context.Context, input PropertyInput, photos []Photo) (Lookup, error)
	// Update replaces the listing fields. finalImageURLs lists the existing images to keep;
	// nil keeps all of them.
	Update(ctx context.Context, id uuid.UUID, input PropertyInput, finalImageURLs []string, photos []Photo) (Lookup, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (Lookup, error)
	// GetBySlug reports a missing listing as found=false with a nil error.
	GetBySlug(ctx context.Context, slug string) (Lookup, bool, error)
	CheckTitleAvailability(ctx context.Context, title string, excludeID *uuid.UUID) (bool, error)
	CheckSlugAvailability(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	RetryCleanup(ctx context.Context, report CleanupReport) CleanupReport
}

// Deps are the collaborators of the service.
type Deps struct {
	Repo     repo.Repository
	Lookups  repo.Lookups
	Blobs    BlobStore
	Identity IdentityProvider
	Indexer  Indexer
	Logger   *zap.Logger
}

// Config tunes the service. Zero values fall back to defaults.
type Config struct {
	ImageBucket   string
	MaxImageBytes int64
	Slugs         slug.Resolver
	Now           func() time.Time
	NewID         func() uuid.UUID
}

type service struct {
	repo     repo.Repository
	lookups  repo.Lookups
	blobs    BlobStore
	identity IdentityProvider
	indexer  Indexer
	logger   *zap.Logger
	cfg      Config
}

// New constructs a properties Service.
func New(deps Deps, cfg Config) Service {
	if deps.Repo == nil {
		panic("properties repository is required")
	}
	if deps.Lookups == nil {
		panic("reference lookups are required")
	}
	if deps.Blobs == nil {
		panic("blob store is required")
	}
	if deps.Identity == nil {
		panic("identity provider is required")
	}
	if deps.Indexer == nil {
		deps.Indexer = NoopIndexer{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	if strings.TrimSpace(cfg.ImageBucket) == "" {
		cfg.ImageBucket = DefaultImageBucket
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.New
	}
	if cfg.Slugs.Now == nil {
		cfg.Slugs.Now = cfg.Now
	}

	return &service{
		repo:     deps.Repo,
		lookups:  deps.Lookups,
		blobs:    deps.Blobs,
		identity: deps.Identity,
		indexer:  deps.Indexer,
		logger:   deps.Logger,
		cfg:      cfg,
	}
}

// NoopIndexer discards index updates.
type NoopIndexer struct{}

func (NoopIndexer) IndexProperty(context.Context, Lookup) error { return nil }
func (NoopIndexer) RemoveProperty(context.Context, uuid.UUID) error { return nil }

func (s *service) Create(ctx context.Context, input PropertyInput, photos []Photo) (Lookup, error) {
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return Lookup{}, ErrUnauthenticated
	}

	if err := Validate(input); err != nil {
		return Lookup{}, err
	}
	if len(photos) > MaxImages {
		return Lookup{}, fmt.Errorf("%w: got %d", ErrImageCountOutOfRange, len(photos))
	}
	if err := s.checkPhotos(photos); err != nil {
		return Lookup{}, err
	}

	available, err := s.CheckTitleAvailability(ctx, input.Title, nil)
	if err != nil {
		return Lookup{}, err
	}
	if !available {
		return Lookup{}, ErrDuplicateTitle
	}

	id := s.cfg.NewID()
	slugValue, err := s.assignSlug(ctx, input, nil)
	if err != nil {
		return Lookup{}, err
	}

	write := buildWrite(id, user.Id, slugValue, input)
	write.Status = nil
	write.IsVisible = nil
	if _, err := s.repo.Create(ctx, write); err != nil {
		mapped := mapPersistenceError(err)
		if errors.Is(mapped, ErrDuplicateTitle) || errors.Is(mapped, ErrDuplicateSlug) {
			return Lookup{}, mapped
		}
		return Lookup{}, &CreationError{Stage: StageBaseCreate, Err: err, Cleanup: CleanupReport{PropertyID: id, RecordDeleted: true}}
	}

	var paths []string
	if len(photos) > 0 {
		var urls []string
		urls, paths, err = s.uploadPhotos(ctx, id, photos)
		if err != nil {
			return Lookup{}, s.failCreate(ctx, StageUploadImages, id, paths, err)
		}
		if err := s.repo.SetImages(ctx, id, urls); err != nil {
			return Lookup{}, s.failCreate(ctx, StagePatchImages, id, paths, err)
		}
	}

	result, err := s.load(ctx, id)
	if err != nil {
		return Lookup{}, s.failCreate(ctx, StageFetch, id, paths, fmt.Errorf("%w: %w", ErrFetchAfterCreate, err))
	}

	s.index(ctx, result)
	return result, nil
}

func (s *service) failCreate(ctx context.Context, stage string, id uuid.UUID, paths []string, cause error) error {
	report := s.compensate(ctx, CleanupReport{PropertyID: id, RemainingImages: paths})
	return &CreationError{Stage: stage, Err: cause, Cleanup: report}
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input PropertyInput, finalImageURLs []string, photos []Photo) (Lookup, error) {
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return Lookup{}, ErrUnauthenticated
	}
	if id == uuid.Nil {
		return Lookup{}, ErrNotFound
	}

	if err := Validate(input); err != nil {
		return Lookup{}, err
	}
	if err := s.checkPhotos(photos); err != nil {
		return Lookup{}, err
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lookup{}, mapPersistenceError(err)
	}
	if current.OwnerID != user.Id && !user.IsAdmin {
		return Lookup{}, ErrForbidden
	}

	available, err := s.CheckTitleAvailability(ctx, input.Title, &id)
	if err != nil {
		return Lookup{}, err
	}
	if !available {
		return Lookup{}, ErrDuplicateTitle
	}

	retained, err := retainedImages(current.Images, finalImageURLs)
	if err != nil {
		return Lookup{}, err
	}
	if total := len(retained) + len(photos); total < MinImages || total > MaxImages {
		return Lookup{}, fmt.Errorf("%w: got %d", ErrImageCountOutOfRange, total)
	}

	slugValue := current.Slug
	if slugInputsChanged(current, input) {
		slugValue, err = s.assignSlug(ctx, input, &id)
		if err != nil {
			return Lookup{}, err
		}
	}

	uploaded, paths, err := s.uploadPhotos(ctx, id, photos)
	if err != nil {
		report := s.compensate(ctx, CleanupReport{PropertyID: id, KeepRecord: true, RemainingImages: paths})
		return Lookup{}, &UpdateError{Stage: StageUploadImages, Err: err, Cleanup: report}
	}

	write := buildWrite(id, current.OwnerID, slugValue, input)
	write.Images = append(append([]string{}, retained...), uploaded...)
	if user.IsAdmin {
		err = s.repo.AdminUpdate(ctx, id, write)
	} else {
		err = s.repo.Update(ctx, id, user.Id, write)
	}
	if err != nil {
		report := s.compensate(ctx, CleanupReport{PropertyID: id, KeepRecord: true, RemainingImages: paths})
		if mapped := mapPersistenceError(err); errors.Is(mapped, ErrNotFound) || errors.Is(mapped, ErrDuplicateTitle) || errors.Is(mapped, ErrDuplicateSlug) {
			return Lookup{}, mapped
		}
		return Lookup{}, &UpdateError{Stage: StageWrite, Err: err, Cleanup: report}
	}

	if dropped := s.objectPaths(droppedImages(current.Images, retained)); len(dropped) > 0 {
		report := s.compensate(ctx, CleanupReport{PropertyID: id, KeepRecord: true, RemainingImages: dropped})
		if !report.Clean() {
			s.log(ctx).Warn("dropped images left behind", zap.String("propertyId", id.String()), zap.Strings("paths", report.RemainingImages))
		}
	}

	result, err := s.load(ctx, id)
	if err != nil {
		return Lookup{}, &UpdateError{Stage: StageFetch, Err: err}
	}

	s.index(ctx, result)
	return result, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if id == uuid.Nil {
		return ErrNotFound
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapPersistenceError(err)
	}
	if current.OwnerID != user.Id && !user.IsAdmin {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapPersistenceError(err)
	}

	if paths := s.objectPaths(current.Images); len(paths) > 0 {
		s.compensate(ctx, CleanupReport{PropertyID: id, KeepRecord: true, RemainingImages: paths})
	}
	if err := s.indexer.RemoveProperty(context.WithoutCancel(ctx), id); err != nil {
		s.log(ctx).Warn("remove property from index failed", zap.String("propertyId", id.String()), zap.Error(err))
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Lookup, error) {
	if id == uuid.Nil {
		return Lookup{}, ErrNotFound
	}
	return s.load(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slugValue string) (Lookup, bool, error) {
	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		return Lookup{}, false, nil
	}

	record, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		if errors.Is(err, persistence.ErrPropertyNotFound) {
			return Lookup{}, false, nil
		}
		return Lookup{}, false, err
	}
	return s.enrich(ctx, record), true, nil
}

// CheckTitleAvailability treats titles shorter than three characters as available
// without querying the store.
func (s *service) CheckTitleAvailability(ctx context.Context, title string, excludeID *uuid.UUID) (bool, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < minProbeTitleLength {
		return true, nil
	}

	taken, err := s.repo.TitleTaken(ctx, title, excludeID)
	if err != nil {
		return false, fmt.Errorf("check title availability: %w", err)
	}
	return !taken, nil
}

func (s *service) CheckSlugAvailability(ctx context.Context, slugValue string, excludeID *uuid.UUID) (bool, error) {
	taken, err := s.repo.SlugTaken(ctx, slugValue, excludeID)
	if err != nil {
		return false, fmt.Errorf("check slug availability: %w", err)
	}
	return !taken, nil
}

func (s *service) RetryCleanup(ctx context.Context, report CleanupReport) CleanupReport {
	report.Errors = nil
	return s.compensate(ctx, report)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (Lookup, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lookup{}, mapPersistenceError(err)
	}
	return s.enrich(ctx, record), nil
}

// assignSlug builds the composite slug from the referenced names and probes for a free variant.
func (s *service) assignSlug(ctx context.Context, input PropertyInput, excludeID *uuid.UUID) (string, error) {
	fieldErrors := FieldErrors{}

	typeName, err := s.lookups.PropertyTypeName(ctx, input.TypeID)
	if err != nil {
		if !errors.Is(err, persistence.ErrReferenceNotFound) {
			return "", fmt.Errorf("resolve property type: %w", err)
		}
		fieldErrors.add("typeId", "unknown property type")
	}
	cityName, err := s.lookups.CityName(ctx, input.CityID)
	if err != nil {
		if !errors.Is(err, persistence.ErrReferenceNotFound) {
			return "", fmt.Errorf("resolve city: %w", err)
		}
		fieldErrors.add("cityId", "unknown city")
	}
	var regionName *string
	if input.RegionID != nil {
		name, err := s.lookups.RegionName(ctx, *input.RegionID)
		if err != nil {
			if !errors.Is(err, persistence.ErrReferenceNotFound) {
				return "", fmt.Errorf("resolve region: %w", err)
			}
			fieldErrors.add("regionId", "unknown region")
		}
		regionName = &name
	}
	if len(fieldErrors) > 0 {
		return "", &ValidationError{Fields: fieldErrors}
	}

	base, err := slug.GeneratePropertySlug(typeName, cityName, input.Title, regionName)
	if err != nil {
		return "", newValidationError(map[string]string{"title": "title does not produce a usable slug"})
	}

	return s.cfg.Slugs.EnsureUnique(ctx, base, func(ctx context.Context, candidate string) (bool, error) {
		return s.CheckSlugAvailability(ctx, candidate, excludeID)
	})
}

func (s *service) index(ctx context.Context, l Lookup) {
	if err := s.indexer.IndexProperty(ctx, l); err != nil {
		s.log(ctx).Warn("index property failed", zap.String("propertyId", l.Property.ID.String()), zap.Error(err))
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	logger := logging.FromContextOr(ctx, s.logger)
	if audit, ok := requesttrace.FromContext(ctx); ok && audit.RequestID != "" {
		logger = logger.With(zap.String("requestId", audit.RequestID))
	}
	return logger
}

func slugInputsChanged(current persistence.PropertyRecord, input PropertyInput) bool {
	if strings.TrimSpace(current.Title) != strings.TrimSpace(input.Title) {
		return true
	}
	if current.TypeID != input.TypeID || current.CityID != input.CityID {
		return true
	}
	switch {
	case current.RegionID == nil && input.RegionID == nil:
		return false
	case current.RegionID == nil || input.RegionID == nil:
		return true
	default:
		return *current.RegionID != *input.RegionID
	}
}

func buildWrite(id uuid.UUID, ownerID, slugValue string, input PropertyInput) persistence.PropertyWrite {
	lon, _ := parseCoordinate(input.Longitude, 180)
	lat, _ := parseCoordinate(input.Latitude, 90)

	var address *string
	if input.Address != nil {
		if trimmed := strings.TrimSpace(*input.Address); trimmed != "" {
			address = &trimmed
		}
	}

	write := persistence.PropertyWrite{
		PropertyID:        id,
		OwnerID:           ownerID,
		Title:             strings.TrimSpace(input.Title),
		Slug:              slugValue,
		Description:       strings.TrimSpace(input.Description),
		Address:           address,
		Longitude:         lon,
		Latitude:          lat,
		TypeID:            input.TypeID,
		CityID:            input.CityID,
		RegionID:          input.RegionID,
		Bathrooms:         input.Bathrooms,
		Bedrooms:          input.Bedrooms,
		MaxGuests:         input.MaxGuests,
		Price:             input.Price,
		MinNights:         input.MinNights,
		EquipmentIDs:      input.EquipmentIDs,
		CharacteristicIDs: input.CharacteristicIDs,
		SmokingAllowed:    input.HouseRules.SmokingAllowed,
		PetsAllowed:       input.HouseRules.PetsAllowed,
		PartiesAllowed:    input.HouseRules.PartiesAllowed,
		ChildrenAllowed:   input.HouseRules.ChildrenAllowed,
		IsVisible:         input.IsVisible,
	}
	if input.Status != nil {
		status := string(*input.Status)
		write.Status = &status
	}
	return write
}

func mapProperty(record persistence.PropertyRecord) Property {
	return Property{
		ID:           record.PropertyID,
		OwnerID:      record.OwnerID,
		Title:        record.Title,
		Slug:         record.Slug,
		Description:  record.Description,
		Address:      record.Address,
		Longitude:    record.Longitude,
		Latitude:     record.Latitude,
		TypeID:       record.TypeID,
		CityID:       record.CityID,
		RegionID:     record.RegionID,
		Bathrooms:    record.Bathrooms,
		Bedrooms:     record.Bedrooms,
		MaxGuests:    record.MaxGuests,
		Price:        record.Price,
		MinNights:    record.MinNights,
		Images:       record.Images,
		EquipmentIDs: record.EquipmentIDs,
		HouseRules: HouseRules{
			SmokingAllowed:  record.SmokingAllowed,
			PetsAllowed:     record.PetsAllowed,
			PartiesAllowed:  record.PartiesAllowed,
			ChildrenAllowed: record.ChildrenAllowed,
		},
		Status:    Status(record.Status),
		IsVisible: record.IsVisible,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
