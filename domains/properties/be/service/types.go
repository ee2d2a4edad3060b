package service

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Status is the listing lifecycle state. Transitions are governed by admins.
type Status string

const (
	StatusPendingPayment  Status = "pending_payment"
	StatusPendingApproval Status = "pending_approval"
	StatusActive          Status = "active"
	StatusInactive        Status = "inactive"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPendingApproval, StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

// HouseRules groups the boolean rule flags shown on a listing.
type HouseRules struct {
	SmokingAllowed  bool
	PetsAllowed     bool
	PartiesAllowed  bool
	ChildrenAllowed bool
}

// Property represents the domain view of a listing.
type Property struct {
	ID                uuid.UUID
	OwnerID           string
	Title             string
	Slug              string
	Description       string
	Address           *string
	Longitude         float64
	Latitude          float64
	TypeID            uuid.UUID
	CityID            uuid.UUID
	RegionID          *uuid.UUID
	Bathrooms         int
	Bedrooms          int
	MaxGuests         int
	Price             float64
	MinNights         int
	Images            []string
	EquipmentIDs      []uuid.UUID
	CharacteristicIDs []uuid.UUID
	HouseRules        HouseRules
	Status            Status
	IsVisible         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PropertyInput is the payload for create and update. Coordinates stay as
// submitted so their format can be checked before parsing.
type PropertyInput struct {
	Title             string
	Description       string
	Address           *string
	Longitude         string
	Latitude          string
	TypeID            uuid.UUID
	CityID            uuid.UUID
	RegionID          *uuid.UUID
	Bathrooms         int
	Bedrooms          int
	MaxGuests         int
	Price             float64
	MinNights         int
	EquipmentIDs      []uuid.UUID
	CharacteristicIDs []uuid.UUID
	HouseRules        HouseRules

	// Admin only; ignored on the owner path.
	Status    *Status
	IsVisible *bool
}

// Photo is an uploaded image waiting to be stored.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Display carries the denormalized names shown next to a listing.
type Display struct {
	TypeName       string
	CityName       string
	RegionName     string
	OwnerName      string
	OwnerAvatarURL *string
	OwnerLanguages []string
}

// EnrichmentFailure records a display lookup that fell back to a placeholder.
type EnrichmentFailure struct {
	Field  string
	Reason string
}

// Lookup is a listing read together with its display data.
type Lookup struct {
	Property Property
	Display  Display
	Degraded []EnrichmentFailure
}

// Complete reports whether every display lookup succeeded.
func (l Lookup) Complete() bool {
	return len(l.Degraded) == 0
}

// CleanupReport describes the outcome of a compensation run.
type CleanupReport struct {
	PropertyID uuid.UUID
	// KeepRecord is set when compensating an update; the row must survive.
	KeepRecord      bool
	RecordDeleted   bool
	RemainingImages []string
	Errors          []string
}

// Clean reports whether compensation left nothing behind.
func (r CleanupReport) Clean() bool {
	return len(r.RemainingImages) == 0 && len(r.Errors) == 0 && (r.KeepRecord || r.RecordDeleted)
}
