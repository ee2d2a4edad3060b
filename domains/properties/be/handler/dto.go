package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-rentals/domains/properties/be/service"
)

// coordinate keeps the submitted text so the service can check its format.
// Both JSON strings and numbers are accepted.
type coordinate string

func (c *coordinate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = coordinate(s)
		return nil
	}
	*c = coordinate(b)
	return nil
}

type houseRules struct {
	SmokingAllowed  bool `json:"smokingAllowed"`
	PetsAllowed     bool `json:"petsAllowed"`
	PartiesAllowed  bool `json:"partiesAllowed"`
	ChildrenAllowed bool `json:"childrenAllowed"`
}

type propertyPayload struct {
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Address           *string     `json:"address,omitempty"`
	Longitude         coordinate  `json:"longitude"`
	Latitude          coordinate  `json:"latitude"`
	TypeID            uuid.UUID   `json:"typeId"`
	CityID            uuid.UUID   `json:"cityId"`
	RegionID          *uuid.UUID  `json:"regionId,omitempty"`
	Bathrooms         int         `json:"bathrooms"`
	Bedrooms          int         `json:"bedrooms"`
	MaxGuests         int         `json:"maxGuests"`
	Price             float64     `json:"price"`
	MinNights         int         `json:"minNights"`
	EquipmentIDs      []uuid.UUID `json:"equipmentIds,omitempty"`
	CharacteristicIDs []uuid.UUID `json:"characteristicIds,omitempty"`
	HouseRules        houseRules  `json:"houseRules"`
	Status            *string     `json:"status,omitempty"`
	IsVisible         *bool       `json:"isVisible,omitempty"`
	// update only; absent keeps every current image
	FinalImageURLs []string `json:"finalImageUrls,omitempty"`
}

func (p propertyPayload) toInput() service.PropertyInput {
	input := service.PropertyInput{
		Title:             p.Title,
		Description:       p.Description,
		Address:           p.Address,
		Longitude:         string(p.Longitude),
		Latitude:          string(p.Latitude),
		TypeID:            p.TypeID,
		CityID:            p.CityID,
		RegionID:          p.RegionID,
		Bathrooms:         p.Bathrooms,
		Bedrooms:          p.Bedrooms,
		MaxGuests:         p.MaxGuests,
		Price:             p.Price,
		MinNights:         p.MinNights,
		EquipmentIDs:      p.EquipmentIDs,
		CharacteristicIDs: p.CharacteristicIDs,
		HouseRules: service.HouseRules{
			SmokingAllowed:  p.HouseRules.SmokingAllowed,
			PetsAllowed:     p.HouseRules.PetsAllowed,
			PartiesAllowed:  p.HouseRules.PartiesAllowed,
			ChildrenAllowed: p.HouseRules.ChildrenAllowed,
		},
		IsVisible: p.IsVisible,
	}
	if p.Status != nil {
		status := service.Status(*p.Status)
		input.Status = &status
	}
	return input
}

type ownerDTO struct {
	Name      string   `json:"name"`
	AvatarURL *string  `json:"avatarUrl,omitempty"`
	Languages []string `json:"languages"`
}

type degradedDTO struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type propertyResponse struct {
	ID                uuid.UUID     `json:"id"`
	OwnerID           string        `json:"ownerId"`
	Title             string        `json:"title"`
	Slug              string        `json:"slug"`
	Description       string        `json:"description"`
	Address           *string       `json:"address,omitempty"`
	Longitude         float64       `json:"longitude"`
	Latitude          float64       `json:"latitude"`
	TypeID            uuid.UUID     `json:"typeId"`
	TypeName          string        `json:"typeName"`
	CityID            uuid.UUID     `json:"cityId"`
	CityName          string        `json:"cityName"`
	RegionID          *uuid.UUID    `json:"regionId,omitempty"`
	RegionName        string        `json:"regionName,omitempty"`
	Bathrooms         int           `json:"bathrooms"`
	Bedrooms          int           `json:"bedrooms"`
	MaxGuests         int           `json:"maxGuests"`
	Price             float64       `json:"price"`
	MinNights         int           `json:"minNights"`
	Images            []string      `json:"images"`
	EquipmentIDs      []uuid.UUID   `json:"equipmentIds"`
	CharacteristicIDs []uuid.UUID   `json:"characteristicIds"`
	HouseRules        houseRules    `json:"houseRules"`
	Status            string        `json:"status"`
	IsVisible         bool          `json:"isVisible"`
	Owner             ownerDTO      `json:"owner"`
	Degraded          []degradedDTO `json:"degraded"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func toAPIProperty(l service.Lookup) propertyResponse {
	p := l.Property
	resp := propertyResponse{
		ID:                p.ID,
		OwnerID:           p.OwnerID,
		Title:             p.Title,
		Slug:              p.Slug,
		Description:       p.Description,
		Address:           p.Address,
		Longitude:         p.Longitude,
		Latitude:          p.Latitude,
		TypeID:            p.TypeID,
		TypeName:          l.Display.TypeName,
		CityID:            p.CityID,
		CityName:          l.Display.CityName,
		RegionID:          p.RegionID,
		RegionName:        l.Display.RegionName,
		Bathrooms:         p.Bathrooms,
		Bedrooms:          p.Bedrooms,
		MaxGuests:         p.MaxGuests,
		Price:             p.Price,
		MinNights:         p.MinNights,
		Images:            nonNil(p.Images),
		EquipmentIDs:      nonNil(p.EquipmentIDs),
		CharacteristicIDs: nonNil(p.CharacteristicIDs),
		HouseRules: houseRules{
			SmokingAllowed:  p.HouseRules.SmokingAllowed,
			PetsAllowed:     p.HouseRules.PetsAllowed,
			PartiesAllowed:  p.HouseRules.PartiesAllowed,
			ChildrenAllowed: p.HouseRules.ChildrenAllowed,
		},
		Status:    string(p.Status),
		IsVisible: p.IsVisible,
		Owner: ownerDTO{
			Name:      l.Display.OwnerName,
			AvatarURL: l.Display.OwnerAvatarURL,
			Languages: nonNil(l.Display.OwnerLanguages),
		},
		Degraded:  make([]degradedDTO, 0, len(l.Degraded)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, d := range l.Degraded {
		resp.Degraded = append(resp.Degraded, degradedDTO{Field: d.Field, Reason: d.Reason})
	}
	return resp
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type validateSlugRequest struct {
	Slug string `json:"slug"`
}

type validateSlugResponse struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Keywords []string `json:"keywords"`
}
