// Package indexing publishes written listings to the search index.
package indexing

import (
	"context"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-rentals/domains/properties/be/service"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/search"
)

const (
	IndexUID   = "properties"
	PrimaryKey = "id"
)

// Settings returns the index layout used for listings.
func Settings() search.IndexSettings {
	return search.IndexSettings{
		UID:        IndexUID,
		PrimaryKey: PrimaryKey,
		Searchable: []string{"title", "description", "typeName", "cityName", "regionName"},
		Filterable: []string{"typeId", "cityId", "regionId", "status", "isVisible", "maxGuests", "bedrooms", "price", "_geo"},
		Sortable:   []string{"price", "createdAt", "_geo"},
	}
}

// Writer is the document sink; *search.Indexer satisfies it.
type Writer interface {
	Upsert(doc any) error
	Delete(id string) error
}

type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Document is the search representation of a listing.
type Document struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TypeID      string   `json:"typeId"`
	TypeName    string   `json:"typeName,omitempty"`
	CityID      string   `json:"cityId"`
	CityName    string   `json:"cityName,omitempty"`
	RegionID    *string  `json:"regionId,omitempty"`
	RegionName  string   `json:"regionName,omitempty"`
	Price       float64  `json:"price"`
	MaxGuests   int      `json:"maxGuests"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Status      string   `json:"status"`
	IsVisible   bool     `json:"isVisible"`
	Cover       *string  `json:"cover,omitempty"`
	Images      []string `json:"images"`
	Geo         Geo      `json:"_geo"`
	CreatedAt   int64    `json:"createdAt"`
}

// NewDocument flattens a listing. Names that fell back to a placeholder are left out.
func NewDocument(l service.Lookup) Document {
	p := l.Property
	degraded := make(map[string]struct{}, len(l.Degraded))
	for _, d := range l.Degraded {
		degraded[d.Field] = struct{}{}
	}
	name := func(field, value string) string {
		if _, ok := degraded[field]; ok {
			return ""
		}
		return value
	}

	doc := Document{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		TypeID:      p.TypeID.String(),
		TypeName:    name("typeName", l.Display.TypeName),
		CityID:      p.CityID.String(),
		CityName:    name("cityName", l.Display.CityName),
		RegionName:  name("regionName", l.Display.RegionName),
		Price:       p.Price,
		MaxGuests:   p.MaxGuests,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Status:      string(p.Status),
		IsVisible:   p.IsVisible,
		Images:      append([]string{}, p.Images...),
		Geo:         Geo{Lat: p.Latitude, Lng: p.Longitude},
		CreatedAt:   p.CreatedAt.Unix(),
	}
	if p.RegionID != nil {
		region := p.RegionID.String()
		doc.RegionID = &region
	}
	if len(p.Images) > 0 {
		cover := p.Images[0]
		doc.Cover = &cover
	}
	return doc
}

// PropertyIndexer adapts a Writer to the service's Indexer.
type PropertyIndexer struct {
	w Writer
}

// New returns an indexer writing through w.
func New(w Writer) *PropertyIndexer {
	if w == nil {
		panic("search writer is required")
	}
	return &PropertyIndexer{w: w}
}

func (p *PropertyIndexer) IndexProperty(_ context.Context, l service.Lookup) error {
	return p.w.Upsert(NewDocument(l))
}

func (p *PropertyIndexer) RemoveProperty(_ context.Context, id uuid.UUID) error {
	return p.w.Delete(id.String())
}

var _ service.Indexer = (*PropertyIndexer)(nil)
