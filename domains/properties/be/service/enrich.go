package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
)

// Placeholders shown when a display lookup fails.
const (
	PlaceholderType   = "Type non spécifié"
	PlaceholderCity   = "Ville non spécifiée"
	PlaceholderRegion = "Région non spécifiée"
	PlaceholderOwner  = "Propriétaire"
)

// enrich resolves display data one lookup at a time. It never fails; each failed
// lookup leaves a placeholder and a Degraded entry.
func (s *service) enrich(ctx context.Context, record persistence.PropertyRecord) Lookup {
	result := Lookup{Property: mapProperty(record)}
	degrade := func(field string, err error) {
		result.Degraded = append(result.Degraded, EnrichmentFailure{Field: field, Reason: err.Error()})
		s.log(ctx).Debug("property enrichment degraded",
			zap.String("propertyId", record.PropertyID.String()),
			zap.String("field", field),
			zap.Error(err),
		)
	}

	if name, err := s.lookups.PropertyTypeName(ctx, record.TypeID); err != nil {
		result.Display.TypeName = PlaceholderType
		degrade("typeName", err)
	} else {
		result.Display.TypeName = name
	}

	if name, err := s.lookups.CityName(ctx, record.CityID); err != nil {
		result.Display.CityName = PlaceholderCity
		degrade("cityName", err)
	} else {
		result.Display.CityName = name
	}

	if record.RegionID != nil {
		if name, err := s.lookups.RegionName(ctx, *record.RegionID); err != nil {
			result.Display.RegionName = PlaceholderRegion
			degrade("regionName", err)
		} else {
			result.Display.RegionName = name
		}
	}

	result.Display.OwnerName = PlaceholderOwner
	result.Display.OwnerLanguages = []string{}
	if profile, err := s.lookups.Profile(ctx, record.OwnerID); err != nil {
		degrade("owner", err)
	} else {
		if profile.FullName != nil && *profile.FullName != "" {
			result.Display.OwnerName = *profile.FullName
		}
		result.Display.OwnerAvatarURL = profile.AvatarURL
		if profile.Languages != nil {
			result.Display.OwnerLanguages = profile.Languages
		}
	}

	if ids, err := s.repo.CharacteristicIDs(ctx, record.PropertyID); err != nil {
		degrade("characteristicIds", err)
	} else {
		result.Property.CharacteristicIDs = ids
	}
	if result.Property.CharacteristicIDs == nil {
		result.Property.CharacteristicIDs = []uuid.UUID{}
	}

	return result
}
