package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinTitleLength       = 5
	MinDescriptionLength = 20
	MinAddressLength     = 3
	MaxAddressLength     = 500
	MinPrice             = 10
	MinImages            = 5
	MaxImages            = 20
)

var coordinatePattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Validate checks the field-level constraints of a listing payload. It performs no I/O.
func Validate(input PropertyInput) error {
	fieldErrors := FieldErrors{}

	if utf8.RuneCountInString(strings.TrimSpace(input.Title)) < MinTitleLength {
		fieldErrors.add("title", fmt.Sprintf("title must be at least %d characters", MinTitleLength))
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.Description)) < MinDescriptionLength {
		fieldErrors.add("description", fmt.Sprintf("description must be at least %d characters", MinDescriptionLength))
	}

	checkRange(fieldErrors, "maxGuests", input.MaxGuests, 1, 50)
	checkRange(fieldErrors, "bedrooms", input.Bedrooms, 1, 20)
	checkRange(fieldErrors, "bathrooms", input.Bathrooms, 1, 20)
	checkRange(fieldErrors, "minNights", input.MinNights, 1, 365)

	if input.Price <= MinPrice {
		fieldErrors.add("price", fmt.Sprintf("price must be greater than %d", MinPrice))
	}

	if input.Address != nil {
		if address := strings.TrimSpace(*input.Address); address != "" {
			n := utf8.RuneCountInString(address)
			if n < MinAddressLength || n > MaxAddressLength {
				fieldErrors.add("address", fmt.Sprintf("address must be between %d and %d characters", MinAddressLength, MaxAddressLength))
			}
		}
	}

	if _, msg := parseCoordinate(input.Longitude, 180); msg != "" {
		fieldErrors.add("longitude", "longitude "+msg)
	}
	if _, msg := parseCoordinate(input.Latitude, 90); msg != "" {
		fieldErrors.add("latitude", "latitude "+msg)
	}

	if input.TypeID == uuid.Nil {
		fieldErrors.add("typeId", "typeId is required")
	}
	if input.CityID == uuid.Nil {
		fieldErrors.add("cityId", "cityId is required")
	}
	if input.Status != nil && !input.Status.Valid() {
		fieldErrors.add("status", fmt.Sprintf("unsupported status %q", *input.Status))
	}

	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}
	return nil
}

func checkRange(fe FieldErrors, field string, v, lo, hi int) {
	if v < lo || v > hi {
		fe.add(field, fmt.Sprintf("%s must be between %d and %d", field, lo, hi))
	}
}

// parseCoordinate returns the parsed value or a message describing why raw is not a
// signed decimal within ±limit.
func parseCoordinate(raw string, limit float64) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "is required"
	}
	if !coordinatePattern.MatchString(raw) {
		return 0, "must be a decimal number"
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, "must be a decimal number"
	}
	if v < -limit || v > limit {
		return 0, fmt.Sprintf("must be between %g and %g", -limit, limit)
	}
	return v, ""
}
