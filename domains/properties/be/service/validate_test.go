package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validInput() PropertyInput {
	return PropertyInput{
		Title:       "Dar El Bahr",
		Description: "Maison de pecheur renovee a deux pas de la plage",
		Longitude:   "10.1815",
		Latitude:    "36.8065",
		TypeID:      uuid.New(),
		CityID:      uuid.New(),
		Bathrooms:   1,
		Bedrooms:    2,
		MaxGuests:   4,
		Price:       90,
		MinNights:   3,
	}
}

func TestValidateAcceptsValidInput(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(validInput()))

	input := validInput()
	blank := "   "
	input.Address = &blank
	require.NoError(t, Validate(input), "blank address is treated as absent")

	input.Longitude = "-180"
	input.Latitude = "90.0"
	require.NoError(t, Validate(input))
}

func TestValidateFieldRules(t *testing.T) {
	t.Parallel()

	short := "ab"
	long := strings.Repeat("a", MaxAddressLength+1)
	bogus := Status("archived")

	tests := []struct {
		name   string
		mutate func(*PropertyInput)
		field  string
	}{
		{name: "short title", mutate: func(p *PropertyInput) { p.Title = " Dar " }, field: "title"},
		{name: "short description", mutate: func(p *PropertyInput) { p.Description = "Trop court" }, field: "description"},
		{name: "no guests", mutate: func(p *PropertyInput) { p.MaxGuests = 0 }, field: "maxGuests"},
		{name: "too many guests", mutate: func(p *PropertyInput) { p.MaxGuests = 51 }, field: "maxGuests"},
		{name: "bedrooms", mutate: func(p *PropertyInput) { p.Bedrooms = 21 }, field: "bedrooms"},
		{name: "bathrooms", mutate: func(p *PropertyInput) { p.Bathrooms = 0 }, field: "bathrooms"},
		{name: "price at floor", mutate: func(p *PropertyInput) { p.Price = 10 }, field: "price"},
		{name: "min nights", mutate: func(p *PropertyInput) { p.MinNights = 366 }, field: "minNights"},
		{name: "short address", mutate: func(p *PropertyInput) { p.Address = &short }, field: "address"},
		{name: "long address", mutate: func(p *PropertyInput) { p.Address = &long }, field: "address"},
		{name: "missing longitude", mutate: func(p *PropertyInput) { p.Longitude = "" }, field: "longitude"},
		{name: "longitude format", mutate: func(p *PropertyInput) { p.Longitude = "10,5" }, field: "longitude"},
		{name: "longitude exponent", mutate: func(p *PropertyInput) { p.Longitude = "1e2" }, field: "longitude"},
		{name: "longitude range", mutate: func(p *PropertyInput) { p.Longitude = "180.5" }, field: "longitude"},
		{name: "latitude range", mutate: func(p *PropertyInput) { p.Latitude = "-91" }, field: "latitude"},
		{name: "latitude sign only", mutate: func(p *PropertyInput) { p.Latitude = "-" }, field: "latitude"},
		{name: "type", mutate: func(p *PropertyInput) { p.TypeID = uuid.Nil }, field: "typeId"},
		{name: "city", mutate: func(p *PropertyInput) { p.CityID = uuid.Nil }, field: "cityId"},
		{name: "status", mutate: func(p *PropertyInput) { p.Status = &bogus }, field: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := validInput()
			tt.mutate(&input)

			err := Validate(input)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			require.Contains(t, validationErr.Fields, tt.field)
			require.Len(t, validationErr.Fields, 1)
		})
	}
}

func TestValidateCollectsEveryField(t *testing.T) {
	t.Parallel()

	err := Validate(PropertyInput{})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))

	for _, field := range []string{"title", "description", "maxGuests", "bedrooms", "bathrooms", "price", "minNights", "longitude", "latitude", "typeId", "cityId"} {
		require.Contains(t, validationErr.Fields, field)
	}
	require.NotContains(t, validationErr.Fields, "address")
}
