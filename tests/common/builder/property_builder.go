//go:build unit || e2e

package builder

import (
	"homestay/internal/domain/booking"
	"homestay/internal/domain/property"

	"github.com/google/uuid"
)

type PropertyBuilder struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Title         string
	NightlyRate   float64
	CleaningFee   float64
	MaxGuests     int
	MinStayNights int
	MaxStayNights int
	Policy        booking.CancellationPolicy
}

func NewPropertyBuilder() *PropertyBuilder {
	return &PropertyBuilder{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		Title:         "Seaside Cottage",
		NightlyRate:   100.0,
		CleaningFee:   50.0,
		MaxGuests:     4,
		MinStayNights: 1,
		MaxStayNights: 30,
		Policy:        booking.PolicyModerate,
	}
}

func (b *PropertyBuilder) With(mutate func(*PropertyBuilder)) *PropertyBuilder {
	mutate(b)
	return b
}

func (b *PropertyBuilder) BuildDomain() (*property.Property, error) {
	return property.NewProperty(
		b.ID, b.OwnerID, b.Title,
		b.NightlyRate, b.CleaningFee,
		b.MaxGuests, b.MinStayNights, b.MaxStayNights,
		b.Policy,
	)
}

func (b *PropertyBuilder) BuildSpec() booking.PropertySpec {
	return booking.PropertySpec{
		ID:            b.ID,
		NightlyRate:   b.NightlyRate,
		CleaningFee:   b.CleaningFee,
		MaxGuests:     b.MaxGuests,
		MinStayNights: b.MinStayNights,
		MaxStayNights: b.MaxStayNights,
		Policy:        b.Policy,
	}
}
