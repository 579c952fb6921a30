package property

import (
	"errors"

	"homestay/internal/domain/booking"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle     = errors.New("property title cannot be empty")
	ErrInvalidRate    = errors.New("nightly rate must be positive")
	ErrInvalidGuests  = errors.New("max guests must be positive")
	ErrInvalidStay    = errors.New("stay bounds must be non-negative and ordered")
	ErrInvalidFee     = errors.New("cleaning fee cannot be negative")
)

type Property struct {
	id            uuid.UUID
	ownerID       uuid.UUID
	title         string
	nightlyRate   float64
	cleaningFee   float64
	maxGuests     int
	minStayNights int
	maxStayNights int
	policy        booking.CancellationPolicy
}

func NewProperty(
	id, ownerID uuid.UUID,
	title string,
	nightlyRate, cleaningFee float64,
	maxGuests, minStayNights, maxStayNights int,
	policy booking.CancellationPolicy,
) (*Property, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if nightlyRate <= 0 {
		return nil, ErrInvalidRate
	}
	if cleaningFee < 0 {
		return nil, ErrInvalidFee
	}
	if maxGuests <= 0 {
		return nil, ErrInvalidGuests
	}
	if minStayNights < 0 || maxStayNights < 0 || (maxStayNights > 0 && minStayNights > maxStayNights) {
		return nil, ErrInvalidStay
	}
	if _, err := booking.ParseCancellationPolicy(policy.String()); err != nil {
		return nil, err
	}
	return &Property{
		id:            id,
		ownerID:       ownerID,
		title:         title,
		nightlyRate:   nightlyRate,
		cleaningFee:   cleaningFee,
		maxGuests:     maxGuests,
		minStayNights: minStayNights,
		maxStayNights: maxStayNights,
		policy:        policy,
	}, nil
}

// Spec snapshots the booking-relevant attributes for the booking factory.
func (p *Property) Spec() booking.PropertySpec {
	return booking.PropertySpec{
		ID:            p.id,
		NightlyRate:   p.nightlyRate,
		CleaningFee:   p.cleaningFee,
		MaxGuests:     p.maxGuests,
		MinStayNights: p.minStayNights,
		MaxStayNights: p.maxStayNights,
		Policy:        p.policy,
	}
}

func (p *Property) ID() uuid.UUID                       { return p.id }
func (p *Property) OwnerID() uuid.UUID                  { return p.ownerID }
func (p *Property) Title() string                       { return p.title }
func (p *Property) NightlyRate() float64                { return p.nightlyRate }
func (p *Property) CleaningFee() float64                { return p.cleaningFee }
func (p *Property) MaxGuests() int                      { return p.maxGuests }
func (p *Property) MinStayNights() int                  { return p.minStayNights }
func (p *Property) MaxStayNights() int                  { return p.maxStayNights }
func (p *Property) Policy() booking.CancellationPolicy  { return p.policy }
