package booking

import (
	"time"

	"homestay/internal/pkg/clock"

	"github.com/google/uuid"
)

// PropertySpec is the write-side snapshot of the property a booking is made
// against, so the domain never depends on read-model types.
type PropertySpec struct {
	ID            uuid.UUID
	NightlyRate   float64
	CleaningFee   float64
	MaxGuests     int
	MinStayNights int
	MaxStayNights int
	Policy        CancellationPolicy
}

type Factory struct {
	Clock clock.Clock
}

func NewFactory(clock clock.Clock) *Factory {
	return &Factory{Clock: clock}
}

// CreateBooking validates the request against the property spec and produces
// a pending booking with a freshly computed price breakdown, a policy
// snapshot and a generated confirmation code. It does not touch storage;
// commit-time conflict detection belongs to the store insert.
func (f *Factory) CreateBooking(
	prop PropertySpec,
	renterID uuid.UUID,
	start, end time.Time,
	guestCount int,
) (*Booking, error) {
	dates, err := NewDateRange(start, end)
	if err != nil {
		return nil, err
	}

	now := f.Clock.Now()
	if !dates.Start().After(now) {
		return nil, ErrStartNotFuture
	}
	if guestCount < 1 || guestCount > prop.MaxGuests {
		return nil, ErrGuestCount
	}
	nights := dates.Nights()
	if prop.MinStayNights > 0 && nights < prop.MinStayNights {
		return nil, ErrStayTooShort
	}
	if prop.MaxStayNights > 0 && nights > prop.MaxStayNights {
		return nil, ErrStayTooLong
	}
	if !prop.Policy.isKnown() {
		return nil, ErrUnknownPolicy
	}

	price := priceForRange(prop.NightlyRate, prop.CleaningFee, dates)

	return &Booking{
		id:               uuid.New(),
		propertyID:       prop.ID,
		renterID:         renterID,
		dates:            dates,
		guestCount:       guestCount,
		status:           StatusPending,
		price:            price,
		policy:           prop.Policy,
		confirmationCode: GenerateConfirmationCode(),
		createdAt:        now,
	}, nil
}

func (p CancellationPolicy) isKnown() bool {
	_, err := ParseCancellationPolicy(string(p))
	return err == nil
}
