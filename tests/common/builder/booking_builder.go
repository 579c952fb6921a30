//go:build unit || e2e

package builder

import (
	"time"

	"homestay/internal/domain/booking"

	"github.com/google/uuid"
)

// BaseTime is the reference "now" for builder-produced entities. Tests that
// care about time pass a MockClock seeded with it.
var BaseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type BookingBuilder struct {
	ID                 uuid.UUID
	PropertyID         uuid.UUID
	RenterID           uuid.UUID
	StartDate          time.Time
	EndDate            time.Time
	GuestCount         int
	Status             booking.Status
	Price              booking.PriceBreakdown
	Policy             booking.CancellationPolicy
	ConfirmationCode   booking.ConfirmationCode
	CancellationReason string
	CancelledBy        *uuid.UUID
	CreatedAt          time.Time
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	CompletedAt        *time.Time
}

func NewBookingBuilder() *BookingBuilder {
	start := BaseTime.AddDate(0, 0, 30).Truncate(24 * time.Hour)
	return &BookingBuilder{
		ID:         uuid.New(),
		PropertyID: uuid.New(),
		RenterID:   uuid.New(),
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 3),
		GuestCount: 2,
		Status:     booking.StatusPending,
		Price: booking.PriceBreakdown{
			Nights:      3,
			Subtotal:    300.0,
			CleaningFee: 50.0,
			ServiceFee:  30.0,
			Taxes:       39.6,
			Total:       419.6,
		},
		Policy:           booking.PolicyModerate,
		ConfirmationCode: booking.ConfirmationCode("HMGTEST01"),
		CreatedAt:        BaseTime,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) Confirmed() *BookingBuilder {
	at := b.CreatedAt.Add(time.Hour)
	b.Status = booking.StatusConfirmed
	b.ConfirmedAt = &at
	return b
}

func (b *BookingBuilder) Cancelled() *BookingBuilder {
	at := b.CreatedAt.Add(2 * time.Hour)
	b.Status = booking.StatusCancelled
	b.CancelledAt = &at
	b.CancellationReason = "change of plans"
	actor := b.RenterID
	b.CancelledBy = &actor
	return b
}

func (b *BookingBuilder) Completed() *BookingBuilder {
	at := b.EndDate.Add(12 * time.Hour)
	b.Status = booking.StatusCompleted
	b.CompletedAt = &at
	return b
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	dates, err := booking.NewDateRange(b.StartDate, b.EndDate)
	if err != nil {
		return nil, err
	}
	return booking.ReconstructBooking(
		b.ID, b.PropertyID, b.RenterID,
		dates,
		b.GuestCount,
		b.Status,
		b.Price,
		b.Policy,
		b.ConfirmationCode,
		b.CancellationReason,
		b.CancelledBy,
		b.CreatedAt,
		b.ConfirmedAt, b.CancelledAt, b.CompletedAt,
	), nil
}
