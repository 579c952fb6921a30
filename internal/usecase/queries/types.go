package queries

import (
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/payment"

	"github.com/google/uuid"
)

// Read-side views are flat and denormalized; they never expose domain
// entities across the handler boundary.

type BookingView struct {
	ID                 uuid.UUID
	PropertyID         uuid.UUID
	PropertyTitle      string
	RenterID           uuid.UUID
	StartDate          time.Time
	EndDate            time.Time
	Nights             int
	GuestCount         int
	Status             booking.Status
	Price              booking.PriceBreakdown
	Policy             booking.CancellationPolicy
	ConfirmationCode   string
	CancellationReason *string
	CreatedAt          time.Time
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	CompletedAt        *time.Time
}

type BookingListItem struct {
	ID            uuid.UUID
	PropertyID    uuid.UUID
	PropertyTitle string
	StartDate     time.Time
	EndDate       time.Time
	Status        booking.Status
	Total         float64
	CreatedAt     time.Time
}

type PaymentView struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	RenterID      uuid.UUID
	Amount        float64
	ProcessingFee float64
	TotalCharged  float64
	Currency      string
	Provider      string
	ExternalRef   string
	Status        payment.Status
	Metadata      payment.Metadata
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}
