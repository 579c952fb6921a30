package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrStartNotFuture    = errors.New("start date must be in the future")
	ErrGuestCount        = errors.New("guest count exceeds property capacity")
	ErrStayTooShort      = errors.New("stay is shorter than the property minimum")
	ErrStayTooLong       = errors.New("stay is longer than the property maximum")
)

type Booking struct {
	id                 uuid.UUID
	propertyID         uuid.UUID
	renterID           uuid.UUID
	dates              DateRange
	guestCount         int
	status             Status
	price              PriceBreakdown
	policy             CancellationPolicy
	confirmationCode   ConfirmationCode
	cancellationReason string
	cancelledBy        *uuid.UUID
	createdAt          time.Time
	confirmedAt        *time.Time
	cancelledAt        *time.Time
	completedAt        *time.Time
}

func ReconstructBooking(
	id, propertyID, renterID uuid.UUID,
	dates DateRange,
	guestCount int,
	status Status,
	price PriceBreakdown,
	policy CancellationPolicy,
	confirmationCode ConfirmationCode,
	cancellationReason string,
	cancelledBy *uuid.UUID,
	createdAt time.Time,
	confirmedAt, cancelledAt, completedAt *time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		propertyID:         propertyID,
		renterID:           renterID,
		dates:              dates,
		guestCount:         guestCount,
		status:             status,
		price:              price,
		policy:             policy,
		confirmationCode:   confirmationCode,
		cancellationReason: cancellationReason,
		cancelledBy:        cancelledBy,
		createdAt:          createdAt,
		confirmedAt:        confirmedAt,
		cancelledAt:        cancelledAt,
		completedAt:        completedAt,
	}
}

// Confirm moves a pending booking to confirmed. Confirming an already
// confirmed booking is a no-op so that a webhook racing a client poll cannot
// fail on the second delivery.
func (b *Booking) Confirm(now time.Time) error {
	switch b.status {
	case StatusConfirmed:
		return nil
	case StatusPending:
		b.status = StatusConfirmed
		b.confirmedAt = &now
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Cancel is idempotent: cancelling an already cancelled booking succeeds
// silently. A completed stay can no longer be cancelled.
func (b *Booking) Cancel(now time.Time, reason string, actor uuid.UUID) error {
	switch b.status {
	case StatusCancelled:
		return nil
	case StatusPending, StatusConfirmed:
		b.status = StatusCancelled
		b.cancelledAt = &now
		b.cancellationReason = reason
		b.cancelledBy = &actor
		return nil
	default:
		return ErrInvalidTransition
	}
}

func (b *Booking) Complete(now time.Time) error {
	switch b.status {
	case StatusCompleted:
		return nil
	case StatusConfirmed:
		b.status = StatusCompleted
		b.completedAt = &now
		return nil
	default:
		return ErrInvalidTransition
	}
}

func (b *Booking) IsBlocking() bool {
	return b.status.IsBlocking()
}

func (b *Booking) CheckIn() time.Time {
	return b.dates.Start()
}

func (b *Booking) ID() uuid.UUID                      { return b.id }
func (b *Booking) PropertyID() uuid.UUID              { return b.propertyID }
func (b *Booking) RenterID() uuid.UUID                { return b.renterID }
func (b *Booking) Dates() DateRange                   { return b.dates }
func (b *Booking) GuestCount() int                    { return b.guestCount }
func (b *Booking) Status() Status                     { return b.status }
func (b *Booking) Price() PriceBreakdown              { return b.price }
func (b *Booking) Policy() CancellationPolicy         { return b.policy }
func (b *Booking) ConfirmationCode() ConfirmationCode { return b.confirmationCode }
func (b *Booking) CancellationReason() string         { return b.cancellationReason }
func (b *Booking) CancelledBy() *uuid.UUID            { return b.cancelledBy }
func (b *Booking) CreatedAt() time.Time               { return b.createdAt }
func (b *Booking) ConfirmedAt() *time.Time            { return b.confirmedAt }
func (b *Booking) CancelledAt() *time.Time            { return b.cancelledAt }
func (b *Booking) CompletedAt() *time.Time            { return b.completedAt }
