package commands

import (
	"context"
	"log/slog"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/infra"
	"homestay/internal/pkg/clock"
	"homestay/internal/pkg/errs"

	"github.com/google/uuid"
)

type CreateBookingParams struct {
	PropertyID uuid.UUID
	RenterID   uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	GuestCount int
}

// BookingCommands owns the booking lifecycle. Bookings are never deleted;
// cancelled and completed rows stay behind for audit and refund history.
type BookingCommands interface {
	Create(ctx context.Context, params CreateBookingParams) (*booking.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, reason string, actor uuid.UUID) error
	Complete(ctx context.Context, bookingID uuid.UUID) error
}

type bookingCommandsImpl struct {
	propertyRepo PropertyStore
	uow          UnitOfWork
	factory      *booking.Factory
	coordinator  Coordinator
	clock        clock.Clock
}

func NewBookingCommands(
	propertyRepo PropertyStore,
	uow UnitOfWork,
	factory *booking.Factory,
	coordinator Coordinator,
	clock clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		propertyRepo: propertyRepo,
		uow:          uow,
		factory:      factory,
		coordinator:  coordinator,
		clock:        clock,
	}
}

// Create validates the request, prices the stay and inserts the booking as
// pending. The overlap re-check and the insert run in one transaction backed
// by a range-exclusion constraint, so losing a race for the same dates
// surfaces as ErrDateConflict rather than a double booking.
func (c *bookingCommandsImpl) Create(ctx context.Context, params CreateBookingParams) (*booking.Booking, error) {
	prop, err := c.propertyRepo.FindByID(ctx, params.PropertyID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	entity, err := c.factory.CreateBooking(prop.Spec(), params.RenterID, params.StartDate, params.EndDate, params.GuestCount)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		overlapping, err := tx.Bookings().FindOverlapping(ctx, params.PropertyID, entity.Dates(), nil)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if len(overlapping) > 0 {
			return ErrDateConflict
		}

		if err := tx.Bookings().Insert(ctx, entity); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				// Lost the race between check and commit.
				return ErrDateConflict
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("booking created",
		"booking_id", entity.ID(),
		"property_id", params.PropertyID,
		"dates", entity.Dates().String(),
		"total", entity.Price().Total)

	return entity, nil
}

// Cancel is refund-or-nothing: when a completed payment exists the refund is
// issued before the cancellation commits, so a failed gateway call leaves the
// booking untouched.
func (c *bookingCommandsImpl) Cancel(ctx context.Context, bookingID uuid.UUID, reason string, actor uuid.UUID) error {
	return c.coordinator.CancelWithRefund(ctx, bookingID, reason, actor)
}

func (c *bookingCommandsImpl) Complete(ctx context.Context, bookingID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		entity, err := tx.Bookings().Get(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := entity.Complete(c.clock.Now()); err != nil {
			return errs.Mark(err, ErrInvalidStateTransition)
		}
		if err := tx.Bookings().Update(ctx, entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}
