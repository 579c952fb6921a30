package commands

import (
	"context"

	"homestay/internal/domain/booking"
	"homestay/internal/pkg/errs"

	"github.com/google/uuid"
)

// AvailabilityChecker answers whether a date range is free of blocking
// bookings. It is advisory: two renters can both see "available" and race for
// the same dates. The authoritative gate is the store-level overlap check the
// booking insert performs at commit time.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, propertyID uuid.UUID, rng booking.DateRange, excludingID *uuid.UUID) (bool, error)
}

type availabilityChecker struct {
	uow UnitOfWork
}

func NewAvailabilityChecker(uow UnitOfWork) AvailabilityChecker {
	return &availabilityChecker{uow: uow}
}

func (a *availabilityChecker) IsAvailable(ctx context.Context, propertyID uuid.UUID, rng booking.DateRange, excludingID *uuid.UUID) (bool, error) {
	var available bool
	err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx Tx) error {
		overlapping, err := tx.Bookings().FindOverlapping(ctx, propertyID, rng, excludingID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		available = len(overlapping) == 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return available, nil
}
