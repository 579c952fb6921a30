package commands

import (
	"context"
	"log/slog"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/payment"
	"homestay/internal/infra"
	"homestay/internal/pkg/clock"
	"homestay/internal/pkg/errs"

	"github.com/google/uuid"
)

// Coordinator is the only component that mutates both a booking and its
// payment within one logical operation. Two rules hold:
//
//  1. A completed payment must drive the booking to confirmed. If the booking
//     can no longer be confirmed the payment stays completed (money already
//     moved) and is flagged for a manual refund; payment success is never
//     silently lost.
//  2. Cancelling a booking with a completed payment is refund-or-nothing: the
//     gateway refund must succeed before the cancellation commits, so a
//     renter can never lose both the stay and the money.
type Coordinator interface {
	ConfirmBookingForPayment(ctx context.Context, tx Tx, p *payment.Payment) error
	CancelWithRefund(ctx context.Context, bookingID uuid.UUID, reason string, actor uuid.UUID) error
}

type coordinatorImpl struct {
	uow     UnitOfWork
	gateway Gateway
	clock   clock.Clock
}

func NewCoordinator(uow UnitOfWork, gateway Gateway, clock clock.Clock) Coordinator {
	return &coordinatorImpl{
		uow:     uow,
		gateway: gateway,
		clock:   clock,
	}
}

// ConfirmBookingForPayment cascades a completed payment to its booking inside
// the caller's transaction.
func (c *coordinatorImpl) ConfirmBookingForPayment(ctx context.Context, tx Tx, p *payment.Payment) error {
	b, err := tx.Bookings().Get(ctx, p.BookingID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrBookingNotFound
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	now := c.clock.Now()
	if err := b.Confirm(now); err != nil {
		p.FlagManualRefund("booking "+b.Status().String()+" at payment completion", now)
		if updateErr := tx.Payments().Update(ctx, p); updateErr != nil {
			return errs.Mark(updateErr, ErrDatabaseOperationFailed)
		}
		return errs.Mark(err, ErrInvalidStateTransition)
	}

	if err := tx.Bookings().Update(ctx, b); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

type cancelPlan struct {
	externalRef  string
	refundAmount float64
	penalty      float64
	hasPayment   bool
	alreadyDone  bool
}

// errStaleCancelPlan aborts the write transaction when a payment settled
// between planning and committing; the caller re-plans.
var errStaleCancelPlan = errs.New("cancel plan is stale")

// CancelWithRefund cancels a booking, issuing the policy-determined refund
// first when a completed payment exists. The gateway call happens between two
// transactions: the first computes the plan, the second re-checks the payment
// under a row lock and applies refund record and cancellation together. If a
// racing resolve settled the payment after the plan was made, the write
// aborts and the whole operation re-plans, so a freshly completed payment
// can never be cancelled away without its refund. A gateway failure aborts
// before anything local has changed.
func (c *coordinatorImpl) CancelWithRefund(ctx context.Context, bookingID uuid.UUID, reason string, actor uuid.UUID) error {
	const maxPlanAttempts = 3
	for attempt := 1; attempt <= maxPlanAttempts; attempt++ {
		done, err := c.cancelOnce(ctx, bookingID, reason, actor)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		slog.Warn("cancel plan went stale; re-planning",
			"booking_id", bookingID, "attempt", attempt)
	}
	return errs.Mark(errStaleCancelPlan, ErrDatabaseOperationFailed)
}

func (c *coordinatorImpl) cancelOnce(ctx context.Context, bookingID uuid.UUID, reason string, actor uuid.UUID) (bool, error) {
	var plan cancelPlan
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if b.RenterID() != actor {
			return ErrActorNotAllowed
		}

		switch b.Status() {
		case booking.StatusCancelled:
			plan.alreadyDone = true
			return nil
		case booking.StatusCompleted:
			return errs.Mark(booking.ErrInvalidTransition, ErrInvalidStateTransition)
		}

		p, err := tx.Payments().FindActiveForBooking(ctx, bookingID)
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if p != nil && p.Status() == payment.StatusCompleted {
			penalty, err := booking.CancellationFee(b.Policy(), b.CheckIn(), c.clock.Now(), p.TotalCharged())
			if err != nil {
				return errs.Mark(err, ErrDomainValidation)
			}
			refund, err := booking.RefundAmount(b.Policy(), b.CheckIn(), c.clock.Now(), p.TotalCharged())
			if err != nil {
				return errs.Mark(err, ErrDomainValidation)
			}
			plan.hasPayment = true
			plan.externalRef = p.ExternalRef()
			plan.penalty = penalty
			plan.refundAmount = refund
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if plan.alreadyDone {
		return true, nil
	}

	var refundRef string
	if plan.hasPayment && plan.refundAmount > 0 {
		refundRef, err = c.gateway.CreateRefund(ctx, plan.externalRef, booking.MinorUnits(plan.refundAmount), reason)
		if err != nil {
			// Refund-or-nothing: the cancellation is not committed.
			if errs.Is(err, ErrGatewayUnavailable) {
				return false, err
			}
			return false, errs.Mark(err, ErrGatewayFailure)
		}
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		p, err := tx.Payments().FindActiveForBooking(ctx, bookingID)
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if p != nil && p.Status() == payment.StatusCompleted && !plan.hasPayment {
			// A resolve settled the payment after the plan was made; the plan
			// owes a refund it never computed.
			return errStaleCancelPlan
		}

		now := c.clock.Now()
		if plan.hasPayment && plan.refundAmount > 0 {
			if p == nil || p.ExternalRef() != plan.externalRef {
				// The refund already went out against a payment that has since
				// changed; an operator has to reconcile.
				return errs.Mark(errs.New("refunded payment no longer active"), ErrInvalidStateTransition)
			}
			rec := payment.RefundRecord{
				RefundID:  refundRef,
				Amount:    plan.refundAmount,
				Reason:    reason,
				CreatedAt: now,
			}
			if err := p.ApplyRefund(rec, now); err != nil {
				return errs.Mark(err, ErrInvalidStateTransition)
			}
			if err := tx.Payments().Update(ctx, p); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}

		if err := b.Cancel(now, reason, actor); err != nil {
			// The refund already went out; this only happens when the stay
			// completed mid-flight and needs an operator to look at it.
			return errs.Mark(err, ErrInvalidStateTransition)
		}
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		if errs.Is(err, errStaleCancelPlan) {
			return false, nil
		}
		return false, err
	}

	slog.Info("booking cancelled",
		"booking_id", bookingID,
		"actor", actor,
		"refund", plan.refundAmount,
		"penalty", plan.penalty)

	return true, nil
}
