package commands

import (
	"context"
	"fmt"
	"log/slog"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/payment"
	"homestay/internal/infra"
	"homestay/internal/pkg/clock"
	"homestay/internal/pkg/errs"

	"github.com/google/uuid"
)

type ResolveResult struct {
	Payment *payment.Payment
	// Replayed means the payment was already settled and no side effects were
	// re-applied. Webhook deliveries are at-least-once; replay is normal.
	Replayed bool
}

// PaymentCommands owns the payment lifecycle. Resolve is the single entry
// point for both the client-confirm path and the webhook path; applying the
// same (externalRef, observedStatus) pair any number of times, in any order,
// yields the same final state with side effects applied at most once.
type PaymentCommands interface {
	Initiate(ctx context.Context, bookingID, actor uuid.UUID) (*payment.Payment, error)
	Confirm(ctx context.Context, paymentID, actor uuid.UUID) (*ResolveResult, error)
	Resolve(ctx context.Context, externalRef string, observed GatewayStatus, failureReason string) (*ResolveResult, error)
	Refund(ctx context.Context, paymentID uuid.UUID, amount float64, reason string, actor uuid.UUID) (*payment.Payment, error)
}

type paymentCommandsImpl struct {
	uow         UnitOfWork
	gateway     Gateway
	coordinator Coordinator
	clock       clock.Clock
}

func NewPaymentCommands(
	uow UnitOfWork,
	gateway Gateway,
	coordinator Coordinator,
	clock clock.Clock,
) PaymentCommands {
	return &paymentCommandsImpl{
		uow:         uow,
		gateway:     gateway,
		coordinator: coordinator,
		clock:       clock,
	}
}

// Initiate creates a gateway intent for the booking total plus processing fee
// and persists a pending payment keyed by the gateway reference. The intent
// is created before the row so a timeout can never leave a local payment
// without an external reference; an intent orphaned at the gateway is
// harmless and expires there.
func (c *paymentCommandsImpl) Initiate(ctx context.Context, bookingID, actor uuid.UUID) (*payment.Payment, error) {
	var bookingTotal float64
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
		if b.Status().IsTerminal() {
			return errs.Mark(errs.New("booking is "+b.Status().String()), ErrInvalidStateTransition)
		}

		active, err := tx.Payments().FindActiveForBooking(ctx, bookingID)
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if active != nil {
			return ErrDuplicatePaymentAttempt
		}

		bookingTotal = b.Price().Total
		return nil
	})
	if err != nil {
		return nil, err
	}

	fee := payment.ProcessingFee(bookingTotal)
	chargeMinor := booking.MinorUnits(bookingTotal) + booking.MinorUnits(fee)

	intent, err := c.gateway.CreateIntent(ctx, chargeMinor, payment.CurrencyUSD,
		map[string]string{
			"booking_id": bookingID.String(),
			"renter_id":  actor.String(),
		},
		fmt.Sprintf("Booking payment %s", bookingID))
	if err != nil {
		if errs.Is(err, ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, errs.Mark(err, ErrGatewayFailure)
	}

	entity, err := payment.NewPayment(bookingID, bookingTotal, intent.ExternalRef, intent.ClientSecret, c.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Payments().Insert(ctx, entity); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				// A concurrent initiate won between our pre-check and commit;
				// the partial unique index on active payments is authoritative.
				return ErrDuplicatePaymentAttempt
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payment initiated",
		"payment_id", entity.ID(),
		"booking_id", bookingID,
		"external_ref", entity.ExternalRef(),
		"total_charged", entity.TotalCharged())

	return entity, nil
}

// Confirm is the client-poll path: it retrieves the authoritative status from
// the gateway and funnels it through Resolve, exactly like a webhook would.
func (c *paymentCommandsImpl) Confirm(ctx context.Context, paymentID, actor uuid.UUID) (*ResolveResult, error) {
	var externalRef string
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.Payments().Get(ctx, paymentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		b, err := tx.Bookings().Get(ctx, p.BookingID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if b.RenterID() != actor {
			return ErrActorNotAllowed
		}
		externalRef = p.ExternalRef()
		return nil
	})
	if err != nil {
		return nil, err
	}

	observed, failureReason, err := c.gateway.RetrieveStatus(ctx, externalRef)
	if err != nil {
		if errs.Is(err, ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, errs.Mark(err, ErrGatewayFailure)
	}
	if observed == GatewayStatusProcessing {
		return nil, ErrPaymentNotSettled
	}

	return c.Resolve(ctx, externalRef, observed, failureReason)
}

// Resolve applies an observed gateway status to the payment it references.
// The row lock taken by FindByExternalRef makes the settled check and the
// transition one atomic step, so duplicate webhook deliveries and a racing
// client poll converge on a single applied transition.
func (c *paymentCommandsImpl) Resolve(ctx context.Context, externalRef string, observed GatewayStatus, failureReason string) (*ResolveResult, error) {
	var (
		result     *ResolveResult
		cascadeErr error
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		cascadeErr = nil

		p, err := tx.Payments().FindByExternalRef(ctx, externalRef)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if p.IsSettled() {
			result = &ResolveResult{Payment: p, Replayed: true}
			return nil
		}

		now := c.clock.Now()
		switch observed {
		case GatewayStatusSucceeded:
			if err := p.MarkCompleted(now); err != nil {
				return errs.Mark(err, ErrInvalidStateTransition)
			}
			if err := tx.Payments().Update(ctx, p); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			// The cascade may legitimately fail if the renter cancelled the
			// booking mid-flight. Money has moved: the payment stays
			// completed, the failure is surfaced after commit.
			if err := c.coordinator.ConfirmBookingForPayment(ctx, tx, p); err != nil {
				cascadeErr = err
			}

		case GatewayStatusFailed:
			if err := p.MarkFailed(now, failureReason); err != nil {
				return errs.Mark(err, ErrInvalidStateTransition)
			}
			if err := tx.Payments().Update(ctx, p); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}

		default:
			return ErrPaymentNotSettled
		}

		result = &ResolveResult{Payment: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cascadeErr != nil {
		slog.Error("payment completed but booking cascade failed; flagged for manual refund",
			"external_ref", externalRef,
			"error", cascadeErr.Error())
		return result, cascadeErr
	}

	if result.Replayed {
		slog.Info("payment resolve replayed", "external_ref", externalRef, "status", result.Payment.Status().String())
	} else {
		slog.Info("payment resolved", "external_ref", externalRef, "status", result.Payment.Status().String())
	}

	return result, nil
}

// Refund issues a gateway refund for a completed payment. A partial refund is
// recorded in metadata without touching the status; only a refund covering
// the full charged amount flips the payment to refunded. A failed gateway
// call mutates nothing locally.
func (c *paymentCommandsImpl) Refund(ctx context.Context, paymentID uuid.UUID, amount float64, reason string, actor uuid.UUID) (*payment.Payment, error) {
	var externalRef string
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.Payments().Get(ctx, paymentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		b, err := tx.Bookings().Get(ctx, p.BookingID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if b.RenterID() != actor {
			return ErrActorNotAllowed
		}
		if p.Status() != payment.StatusCompleted {
			return errs.Mark(payment.ErrNotCompleted, ErrInvalidStateTransition)
		}
		if amount <= 0 || amount > p.TotalCharged() {
			return ErrInvalidRefundAmount
		}
		externalRef = p.ExternalRef()
		return nil
	})
	if err != nil {
		return nil, err
	}

	refundRef, err := c.gateway.CreateRefund(ctx, externalRef, booking.MinorUnits(amount), reason)
	if err != nil {
		if errs.Is(err, ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, errs.Mark(err, ErrGatewayFailure)
	}

	var refunded *payment.Payment
	err = c.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.Payments().FindByExternalRef(ctx, externalRef)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		now := c.clock.Now()
		rec := payment.RefundRecord{
			RefundID:  refundRef,
			Amount:    amount,
			Reason:    reason,
			CreatedAt: now,
		}
		if err := p.ApplyRefund(rec, now); err != nil {
			return errs.Mark(err, ErrInvalidStateTransition)
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		refunded = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("refund processed",
		"payment_id", paymentID,
		"refund_ref", refundRef,
		"amount", amount,
		"status", refunded.Status().String(),
		"actor", actor)

	return refunded, nil
}
