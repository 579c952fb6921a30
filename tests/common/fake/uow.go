//go:build unit

// Package fake provides hand-rolled test doubles for the pieces gomock is
// awkward at, chiefly the unit of work whose callbacks need to actually run.
package fake

import (
	"context"

	"homestay/internal/usecase/commands"
)

// Tx hands out whatever stores the test wired in.
type Tx struct {
	BookingStore commands.BookingStore
	PaymentStore commands.PaymentStore
}

func (t *Tx) Bookings() commands.BookingStore { return t.BookingStore }
func (t *Tx) Payments() commands.PaymentStore { return t.PaymentStore }

// UnitOfWork executes the callback synchronously against the configured Tx.
// There is no transaction; callers assert on the mock stores instead. Set
// WithinErr or ReadOnlyErr to simulate a transaction that fails before fn
// runs.
type UnitOfWork struct {
	Tx          commands.Tx
	WithinErr   error
	ReadOnlyErr error
}

func NewUnitOfWork(bookings commands.BookingStore, payments commands.PaymentStore) *UnitOfWork {
	return &UnitOfWork{
		Tx: &Tx{BookingStore: bookings, PaymentStore: payments},
	}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx commands.Tx) error) error {
	if u.WithinErr != nil {
		return u.WithinErr
	}
	return fn(ctx, u.Tx)
}

func (u *UnitOfWork) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx commands.Tx) error) error {
	if u.ReadOnlyErr != nil {
		return u.ReadOnlyErr
	}
	return fn(ctx, u.Tx)
}
