package commands

import (
	"context"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/payment"
	"homestay/internal/domain/property"

	"github.com/google/uuid"
)

// GatewayStatus is the authoritative intent status as observed at the
// gateway, normalized away from provider-specific strings.
type GatewayStatus string

const (
	GatewayStatusSucceeded  GatewayStatus = "succeeded"
	GatewayStatusFailed     GatewayStatus = "failed"
	GatewayStatusProcessing GatewayStatus = "processing"
)

type Intent struct {
	ExternalRef  string
	ClientSecret string
}

type WebhookEvent struct {
	Type          string
	ExternalRef   string
	FailureReason string
}

// Gateway is the external card-payment capability. Implementations wrap the
// provider SDK; the engine never imports it directly. All calls are bounded
// by the context deadline and a failed call must not have mutated anything
// the engine can observe locally.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string, description string) (*Intent, error)
	RetrieveStatus(ctx context.Context, externalRef string) (GatewayStatus, string, error)
	CreateRefund(ctx context.Context, externalRef string, amountMinorUnits int64, reason string) (string, error)
	VerifyWebhookSignature(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

// BookingStore reads and writes booking rows. Inside a unit of work, Get
// locks the row so concurrent cascades serialize; Insert must detect a date
// overlap against blocking bookings at commit time and report it as a
// conflict kind.
type BookingStore interface {
	FindOverlapping(ctx context.Context, propertyID uuid.UUID, rng booking.DateRange, excludingID *uuid.UUID) ([]*booking.Booking, error)
	Insert(ctx context.Context, b *booking.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Update(ctx context.Context, b *booking.Booking) error
}

// PaymentStore reads and writes payment rows. Inside a unit of work the find
// methods lock the row, making the idempotence check-then-transition in
// resolve() atomic under duplicate webhook deliveries.
type PaymentStore interface {
	Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	FindByExternalRef(ctx context.Context, externalRef string) (*payment.Payment, error)
	FindActiveForBooking(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error)
	Insert(ctx context.Context, p *payment.Payment) error
	Update(ctx context.Context, p *payment.Payment) error
}

type PropertyStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// Tx exposes the transactional stores. Both entities are only ever mutated
// through a Tx, which is what lets the coordinator cascade payment state to
// booking state atomically.
type Tx interface {
	Bookings() BookingStore
	Payments() PaymentStore
}

type UnitOfWork interface {
	// Within runs fn in a read-write transaction with retry on
	// serialization failures.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly runs fn in a read-only transaction for consistent
	// multi-row reads.
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
