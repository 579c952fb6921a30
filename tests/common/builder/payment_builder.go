//go:build unit || e2e

package builder

import (
	"time"

	"homestay/internal/domain/payment"

	"github.com/google/uuid"
)

type PaymentBuilder struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	Amount      float64
	Currency    string
	Provider    string
	ExternalRef string
	Status      payment.Status
	Metadata    payment.Metadata
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

func NewPaymentBuilder() *PaymentBuilder {
	return &PaymentBuilder{
		ID:          uuid.New(),
		BookingID:   uuid.New(),
		Amount:      419.6,
		Currency:    payment.CurrencyUSD,
		Provider:    payment.ProviderStripe,
		ExternalRef: "pi_test_abc123",
		Status:      payment.StatusPending,
		Metadata:    payment.Metadata{ClientSecret: "pi_test_abc123_secret"},
		CreatedAt:   BaseTime,
		UpdatedAt:   BaseTime,
	}
}

func (b *PaymentBuilder) With(mutate func(*PaymentBuilder)) *PaymentBuilder {
	mutate(b)
	return b
}

func (b *PaymentBuilder) Completed() *PaymentBuilder {
	at := b.CreatedAt.Add(time.Minute)
	b.Status = payment.StatusCompleted
	b.UpdatedAt = at
	b.CompletedAt = &at
	return b
}

func (b *PaymentBuilder) Failed(reason string) *PaymentBuilder {
	b.Status = payment.StatusFailed
	b.Metadata.FailureReason = reason
	b.UpdatedAt = b.CreatedAt.Add(time.Minute)
	return b
}

func (b *PaymentBuilder) BuildDomain() *payment.Payment {
	fee := payment.ProcessingFee(b.Amount)
	return payment.ReconstructPayment(
		b.ID, b.BookingID,
		b.Amount, fee, b.Amount+fee,
		b.Currency, b.Provider, b.ExternalRef,
		b.Status,
		b.Metadata,
		b.CreatedAt, b.UpdatedAt,
		b.CompletedAt,
	)
}
