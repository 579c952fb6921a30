//go:build unit

package payment_test

import (
	"testing"
	"time"

	"homestay/internal/domain/payment"
	"homestay/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	now := builder.BaseTime

	t.Run("success", func(t *testing.T) {
		p, err := payment.NewPayment(uuid.New(), 419.6, "pi_abc", "pi_abc_secret", now)
		require.NoError(t, err)

		assert.Equal(t, payment.StatusPending, p.Status())
		assert.InDelta(t, 419.6, p.Amount(), 0.001)
		assert.InDelta(t, 12.47, p.ProcessingFee(), 0.001)
		assert.InDelta(t, 432.07, p.TotalCharged(), 0.001)
		assert.Equal(t, payment.CurrencyUSD, p.Currency())
		assert.Equal(t, payment.ProviderStripe, p.Provider())
		assert.Equal(t, "pi_abc", p.ExternalRef())
		assert.Equal(t, "pi_abc_secret", p.Metadata().ClientSecret)
		assert.Nil(t, p.CompletedAt())
	})

	t.Run("missing external reference", func(t *testing.T) {
		_, err := payment.NewPayment(uuid.New(), 100.0, "", "secret", now)
		assert.ErrorIs(t, err, payment.ErrMissingExternalRef)
	})
}

func TestProcessingFee(t *testing.T) {
	assert.InDelta(t, 3.20, payment.ProcessingFee(100.0), 0.001)
	assert.InDelta(t, 0.30, payment.ProcessingFee(0.0), 0.001)
	assert.InDelta(t, 29.30, payment.ProcessingFee(1000.0), 0.001)
}

func TestPaymentTransitions(t *testing.T) {
	now := builder.BaseTime

	t.Run("pending to completed", func(t *testing.T) {
		p := builder.NewPaymentBuilder().BuildDomain()

		require.NoError(t, p.MarkCompleted(now))
		assert.Equal(t, payment.StatusCompleted, p.Status())
		require.NotNil(t, p.CompletedAt())

		// Replaying the same settlement keeps the first timestamp.
		require.NoError(t, p.MarkCompleted(now.Add(time.Minute)))
		assert.Equal(t, now, *p.CompletedAt())
	})

	t.Run("pending to failed", func(t *testing.T) {
		p := builder.NewPaymentBuilder().BuildDomain()

		require.NoError(t, p.MarkFailed(now, "card_declined"))
		assert.Equal(t, payment.StatusFailed, p.Status())
		assert.Equal(t, "card_declined", p.Metadata().FailureReason)

		require.NoError(t, p.MarkFailed(now, "other reason"), "replayed failure is a no-op")
		assert.Equal(t, "card_declined", p.Metadata().FailureReason)
	})

	t.Run("completed cannot fail, failed cannot complete", func(t *testing.T) {
		completed := builder.NewPaymentBuilder().Completed().BuildDomain()
		assert.ErrorIs(t, completed.MarkFailed(now, "late failure"), payment.ErrInvalidTransition)

		failed := builder.NewPaymentBuilder().Failed("card_declined").BuildDomain()
		assert.ErrorIs(t, failed.MarkCompleted(now), payment.ErrInvalidTransition)
	})

	t.Run("status predicates", func(t *testing.T) {
		pending := builder.NewPaymentBuilder().BuildDomain()
		assert.False(t, pending.IsSettled())
		assert.False(t, pending.IsTerminal())
		assert.True(t, pending.IsActive())

		completed := builder.NewPaymentBuilder().Completed().BuildDomain()
		assert.True(t, completed.IsSettled())
		assert.False(t, completed.IsTerminal(), "completed can still be refunded")
		assert.True(t, completed.IsActive())

		failed := builder.NewPaymentBuilder().Failed("x").BuildDomain()
		assert.True(t, failed.IsSettled())
		assert.True(t, failed.IsTerminal())
		assert.False(t, failed.IsActive(), "failed attempt frees the booking for a retry")
	})
}

func TestApplyRefund(t *testing.T) {
	now := builder.BaseTime

	refund := func(amount float64) payment.RefundRecord {
		return payment.RefundRecord{
			RefundID:  "re_" + uuid.NewString()[:8],
			Amount:    amount,
			Reason:    "requested_by_customer",
			CreatedAt: now,
		}
	}

	t.Run("partial refund stays completed", func(t *testing.T) {
		p := builder.NewPaymentBuilder().Completed().BuildDomain()

		require.NoError(t, p.ApplyRefund(refund(100.0), now))
		assert.Equal(t, payment.StatusCompleted, p.Status())
		assert.InDelta(t, 100.0, p.RefundedTotal(), 0.001)
		assert.Len(t, p.Metadata().Refunds, 1)
	})

	t.Run("full refund flips to refunded", func(t *testing.T) {
		p := builder.NewPaymentBuilder().Completed().BuildDomain()

		require.NoError(t, p.ApplyRefund(refund(p.TotalCharged()), now))
		assert.Equal(t, payment.StatusRefunded, p.Status())
	})

	t.Run("partial refunds accumulate to refunded", func(t *testing.T) {
		p := builder.NewPaymentBuilder().Completed().BuildDomain()
		half := p.TotalCharged() / 2

		require.NoError(t, p.ApplyRefund(refund(half), now))
		assert.Equal(t, payment.StatusCompleted, p.Status())

		require.NoError(t, p.ApplyRefund(refund(p.TotalCharged()-half), now))
		assert.Equal(t, payment.StatusRefunded, p.Status())
		assert.Len(t, p.Metadata().Refunds, 2)
	})

	t.Run("cumulative refunds cannot exceed the charge", func(t *testing.T) {
		p := builder.NewPaymentBuilder().Completed().BuildDomain()

		require.NoError(t, p.ApplyRefund(refund(p.TotalCharged()-10.0), now))
		// Each record alone is within the charge, but together they would
		// refund more than was ever collected.
		assert.ErrorIs(t, p.ApplyRefund(refund(50.0), now), payment.ErrInvalidRefund)
		assert.Equal(t, payment.StatusCompleted, p.Status())
		assert.Len(t, p.Metadata().Refunds, 1)

		// Topping up to exactly the charge is still allowed.
		require.NoError(t, p.ApplyRefund(refund(10.0), now))
		assert.Equal(t, payment.StatusRefunded, p.Status())
	})

	t.Run("refund validation", func(t *testing.T) {
		p := builder.NewPaymentBuilder().Completed().BuildDomain()

		assert.ErrorIs(t, p.ApplyRefund(refund(0), now), payment.ErrInvalidRefund)
		assert.ErrorIs(t, p.ApplyRefund(refund(-10), now), payment.ErrInvalidRefund)
		assert.ErrorIs(t, p.ApplyRefund(refund(p.TotalCharged()+0.01), now), payment.ErrInvalidRefund)
	})

	t.Run("only completed payments refund", func(t *testing.T) {
		pending := builder.NewPaymentBuilder().BuildDomain()
		assert.ErrorIs(t, pending.ApplyRefund(refund(10.0), now), payment.ErrNotCompleted)

		failed := builder.NewPaymentBuilder().Failed("card_declined").BuildDomain()
		assert.ErrorIs(t, failed.ApplyRefund(refund(10.0), now), payment.ErrNotCompleted)
	})
}

func TestFlagManualRefund(t *testing.T) {
	now := builder.BaseTime
	p := builder.NewPaymentBuilder().Completed().BuildDomain()

	p.FlagManualRefund("booking cancelled at payment completion", now)

	assert.Equal(t, payment.StatusCompleted, p.Status(), "money moved; the status must not change")
	assert.True(t, p.Metadata().NeedsManualRefund)
	assert.Equal(t, "booking cancelled at payment completion", p.Metadata().ManualRefundReason)
}
