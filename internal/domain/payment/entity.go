package payment

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition  = errors.New("invalid payment state transition")
	ErrNotCompleted       = errors.New("payment is not completed")
	ErrInvalidRefund      = errors.New("refund amount must be positive and not exceed the total charged")
	ErrMissingExternalRef = errors.New("payment requires a gateway reference")
)

const (
	processingFeeRate = 0.029
	processingFeeFlat = 0.30

	ProviderStripe = "stripe"
	CurrencyUSD    = "USD"
)

// ProcessingFee follows the card-network fee structure: 2.9% + $0.30.
func ProcessingFee(amount float64) float64 {
	return round2(amount*processingFeeRate + processingFeeFlat)
}

type RefundRecord struct {
	RefundID  string    `json:"refund_id"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Metadata collects gateway artifacts. It is append-only: fields are set or
// added to, never cleared, so the payment row keeps its full audit trail.
type Metadata struct {
	ClientSecret       string         `json:"client_secret,omitempty"`
	FailureReason      string         `json:"failure_reason,omitempty"`
	Refunds            []RefundRecord `json:"refunds,omitempty"`
	NeedsManualRefund  bool           `json:"needs_manual_refund,omitempty"`
	ManualRefundReason string         `json:"manual_refund_reason,omitempty"`
}

type Payment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	amount        float64
	processingFee float64
	totalCharged  float64
	currency      string
	provider      string
	externalRef   string
	status        Status
	metadata      Metadata
	createdAt     time.Time
	updatedAt     time.Time
	completedAt   *time.Time
}

// NewPayment creates a pending payment for a freshly created gateway intent.
// The external reference is the idempotency key for webhook matching and is
// immutable from here on.
func NewPayment(bookingID uuid.UUID, amount float64, externalRef, clientSecret string, now time.Time) (*Payment, error) {
	if externalRef == "" {
		return nil, ErrMissingExternalRef
	}
	fee := ProcessingFee(amount)
	return &Payment{
		id:            uuid.New(),
		bookingID:     bookingID,
		amount:        round2(amount),
		processingFee: fee,
		totalCharged:  round2(amount + fee),
		currency:      CurrencyUSD,
		provider:      ProviderStripe,
		externalRef:   externalRef,
		status:        StatusPending,
		metadata:      Metadata{ClientSecret: clientSecret},
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructPayment(
	id, bookingID uuid.UUID,
	amount, processingFee, totalCharged float64,
	currency, provider, externalRef string,
	status Status,
	metadata Metadata,
	createdAt, updatedAt time.Time,
	completedAt *time.Time,
) *Payment {
	return &Payment{
		id:            id,
		bookingID:     bookingID,
		amount:        amount,
		processingFee: processingFee,
		totalCharged:  totalCharged,
		currency:      currency,
		provider:      provider,
		externalRef:   externalRef,
		status:        status,
		metadata:      metadata,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		completedAt:   completedAt,
	}
}

func (p *Payment) MarkCompleted(now time.Time) error {
	switch p.status {
	case StatusCompleted:
		return nil
	case StatusPending:
		p.status = StatusCompleted
		p.completedAt = &now
		p.updatedAt = now
		return nil
	default:
		return ErrInvalidTransition
	}
}

func (p *Payment) MarkFailed(now time.Time, reason string) error {
	switch p.status {
	case StatusFailed:
		return nil
	case StatusPending:
		p.status = StatusFailed
		p.metadata.FailureReason = reason
		p.updatedAt = now
		return nil
	default:
		return ErrInvalidTransition
	}
}

// ApplyRefund records a gateway refund. Only a refund covering the full
// charged amount flips the status; partial refunds live in metadata alone and
// callers asking "is anything refunded" must inspect it.
func (p *Payment) ApplyRefund(rec RefundRecord, now time.Time) error {
	if p.status != StatusCompleted {
		return ErrNotCompleted
	}
	// Validated against what remains refundable, not the full charge, so the
	// ledger can never record more refunded than charged even if the gateway
	// double-fires.
	if rec.Amount <= 0 || round2(p.RefundedTotal()+rec.Amount) > p.totalCharged {
		return ErrInvalidRefund
	}
	p.metadata.Refunds = append(p.metadata.Refunds, rec)
	p.updatedAt = now
	if p.RefundedTotal() >= p.totalCharged {
		p.status = StatusRefunded
	}
	return nil
}

func (p *Payment) RefundedTotal() float64 {
	var total float64
	for _, r := range p.metadata.Refunds {
		total += r.Amount
	}
	return round2(total)
}

// FlagManualRefund marks a completed payment whose booking cascade failed
// (e.g. the booking was cancelled mid-flight). Money has moved, so the
// payment stays completed and a reconciliation sweep picks this flag up.
func (p *Payment) FlagManualRefund(reason string, now time.Time) {
	p.metadata.NeedsManualRefund = true
	p.metadata.ManualRefundReason = reason
	p.updatedAt = now
}

func (p *Payment) IsTerminal() bool { return p.status.IsTerminal() }
func (p *Payment) IsSettled() bool  { return p.status.IsSettled() }
func (p *Payment) IsActive() bool   { return p.status.IsActive() }

func (p *Payment) ID() uuid.UUID          { return p.id }
func (p *Payment) BookingID() uuid.UUID   { return p.bookingID }
func (p *Payment) Amount() float64        { return p.amount }
func (p *Payment) ProcessingFee() float64 { return p.processingFee }
func (p *Payment) TotalCharged() float64  { return p.totalCharged }
func (p *Payment) Currency() string       { return p.currency }
func (p *Payment) Provider() string       { return p.provider }
func (p *Payment) ExternalRef() string    { return p.externalRef }
func (p *Payment) Status() Status         { return p.status }
func (p *Payment) Metadata() Metadata     { return p.metadata }
func (p *Payment) CreatedAt() time.Time   { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time   { return p.updatedAt }
func (p *Payment) CompletedAt() *time.Time {
	return p.completedAt
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
