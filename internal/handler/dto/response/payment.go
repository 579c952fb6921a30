package response

import (
	"time"

	"homestay/internal/domain/payment"
	"homestay/internal/usecase/queries"

	"github.com/google/uuid"
)

type RefundResponse struct {
	RefundID  string    `json:"refundId"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type PaymentResponse struct {
	ID            uuid.UUID        `json:"id"`
	BookingID     uuid.UUID        `json:"bookingId"`
	Amount        float64          `json:"amount"`
	ProcessingFee float64          `json:"processingFee"`
	TotalCharged  float64          `json:"totalCharged"`
	Currency      string           `json:"currency"`
	Provider      string           `json:"provider"`
	Status        string           `json:"status"`
	ClientSecret  string           `json:"clientSecret,omitempty"`
	FailureReason string           `json:"failureReason,omitempty"`
	Refunds       []RefundResponse `json:"refunds,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	CompletedAt   *time.Time       `json:"completedAt,omitempty"`
}

// ConfirmResponse reports the settled state after a client confirm. Replayed
// is true when the payment had already been settled by an earlier confirm or
// webhook delivery.
type ConfirmResponse struct {
	Payment  *PaymentResponse `json:"payment"`
	Replayed bool             `json:"replayed"`
}

func fromRefunds(recs []payment.RefundRecord) []RefundResponse {
	if len(recs) == 0 {
		return nil
	}
	out := make([]RefundResponse, len(recs))
	for i, rec := range recs {
		out[i] = RefundResponse{
			RefundID:  rec.RefundID,
			Amount:    rec.Amount,
			Reason:    rec.Reason,
			CreatedAt: rec.CreatedAt,
		}
	}
	return out
}

func FromPaymentEntity(p *payment.Payment) *PaymentResponse {
	md := p.Metadata()
	return &PaymentResponse{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		Amount:        p.Amount(),
		ProcessingFee: p.ProcessingFee(),
		TotalCharged:  p.TotalCharged(),
		Currency:      p.Currency(),
		Provider:      p.Provider(),
		Status:        string(p.Status()),
		ClientSecret:  md.ClientSecret,
		FailureReason: md.FailureReason,
		Refunds:       fromRefunds(md.Refunds),
		CreatedAt:     p.CreatedAt(),
		CompletedAt:   p.CompletedAt(),
	}
}

func FromPaymentView(rm *queries.PaymentView) *PaymentResponse {
	return &PaymentResponse{
		ID:            rm.ID,
		BookingID:     rm.BookingID,
		Amount:        rm.Amount,
		ProcessingFee: rm.ProcessingFee,
		TotalCharged:  rm.TotalCharged,
		Currency:      rm.Currency,
		Provider:      rm.Provider,
		Status:        string(rm.Status),
		ClientSecret:  rm.Metadata.ClientSecret,
		FailureReason: rm.Metadata.FailureReason,
		Refunds:       fromRefunds(rm.Metadata.Refunds),
		CreatedAt:     rm.CreatedAt,
		CompletedAt:   rm.CompletedAt,
	}
}
