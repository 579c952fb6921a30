package request

import "strings"

type RefundPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason *string `json:"reason,omitempty"`
}

func (r RefundPaymentRequest) GetReason() string {
	if r.Reason == nil {
		return ""
	}
	return strings.TrimSpace(*r.Reason)
}
