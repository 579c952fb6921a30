package response

import (
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/usecase/queries"

	"github.com/google/uuid"
)

type PriceResponse struct {
	Nights      int     `json:"nights"`
	Subtotal    float64 `json:"subtotal"`
	CleaningFee float64 `json:"cleaningFee"`
	ServiceFee  float64 `json:"serviceFee"`
	Taxes       float64 `json:"taxes"`
	Total       float64 `json:"total"`
}

type BookingResponse struct {
	ID                 uuid.UUID     `json:"id"`
	PropertyID         uuid.UUID     `json:"propertyId"`
	PropertyTitle      string        `json:"propertyTitle,omitempty"`
	RenterID           uuid.UUID     `json:"renterId"`
	StartDate          time.Time     `json:"startDate"`
	EndDate            time.Time     `json:"endDate"`
	Nights             int           `json:"nights"`
	GuestCount         int           `json:"guestCount"`
	Status             string        `json:"status"`
	Price              PriceResponse `json:"price"`
	CancellationPolicy string        `json:"cancellationPolicy"`
	ConfirmationCode   string        `json:"confirmationCode"`
	CancellationReason *string       `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	ConfirmedAt        *time.Time    `json:"confirmedAt,omitempty"`
	CancelledAt        *time.Time    `json:"cancelledAt,omitempty"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty"`
}

type BookingListResponse struct {
	ID            uuid.UUID `json:"id"`
	PropertyID    uuid.UUID `json:"propertyId"`
	PropertyTitle string    `json:"propertyTitle"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Status        string    `json:"status"`
	Total         float64   `json:"total"`
	CreatedAt     time.Time `json:"createdAt"`
}

func fromPrice(p booking.PriceBreakdown) PriceResponse {
	return PriceResponse{
		Nights:      p.Nights,
		Subtotal:    p.Subtotal,
		CleaningFee: p.CleaningFee,
		ServiceFee:  p.ServiceFee,
		Taxes:       p.Taxes,
		Total:       p.Total,
	}
}

// FromBookingEntity builds a response directly from the write model; used for
// the create path where the row was just inserted and a read-side round trip
// buys nothing.
func FromBookingEntity(b *booking.Booking) *BookingResponse {
	var reason *string
	if r := b.CancellationReason(); r != "" {
		reason = &r
	}
	return &BookingResponse{
		ID:                 b.ID(),
		PropertyID:         b.PropertyID(),
		RenterID:           b.RenterID(),
		StartDate:          b.Dates().Start(),
		EndDate:            b.Dates().End(),
		Nights:             b.Dates().Nights(),
		GuestCount:         b.GuestCount(),
		Status:             string(b.Status()),
		Price:              fromPrice(b.Price()),
		CancellationPolicy: string(b.Policy()),
		ConfirmationCode:   b.ConfirmationCode().String(),
		CancellationReason: reason,
		CreatedAt:          b.CreatedAt(),
		ConfirmedAt:        b.ConfirmedAt(),
		CancelledAt:        b.CancelledAt(),
		CompletedAt:        b.CompletedAt(),
	}
}

func FromBookingView(rm *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:                 rm.ID,
		PropertyID:         rm.PropertyID,
		PropertyTitle:      rm.PropertyTitle,
		RenterID:           rm.RenterID,
		StartDate:          rm.StartDate,
		EndDate:            rm.EndDate,
		Nights:             rm.Nights,
		GuestCount:         rm.GuestCount,
		Status:             string(rm.Status),
		Price:              fromPrice(rm.Price),
		CancellationPolicy: string(rm.Policy),
		ConfirmationCode:   rm.ConfirmationCode,
		CancellationReason: rm.CancellationReason,
		CreatedAt:          rm.CreatedAt,
		ConfirmedAt:        rm.ConfirmedAt,
		CancelledAt:        rm.CancelledAt,
		CompletedAt:        rm.CompletedAt,
	}
}

func FromBookingListItem(rm *queries.BookingListItem) *BookingListResponse {
	return &BookingListResponse{
		ID:            rm.ID,
		PropertyID:    rm.PropertyID,
		PropertyTitle: rm.PropertyTitle,
		StartDate:     rm.StartDate,
		EndDate:       rm.EndDate,
		Status:        string(rm.Status),
		Total:         rm.Total,
		CreatedAt:     rm.CreatedAt,
	}
}
