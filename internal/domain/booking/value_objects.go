package booking

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidDateRange = errors.New("end date must be after start date")
)

// DateRange is a half-open interval [start, end) of whole days.
// Times are normalized to midnight UTC on construction.
type DateRange struct {
	start time.Time
	end   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	s := truncateToDay(start)
	e := truncateToDay(end)
	if !e.After(s) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{start: s, end: e}, nil
}

func (r DateRange) Start() time.Time {
	return r.start
}

func (r DateRange) End() time.Time {
	return r.end
}

func (r DateRange) Nights() int {
	return int(r.end.Sub(r.start).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night.
// A checkout day touching a checkin day is not a conflict.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s,%s)", r.start.Format("2006-01-02"), r.end.Format("2006-01-02"))
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// PriceBreakdown records every component of a booking charge so the total can
// always be recomputed and audited from its parts.
type PriceBreakdown struct {
	Nights      int     `json:"nights"`
	Subtotal    float64 `json:"subtotal"`
	CleaningFee float64 `json:"cleaning_fee"`
	ServiceFee  float64 `json:"service_fee"`
	Taxes       float64 `json:"taxes"`
	Total       float64 `json:"total"`
}

const confirmationCodePrefix = "HMG"

const confirmationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type ConfirmationCode string

func GenerateConfirmationCode() ConfirmationCode {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// fall back to a time-derived code rather than aborting the booking.
		return ConfirmationCode(fmt.Sprintf("%s%06d", confirmationCodePrefix, time.Now().UnixNano()%1000000))
	}
	for i, b := range buf {
		buf[i] = confirmationCodeAlphabet[int(b)%len(confirmationCodeAlphabet)]
	}
	return ConfirmationCode(confirmationCodePrefix + string(buf))
}

func (c ConfirmationCode) String() string {
	return string(c)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MinorUnits converts a dollar amount to integer cents for the gateway.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
