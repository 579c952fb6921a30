package booking

import (
	"errors"
	"time"
)

var ErrUnknownPolicy = errors.New("unknown cancellation policy")

// CancellationPolicy is snapshotted onto the booking at creation time so that
// a host changing the property's policy never affects existing bookings.
type CancellationPolicy string

const (
	PolicyFlexible CancellationPolicy = "flexible"
	PolicyModerate CancellationPolicy = "moderate"
	PolicyStrict   CancellationPolicy = "strict"
)

func ParseCancellationPolicy(s string) (CancellationPolicy, error) {
	switch CancellationPolicy(s) {
	case PolicyFlexible, PolicyModerate, PolicyStrict:
		return CancellationPolicy(s), nil
	default:
		return "", ErrUnknownPolicy
	}
}

func (p CancellationPolicy) String() string {
	return string(p)
}

// CancellationFee returns the penalty withheld when a paid booking is
// cancelled at `now`, given its check-in date.
//
//	flexible: free until 24h before check-in, full penalty after
//	moderate: free until 5 days before check-in, 50% penalty after
//	strict:   free until 14 days before check-in, full penalty after
//
// The penalty is always within [0, totalPaid].
func CancellationFee(policy CancellationPolicy, checkIn, now time.Time, totalPaid float64) (float64, error) {
	if totalPaid < 0 {
		totalPaid = 0
	}
	lead := checkIn.Sub(now)

	var penalty float64
	switch policy {
	case PolicyFlexible:
		if lead >= 24*time.Hour {
			penalty = 0
		} else {
			penalty = totalPaid
		}
	case PolicyModerate:
		if lead >= 5*24*time.Hour {
			penalty = 0
		} else {
			penalty = round2(totalPaid * 0.5)
		}
	case PolicyStrict:
		if lead >= 14*24*time.Hour {
			penalty = 0
		} else {
			penalty = totalPaid
		}
	default:
		return 0, ErrUnknownPolicy
	}

	if penalty > totalPaid {
		penalty = totalPaid
	}
	return penalty, nil
}

// RefundAmount is the portion of totalPaid returned to the renter; never negative.
func RefundAmount(policy CancellationPolicy, checkIn, now time.Time, totalPaid float64) (float64, error) {
	penalty, err := CancellationFee(policy, checkIn, now, totalPaid)
	if err != nil {
		return 0, err
	}
	refund := round2(totalPaid - penalty)
	if refund < 0 {
		refund = 0
	}
	return refund, nil
}
