package booking

import "time"

const (
	serviceFeeRate = 0.10
	taxRate        = 0.12
)

// PriceQuote computes the full price breakdown for a stay. The service fee is
// charged on the nightly subtotal only; taxes apply to subtotal plus service
// fee. The cleaning fee is a flat per-property amount and is not taxed.
func PriceQuote(nightlyRate, cleaningFee float64, start, end time.Time) (PriceBreakdown, error) {
	rng, err := NewDateRange(start, end)
	if err != nil {
		return PriceBreakdown{}, err
	}
	return priceForRange(nightlyRate, cleaningFee, rng), nil
}

func priceForRange(nightlyRate, cleaningFee float64, rng DateRange) PriceBreakdown {
	nights := rng.Nights()
	subtotal := round2(float64(nights) * nightlyRate)
	serviceFee := round2(subtotal * serviceFeeRate)
	taxes := round2((subtotal + serviceFee) * taxRate)
	total := round2(subtotal + cleaningFee + serviceFee + taxes)

	return PriceBreakdown{
		Nights:      nights,
		Subtotal:    subtotal,
		CleaningFee: cleaningFee,
		ServiceFee:  serviceFee,
		Taxes:       taxes,
		Total:       total,
	}
}
