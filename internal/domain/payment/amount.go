package payment

import "math"

// MinorUnits converts a major-unit amount to cents.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
