// README: Money rounding shared by pricing and settlement.
package types

import "math"

// Round2 rounds a monetary amount to 2 decimal places, half away from zero.
// All persisted and serialized amounts go through this.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
