// README: Fee split computed at trip completion.
package wallet

import "ridepool/internal/types"

// FeeRate is the flat platform fee (TVA) withheld from every completed trip.
const FeeRate = 0.08

type Settlement struct {
	FinalPrice      float64
	FeeAmount       float64
	DriverNetAmount float64
}

// Compute splits the final price between the driver and the platform.
// The fee is rounded to cents first; the driver gets the exact remainder,
// so FeeAmount + DriverNetAmount == FinalPrice always holds.
func Compute(finalPrice float64) Settlement {
	fee := types.Round2(finalPrice * FeeRate)
	return Settlement{
		FinalPrice:      finalPrice,
		FeeAmount:       fee,
		DriverNetAmount: types.Round2(finalPrice - fee),
	}
}
