// README: Wallet record, owned 1:1 by a driver or the platform admin.
package wallet

import (
	"time"

	"ridepool/internal/types"
)

type Wallet struct {
	ID                types.ID
	AccountID         types.ID
	Balance           float64
	TotalEarned       float64
	TotalTVACollected float64
	UpdatedAt         time.Time
}
