// README: Complaint-count driven driver penalty rules.
package complaint

import (
	"time"

	"ridepool/internal/modules/account"
)

const (
	// banThreshold and pauseThreshold apply to the all-time complaint
	// count, regardless of complaint status. Higher threshold wins.
	banThreshold   = 7
	pauseThreshold = 3

	pauseDuration = 72 * time.Hour
)

// Penalty is the driver status change a complaint count demands.
type Penalty struct {
	Status      account.DriverStatus
	PausedUntil *time.Time
}

// EvaluatePenalty returns the penalty for an all-time complaint count, or
// nil when the count is below every threshold. Re-evaluated on every new
// complaint, so a count in the pause band refreshes pausedUntil each time.
func EvaluatePenalty(count int, now time.Time) *Penalty {
	if count >= banThreshold {
		return &Penalty{Status: account.DriverBanned}
	}
	if count >= pauseThreshold {
		until := now.Add(pauseDuration)
		return &Penalty{Status: account.DriverPaused, PausedUntil: &until}
	}
	return nil
}
