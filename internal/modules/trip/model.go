// README: Trip aggregate, status definitions and the lifecycle transition table.
package trip

import (
	"time"

	"ridepool/internal/types"
)

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusAccepted  Status = "ACCEPTED"
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

type Trip struct {
	ID                   types.ID
	DriverID             types.ID
	UserID               *types.ID
	Status               Status
	PickupAddress        string
	Pickup               types.Point
	DestinationAddress   string
	Destination          types.Point
	DistanceKm           float64
	ProposedPrice        float64
	FinalPrice           *float64
	FeeAmount            *float64
	DriverNetAmount      *float64
	DepartureTime        time.Time
	ExpiresAt            time.Time
	EstimatedDurationMin int
	AvailableSeats       int
	VehicleType          string
	CreatedAt            time.Time
	AcceptedAt           *time.Time
	StartedAt            *time.Time
	CompletedAt          *time.Time
	CancelledAt          *time.Time
}

// AllowedTransitions represents the trip state flow (diagram) as code.
// EXPIRED is reached from AVAILABLE only; it is a terminal state like
// COMPLETED and CANCELLED.
var AllowedTransitions = map[Status][]Status{
	StatusAvailable: {StatusAccepted, StatusCancelled, StatusExpired},
	StatusAccepted:  {StatusStarted},
	StatusStarted:   {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Expired reports whether an AVAILABLE trip has passed its departure
// deadline. Status flips lazily; readers must not trust the column alone.
func (t *Trip) Expired(now time.Time) bool {
	return t.Status == StatusAvailable && !t.ExpiresAt.After(now)
}
