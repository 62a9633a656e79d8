// README: Optional AND-composed predicates for the trip availability search.
package trip

import (
	"fmt"
	"strings"
	"time"
)

// Filter narrows the available-trip listing. Nil fields are skipped; set
// fields are ANDed together.
type Filter struct {
	MinPrice        *float64
	MaxPrice        *float64
	VehicleType     *string
	MinRating       *float64
	MaxDistanceKm   *float64
	DepartureAfter  *time.Time
	DepartureBefore *time.Time
	AvailableSeats  *int
}

// buildWhere renders the filter as SQL predicates against trips t joined
// with accounts a. Placeholders are numbered from start; the returned args
// line up with them.
func (f Filter) buildWhere(start int) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", start+len(args)-1)
	}

	if f.MinPrice != nil {
		conds = append(conds, "t.proposed_price >= "+next(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "t.proposed_price <= "+next(*f.MaxPrice))
	}
	if f.VehicleType != nil {
		conds = append(conds, "t.vehicle_type = "+next(*f.VehicleType))
	}
	if f.MinRating != nil {
		conds = append(conds, "COALESCE(a.rating, 0) >= "+next(*f.MinRating))
	}
	if f.MaxDistanceKm != nil {
		conds = append(conds, "t.distance_km <= "+next(*f.MaxDistanceKm))
	}
	if f.DepartureAfter != nil {
		conds = append(conds, "t.departure_time >= "+next(*f.DepartureAfter))
	}
	if f.DepartureBefore != nil {
		conds = append(conds, "t.departure_time <= "+next(*f.DepartureBefore))
	}
	if f.AvailableSeats != nil {
		conds = append(conds, "t.available_seats >= "+next(*f.AvailableSeats))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conds, " AND "), args
}
