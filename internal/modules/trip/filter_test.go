// README: Filter SQL rendering tests (no database).
package trip

import (
	"strings"
	"testing"
	"time"
)

func TestFilterEmpty(t *testing.T) {
	where, args := Filter{}.buildWhere(1)
	if where != "" {
		t.Errorf("empty filter rendered %q", where)
	}
	if len(args) != 0 {
		t.Errorf("empty filter produced %d args", len(args))
	}
}

func TestFilterSinglePredicate(t *testing.T) {
	min := 50.0
	where, args := Filter{MinPrice: &min}.buildWhere(1)
	if where != " AND t.proposed_price >= $1" {
		t.Errorf("unexpected where: %q", where)
	}
	if len(args) != 1 || args[0] != 50.0 {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestFilterAllPredicates(t *testing.T) {
	minPrice, maxPrice := 50.0, 200.0
	vehicle := "SEDAN"
	rating := 4.0
	dist := 30.0
	after := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := after.Add(24 * time.Hour)
	seats := 2

	where, args := Filter{
		MinPrice:        &minPrice,
		MaxPrice:        &maxPrice,
		VehicleType:     &vehicle,
		MinRating:       &rating,
		MaxDistanceKm:   &dist,
		DepartureAfter:  &after,
		DepartureBefore: &before,
		AvailableSeats:  &seats,
	}.buildWhere(1)

	if len(args) != 8 {
		t.Fatalf("expected 8 args, got %d", len(args))
	}
	for i := 1; i <= 8; i++ {
		placeholder := "$" + string(rune('0'+i))
		if !strings.Contains(where, placeholder) {
			t.Errorf("where missing placeholder %s: %q", placeholder, where)
		}
	}
	for _, frag := range []string{
		"t.proposed_price >=",
		"t.proposed_price <=",
		"t.vehicle_type =",
		"COALESCE(a.rating, 0) >=",
		"t.distance_km <=",
		"t.departure_time >=",
		"t.departure_time <=",
		"t.available_seats >=",
	} {
		if !strings.Contains(where, frag) {
			t.Errorf("where missing %q: %q", frag, where)
		}
	}
}

func TestFilterPlaceholderOffset(t *testing.T) {
	seats := 3
	where, _ := Filter{AvailableSeats: &seats}.buildWhere(4)
	if where != " AND t.available_seats >= $4" {
		t.Errorf("unexpected where: %q", where)
	}
}
