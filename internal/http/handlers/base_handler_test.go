// README: Error mapping and filter parsing tests.
package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ridepool/internal/fault"
)

func TestWriteFaultStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{fault.Validation("bad input"), http.StatusBadRequest},
		{fault.NotFound("missing"), http.StatusNotFound},
		{fault.Conflict("taken"), http.StatusConflict},
		{fault.Auth("bad token"), http.StatusUnauthorized},
		{fault.Forbidden("no"), http.StatusForbidden},
		{fault.Configuration("broken invariant"), http.StatusInternalServerError},
		{assertError("plain error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeFault(c, tc.err)
		if w.Code != tc.want {
			t.Errorf("writeFault(%v) = %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}

// Unknown errors must not leak their message to the client.
func TestWriteFaultHidesUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeFault(c, assertError("connection refused to db-internal-host"))
	if body := w.Body.String(); body != `{"error":"internal error"}` {
		t.Errorf("unexpected body: %s", body)
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }

func TestParseFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet,
		"/trips?min_price=50&max_price=200&vehicle_type=SEDAN&min_rating=4&available_seats=2&departure_after=2026-03-01T00:00:00Z", nil)

	f, err := parseFilter(c)
	if err != nil {
		t.Fatalf("parseFilter: %v", err)
	}
	if f.MinPrice == nil || *f.MinPrice != 50 {
		t.Errorf("MinPrice = %v", f.MinPrice)
	}
	if f.MaxPrice == nil || *f.MaxPrice != 200 {
		t.Errorf("MaxPrice = %v", f.MaxPrice)
	}
	if f.VehicleType == nil || *f.VehicleType != "SEDAN" {
		t.Errorf("VehicleType = %v", f.VehicleType)
	}
	if f.MinRating == nil || *f.MinRating != 4 {
		t.Errorf("MinRating = %v", f.MinRating)
	}
	if f.AvailableSeats == nil || *f.AvailableSeats != 2 {
		t.Errorf("AvailableSeats = %v", f.AvailableSeats)
	}
	if f.DepartureAfter == nil {
		t.Error("DepartureAfter not set")
	}
	if f.MaxDistanceKm != nil || f.DepartureBefore != nil {
		t.Error("unset parameters must stay nil")
	}
}

func TestParseFilterEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/trips", nil)

	f, err := parseFilter(c)
	if err != nil {
		t.Fatalf("parseFilter: %v", err)
	}
	if f.MinPrice != nil || f.MaxPrice != nil || f.VehicleType != nil || f.MinRating != nil ||
		f.MaxDistanceKm != nil || f.DepartureAfter != nil || f.DepartureBefore != nil || f.AvailableSeats != nil {
		t.Errorf("expected all-nil filter, got %+v", f)
	}
}

func TestParseFilterRejectsGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, q := range []string{
		"min_price=cheap",
		"available_seats=two",
		"departure_after=tomorrow",
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/trips?"+q, nil)
		if _, err := parseFilter(c); err == nil {
			t.Errorf("expected error for %q", q)
		}
	}
}
