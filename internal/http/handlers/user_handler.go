// README: Rider endpoints: trip search, accept, booking, complaints.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ridepool/internal/http/middleware"
	"ridepool/internal/modules/complaint"
	"ridepool/internal/modules/location"
	"ridepool/internal/modules/trip"
	"ridepool/internal/types"
)

type UserHandler struct {
	trips      *trip.Service
	complaints *complaint.Service
	locations  *location.Service
}

func NewUserHandler(trips *trip.Service, complaints *complaint.Service, locations *location.Service) *UserHandler {
	return &UserHandler{trips: trips, complaints: complaints, locations: locations}
}

// ListAvailableTrips searches open trips. All filter parameters are
// optional query parameters.
func (h *UserHandler) ListAvailableTrips(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	trips, err := h.trips.ListAvailable(c.Request.Context(), f)
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": newTripViews(trips)})
}

func (h *UserHandler) AcceptTrip(c *gin.Context) {
	t, err := h.trips.Accept(c.Request.Context(), middleware.CallerID(c), types.ID(c.Param("id")))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newTripView(t))
}

type bookTripReq struct {
	PickupAddress      string      `json:"pickup_address"`
	Pickup             types.Point `json:"pickup"`
	DestinationAddress string      `json:"destination_address"`
	Destination        types.Point `json:"destination"`
	DepartureTime      *time.Time  `json:"departure_time"`
	AvailableSeats     int         `json:"available_seats"`
	VehicleType        string      `json:"vehicle_type"`
}

// BookTrip is the dispatch-style path: the system picks a driver instead of
// the rider browsing proposals.
func (h *UserHandler) BookTrip(c *gin.Context) {
	var req bookTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := trip.BookCommand{
		UserID:             middleware.CallerID(c),
		PickupAddress:      req.PickupAddress,
		Pickup:             req.Pickup,
		DestinationAddress: req.DestinationAddress,
		Destination:        req.Destination,
		AvailableSeats:     req.AvailableSeats,
		VehicleType:        req.VehicleType,
	}
	if req.DepartureTime != nil {
		cmd.DepartureTime = *req.DepartureTime
	}
	t, err := h.trips.Book(c.Request.Context(), cmd)
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTripView(t))
}

func (h *UserHandler) GetTrip(c *gin.Context) {
	t, err := h.trips.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newTripView(t))
}

func (h *UserHandler) MyTrips(c *gin.Context) {
	trips, err := h.trips.ListByUser(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": newTripViews(trips)})
}

func (h *UserHandler) AvailableDrivers(c *gin.Context) {
	ids, err := h.trips.AvailableDrivers(c.Request.Context())
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver_ids": ids})
}

// DriverPresence tells a rider whether a driver is online right now.
func (h *UserHandler) DriverPresence(c *gin.Context) {
	lastSeen, online, err := h.locations.Presence(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeFault(c, err)
		return
	}
	if !online {
		c.JSON(http.StatusOK, gin.H{"online": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": true, "last_seen": lastSeen})
}

type fileComplaintReq struct {
	DriverID string `json:"driver_id"`
	TripID   string `json:"trip_id"`
	Message  string `json:"message"`
}

func (h *UserHandler) FileComplaint(c *gin.Context) {
	var req fileComplaintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cp, err := h.complaints.File(c.Request.Context(), complaint.FileCommand{
		UserID:   middleware.CallerID(c),
		DriverID: types.ID(req.DriverID),
		TripID:   types.ID(req.TripID),
		Message:  req.Message,
	})
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, newComplaintView(cp))
}

func (h *UserHandler) MyComplaints(c *gin.Context) {
	cs, err := h.complaints.ListByUser(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": newComplaintViews(cs)})
}

func parseFilter(c *gin.Context) (trip.Filter, error) {
	var f trip.Filter
	var err error
	if f.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		return f, err
	}
	if v := c.Query("vehicle_type"); v != "" {
		f.VehicleType = &v
	}
	if f.MinRating, err = queryFloat(c, "min_rating"); err != nil {
		return f, err
	}
	if f.MaxDistanceKm, err = queryFloat(c, "max_distance"); err != nil {
		return f, err
	}
	if f.DepartureAfter, err = queryTime(c, "departure_after"); err != nil {
		return f, err
	}
	if f.DepartureBefore, err = queryTime(c, "departure_before"); err != nil {
		return f, err
	}
	if v := c.Query("available_seats"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errInvalidParam("available_seats")
		}
		f.AvailableSeats = &n
	}
	return f, nil
}

func queryFloat(c *gin.Context, name string) (*float64, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &n, nil
}

func queryTime(c *gin.Context, name string) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &t, nil
}

type paramError string

func (e paramError) Error() string { return "invalid " + string(e) + " parameter" }

func errInvalidParam(name string) error { return paramError(name) }
