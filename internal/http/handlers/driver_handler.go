// README: Driver endpoints: trip lifecycle, wallet, presence reporting.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridepool/internal/http/middleware"
	"ridepool/internal/modules/complaint"
	"ridepool/internal/modules/location"
	"ridepool/internal/modules/trip"
	"ridepool/internal/modules/wallet"
	"ridepool/internal/types"
)

type DriverHandler struct {
	trips      *trip.Service
	complaints *complaint.Service
	wallets    *wallet.Store
	locations  *location.Service
}

func NewDriverHandler(trips *trip.Service, complaints *complaint.Service, wallets *wallet.Store, locations *location.Service) *DriverHandler {
	return &DriverHandler{trips: trips, complaints: complaints, wallets: wallets, locations: locations}
}

type proposeTripReq struct {
	PickupAddress        string      `json:"pickup_address"`
	Pickup               types.Point `json:"pickup"`
	DestinationAddress   string      `json:"destination_address"`
	Destination          types.Point `json:"destination"`
	ProposedPrice        float64     `json:"proposed_price"`
	DepartureTime        time.Time   `json:"departure_time"`
	ExpiresAt            *time.Time  `json:"expires_at"`
	EstimatedDurationMin int         `json:"estimated_duration_min"`
	AvailableSeats       int         `json:"available_seats"`
	VehicleType          string      `json:"vehicle_type"`
}

func (h *DriverHandler) ProposeTrip(c *gin.Context) {
	var req proposeTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := trip.ProposeCommand{
		DriverID:             middleware.CallerID(c),
		PickupAddress:        req.PickupAddress,
		Pickup:               req.Pickup,
		DestinationAddress:   req.DestinationAddress,
		Destination:          req.Destination,
		ProposedPrice:        req.ProposedPrice,
		DepartureTime:        req.DepartureTime,
		EstimatedDurationMin: req.EstimatedDurationMin,
		AvailableSeats:       req.AvailableSeats,
		VehicleType:          req.VehicleType,
	}
	if req.ExpiresAt != nil {
		cmd.ExpiresAt = *req.ExpiresAt
	}
	t, err := h.trips.Propose(c.Request.Context(), cmd)
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTripView(t))
}

func (h *DriverHandler) StartTrip(c *gin.Context) {
	t, err := h.trips.Start(c.Request.Context(), middleware.CallerID(c), types.ID(c.Param("id")))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newTripView(t))
}

func (h *DriverHandler) CompleteTrip(c *gin.Context) {
	t, err := h.trips.Complete(c.Request.Context(), middleware.CallerID(c), types.ID(c.Param("id")))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newTripView(t))
}

func (h *DriverHandler) CancelTrip(c *gin.Context) {
	t, err := h.trips.Cancel(c.Request.Context(), middleware.CallerID(c), types.ID(c.Param("id")))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newTripView(t))
}

func (h *DriverHandler) MyTrips(c *gin.Context) {
	trips, err := h.trips.ListByDriver(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": newTripViews(trips)})
}

func (h *DriverHandler) Wallet(c *gin.Context) {
	w, err := h.wallets.GetByAccount(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newWalletView(w))
}

func (h *DriverHandler) ComplaintsAgainstMe(c *gin.Context) {
	cs, err := h.complaints.ListByDriver(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": newComplaintViews(cs)})
}

type updateLocationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req updateLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.locations.Report(c.Request.Context(), middleware.CallerID(c), types.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *DriverHandler) GoOffline(c *gin.Context) {
	if err := h.locations.GoOffline(c.Request.Context(), middleware.CallerID(c)); err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
