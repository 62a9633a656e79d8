// README: Shared handler utilities: fault-to-status mapping and response views.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridepool/internal/fault"
	"ridepool/internal/http/middleware"
	"ridepool/internal/modules/account"
	"ridepool/internal/modules/complaint"
	"ridepool/internal/modules/trip"
	"ridepool/internal/modules/wallet"
	"ridepool/internal/types"
)

// Me returns the authenticated caller's own account.
func Me(c *gin.Context) {
	c.JSON(http.StatusOK, newAccountView(middleware.Caller(c)))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeFault maps the error taxonomy onto HTTP status codes. Errors outside
// the taxonomy stay opaque to the client.
func writeFault(c *gin.Context, err error) {
	switch fault.KindOf(err) {
	case fault.KindValidation:
		writeError(c, http.StatusBadRequest, err.Error())
	case fault.KindNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	case fault.KindConflict:
		writeError(c, http.StatusConflict, err.Error())
	case fault.KindAuth:
		writeError(c, http.StatusUnauthorized, err.Error())
	case fault.KindForbidden:
		writeError(c, http.StatusForbidden, err.Error())
	case fault.KindConfiguration:
		writeError(c, http.StatusInternalServerError, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// accountView is the public shape of an account. Password hashes never leave
// the service.
type accountView struct {
	ID            types.ID   `json:"id"`
	Role          string     `json:"role"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone,omitempty"`
	Status        string     `json:"status,omitempty"`
	LicenseNumber string     `json:"license_number,omitempty"`
	VehicleInfo   string     `json:"vehicle_info,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	PausedUntil   *time.Time `json:"paused_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newAccountView(a *account.Account) accountView {
	v := accountView{
		ID:        a.ID,
		Role:      string(a.Role),
		Email:     a.Email,
		Name:      a.Name,
		Phone:     a.Phone,
		CreatedAt: a.CreatedAt,
	}
	if a.Driver != nil {
		v.Status = string(a.Driver.Status)
		v.LicenseNumber = a.Driver.LicenseNumber
		v.VehicleInfo = a.Driver.VehicleInfo
		r := a.Driver.Rating
		v.Rating = &r
		v.PausedUntil = a.Driver.PausedUntil
	}
	return v
}

type sessionView struct {
	Token   string      `json:"token"`
	Account accountView `json:"account"`
}

func newSessionView(s *account.Session) sessionView {
	return sessionView{Token: s.Token, Account: newAccountView(s.Account)}
}

type tripView struct {
	ID                   types.ID    `json:"id"`
	DriverID             types.ID    `json:"driver_id"`
	UserID               *types.ID   `json:"user_id,omitempty"`
	Status               string      `json:"status"`
	PickupAddress        string      `json:"pickup_address"`
	Pickup               types.Point `json:"pickup"`
	DestinationAddress   string      `json:"destination_address"`
	Destination          types.Point `json:"destination"`
	DistanceKm           float64     `json:"distance_km"`
	ProposedPrice        float64     `json:"proposed_price"`
	FinalPrice           *float64    `json:"final_price,omitempty"`
	FeeAmount            *float64    `json:"fee_amount,omitempty"`
	DriverNetAmount      *float64    `json:"driver_net_amount,omitempty"`
	DepartureTime        time.Time   `json:"departure_time"`
	ExpiresAt            time.Time   `json:"expires_at"`
	EstimatedDurationMin int         `json:"estimated_duration_min,omitempty"`
	AvailableSeats       int         `json:"available_seats"`
	VehicleType          string      `json:"vehicle_type"`
	CreatedAt            time.Time   `json:"created_at"`
	AcceptedAt           *time.Time  `json:"accepted_at,omitempty"`
	StartedAt            *time.Time  `json:"started_at,omitempty"`
	CompletedAt          *time.Time  `json:"completed_at,omitempty"`
	CancelledAt          *time.Time  `json:"cancelled_at,omitempty"`
}

func newTripView(t *trip.Trip) tripView {
	return tripView{
		ID:                   t.ID,
		DriverID:             t.DriverID,
		UserID:               t.UserID,
		Status:               string(t.Status),
		PickupAddress:        t.PickupAddress,
		Pickup:               t.Pickup,
		DestinationAddress:   t.DestinationAddress,
		Destination:          t.Destination,
		DistanceKm:           t.DistanceKm,
		ProposedPrice:        t.ProposedPrice,
		FinalPrice:           t.FinalPrice,
		FeeAmount:            t.FeeAmount,
		DriverNetAmount:      t.DriverNetAmount,
		DepartureTime:        t.DepartureTime,
		ExpiresAt:            t.ExpiresAt,
		EstimatedDurationMin: t.EstimatedDurationMin,
		AvailableSeats:       t.AvailableSeats,
		VehicleType:          t.VehicleType,
		CreatedAt:            t.CreatedAt,
		AcceptedAt:           t.AcceptedAt,
		StartedAt:            t.StartedAt,
		CompletedAt:          t.CompletedAt,
		CancelledAt:          t.CancelledAt,
	}
}

func newTripViews(trips []trip.Trip) []tripView {
	out := make([]tripView, len(trips))
	for i := range trips {
		out[i] = newTripView(&trips[i])
	}
	return out
}

type complaintView struct {
	ID        types.ID  `json:"id"`
	UserID    types.ID  `json:"user_id"`
	DriverID  types.ID  `json:"driver_id"`
	TripID    types.ID  `json:"trip_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newComplaintView(cp *complaint.Complaint) complaintView {
	return complaintView{
		ID:        cp.ID,
		UserID:    cp.UserID,
		DriverID:  cp.DriverID,
		TripID:    cp.TripID,
		Message:   cp.Message,
		Status:    string(cp.Status),
		CreatedAt: cp.CreatedAt,
		UpdatedAt: cp.UpdatedAt,
	}
}

func newComplaintViews(cs []complaint.Complaint) []complaintView {
	out := make([]complaintView, len(cs))
	for i := range cs {
		out[i] = newComplaintView(&cs[i])
	}
	return out
}

type walletView struct {
	ID                types.ID  `json:"id"`
	AccountID         types.ID  `json:"account_id"`
	Balance           float64   `json:"balance"`
	TotalEarned       float64   `json:"total_earned"`
	TotalTVACollected float64   `json:"total_tva_collected"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newWalletView(w *wallet.Wallet) walletView {
	return walletView{
		ID:                w.ID,
		AccountID:         w.AccountID,
		Balance:           w.Balance,
		TotalEarned:       w.TotalEarned,
		TotalTVACollected: w.TotalTVACollected,
		UpdatedAt:         w.UpdatedAt,
	}
}
