// README: Admin endpoints: moderation, driver management, platform wallet.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepool/internal/modules/account"
	"ridepool/internal/modules/complaint"
	"ridepool/internal/modules/trip"
	"ridepool/internal/modules/wallet"
	"ridepool/internal/types"
)

type AdminHandler struct {
	accounts   *account.Service
	trips      *trip.Service
	complaints *complaint.Service
	wallets    *wallet.Store
}

func NewAdminHandler(accounts *account.Service, trips *trip.Service, complaints *complaint.Service, wallets *wallet.Store) *AdminHandler {
	return &AdminHandler{accounts: accounts, trips: trips, complaints: complaints, wallets: wallets}
}

func (h *AdminHandler) ListTrips(c *gin.Context) {
	trips, err := h.trips.ListAll(c.Request.Context())
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": newTripViews(trips)})
}

type createDriverReq struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	VehicleInfo   string `json:"vehicle_info"`
	Status        string `json:"status"`
}

// CreateDriver registers a driver on an admin's behalf, optionally with a
// non-default status. The wallet is created in the same transaction.
func (h *AdminHandler) CreateDriver(c *gin.Context) {
	var req createDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	s, err := h.accounts.RegisterDriver(c.Request.Context(), account.RegisterDriverCommand{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		VehicleInfo:   req.VehicleInfo,
		Status:        account.DriverStatus(req.Status),
	})
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAccountView(s.Account))
}

func (h *AdminHandler) GetDriver(c *gin.Context) {
	a, err := h.accounts.GetDriver(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountView(a))
}

// PlatformStats aggregates account, trip, and complaint counters with
// settled revenue.
func (h *AdminHandler) PlatformStats(c *gin.Context) {
	ctx := c.Request.Context()
	roles, err := h.accounts.CountByRole(ctx)
	if err != nil {
		writeFault(c, err)
		return
	}
	ts, err := h.trips.GetStats(ctx)
	if err != nil {
		writeFault(c, err)
		return
	}
	cs, err := h.complaints.GetStats(ctx)
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":   roles[account.RoleUser],
		"drivers": roles[account.RoleDriver],
		"trips": gin.H{
			"total":        ts.Total,
			"by_status":    ts.ByStatus,
			"revenue":      ts.Revenue,
			"gross_volume": ts.GrossVolume,
		},
		"complaints": gin.H{
			"total":     cs.Total,
			"pending":   cs.Pending,
			"resolved":  cs.Resolved,
			"rejected":  cs.Rejected,
			"escalated": cs.Escalated,
		},
	})
}

type driverListView struct {
	accountView
	WalletBalance     float64 `json:"wallet_balance"`
	WalletTotalEarned float64 `json:"wallet_total_earned"`
	ComplaintCount    int     `json:"complaint_count"`
}

func (h *AdminHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.accounts.ListDrivers(c.Request.Context())
	if err != nil {
		writeFault(c, err)
		return
	}
	out := make([]driverListView, len(drivers))
	for i := range drivers {
		out[i] = driverListView{
			accountView:       newAccountView(&drivers[i].Account),
			WalletBalance:     drivers[i].WalletBalance,
			WalletTotalEarned: drivers[i].WalletTotalEarned,
			ComplaintCount:    drivers[i].ComplaintCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"drivers": out})
}

func (h *AdminHandler) ListComplaints(c *gin.Context) {
	cs, err := h.complaints.ListAll(c.Request.Context())
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": newComplaintViews(cs)})
}

func (h *AdminHandler) ComplaintStats(c *gin.Context) {
	st, err := h.complaints.GetStats(c.Request.Context())
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     st.Total,
		"pending":   st.Pending,
		"resolved":  st.Resolved,
		"rejected":  st.Rejected,
		"escalated": st.Escalated,
	})
}

type processComplaintReq struct {
	Action string `json:"action"`
}

func (h *AdminHandler) ProcessComplaint(c *gin.Context) {
	var req processComplaintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cp, err := h.complaints.Process(c.Request.Context(), types.ID(c.Param("id")), complaint.Action(req.Action))
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newComplaintView(cp))
}

type pauseDriverReq struct {
	Days int `json:"days"`
}

func (h *AdminHandler) PauseDriver(c *gin.Context) {
	var req pauseDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	driverID := types.ID(c.Param("id"))
	until, err := h.complaints.PauseDriver(c.Request.Context(), driverID, req.Days)
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"driver_id":    driverID,
		"status":       account.DriverPaused,
		"paused_until": until,
	})
}

func (h *AdminHandler) BanDriver(c *gin.Context) {
	driverID := types.ID(c.Param("id"))
	if err := h.complaints.BanDriver(c.Request.Context(), driverID); err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver_id": driverID, "status": account.DriverBanned})
}

func (h *AdminHandler) ReinstateDriver(c *gin.Context) {
	driverID := types.ID(c.Param("id"))
	if err := h.complaints.ReinstateDriver(c.Request.Context(), driverID); err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver_id": driverID, "status": account.DriverActive})
}

func (h *AdminHandler) PlatformWallet(c *gin.Context) {
	w, err := h.wallets.AdminWallet(c.Request.Context())
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusOK, newWalletView(w))
}
