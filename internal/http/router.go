// README: HTTP route registration; role-prefixed groups behind bearer auth.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ridepool/internal/http/handlers"
	"ridepool/internal/http/middleware"
	"ridepool/internal/modules/account"
	"ridepool/internal/modules/complaint"
	"ridepool/internal/modules/location"
	"ridepool/internal/modules/trip"
	"ridepool/internal/modules/wallet"
)

type RouterDeps struct {
	Accounts   *account.Service
	Trips      *trip.Service
	Complaints *complaint.Service
	Wallets    *wallet.Store
	Locations  *location.Service
	Log        *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(deps.Accounts)
	auth := r.Group("/api/auth")
	{
		auth.POST("/register/user", authHandler.RegisterUser)
		auth.POST("/register/driver", authHandler.RegisterDriver)
		auth.POST("/register/admin", authHandler.RegisterAdmin)
		auth.POST("/login/user", authHandler.LoginUser)
		auth.POST("/login/driver", authHandler.LoginDriver)
		auth.POST("/login/admin", authHandler.LoginAdmin)
	}

	authed := middleware.Authenticate(deps.Accounts)

	userHandler := handlers.NewUserHandler(deps.Trips, deps.Complaints, deps.Locations)
	user := r.Group("/api/user", authed, middleware.RequireRole(account.RoleUser))
	{
		user.GET("/me", handlers.Me)
		user.GET("/trips", userHandler.ListAvailableTrips)
		user.GET("/trips/mine", userHandler.MyTrips)
		user.GET("/trips/:id", userHandler.GetTrip)
		user.POST("/trips/:id/accept", userHandler.AcceptTrip)
		user.POST("/bookings", userHandler.BookTrip)
		user.GET("/drivers/available", userHandler.AvailableDrivers)
		user.GET("/drivers/:id/presence", userHandler.DriverPresence)
		user.POST("/complaints", userHandler.FileComplaint)
		user.GET("/complaints", userHandler.MyComplaints)
	}

	driverHandler := handlers.NewDriverHandler(deps.Trips, deps.Complaints, deps.Wallets, deps.Locations)
	driver := r.Group("/api/driver", authed, middleware.RequireRole(account.RoleDriver))
	{
		driver.GET("/me", handlers.Me)
		driver.POST("/trips", driverHandler.ProposeTrip)
		driver.GET("/trips", driverHandler.MyTrips)
		driver.POST("/trips/:id/start", driverHandler.StartTrip)
		driver.POST("/trips/:id/complete", driverHandler.CompleteTrip)
		driver.POST("/trips/:id/cancel", driverHandler.CancelTrip)
		driver.GET("/wallet", driverHandler.Wallet)
		driver.GET("/complaints", driverHandler.ComplaintsAgainstMe)
		driver.PUT("/location", driverHandler.UpdateLocation)
		driver.DELETE("/location", driverHandler.GoOffline)
	}

	adminHandler := handlers.NewAdminHandler(deps.Accounts, deps.Trips, deps.Complaints, deps.Wallets)
	admin := r.Group("/api/admin", authed, middleware.RequireRole(account.RoleAdmin))
	{
		admin.GET("/me", handlers.Me)
		admin.GET("/stats", adminHandler.PlatformStats)
		admin.GET("/trips", adminHandler.ListTrips)
		admin.GET("/drivers", adminHandler.ListDrivers)
		admin.POST("/drivers", adminHandler.CreateDriver)
		admin.GET("/drivers/:id", adminHandler.GetDriver)
		admin.POST("/drivers/:id/pause", adminHandler.PauseDriver)
		admin.POST("/drivers/:id/ban", adminHandler.BanDriver)
		admin.POST("/drivers/:id/reinstate", adminHandler.ReinstateDriver)
		admin.GET("/complaints", adminHandler.ListComplaints)
		admin.GET("/complaints/stats", adminHandler.ComplaintStats)
		admin.PUT("/complaints/:id/process", adminHandler.ProcessComplaint)
		admin.GET("/wallet", adminHandler.PlatformWallet)
	}

	return r
}
