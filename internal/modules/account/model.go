// README: Account aggregate; one table, role-specific fields on DriverProfile.
package account

import (
	"time"

	"ridepool/internal/types"
)

type Role string

const (
	RoleUser   Role = "USER"
	RoleDriver Role = "DRIVER"
	RoleAdmin  Role = "ADMIN"
)

type DriverStatus string

const (
	DriverActive DriverStatus = "ACTIVE"
	DriverPaused DriverStatus = "PAUSED"
	DriverBanned DriverStatus = "BANNED"
)

func ValidDriverStatus(s DriverStatus) bool {
	return s == DriverActive || s == DriverPaused || s == DriverBanned
}

// Account is the tagged union over USER / DRIVER / ADMIN. Driver is nil
// unless Role == RoleDriver.
type Account struct {
	ID           types.ID
	Role         Role
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Driver       *DriverProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type DriverProfile struct {
	Status        DriverStatus
	LicenseNumber string
	VehicleInfo   string
	Rating        float64
	PausedUntil   *time.Time
}

// DriverListItem is the admin listing row: driver plus wallet figures and
// the all-time complaint tally.
type DriverListItem struct {
	Account
	WalletBalance     float64
	WalletTotalEarned float64
	ComplaintCount    int
}
