// README: Field validation rules for registration payloads.
package account

import (
	"strings"

	"ridepool/internal/fault"
)

const (
	minPasswordLen = 6
	minNameLen     = 2
	maxNameLen     = 50
	minLicenseLen  = 5
	maxLicenseLen  = 20
	minVehicleLen  = 5
	maxVehicleLen  = 100
)

func validateEmail(email string) error {
	if email == "" {
		return fault.Validation("email is required")
	}
	at := strings.Count(email, "@")
	if at != 1 || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return fault.Validation("invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fault.Validation("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func validateName(name string) error {
	if l := len(name); l < minNameLen || l > maxNameLen {
		return fault.Validation("name must be between %d and %d characters", minNameLen, maxNameLen)
	}
	return nil
}

func validateLicense(license string) error {
	if l := len(license); l < minLicenseLen || l > maxLicenseLen {
		return fault.Validation("license number must be between %d and %d characters", minLicenseLen, maxLicenseLen)
	}
	return nil
}

func validateVehicle(vehicle string) error {
	if l := len(vehicle); l < minVehicleLen || l > maxVehicleLen {
		return fault.Validation("vehicle info must be between %d and %d characters", minVehicleLen, maxVehicleLen)
	}
	return nil
}
