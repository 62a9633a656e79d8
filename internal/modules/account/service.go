// README: Account service: registration per role, login, token verification.
package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ridepool/internal/fault"
	"ridepool/internal/types"
)

const bcryptCost = 12

type Service struct {
	store    *Store
	secret   string
	tokenTTL time.Duration
	log      *zap.Logger
}

func NewService(store *Store, secret string, tokenTTL time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL, log: log}
}

type RegisterUserCommand struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type RegisterDriverCommand struct {
	Email         string
	Password      string
	Name          string
	Phone         string
	LicenseNumber string
	VehicleInfo   string
	Status        DriverStatus // optional; defaults to ACTIVE
}

type RegisterAdminCommand struct {
	Email    string
	Password string
	Name     string
}

// Session is a freshly authenticated account plus its bearer token.
type Session struct {
	Token   string
	Account *Account
}

func (s *Service) RegisterUser(ctx context.Context, cmd RegisterUserCommand) (*Session, error) {
	if err := validateRegistration(cmd.Email, cmd.Password, cmd.Name); err != nil {
		return nil, err
	}
	a := &Account{
		ID:    types.ID(uuid.NewString()),
		Role:  RoleUser,
		Email: cmd.Email,
		Name:  cmd.Name,
		Phone: cmd.Phone,
	}
	return s.create(ctx, a, cmd.Password)
}

func (s *Service) RegisterDriver(ctx context.Context, cmd RegisterDriverCommand) (*Session, error) {
	if err := validateRegistration(cmd.Email, cmd.Password, cmd.Name); err != nil {
		return nil, err
	}
	if err := validateLicense(cmd.LicenseNumber); err != nil {
		return nil, err
	}
	if err := validateVehicle(cmd.VehicleInfo); err != nil {
		return nil, err
	}
	status := cmd.Status
	if status == "" {
		status = DriverActive
	}
	if !ValidDriverStatus(status) {
		return nil, fault.Validation("invalid driver status %q", status)
	}
	a := &Account{
		ID:    types.ID(uuid.NewString()),
		Role:  RoleDriver,
		Email: cmd.Email,
		Name:  cmd.Name,
		Phone: cmd.Phone,
		Driver: &DriverProfile{
			Status:        status,
			LicenseNumber: cmd.LicenseNumber,
			VehicleInfo:   cmd.VehicleInfo,
		},
	}
	return s.create(ctx, a, cmd.Password)
}

func (s *Service) RegisterAdmin(ctx context.Context, cmd RegisterAdminCommand) (*Session, error) {
	if err := validateRegistration(cmd.Email, cmd.Password, cmd.Name); err != nil {
		return nil, err
	}
	a := &Account{
		ID:    types.ID(uuid.NewString()),
		Role:  RoleAdmin,
		Email: cmd.Email,
		Name:  cmd.Name,
	}
	return s.create(ctx, a, cmd.Password)
}

func (s *Service) create(ctx context.Context, a *Account, password string) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = string(hash)

	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	token, err := IssueToken(s.secret, a.ID, a.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	s.log.Info("account registered",
		zap.String("account_id", string(a.ID)),
		zap.String("role", string(a.Role)))
	return &Session{Token: token, Account: a}, nil
}

// Login authenticates an account of the given role. Banned drivers are
// rejected even with valid credentials.
func (s *Service) Login(ctx context.Context, role Role, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, fault.Validation("email and password are required")
	}
	a, err := s.store.GetByEmail(ctx, role, email)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return nil, fault.Auth("invalid credentials")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, fault.Auth("invalid credentials")
	}
	if a.Driver != nil && a.Driver.Status == DriverBanned {
		return nil, fault.Forbidden("driver account is banned")
	}
	token, err := IssueToken(s.secret, a.ID, a.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Account: a}, nil
}

// Verify parses a bearer token and loads the account behind it. Every
// request re-reads the account, so revoked or banned accounts lose access
// without waiting for token expiry.
func (s *Service) Verify(ctx context.Context, raw string) (*Account, error) {
	claims, err := ParseToken(s.secret, raw)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetByID(ctx, types.ID(claims.AccountID))
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return nil, fault.Auth("account no longer exists")
		}
		return nil, err
	}
	if string(a.Role) != claims.Role {
		return nil, fault.Auth("invalid token")
	}
	if a.Driver != nil && a.Driver.Status == DriverBanned {
		return nil, fault.Forbidden("driver account is banned")
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id types.ID) (*Account, error) {
	return s.store.GetByID(ctx, id)
}

// GetDriver returns the account only if it is a driver.
func (s *Service) GetDriver(ctx context.Context, id types.ID) (*Account, error) {
	return s.store.GetDriver(ctx, id)
}

func (s *Service) ListDrivers(ctx context.Context) ([]DriverListItem, error) {
	return s.store.ListDrivers(ctx)
}

func (s *Service) CountByRole(ctx context.Context) (map[Role]int, error) {
	return s.store.CountByRole(ctx)
}

func validateRegistration(email, password, name string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	return validateName(name)
}
