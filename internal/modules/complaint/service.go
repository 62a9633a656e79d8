// README: Complaint service: filing, penalty logging and admin moderation.
package complaint

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ridepool/internal/fault"
	"ridepool/internal/modules/account"
	"ridepool/internal/types"
)

const (
	minMessageLen = 10
	maxMessageLen = 500
)

const maxPauseDays = 365

type Service struct {
	store    *Store
	accounts *account.Store
	log      *zap.Logger
}

func NewService(store *Store, accounts *account.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, accounts: accounts, log: log}
}

type FileCommand struct {
	UserID   types.ID
	DriverID types.ID
	TripID   types.ID
	Message  string
}

// File records a complaint against a driver the user actually rode with,
// then re-evaluates the driver's penalty standing.
func (s *Service) File(ctx context.Context, cmd FileCommand) (*Complaint, error) {
	if l := len(cmd.Message); l < minMessageLen || l > maxMessageLen {
		return nil, fault.Validation("message must be between %d and %d characters", minMessageLen, maxMessageLen)
	}
	if cmd.DriverID == "" || cmd.TripID == "" {
		return nil, fault.Validation("driver id and trip id are required")
	}

	c := &Complaint{
		ID:        types.ID(uuid.NewString()),
		UserID:    cmd.UserID,
		DriverID:  cmd.DriverID,
		TripID:    cmd.TripID,
		Message:   cmd.Message,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	count, penalty, err := s.store.File(ctx, c)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = c.CreatedAt

	fields := []zap.Field{
		zap.String("complaint_id", string(c.ID)),
		zap.String("driver_id", string(c.DriverID)),
		zap.Int("complaint_count", count),
	}
	if penalty != nil {
		fields = append(fields, zap.String("penalty", string(penalty.Status)))
	}
	s.log.Info("complaint filed", fields...)
	return c, nil
}

// Process applies an admin verdict to a complaint.
func (s *Service) Process(ctx context.Context, complaintID types.ID, action Action) (*Complaint, error) {
	status, ok := actionStatus[action]
	if !ok {
		return nil, fault.Validation("unknown action %q", action)
	}
	if err := s.store.SetStatus(ctx, complaintID, status); err != nil {
		return nil, err
	}
	s.log.Info("complaint processed",
		zap.String("complaint_id", string(complaintID)),
		zap.String("action", string(action)),
	)
	return s.store.Get(ctx, complaintID)
}

// PauseDriver suspends a driver for a number of days, admin-initiated.
// Returns the suspension deadline that was persisted.
func (s *Service) PauseDriver(ctx context.Context, driverID types.ID, days int) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, fault.Validation("days must be positive")
	}
	if days > maxPauseDays {
		return time.Time{}, fault.Validation("days must be at most %d", maxPauseDays)
	}
	until := time.Now().AddDate(0, 0, days)
	if err := s.accounts.SetDriverStatus(ctx, driverID, account.DriverPaused, &until); err != nil {
		return time.Time{}, err
	}
	s.log.Info("driver paused",
		zap.String("driver_id", string(driverID)),
		zap.Int("days", days),
	)
	return until, nil
}

// BanDriver bans a driver unconditionally, admin-initiated.
func (s *Service) BanDriver(ctx context.Context, driverID types.ID) error {
	if err := s.accounts.SetDriverStatus(ctx, driverID, account.DriverBanned, nil); err != nil {
		return err
	}
	s.log.Info("driver banned", zap.String("driver_id", string(driverID)))
	return nil
}

// ReinstateDriver clears a driver's suspension or ban, admin-initiated.
func (s *Service) ReinstateDriver(ctx context.Context, driverID types.ID) error {
	if err := s.accounts.SetDriverStatus(ctx, driverID, account.DriverActive, nil); err != nil {
		return err
	}
	s.log.Info("driver reinstated", zap.String("driver_id", string(driverID)))
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Complaint, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID types.ID) ([]Complaint, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID) ([]Complaint, error) {
	return s.store.ListByDriver(ctx, driverID)
}

func (s *Service) ListAll(ctx context.Context) ([]Complaint, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	return s.store.GetStats(ctx)
}
