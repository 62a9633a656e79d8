// README: Location service: driver presence updates and proximity lookups.
package location

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ridepool/internal/fault"
	"ridepool/internal/types"
)

type Service struct {
	store *Store
	log   *zap.Logger
}

func NewService(store *Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// Report records a driver's current position.
func (s *Service) Report(ctx context.Context, driverID types.ID, p types.Point) error {
	if !p.Valid() {
		return fault.Validation("coordinates out of range")
	}
	if err := s.store.Update(ctx, driverID, p); err != nil {
		return err
	}
	s.log.Debug("driver position updated",
		zap.String("driver_id", string(driverID)),
		zap.Float64("lat", p.Lat),
		zap.Float64("lng", p.Lng),
	)
	return nil
}

// GoOffline drops a driver from the presence index.
func (s *Service) GoOffline(ctx context.Context, driverID types.ID) error {
	return s.store.Remove(ctx, driverID)
}

// Presence reports whether a driver is currently online and when they last
// reported a position. A driver that stopped reporting longer than the
// freshness window ago counts as offline.
func (s *Service) Presence(ctx context.Context, driverID types.ID) (time.Time, bool, error) {
	return s.store.LastSeen(ctx, driverID)
}

// NearbyDriverIDs satisfies the trip service's proximity hook.
func (s *Service) NearbyDriverIDs(ctx context.Context, origin types.Point, radiusKm float64, limit int) ([]string, error) {
	if !origin.Valid() {
		return nil, fault.Validation("coordinates out of range")
	}
	if radiusKm <= 0 {
		return nil, fault.Validation("radius must be positive")
	}
	ids, err := s.store.Nearby(ctx, origin, radiusKm, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out, nil
}
