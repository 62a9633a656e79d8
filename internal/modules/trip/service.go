// README: Trip service implements the lifecycle transitions, booking and settlement.
package trip

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ridepool/internal/fault"
	"ridepool/internal/modules/wallet"
	"ridepool/internal/types"
)

// PricePerKm is the flat per-kilometre rate used by the dispatch-style
// booking path. Driver-proposed trips carry a driver-set price instead.
const PricePerKm = 3.0

const (
	defaultSeats       = 4
	defaultVehicleType = "STANDARD"
)

// NearbyFinder surfaces driver IDs close to a point. Used to bias the
// booking path toward nearby drivers; best effort only.
type NearbyFinder interface {
	NearbyDriverIDs(ctx context.Context, origin types.Point, radiusKm float64, limit int) ([]string, error)
}

type Service struct {
	store     *Store
	wallets   *wallet.Store
	nearby    NearbyFinder
	estimator DistanceEstimator
	log       *zap.Logger
}

// NewService wires the trip service. nearby and estimator may be nil; the
// service then skips proximity biasing and road-distance refinement.
func NewService(store *Store, wallets *wallet.Store, nearby NearbyFinder, estimator DistanceEstimator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, wallets: wallets, nearby: nearby, estimator: estimator, log: log}
}

type ProposeCommand struct {
	DriverID             types.ID
	PickupAddress        string
	Pickup               types.Point
	DestinationAddress   string
	Destination          types.Point
	ProposedPrice        float64
	DepartureTime        time.Time
	ExpiresAt            time.Time
	EstimatedDurationMin int
	AvailableSeats       int
	VehicleType          string
}

type BookCommand struct {
	UserID             types.ID
	PickupAddress      string
	Pickup             types.Point
	DestinationAddress string
	Destination        types.Point
	DepartureTime      time.Time
	AvailableSeats     int
	VehicleType        string
}

// Propose creates an AVAILABLE trip offered by a driver. The price is
// driver-set; distance is computed and stored for filtering.
func (s *Service) Propose(ctx context.Context, cmd ProposeCommand) (*Trip, error) {
	if err := validateRoute(cmd.PickupAddress, cmd.Pickup, cmd.DestinationAddress, cmd.Destination); err != nil {
		return nil, err
	}
	if cmd.ProposedPrice <= 0 {
		return nil, fault.Validation("proposed price must be positive")
	}
	if cmd.DepartureTime.IsZero() {
		return nil, fault.Validation("departure time is required")
	}
	now := time.Now()
	if !cmd.DepartureTime.After(now) {
		return nil, fault.Validation("departure time must be in the future")
	}
	expiresAt := cmd.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = cmd.DepartureTime
	}
	if !expiresAt.After(now) {
		return nil, fault.Validation("expiry must be in the future")
	}
	seats := cmd.AvailableSeats
	if seats == 0 {
		seats = defaultSeats
	}
	if seats < 1 || seats > 8 {
		return nil, fault.Validation("available seats must be between 1 and 8")
	}
	vehicleType := cmd.VehicleType
	if vehicleType == "" {
		vehicleType = defaultVehicleType
	}

	t := &Trip{
		ID:                   newID(),
		DriverID:             cmd.DriverID,
		Status:               StatusAvailable,
		PickupAddress:        cmd.PickupAddress,
		Pickup:               cmd.Pickup,
		DestinationAddress:   cmd.DestinationAddress,
		Destination:          cmd.Destination,
		DistanceKm:           s.routeDistanceKm(ctx, cmd.Pickup, cmd.Destination),
		ProposedPrice:        types.Round2(cmd.ProposedPrice),
		DepartureTime:        cmd.DepartureTime,
		ExpiresAt:            expiresAt,
		EstimatedDurationMin: cmd.EstimatedDurationMin,
		AvailableSeats:       seats,
		VehicleType:          vehicleType,
		CreatedAt:            now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("trip proposed",
		zap.String("trip_id", string(t.ID)),
		zap.String("driver_id", string(t.DriverID)),
		zap.Float64("distance_km", t.DistanceKm),
		zap.Float64("proposed_price", t.ProposedPrice),
	)
	return t, nil
}

// Book creates a trip for a rider and assigns an available driver on the
// spot. The trip starts life ACCEPTED with the rider already bound.
func (s *Service) Book(ctx context.Context, cmd BookCommand) (*Trip, error) {
	if err := validateRoute(cmd.PickupAddress, cmd.Pickup, cmd.DestinationAddress, cmd.Destination); err != nil {
		return nil, err
	}
	now := time.Now()
	departure := cmd.DepartureTime
	if departure.IsZero() {
		departure = now
	}
	seats := cmd.AvailableSeats
	if seats == 0 {
		seats = defaultSeats
	}
	vehicleType := cmd.VehicleType
	if vehicleType == "" {
		vehicleType = defaultVehicleType
	}

	var preferred []string
	if s.nearby != nil {
		ids, err := s.nearby.NearbyDriverIDs(ctx, cmd.Pickup, 10, 20)
		if err != nil {
			s.log.Warn("nearby driver lookup failed", zap.Error(err))
		} else {
			preferred = ids
		}
	}
	driverID, err := s.store.PickAvailableDriver(ctx, preferred)
	if err != nil {
		return nil, err
	}

	distance := s.routeDistanceKm(ctx, cmd.Pickup, cmd.Destination)
	acceptedAt := now
	t := &Trip{
		ID:                 newID(),
		DriverID:           driverID,
		UserID:             &cmd.UserID,
		Status:             StatusAccepted,
		PickupAddress:      cmd.PickupAddress,
		Pickup:             cmd.Pickup,
		DestinationAddress: cmd.DestinationAddress,
		Destination:        cmd.Destination,
		DistanceKm:         distance,
		ProposedPrice:      types.Round2(distance * PricePerKm),
		DepartureTime:      departure,
		ExpiresAt:          departure,
		AvailableSeats:     seats,
		VehicleType:        vehicleType,
		CreatedAt:          now,
		AcceptedAt:         &acceptedAt,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("trip booked",
		zap.String("trip_id", string(t.ID)),
		zap.String("driver_id", string(driverID)),
		zap.String("user_id", string(cmd.UserID)),
		zap.Float64("price", t.ProposedPrice),
	)
	return t, nil
}

// Accept binds the rider to an AVAILABLE, unexpired trip. Losing the race
// or hitting an expired trip both come back as not found.
func (s *Service) Accept(ctx context.Context, userID, tripID types.ID) (*Trip, error) {
	ok, err := s.store.Accept(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The row may still read AVAILABLE past its deadline; flip it so
		// later reads agree with the refusal.
		if err := s.store.MarkExpired(ctx, tripID); err != nil {
			s.log.Warn("expiry flip failed", zap.String("trip_id", string(tripID)), zap.Error(err))
		}
		return nil, fault.NotFound("trip not available")
	}
	s.log.Info("trip accepted", zap.String("trip_id", string(tripID)), zap.String("user_id", string(userID)))
	return s.store.Get(ctx, tripID)
}

func (s *Service) Start(ctx context.Context, driverID, tripID types.ID) (*Trip, error) {
	ok, err := s.store.Start(ctx, tripID, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.NotFound("trip not found or not ready to start")
	}
	s.log.Info("trip started", zap.String("trip_id", string(tripID)))
	return s.store.Get(ctx, tripID)
}

// Cancel withdraws a driver's own trip. Only AVAILABLE trips can be
// cancelled; an accepted or running trip must play out.
func (s *Service) Cancel(ctx context.Context, driverID, tripID types.ID) (*Trip, error) {
	ok, err := s.store.Cancel(ctx, tripID, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.NotFound("trip not found or not cancellable")
	}
	s.log.Info("trip cancelled", zap.String("trip_id", string(tripID)))
	return s.store.Get(ctx, tripID)
}

// Complete settles a STARTED trip: the fee split, both wallet credits and
// the status flip commit together or not at all.
func (s *Service) Complete(ctx context.Context, driverID, tripID types.ID) (*Trip, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := s.store.GetForUpdateTx(ctx, tx, tripID, driverID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, StatusCompleted) {
		return nil, fault.NotFound("trip is not in progress")
	}

	st := wallet.Compute(t.ProposedPrice)
	ok, err := s.store.CompleteTx(ctx, tx, t.ID, st.FinalPrice, st.FeeAmount, st.DriverNetAmount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.NotFound("trip is not in progress")
	}
	if err := s.wallets.ApplyTx(ctx, tx, t.DriverID, st); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info("trip completed",
		zap.String("trip_id", string(t.ID)),
		zap.Float64("final_price", st.FinalPrice),
		zap.Float64("fee_amount", st.FeeAmount),
		zap.Float64("driver_net", st.DriverNetAmount),
	)
	return s.store.Get(ctx, tripID)
}

// Get returns a trip, reporting a deadline-passed AVAILABLE row as EXPIRED.
func (s *Service) Get(ctx context.Context, id types.ID) (*Trip, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Expired(time.Now()) {
		if err := s.store.MarkExpired(ctx, id); err != nil {
			s.log.Warn("expiry flip failed", zap.String("trip_id", string(id)), zap.Error(err))
		}
		t.Status = StatusExpired
	}
	return t, nil
}

func (s *Service) ListAvailable(ctx context.Context, f Filter) ([]Trip, error) {
	return s.store.ListAvailable(ctx, f)
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID) ([]Trip, error) {
	return s.store.ListByDriver(ctx, driverID)
}

func (s *Service) ListByUser(ctx context.Context, userID types.ID) ([]Trip, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]Trip, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) AvailableDrivers(ctx context.Context) ([]types.ID, error) {
	return s.store.ListAvailableDrivers(ctx)
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	return s.store.GetStats(ctx)
}

// routeDistanceKm prefers the road distance when an estimator is wired,
// falling back to great-circle distance.
func (s *Service) routeDistanceKm(ctx context.Context, pickup, destination types.Point) float64 {
	if s.estimator != nil {
		km, err := s.estimator.RoadDistanceKm(ctx, pickup, destination)
		if err == nil {
			return types.Round2(km)
		}
		s.log.Warn("road distance lookup failed, using great-circle distance", zap.Error(err))
	}
	return types.Round2(haversineKm(pickup, destination))
}

func validateRoute(pickupAddr string, pickup types.Point, destAddr string, dest types.Point) error {
	if pickupAddr == "" {
		return fault.Validation("pickup address is required")
	}
	if destAddr == "" {
		return fault.Validation("destination address is required")
	}
	if !pickup.Valid() {
		return fault.Validation("pickup coordinates out of range")
	}
	if !dest.Valid() {
		return fault.Validation("destination coordinates out of range")
	}
	return nil
}

func newID() types.ID {
	return types.ID(uuid.NewString())
}
