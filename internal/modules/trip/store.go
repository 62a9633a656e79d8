// README: Trip store backed by PostgreSQL; lifecycle moves are conditional writes.
package trip

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepool/internal/fault"
	"ridepool/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Begin opens a transaction on the underlying pool. The service uses it to
// span the completion update and the wallet credits.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.db.Begin(ctx)
}

// activeDriver matches drivers who may carry riders: ACTIVE, or PAUSED with a
// lapsed deadline. The accounts row is not rewritten here; admin reinstatement
// or the next penalty evaluation does that.
const activeDriver = `(a.status = 'ACTIVE' OR (a.status = 'PAUSED' AND a.paused_until IS NOT NULL AND a.paused_until <= now()))`

const tripColumns = `
	t.id, t.driver_id, t.user_id, t.status,
	t.pickup_address, t.pickup_lat, t.pickup_lng,
	t.destination_address, t.destination_lat, t.destination_lng,
	t.distance_km, t.proposed_price, t.final_price, t.fee_amount, t.driver_net_amount,
	t.departure_time, t.expires_at, t.estimated_duration_min, t.available_seats, t.vehicle_type,
	t.created_at, t.accepted_at, t.started_at, t.completed_at, t.cancelled_at`

func (s *Store) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, driver_id, user_id, status,
			pickup_address, pickup_lat, pickup_lng,
			destination_address, destination_lat, destination_lng,
			distance_km, proposed_price,
			departure_time, expires_at, estimated_duration_min, available_seats, vehicle_type,
			created_at, accepted_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10,
			$11, $12,
			$13, $14, $15, $16, $17,
			$18, $19
		)`,
		string(t.ID),
		string(t.DriverID),
		toStringPtr(t.UserID),
		string(t.Status),
		t.PickupAddress, t.Pickup.Lat, t.Pickup.Lng,
		t.DestinationAddress, t.Destination.Lat, t.Destination.Lng,
		t.DistanceKm, t.ProposedPrice,
		t.DepartureTime, t.ExpiresAt, t.EstimatedDurationMin, t.AvailableSeats, t.VehicleType,
		t.CreatedAt, t.AcceptedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT`+tripColumns+`
		FROM trips t
		WHERE t.id = $1`, string(id),
	)
	return scanTrip(row)
}

// Accept binds the user and moves AVAILABLE -> ACCEPTED in one conditional
// write. The expiry deadline is part of the predicate, so a stale AVAILABLE
// row past its deadline loses the same way a raced one does.
func (s *Store) Accept(ctx context.Context, id, userID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = $1,
		    user_id = $2,
		    accepted_at = now()
		WHERE id = $3 AND status = $4 AND expires_at > now()`,
		string(StatusAccepted), string(userID), string(id), string(StatusAvailable),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkExpired flips a deadline-passed AVAILABLE trip to EXPIRED. Best effort;
// zero rows affected just means somebody else got there first.
func (s *Store) MarkExpired(ctx context.Context, id types.ID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = $1
		WHERE id = $2 AND status = $3 AND expires_at <= now()`,
		string(StatusExpired), string(id), string(StatusAvailable),
	)
	return err
}

func (s *Store) Start(ctx context.Context, id, driverID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = $1,
		    started_at = now()
		WHERE id = $2 AND driver_id = $3 AND status = $4`,
		string(StatusStarted), string(id), string(driverID), string(StatusAccepted),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Cancel(ctx context.Context, id, driverID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = $1,
		    cancelled_at = now()
		WHERE id = $2 AND driver_id = $3 AND status = $4`,
		string(StatusCancelled), string(id), string(driverID), string(StatusAvailable),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// GetForUpdateTx loads a driver's trip with a row lock inside tx.
func (s *Store) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id, driverID types.ID) (*Trip, error) {
	row := tx.QueryRow(ctx, `
		SELECT`+tripColumns+`
		FROM trips t
		WHERE t.id = $1 AND t.driver_id = $2
		FOR UPDATE`, string(id), string(driverID),
	)
	return scanTrip(row)
}

// CompleteTx records the settlement breakdown and moves STARTED -> COMPLETED
// inside tx.
func (s *Store) CompleteTx(ctx context.Context, tx pgx.Tx, id types.ID, finalPrice, feeAmount, driverNet float64) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE trips
		SET status = $1,
		    final_price = $2,
		    fee_amount = $3,
		    driver_net_amount = $4,
		    completed_at = now()
		WHERE id = $5 AND status = $6`,
		string(StatusCompleted), finalPrice, feeAmount, driverNet, string(id), string(StatusStarted),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListAvailable returns unexpired AVAILABLE trips matching the filter,
// soonest departure first.
func (s *Store) ListAvailable(ctx context.Context, f Filter) ([]Trip, error) {
	where, args := f.buildWhere(1)
	query := `
		SELECT` + tripColumns + `
		FROM trips t
		JOIN accounts a ON a.id = t.driver_id
		WHERE t.status = 'AVAILABLE' AND t.expires_at > now() AND ` + activeDriver + where + `
		ORDER BY t.departure_time ASC
		LIMIT 50`
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTrips(rows)
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+tripColumns+`
		FROM trips t
		WHERE t.driver_id = $1
		ORDER BY t.created_at DESC`, string(driverID),
	)
	if err != nil {
		return nil, err
	}
	return scanTrips(rows)
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+tripColumns+`
		FROM trips t
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	return scanTrips(rows)
}

func (s *Store) ListAll(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+tripColumns+`
		FROM trips t
		ORDER BY t.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	return scanTrips(rows)
}

// PickAvailableDriver selects one ACTIVE driver who is not mid-ride.
// Preferred IDs (e.g. drivers known to be nearby) win over the rest;
// within a tier the pick is random.
func (s *Store) PickAvailableDriver(ctx context.Context, preferred []string) (types.ID, error) {
	if preferred == nil {
		preferred = []string{}
	}
	row := s.db.QueryRow(ctx, `
		SELECT a.id
		FROM accounts a
		WHERE a.role = 'DRIVER'
		  AND `+activeDriver+`
		  AND NOT EXISTS (
			SELECT 1 FROM trips tr
			WHERE tr.driver_id = a.id
			  AND tr.status IN ('ACCEPTED', 'STARTED')
		  )
		ORDER BY CASE WHEN a.id = ANY($1) THEN 0 ELSE 1 END, random()
		LIMIT 1`, preferred,
	)
	var id string
	err := row.Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fault.Conflict("no drivers available")
	}
	if err != nil {
		return "", err
	}
	return types.ID(id), nil
}

// ListAvailableDrivers returns the IDs of every ACTIVE driver not mid-ride.
func (s *Store) ListAvailableDrivers(ctx context.Context) ([]types.ID, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id
		FROM accounts a
		WHERE a.role = 'DRIVER'
		  AND `+activeDriver+`
		  AND NOT EXISTS (
			SELECT 1 FROM trips tr
			WHERE tr.driver_id = a.id
			  AND tr.status IN ('ACCEPTED', 'STARTED')
		  )
		ORDER BY a.created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, types.ID(id))
	}
	return ids, rows.Err()
}

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	var userID sql.NullString
	var finalPrice, feeAmount, driverNet sql.NullFloat64
	var acceptedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.DriverID, &userID, &t.Status,
		&t.PickupAddress, &t.Pickup.Lat, &t.Pickup.Lng,
		&t.DestinationAddress, &t.Destination.Lat, &t.Destination.Lng,
		&t.DistanceKm, &t.ProposedPrice, &finalPrice, &feeAmount, &driverNet,
		&t.DepartureTime, &t.ExpiresAt, &t.EstimatedDurationMin, &t.AvailableSeats, &t.VehicleType,
		&t.CreatedAt, &acceptedAt, &startedAt, &completedAt, &cancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("trip not found")
	}
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		u := types.ID(userID.String)
		t.UserID = &u
	}
	t.FinalPrice = toFloatPtr(finalPrice)
	t.FeeAmount = toFloatPtr(feeAmount)
	t.DriverNetAmount = toFloatPtr(driverNet)
	t.AcceptedAt = toTimePtr(acceptedAt)
	t.StartedAt = toTimePtr(startedAt)
	t.CompletedAt = toTimePtr(completedAt)
	t.CancelledAt = toTimePtr(cancelledAt)
	return &t, nil
}

// Stats are platform-wide trip counters plus revenue from completed trips.
type Stats struct {
	Total       int
	ByStatus    map[Status]int
	Revenue     float64 // platform fee income
	GrossVolume float64 // final prices settled
}

func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	rows, err := s.db.Query(ctx, `SELECT status, count(*) FROM trips GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	st := &Stats{ByStatus: make(map[Status]int)}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		st.ByStatus[Status(status)] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRow(ctx, `
		SELECT COALESCE(sum(fee_amount), 0), COALESCE(sum(final_price), 0)
		FROM trips
		WHERE status = 'COMPLETED'`,
	).Scan(&st.Revenue, &st.GrossVolume)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func scanTrips(rows pgx.Rows) ([]Trip, error) {
	defer rows.Close()
	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
