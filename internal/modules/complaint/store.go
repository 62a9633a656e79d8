// README: Complaint store backed by PostgreSQL; filing and penalty share one transaction.
package complaint

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepool/internal/fault"
	"ridepool/internal/modules/account"
	"ridepool/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// File inserts the complaint and applies any penalty the new all-time count
// demands, atomically. The trip must be bound to the filing user and
// proposed by the accused driver, or nothing is written. BANNED drivers are
// never downgraded. Returns the count and the penalty applied, if any.
func (s *Store) File(ctx context.Context, c *Complaint) (int, *Penalty, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback(ctx)

	var rode bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM trips
			WHERE id = $1 AND user_id = $2 AND driver_id = $3
		)`, string(c.TripID), string(c.UserID), string(c.DriverID),
	).Scan(&rode)
	if err != nil {
		return 0, nil, err
	}
	if !rode {
		return 0, nil, fault.NotFound("no trip links this user and driver")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO complaints (id, user_id, driver_id, trip_id, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		string(c.ID), string(c.UserID), string(c.DriverID), string(c.TripID),
		c.Message, string(c.Status), c.CreatedAt,
	)
	if err != nil {
		return 0, nil, err
	}

	var count int
	err = tx.QueryRow(ctx, `
		SELECT count(*) FROM complaints WHERE driver_id = $1`, string(c.DriverID),
	).Scan(&count)
	if err != nil {
		return 0, nil, err
	}

	var current string
	err = tx.QueryRow(ctx, `
		SELECT status FROM accounts
		WHERE id = $1 AND role = 'DRIVER'
		FOR UPDATE`, string(c.DriverID),
	).Scan(&current)
	if err != nil {
		return 0, nil, err
	}

	penalty := EvaluatePenalty(count, time.Now())
	applied := penalty
	if penalty != nil && account.DriverStatus(current) == account.DriverBanned {
		// A ban is sticky; a recount landing in the pause band must not
		// soften it.
		applied = nil
	}
	if applied != nil {
		_, err = tx.Exec(ctx, `
			UPDATE accounts
			SET status = $1, paused_until = $2, updated_at = now()
			WHERE id = $3`,
			string(applied.Status), applied.PausedUntil, string(c.DriverID),
		)
		if err != nil {
			return 0, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, err
	}
	return count, applied, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Complaint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, driver_id, trip_id, message, status, created_at, updated_at
		FROM complaints
		WHERE id = $1`, string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fault.NotFound("complaint not found")
	}
	return scanComplaint(rows)
}

func (s *Store) SetStatus(ctx context.Context, id types.ID, status Status) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE complaints
		SET status = $1, updated_at = now()
		WHERE id = $2`,
		string(status), string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.NotFound("complaint not found")
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]Complaint, error) {
	return s.list(ctx, `WHERE user_id = $1`, string(userID))
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID) ([]Complaint, error) {
	return s.list(ctx, `WHERE driver_id = $1`, string(driverID))
}

func (s *Store) ListAll(ctx context.Context) ([]Complaint, error) {
	return s.list(ctx, ``)
}

// CountByDriver is the all-time complaint tally, any status.
func (s *Store) CountByDriver(ctx context.Context, driverID types.ID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM complaints WHERE driver_id = $1`, string(driverID),
	).Scan(&count)
	return count, err
}

func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'PENDING'),
		       count(*) FILTER (WHERE status = 'RESOLVED'),
		       count(*) FILTER (WHERE status = 'REJECTED'),
		       count(*) FILTER (WHERE status = 'ESCALATED')
		FROM complaints`,
	).Scan(&st.Total, &st.Pending, &st.Resolved, &st.Rejected, &st.Escalated)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]Complaint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, driver_id, trip_id, message, status, created_at, updated_at
		FROM complaints
		`+where+`
		ORDER BY created_at DESC`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanComplaint(rows pgx.Rows) (*Complaint, error) {
	var c Complaint
	err := rows.Scan(
		&c.ID, &c.UserID, &c.DriverID, &c.TripID,
		&c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
