// README: Account store backed by PostgreSQL; wallet rows are created in the same transaction.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepool/internal/fault"
	"ridepool/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts the account and, for drivers and admins, its wallet in one
// transaction. Wallets and their owners must never exist separately.
func (s *Store) Create(ctx context.Context, a *Account) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var (
		status  *string
		license *string
		vehicle *string
		rating  *float64
	)
	if a.Driver != nil {
		st := string(a.Driver.Status)
		status = &st
		license = &a.Driver.LicenseNumber
		vehicle = &a.Driver.VehicleInfo
		rating = &a.Driver.Rating
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (
			id, role, email, password_hash, name, phone,
			status, license_number, vehicle_info, rating,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())`,
		string(a.ID), string(a.Role), a.Email, a.PasswordHash, a.Name, a.Phone,
		status, license, vehicle, rating,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fault.Conflict("email already registered")
		}
		return err
	}

	if a.Role == RoleDriver || a.Role == RoleAdmin {
		_, err = tx.Exec(ctx, `
			INSERT INTO wallets (id, account_id, balance, total_earned, total_tva_collected, updated_at)
			VALUES ($1, $2, 0, 0, 0, now())`,
			uuid.NewString(), string(a.ID),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) GetByEmail(ctx context.Context, role Role, email string) (*Account, error) {
	return s.scanOne(ctx, `
		SELECT id, role, email, password_hash, name, phone,
		       status, license_number, vehicle_info, rating, paused_until,
		       created_at, updated_at
		FROM accounts
		WHERE role = $1 AND email = $2`, string(role), email)
}

func (s *Store) GetByID(ctx context.Context, id types.ID) (*Account, error) {
	return s.scanOne(ctx, `
		SELECT id, role, email, password_hash, name, phone,
		       status, license_number, vehicle_info, rating, paused_until,
		       created_at, updated_at
		FROM accounts
		WHERE id = $1`, string(id))
}

// GetDriver returns the account only if it exists and has the driver role.
func (s *Store) GetDriver(ctx context.Context, id types.ID) (*Account, error) {
	return s.scanOne(ctx, `
		SELECT id, role, email, password_hash, name, phone,
		       status, license_number, vehicle_info, rating, paused_until,
		       created_at, updated_at
		FROM accounts
		WHERE id = $1 AND role = 'DRIVER'`, string(id))
}

// SetDriverStatus updates the driver status, and pausedUntil when the new
// status is PAUSED. pausedUntil is cleared on any other status.
func (s *Store) SetDriverStatus(ctx context.Context, id types.ID, status DriverStatus, pausedUntil *time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE accounts
		SET status = $1, paused_until = $2, updated_at = now()
		WHERE id = $3 AND role = 'DRIVER'`,
		string(status), pausedUntil, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.NotFound("driver not found")
	}
	return nil
}

// ListDrivers returns every driver with wallet figures and complaint count,
// newest first.
func (s *Store) ListDrivers(ctx context.Context) ([]DriverListItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.role, a.email, a.password_hash, a.name, a.phone,
		       a.status, a.license_number, a.vehicle_info, a.rating, a.paused_until,
		       a.created_at, a.updated_at,
		       COALESCE(w.balance, 0), COALESCE(w.total_earned, 0),
		       (SELECT count(*) FROM complaints c WHERE c.driver_id = a.id)
		FROM accounts a
		LEFT JOIN wallets w ON w.account_id = a.id
		WHERE a.role = 'DRIVER'
		ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DriverListItem
	for rows.Next() {
		var (
			item        DriverListItem
			phone       *string
			status      *string
			license     *string
			vehicle     *string
			rating      *float64
			pausedUntil *time.Time
		)
		err := rows.Scan(
			&item.ID, &item.Role, &item.Email, &item.PasswordHash, &item.Name, &phone,
			&status, &license, &vehicle, &rating, &pausedUntil,
			&item.CreatedAt, &item.UpdatedAt,
			&item.WalletBalance, &item.WalletTotalEarned, &item.ComplaintCount,
		)
		if err != nil {
			return nil, err
		}
		if phone != nil {
			item.Phone = *phone
		}
		p := DriverProfile{Status: DriverActive, PausedUntil: pausedUntil}
		if status != nil {
			p.Status = DriverStatus(*status)
		}
		if license != nil {
			p.LicenseNumber = *license
		}
		if vehicle != nil {
			p.VehicleInfo = *vehicle
		}
		if rating != nil {
			p.Rating = *rating
		}
		item.Driver = &p
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) CountByRole(ctx context.Context) (map[Role]int, error) {
	rows, err := s.db.Query(ctx, `SELECT role, count(*) FROM accounts GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Role]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[Role(role)] = n
	}
	return counts, rows.Err()
}

func (s *Store) scanOne(ctx context.Context, sql string, args ...any) (*Account, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fault.NotFound("account not found")
	}
	return scanAccount(rows)
}

func scanAccount(rows pgx.Rows) (*Account, error) {
	var (
		a           Account
		phone       *string
		status      *string
		license     *string
		vehicle     *string
		rating      *float64
		pausedUntil *time.Time
	)
	err := rows.Scan(
		&a.ID, &a.Role, &a.Email, &a.PasswordHash, &a.Name, &phone,
		&status, &license, &vehicle, &rating, &pausedUntil,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		a.Phone = *phone
	}
	if a.Role == RoleDriver {
		p := DriverProfile{Status: DriverActive, PausedUntil: pausedUntil}
		if status != nil {
			p.Status = DriverStatus(*status)
		}
		if license != nil {
			p.LicenseNumber = *license
		}
		if vehicle != nil {
			p.VehicleInfo = *vehicle
		}
		if rating != nil {
			p.Rating = *rating
		}
		a.Driver = &p
	}
	return &a, nil
}
