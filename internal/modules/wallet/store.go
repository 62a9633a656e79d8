// README: Wallet store backed by PostgreSQL; credits run inside the caller's transaction.
package wallet

import (
	"context"
	"errors"

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

func (s *Store) GetByAccount(ctx context.Context, accountID types.ID) (*Wallet, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, account_id, balance, total_earned, total_tva_collected, updated_at
		FROM wallets
		WHERE account_id = $1`, string(accountID),
	)
	var w Wallet
	err := row.Scan(&w.ID, &w.AccountID, &w.Balance, &w.TotalEarned, &w.TotalTVACollected, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("wallet not found")
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// AdminWallet resolves the single platform wallet. Zero or several admin
// wallets is a deployment invariant violation, not a caller error.
func (s *Store) AdminWallet(ctx context.Context) (*Wallet, error) {
	rows, err := s.db.Query(ctx, `
		SELECT w.id, w.account_id, w.balance, w.total_earned, w.total_tva_collected, w.updated_at
		FROM wallets w
		JOIN accounts a ON a.id = w.account_id
		WHERE a.role = 'ADMIN'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		var w Wallet
		if err := rows.Scan(&w.ID, &w.AccountID, &w.Balance, &w.TotalEarned, &w.TotalTVACollected, &w.UpdatedAt); err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(wallets) != 1 {
		return nil, fault.Configuration("expected exactly one admin wallet, found %d", len(wallets))
	}
	return &wallets[0], nil
}

// ApplyTx credits the driver wallet with the net amount and the platform
// wallet with the fee, inside the caller's transaction. Either wallet
// missing aborts the whole settlement.
func (s *Store) ApplyTx(ctx context.Context, tx pgx.Tx, driverID types.ID, st Settlement) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wallets
		SET balance = balance + $1,
		    total_earned = total_earned + $1,
		    updated_at = now()
		WHERE account_id = $2`,
		st.DriverNetAmount, string(driverID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.Configuration("driver wallet missing for account %s", driverID)
	}

	rows, err := tx.Query(ctx, `
		SELECT w.id
		FROM wallets w
		JOIN accounts a ON a.id = w.account_id
		WHERE a.role = 'ADMIN'
		FOR UPDATE OF w`)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(ids) != 1 {
		return fault.Configuration("expected exactly one admin wallet, found %d", len(ids))
	}

	_, err = tx.Exec(ctx, `
		UPDATE wallets
		SET balance = balance + $1,
		    total_tva_collected = total_tva_collected + $1,
		    updated_at = now()
		WHERE id = $2`,
		st.FeeAmount, ids[0],
	)
	return err
}
