// README: Shared DB fixtures for trip tests (schema apply + account seeding).
package trip

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepool/internal/types"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("RIDEPOOL_TEST_DSN")
	if dsn == "" {
		t.Skip("RIDEPOOL_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	if _, err := db.Exec(ctx, "TRUNCATE TABLE complaints, trips, wallets, accounts"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return db
}

func seedAccount(t *testing.T, db *pgxpool.Pool, role, status string) types.ID {
	t.Helper()
	id := uuid.NewString()
	ctx := context.Background()

	var st *string
	if role == "DRIVER" {
		st = &status
	}
	_, err := db.Exec(ctx, `
		INSERT INTO accounts (id, role, email, password_hash, name, status, license_number, vehicle_info)
		VALUES ($1, $2, $3, 'x', 'Test Account', $4, 'DL-00000', 'Test Vehicle 2020')`,
		id, role, id+"@test.local", st,
	)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if role == "DRIVER" || role == "ADMIN" {
		_, err = db.Exec(ctx, `
			INSERT INTO wallets (id, account_id, balance, total_earned, total_tva_collected)
			VALUES ($1, $2, 0, 0, 0)`,
			uuid.NewString(), id,
		)
		if err != nil {
			t.Fatalf("seed wallet: %v", err)
		}
	}
	return types.ID(id)
}

func seedDriver(t *testing.T, db *pgxpool.Pool) types.ID {
	return seedAccount(t, db, "DRIVER", "ACTIVE")
}

func seedUser(t *testing.T, db *pgxpool.Pool) types.ID {
	return seedAccount(t, db, "USER", "")
}

func seedAdmin(t *testing.T, db *pgxpool.Pool) types.ID {
	return seedAccount(t, db, "ADMIN", "")
}

func walletFigures(t *testing.T, db *pgxpool.Pool, accountID types.ID) (balance, earned, tva float64) {
	t.Helper()
	row := db.QueryRow(context.Background(), `
		SELECT balance, total_earned, total_tva_collected
		FROM wallets WHERE account_id = $1`, string(accountID),
	)
	if err := row.Scan(&balance, &earned, &tva); err != nil {
		t.Fatalf("read wallet: %v", err)
	}
	return balance, earned, tva
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, "migrations", "0001_init.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
