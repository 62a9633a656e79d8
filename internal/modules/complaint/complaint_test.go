// README: Complaint filing and penalty escalation tests (DB-backed).
package complaint

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepool/internal/fault"
	"ridepool/internal/modules/account"
	"ridepool/internal/types"
)

func TestFileComplaintAndThresholds(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewStore(db), account.NewStore(db), nil)
	ctx := context.Background()

	driverID := seedDriver(t, db)
	userID := seedUser(t, db)

	// Complaints 1 and 2 leave the driver ACTIVE.
	for i := 0; i < 2; i++ {
		tripID := seedRiddenTrip(t, db, driverID, userID)
		if _, err := svc.File(ctx, FileCommand{
			UserID: userID, DriverID: driverID, TripID: tripID, Message: "late pickup",
		}); err != nil {
			t.Fatalf("file complaint %d: %v", i+1, err)
		}
		assertDriverStatus(t, db, driverID, "ACTIVE")
	}

	// The 3rd complaint pauses the driver for roughly three days.
	tripID := seedRiddenTrip(t, db, driverID, userID)
	if _, err := svc.File(ctx, FileCommand{
		UserID: userID, DriverID: driverID, TripID: tripID, Message: "reckless driving",
	}); err != nil {
		t.Fatalf("file complaint 3: %v", err)
	}
	assertDriverStatus(t, db, driverID, "PAUSED")
	until := driverPausedUntil(t, db, driverID)
	if until == nil {
		t.Fatal("expected paused_until to be set")
	}
	if d := time.Until(*until); d < 71*time.Hour || d > 73*time.Hour {
		t.Fatalf("paused_until %v away, want about 72h", d)
	}

	// Complaints 4..6 keep PAUSED; the 7th bans.
	for i := 4; i <= 7; i++ {
		tripID := seedRiddenTrip(t, db, driverID, userID)
		if _, err := svc.File(ctx, FileCommand{
			UserID: userID, DriverID: driverID, TripID: tripID, Message: "unsafe driving again",
		}); err != nil {
			t.Fatalf("file complaint %d: %v", i, err)
		}
	}
	assertDriverStatus(t, db, driverID, "BANNED")

	// Further complaints leave the ban in place.
	tripID = seedRiddenTrip(t, db, driverID, userID)
	if _, err := svc.File(ctx, FileCommand{
		UserID: userID, DriverID: driverID, TripID: tripID, Message: "still driving recklessly",
	}); err != nil {
		t.Fatalf("file complaint 8: %v", err)
	}
	assertDriverStatus(t, db, driverID, "BANNED")
}

func TestFileComplaintValidation(t *testing.T) {
	// Validation fails before the store is touched, so a nil store is fine.
	svc := NewService(nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  FileCommand
	}{
		{"empty message", FileCommand{UserID: "u", DriverID: "d", TripID: "t"}},
		{"short message", FileCommand{UserID: "u", DriverID: "d", TripID: "t", Message: "too short"}},
		{"long message", FileCommand{UserID: "u", DriverID: "d", TripID: "t", Message: strings.Repeat("x", maxMessageLen+1)}},
		{"missing driver", FileCommand{UserID: "u", TripID: "t", Message: "driver was rude to me"}},
		{"missing trip", FileCommand{UserID: "u", DriverID: "d", Message: "driver was rude to me"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.File(ctx, tc.cmd); !fault.IsKind(err, fault.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestFileComplaintRequiresRiddenTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewStore(db), account.NewStore(db), nil)
	ctx := context.Background()

	driverID := seedDriver(t, db)
	otherDriver := seedDriver(t, db)
	userID := seedUser(t, db)
	otherUser := seedUser(t, db)

	tripID := seedRiddenTrip(t, db, driverID, userID)

	// Wrong driver: the trip exists and belongs to the user, but the named
	// driver never proposed it.
	_, err := svc.File(ctx, FileCommand{
		UserID: userID, DriverID: otherDriver, TripID: tripID, Message: "driver was unpleasant",
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Fatalf("expected not-found for wrong driver, got %v", err)
	}

	// Wrong user: somebody who never rode the trip cannot complain about it.
	_, err = svc.File(ctx, FileCommand{
		UserID: otherUser, DriverID: driverID, TripID: tripID, Message: "driver was unpleasant",
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Fatalf("expected not-found for wrong user, got %v", err)
	}

	// Nothing was recorded and the driver is untouched.
	count, err := NewStore(db).CountByDriver(ctx, driverID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 complaints, got %d", count)
	}
	assertDriverStatus(t, db, driverID, "ACTIVE")
}

func TestProcessComplaint(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewStore(db), account.NewStore(db), nil)
	ctx := context.Background()

	driverID := seedDriver(t, db)
	userID := seedUser(t, db)
	tripID := seedRiddenTrip(t, db, driverID, userID)

	filed, err := svc.File(ctx, FileCommand{
		UserID: userID, DriverID: driverID, TripID: tripID, Message: "driver was rude to me",
	})
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if filed.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", filed.Status)
	}

	processed, err := svc.Process(ctx, filed.ID, ActionResolve)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed.Status != StatusResolved {
		t.Fatalf("expected RESOLVED, got %s", processed.Status)
	}

	if _, err := svc.Process(ctx, filed.ID, Action("DELETE")); !fault.IsKind(err, fault.KindValidation) {
		t.Fatalf("expected validation error for unknown action, got %v", err)
	}
	if _, err := svc.Process(ctx, types.ID(uuid.NewString()), ActionReject); !fault.IsKind(err, fault.KindNotFound) {
		t.Fatalf("expected not-found for unknown complaint, got %v", err)
	}
}

func TestPauseAndBanDriver(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewStore(db), account.NewStore(db), nil)
	ctx := context.Background()

	driverID := seedDriver(t, db)

	if _, err := svc.PauseDriver(ctx, driverID, 0); !fault.IsKind(err, fault.KindValidation) {
		t.Fatalf("expected validation error for zero days, got %v", err)
	}
	if _, err := svc.PauseDriver(ctx, driverID, -3); !fault.IsKind(err, fault.KindValidation) {
		t.Fatalf("expected validation error for negative days, got %v", err)
	}

	until, err := svc.PauseDriver(ctx, driverID, 5)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	assertDriverStatus(t, db, driverID, "PAUSED")

	// The returned deadline is the one persisted on the row.
	stored := driverPausedUntil(t, db, driverID)
	if stored == nil {
		t.Fatalf("expected paused_until set after pause")
	}
	if d := stored.Sub(until); d > time.Second || d < -time.Second {
		t.Fatalf("returned deadline %v differs from stored %v", until, *stored)
	}

	if err := svc.BanDriver(ctx, driverID); err != nil {
		t.Fatalf("ban: %v", err)
	}
	assertDriverStatus(t, db, driverID, "BANNED")
	if until := driverPausedUntil(t, db, driverID); until != nil {
		t.Fatalf("ban must clear paused_until, got %v", until)
	}

	if err := svc.ReinstateDriver(ctx, driverID); err != nil {
		t.Fatalf("reinstate: %v", err)
	}
	assertDriverStatus(t, db, driverID, "ACTIVE")

	userID := seedUser(t, db)
	if _, err := svc.PauseDriver(ctx, userID, 5); !fault.IsKind(err, fault.KindNotFound) {
		t.Fatalf("expected not-found pausing a non-driver, got %v", err)
	}
}

func TestComplaintStats(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	svc := NewService(store, account.NewStore(db), nil)
	ctx := context.Background()

	driverID := seedDriver(t, db)
	userID := seedUser(t, db)

	var ids []types.ID
	for i := 0; i < 3; i++ {
		tripID := seedRiddenTrip(t, db, driverID, userID)
		c, err := svc.File(ctx, FileCommand{
			UserID: userID, DriverID: driverID, TripID: tripID, Message: "driver kept the meter running",
		})
		if err != nil {
			t.Fatalf("file: %v", err)
		}
		ids = append(ids, c.ID)
	}
	if _, err := svc.Process(ctx, ids[0], ActionResolve); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := svc.Process(ctx, ids[1], ActionEscalate); err != nil {
		t.Fatalf("process: %v", err)
	}

	st, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 3 || st.Pending != 1 || st.Resolved != 1 || st.Escalated != 1 || st.Rejected != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func assertDriverStatus(t *testing.T, db *pgxpool.Pool, driverID types.ID, want string) {
	t.Helper()
	var status string
	err := db.QueryRow(context.Background(), `
		SELECT status FROM accounts WHERE id = $1`, string(driverID),
	).Scan(&status)
	if err != nil {
		t.Fatalf("read driver status: %v", err)
	}
	if status != want {
		t.Fatalf("driver status = %s, want %s", status, want)
	}
}

func driverPausedUntil(t *testing.T, db *pgxpool.Pool, driverID types.ID) *time.Time {
	t.Helper()
	var until *time.Time
	err := db.QueryRow(context.Background(), `
		SELECT paused_until FROM accounts WHERE id = $1`, string(driverID),
	).Scan(&until)
	if err != nil {
		t.Fatalf("read paused_until: %v", err)
	}
	return until
}

func seedDriver(t *testing.T, db *pgxpool.Pool) types.ID {
	return seedAccountRow(t, db, "DRIVER", "ACTIVE")
}

func seedUser(t *testing.T, db *pgxpool.Pool) types.ID {
	return seedAccountRow(t, db, "USER", "")
}

func seedAccountRow(t *testing.T, db *pgxpool.Pool, role, status string) types.ID {
	t.Helper()
	id := uuid.NewString()
	var st *string
	if role == "DRIVER" {
		st = &status
	}
	_, err := db.Exec(context.Background(), `
		INSERT INTO accounts (id, role, email, password_hash, name, status)
		VALUES ($1, $2, $3, 'x', 'Test Account', $4)`,
		id, role, id+"@test.local", st,
	)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return types.ID(id)
}

// seedRiddenTrip inserts a completed trip binding the user to the driver.
func seedRiddenTrip(t *testing.T, db *pgxpool.Pool, driverID, userID types.ID) types.ID {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(context.Background(), `
		INSERT INTO trips (
			id, driver_id, user_id, status,
			pickup_address, pickup_lat, pickup_lng,
			destination_address, destination_lat, destination_lng,
			distance_km, proposed_price, departure_time, expires_at
		) VALUES (
			$1, $2, $3, 'COMPLETED',
			'A', 25.033, 121.565,
			'B', 25.0478, 121.5318,
			3.7, 100, now() - interval '1 hour', now() - interval '1 hour'
		)`,
		id, string(driverID), string(userID),
	)
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return types.ID(id)
}

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
