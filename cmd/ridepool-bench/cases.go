// README: Smoke test cases: auth, trip lifecycle, complaints, presence, and load checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// state threaded through the sequential cases
	userToken   string
	driverToken string
	driverID    string
	tripID      string
	suffix      string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: 10 * time.Second},
		suffix: fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "API: health endpoint",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodGet, base+"/health", "", nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},

		// Auth
		{
			Name: "Auth: register driver",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/auth/register/driver", "", map[string]any{
					"email":          "bench-driver-" + r.suffix + "@example.com",
					"password":       "bench-password",
					"name":           "Bench Driver",
					"phone":          "0900000001",
					"license_number": "BENCH-" + r.suffix,
					"vehicle_info":   "Toyota Prius",
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				r.driverToken = jsonString(body, "token")
				r.driverID = jsonString(body, "account", "id")
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Auth: register user",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/auth/register/user", "", map[string]any{
					"email":    "bench-user-" + r.suffix + "@example.com",
					"password": "bench-password",
					"name":     "Bench User",
					"phone":    "0900000002",
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				r.userToken = jsonString(body, "token")
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			// Settlement requires exactly one admin wallet, so the admin
			// account is fixed across runs: log in first, register only
			// when it does not exist yet.
			Name: "Auth: ensure admin account",
			Run: func(ctx context.Context, r *Runner) Result {
				creds := map[string]any{
					"email":    "bench-admin@example.com",
					"password": "bench-password",
				}
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/auth/login/admin", "", creds)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status == http.StatusOK {
					return Result{Status: "PASS", Latency: latency}
				}
				creds["name"] = "Bench Admin"
				status, _, latency, err = r.doJSON(ctx, http.MethodPost, base+"/api/auth/register/admin", "", creds)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Auth: login driver",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/auth/login/driver", "", map[string]any{
					"email":    "bench-driver-" + r.suffix + "@example.com",
					"password": "bench-password",
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Auth: wrong password rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/auth/login/driver", "", map[string]any{
					"email":    "bench-driver-" + r.suffix + "@example.com",
					"password": "not-the-password",
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusUnauthorized {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},

		// Trip lifecycle
		{
			Name: "Trip: driver proposes",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/driver/trips", r.driverToken, proposePayload())
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				r.tripID = jsonString(body, "id")
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Trip: propose with invalid price rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				p := proposePayload()
				p["proposed_price"] = -10
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/driver/trips", r.driverToken, p)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusBadRequest {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Trip: user sees it in search",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.doJSON(ctx, http.MethodGet, base+"/api/user/trips", r.userToken, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				if !bytes.Contains(body, []byte(r.tripID)) {
					return Result{Status: "FAIL", Latency: latency, Note: "proposed trip not listed"}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Trip: user accepts",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/user/trips/"+r.tripID+"/accept", r.userToken, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Trip: second accept rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/user/trips/"+r.tripID+"/accept", r.userToken, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusNotFound {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Trip: driver starts",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/driver/trips/"+r.tripID+"/start", r.driverToken, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Trip: driver completes and wallet is credited",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/driver/trips/"+r.tripID+"/complete", r.driverToken, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				status, body, _, err := r.doJSON(ctx, http.MethodGet, base+"/api/driver/wallet", r.driverToken, nil)
				if err != nil || status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("wallet status=%d", status)}
				}
				var w struct {
					TotalEarned float64 `json:"total_earned"`
				}
				if err := json.Unmarshal(body, &w); err != nil || w.TotalEarned <= 0 {
					return Result{Status: "FAIL", Note: "wallet not credited"}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},

		// Complaints
		{
			Name: "Complaint: user files against ridden driver",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/user/complaints", r.userToken, map[string]any{
					"driver_id": r.driverID,
					"trip_id":   r.tripID,
					"message":   "driver took a long detour",
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Complaint: rejected without a shared trip",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/user/complaints", r.userToken, map[string]any{
					"driver_id": r.driverID,
					"trip_id":   "no-such-trip",
					"message":   "bogus",
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusNotFound {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},

		// Presence
		{
			Name: "Location: driver reports position",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPut, base+"/api/driver/location", r.driverToken, map[string]any{
					"lat": 25.033, "lng": 121.565,
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Location: out-of-range coordinates rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.doJSON(ctx, http.MethodPut, base+"/api/driver/location", r.driverToken, map[string]any{
					"lat": 123.0, "lng": 456.0,
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusBadRequest {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},

		// Concurrency
		{
			Name: "Concurrency: single winner on contested accept",
			Run:  concurrentAccept,
		},

		// Performance
		{
			Name: "Perf: location update throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, http.MethodPut, base+"/api/driver/location", r.driverToken, map[string]any{
					"lat": 25.033, "lng": 121.565,
				})
			},
		},
	}
}

func proposePayload() map[string]any {
	return map[string]any{
		"pickup_address":      "Taipei Main Station",
		"pickup":              map[string]float64{"lat": 25.0478, "lng": 121.5170},
		"destination_address": "Taipei 101",
		"destination":         map[string]float64{"lat": 25.0340, "lng": 121.5645},
		"proposed_price":      120.0,
		"departure_time":      time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		"available_seats":     3,
		"vehicle_type":        "SEDAN",
	}
}

func (r *Runner) doJSON(ctx context.Context, method, url, token string, body any) (int, []byte, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, time.Since(start), err
	}
	return resp.StatusCode, out, time.Since(start), nil
}

// jsonString digs a string value out of a JSON object by key path.
func jsonString(body []byte, path ...string) string {
	var cur any
	if err := json.Unmarshal(body, &cur); err != nil {
		return ""
	}
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	s, _ := cur.(string)
	return s
}

// concurrentAccept proposes a fresh trip, registers a pool of riders, and has
// them all race for it. Exactly one accept may succeed.
func concurrentAccept(ctx context.Context, r *Runner) Result {
	status, body, _, err := r.doJSON(ctx, http.MethodPost, r.cfg.BaseURL+"/api/driver/trips", r.driverToken, proposePayload())
	if err != nil || status != http.StatusCreated {
		return Result{Status: "FAIL", Note: fmt.Sprintf("propose status=%d", status)}
	}
	tripID := jsonString(body, "id")

	tokens := make([]string, 0, r.cfg.Concurrency)
	for i := 0; i < r.cfg.Concurrency; i++ {
		status, body, _, err := r.doJSON(ctx, http.MethodPost, r.cfg.BaseURL+"/api/auth/register/user", "", map[string]any{
			"email":    fmt.Sprintf("bench-racer-%s-%d@example.com", r.suffix, i),
			"password": "bench-password",
			"name":     fmt.Sprintf("Racer %d", i),
			"phone":    fmt.Sprintf("09%08d", i),
		})
		if err != nil || status != http.StatusCreated {
			return Result{Status: "FAIL", Note: fmt.Sprintf("register status=%d", status)}
		}
		tokens = append(tokens, jsonString(body, "token"))
	}

	var mu sync.Mutex
	succ := 0
	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			status, _, _, err := r.doJSON(ctx, http.MethodPost, r.cfg.BaseURL+"/api/user/trips/"+tripID+"/accept", token, nil)
			if err != nil {
				return
			}
			if status == http.StatusOK {
				mu.Lock()
				succ++
				mu.Unlock()
			}
		}(token)
	}
	wg.Wait()

	if succ != 1 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("success=%d", succ)}
	}
	return Result{Status: "PASS", Note: "success=1"}
}

func perfLoad(ctx context.Context, r *Runner, method, url, token string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var mu sync.Mutex
	var count, errCount int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				status, _, _, err := r.doJSON(ctx, method, url, token, payload)
				mu.Lock()
				if err != nil || status >= 500 {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
