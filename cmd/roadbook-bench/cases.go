// README: Bench cases: environment checks, route access control, booking confirm race and search throughput.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
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
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
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
	search := base + "/api/search?" + url.Values{
		"origin":      {r.cfg.Origin},
		"destination": {r.cfg.Destination},
		"date":        {r.cfg.Date},
		"passengers":  {"2"},
	}.Encode()
	haveSearch := r.cfg.Origin != "" && r.cfg.Destination != ""

	return []TestCase{
		{Name: "Env: Postgres connect", Run: pingDB},
		{Name: "Env: Redis connect", Run: pingRedis},
		{Name: "Migration: apply (optional)", Run: applyMigration},
		{Name: "Migration: tables exist", Run: tablesExist},

		httpCase("API: health", http.MethodGet, base+"/health", "", 200),
		httpCase("API: locations", http.MethodGet, base+"/api/locations", "", 200),
		httpCase("Search: missing params -> 400", http.MethodGet, base+"/api/search", "", 400),
		httpCase("Search: past date -> 400", http.MethodGet, base+"/api/search?origin=a&destination=b&date=2000-01-01", "", 400),
		skipUnless(haveSearch, "origin/destination not set",
			httpCase("Search: priced results", http.MethodGet, search, "", 200)),

		httpCase("Booking: list without token -> 401", http.MethodGet, base+"/api/bookings", "", 401),
		httpCase("Booking: transition without token -> 401", http.MethodPost, base+"/api/bookings/x/transitions", "", 401),
		httpCase("Admin: settings without token -> 401", http.MethodGet, base+"/api/admin/pricing/settings", "", 401),
		skipUnless(r.cfg.AdminToken != "", "admin token not set",
			httpCase("Admin: pricing settings", http.MethodGet, base+"/api/admin/pricing/settings", r.cfg.AdminToken, 200, 503)),

		{
			Name: "Race: concurrent confirm of one booking",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.cfg.AdminToken == "" || r.cfg.PendingBooking == "" {
					return Result{Status: statusSkip, Note: "admin token or pending booking not set"}
				}
				return concurrentConfirm(ctx, r, base+"/api/bookings/"+r.cfg.PendingBooking+"/transitions")
			},
		},
		{
			Name: "Perf: search throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				if !haveSearch {
					return Result{Status: statusSkip, Note: "origin/destination not set"}
				}
				return perfLoad(ctx, r, search)
			},
		},
	}
}

func pingDB(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func pingRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: statusFail, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func applyMigration(ctx context.Context, r *Runner) Result {
	if !r.cfg.ApplyMigration {
		return Result{Status: statusSkip, Note: "apply-migration=false"}
	}
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	sql, err := os.ReadFile(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	for _, s := range splitSQL(string(sql)) {
		if _, err := r.db.Exec(ctx, s); err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
	}
	return Result{Status: statusPass}
}

func tablesExist(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	tables, err := extractTables(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
			t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: statusFail, Note: "missing table: " + t}
		}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("%d tables", len(tables))}
}

func httpCase(name, method, url, token string, okStatuses ...int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			req, err := http.NewRequestWithContext(ctx, method, url, nil)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			start := time.Now()
			resp, err := r.httpc.Do(req)
			latency := time.Since(start)
			if err != nil {
				return Result{Status: statusFail, Latency: latency, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: statusPass, Latency: latency}
			}
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func skipUnless(ok bool, note string, tc TestCase) TestCase {
	if ok {
		return tc
	}
	return TestCase{
		Name: tc.Name,
		Run: func(context.Context, *Runner) Result {
			return Result{Status: statusSkip, Note: note}
		},
	}
}

// concurrentConfirm fires the same confirm from many clients. Exactly one
// may succeed; the rest must see 409.
func concurrentConfirm(ctx context.Context, r *Runner, url string) Result {
	var wg sync.WaitGroup
	var succ, conflict, other atomic.Int64

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(`{"action":"confirm"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+r.cfg.AdminToken)
			resp, err := r.httpc.Do(req)
			if err != nil {
				other.Add(1)
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				succ.Add(1)
			case resp.StatusCode == http.StatusConflict:
				conflict.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	note := fmt.Sprintf("success=%d conflict=%d other=%d", succ.Load(), conflict.Load(), other.Load())
	if succ.Load() <= 1 && other.Load() == 0 {
		return Result{Status: statusPass, Note: note}
	}
	return Result{Status: statusFail, Note: note}
}

func perfLoad(ctx context.Context, r *Runner, url string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				resp, err := r.httpc.Do(req)
				if err != nil {
					errCount.Add(1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: statusFail, Note: fmt.Sprintf("no successful requests, errors=%d", errCount.Load())}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	matches := createTableRe.FindAllStringSubmatch(string(b), -1)
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
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
