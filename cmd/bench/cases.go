// README: Benchmark test cases for the property-monies API; includes HTTP contract, DB, Redis, and performance checks.
package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"propertyapi/internal/http/handlers"
	"propertyapi/internal/infra"
	"propertyapi/internal/logger"
	"propertyapi/internal/modules/propertymoney"
)

// unknownID is never handed out by the sequence during a bench run.
const unknownID int64 = 1 << 62

type Runner struct {
	cfg     Config
	log     logger.Logger
	api     *resty.Client
	headers handlers.HeaderUtil
	db      *pgxpool.Pool
	redis   *redis.Client

	createdID int64
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config, log logger.Logger) *Runner {
	api := resty.New().
		SetLogger(log).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		api.SetAuthToken(cfg.Token)
	}
	return &Runner{
		cfg:     cfg,
		log:     log,
		api:     api,
		headers: handlers.NewHeaderUtil(cfg.AppName),
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		} else {
			r.log.Warnw("postgres unavailable", "err", err)
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
		fmt.Printf("%-7s %s", res.Status, tc.Name)
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
	_ = r.api.Close()

	return results
}

func (r *Runner) cases() []TestCase {
	path := handlers.PropertyMoniesPath
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "database reachable",
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
			Name:  "Env: Redis connect",
			Focus: "cache reachable",
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
			Name:  "Migration: apply (optional)",
			Focus: "apply migrations directory",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				if err := infra.ApplyMigrations(ctx, r.db, r.cfg.MigrationsDir); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: property_money exists",
			Focus: "schema present",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				var exists bool
				if err := r.db.QueryRow(ctx, `SELECT to_regclass('public.property_money') IS NOT NULL`).Scan(&exists); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if !exists {
					return Result{Status: "FAIL", Note: "table property_money missing"}
				}
				return Result{Status: "PASS"}
			},
		},
		apiCase("API: health", http.MethodGet, "/health", nil, http.StatusOK, nil),
		{
			Name:  "API: create",
			Focus: "201 with Location and creation alert",
			Run: func(ctx context.Context, r *Runner) Result {
				var created propertymoney.PropertyMoney
				resp, err := r.api.R().
					SetContext(ctx).
					SetBody(map[string]any{"amount": "1250.00", "currency": "USD", "description": "bench deposit"}).
					SetResult(&created).
					Post(path)
				if res, ok := expectStatus(resp, err, http.StatusCreated); !ok {
					return res
				}
				if created.ID == nil {
					return Result{Status: "FAIL", Note: "response has no id"}
				}
				r.createdID = *created.ID
				id := strconv.FormatInt(r.createdID, 10)
				if loc := resp.Header().Get("Location"); loc != path+"/"+id {
					return Result{Status: "FAIL", Note: "location=" + loc}
				}
				if note := r.checkAlert(resp, "created", id); note != "" {
					return Result{Status: "FAIL", Note: note}
				}
				return Result{Status: "PASS", Latency: resp.Duration(), Note: "id=" + id}
			},
		},
		apiCase("API: create with id rejected", http.MethodPost, path, map[string]any{"id": 1}, http.StatusBadRequest,
			func(r *Runner, resp *resty.Response) string { return r.checkFailure(resp, "idexists") }),
		apiCase("API: create with bad currency rejected", http.MethodPost, path, map[string]any{"currency": "usd"}, http.StatusBadRequest,
			func(r *Runner, resp *resty.Response) string {
				if !strings.Contains(resp.String(), `"field":"currency"`) {
					return "missing currency field error"
				}
				return ""
			}),
		apiCase("API: update without id rejected", http.MethodPut, path, map[string]any{"amount": "1.00"}, http.StatusBadRequest,
			func(r *Runner, resp *resty.Response) string { return r.checkFailure(resp, "idnull") }),
		apiCase("API: update unknown id rejected", http.MethodPut, path, map[string]any{"id": unknownID}, http.StatusBadRequest,
			func(r *Runner, resp *resty.Response) string { return r.checkFailure(resp, "idnotfound") }),
		{
			Name:  "API: update",
			Focus: "200 with update alert",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.createdID == 0 {
					return Result{Status: "SKIP", Note: "nothing created"}
				}
				resp, err := r.api.R().
					SetContext(ctx).
					SetBody(map[string]any{"id": r.createdID, "amount": "99.95", "currency": "EUR"}).
					Put(path)
				if res, ok := expectStatus(resp, err, http.StatusOK); !ok {
					return res
				}
				if note := r.checkAlert(resp, "updated", strconv.FormatInt(r.createdID, 10)); note != "" {
					return Result{Status: "FAIL", Note: note}
				}
				return Result{Status: "PASS", Latency: resp.Duration()}
			},
		},
		{
			Name:  "API: get",
			Focus: "200 with the updated entity",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.createdID == 0 {
					return Result{Status: "SKIP", Note: "nothing created"}
				}
				var got propertymoney.PropertyMoney
				resp, err := r.api.R().
					SetContext(ctx).
					SetResult(&got).
					Get(path + "/" + strconv.FormatInt(r.createdID, 10))
				if res, ok := expectStatus(resp, err, http.StatusOK); !ok {
					return res
				}
				if got.Amount == nil || got.Amount.String() != "99.95" || got.Currency != "EUR" {
					return Result{Status: "FAIL", Note: "entity=" + got.String()}
				}
				return Result{Status: "PASS", Latency: resp.Duration()}
			},
		},
		{
			Name:  "DB: row persisted",
			Focus: "amount stored as NUMERIC",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil || r.createdID == 0 {
					return Result{Status: "SKIP", Note: "db or entity unavailable"}
				}
				var amount string
				err := r.db.QueryRow(ctx, `SELECT amount::text FROM property_money WHERE id = $1`, r.createdID).Scan(&amount)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if amount != "99.95" {
					return Result{Status: "FAIL", Note: "amount=" + amount}
				}
				return Result{Status: "PASS"}
			},
		},
		apiCase("API: get missing", http.MethodGet, path+"/"+strconv.FormatInt(unknownID, 10), nil, http.StatusNotFound, nil),
		apiCase("API: list", http.MethodGet, path+"?page=0&size=1&sort=id,desc", nil, http.StatusOK,
			func(r *Runner, resp *resty.Response) string {
				if _, err := strconv.ParseInt(resp.Header().Get("X-Total-Count"), 10, 64); err != nil {
					return "missing X-Total-Count"
				}
				if !strings.Contains(resp.Header().Get("Link"), `rel="first"`) {
					return "missing Link header"
				}
				return ""
			}),
		apiCase("API: list unknown sort rejected", http.MethodGet, path+"?sort=bogus", nil, http.StatusBadRequest, nil),
		{
			Name:  "API: delete twice",
			Focus: "200 with deletion alert, idempotent",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.createdID == 0 {
					return Result{Status: "SKIP", Note: "nothing created"}
				}
				id := strconv.FormatInt(r.createdID, 10)
				var latency time.Duration
				for range 2 {
					resp, err := r.api.R().SetContext(ctx).Delete(path + "/" + id)
					if res, ok := expectStatus(resp, err, http.StatusOK); !ok {
						return res
					}
					if note := r.checkAlert(resp, "deleted", id); note != "" {
						return Result{Status: "FAIL", Note: note}
					}
					latency = resp.Duration()
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name:  "Redis: cache evicted after delete",
			Focus: "no stale entry",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil || r.createdID == 0 {
					return Result{Status: "SKIP", Note: "redis or entity unavailable"}
				}
				n, err := r.redis.Exists(ctx, propertymoney.CacheKey(r.createdID)).Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n != 0 {
					return Result{Status: "FAIL", Note: "cache key still present"}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "API: get after delete",
			Focus: "404",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.createdID == 0 {
					return Result{Status: "SKIP", Note: "nothing created"}
				}
				resp, err := r.api.R().SetContext(ctx).Get(path + "/" + strconv.FormatInt(r.createdID, 10))
				if res, ok := expectStatus(resp, err, http.StatusNotFound); !ok {
					return res
				}
				return Result{Status: "PASS", Latency: resp.Duration()}
			},
		},
		// Performance
		{
			Name:  "Perf: list throughput",
			Focus: "paged reads under load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, path+"?size=20")
			},
		},
	}
}

func apiCase(name, method, url string, body any, want int, check func(*Runner, *resty.Response) string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			req := r.api.R().SetContext(ctx)
			if body != nil {
				req.SetBody(body)
			}
			resp, err := req.Execute(method, url)
			if res, ok := expectStatus(resp, err, want); !ok {
				return res
			}
			if check != nil {
				if note := check(r, resp); note != "" {
					return Result{Status: "FAIL", Latency: resp.Duration(), Note: note}
				}
			}
			return Result{Status: "PASS", Latency: resp.Duration(), Note: fmt.Sprintf("status=%d", resp.StatusCode())}
		},
	}
}

func expectStatus(resp *resty.Response, err error, want int) (Result, bool) {
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}, false
	}
	if resp.StatusCode() != want {
		return Result{Status: "FAIL", Latency: resp.Duration(), Note: fmt.Sprintf("status=%d want=%d", resp.StatusCode(), want)}, false
	}
	return Result{}, true
}

func (r *Runner) checkAlert(resp *resty.Response, action, id string) string {
	want := r.cfg.AppName + "." + propertymoney.EntityName + "." + action
	if got := resp.Header().Get(r.headers.AlertHeader()); got != want {
		return fmt.Sprintf("alert=%q want %q", got, want)
	}
	if got := resp.Header().Get(r.headers.ParamsHeader()); got != id {
		return fmt.Sprintf("params=%q want %q", got, id)
	}
	return ""
}

func (r *Runner) checkFailure(resp *resty.Response, key string) string {
	if got := resp.Header().Get(r.headers.ErrorHeader()); got != "error."+key {
		return fmt.Sprintf("error header=%q want error.%s", got, key)
	}
	return ""
}

func perfLoad(ctx context.Context, r *Runner, url string) Result {
	limiter := ratelimit.New(r.cfg.RPS)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				limiter.Take()
				resp, err := r.api.R().SetContext(ctx).Get(url)
				mu.Lock()
				if err != nil || resp.IsError() {
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
