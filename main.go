package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const defaultPageURL = "https://www.ote-cr.cz/cs/kratkodobe-trhy/elektrina/vnitrodenni-trh"

type CLIConfig struct {
	PageURL   string
	Out       string
	Columns   string
	Timezone  string
	LogLevel  string
	Port      int
	HeaderRow int
	Attempts  int
	RetryS    int
	TimeoutS  int
	CacheS    int
	GraceS    int
	Serve     bool
}

// App holds the latest fetched table and resolution for the HTTP
// handlers. Each refresh swaps in a fresh snapshot; nothing is mutated
// across runs.
type App struct {
	mu        sync.RWMutex
	table     *Table
	result    ResolutionResult
	fetchedAt time.Time
}

func (a *App) Store(t *Table, res ResolutionResult, at time.Time) {
	a.mu.Lock()
	a.table = t
	a.result = res
	a.fetchedAt = at
	a.mu.Unlock()
}

func (a *App) Snapshot() (*Table, ResolutionResult, time.Time) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.table, a.result, a.fetchedAt
}

func main() {
	_ = godotenv.Load()

	cfg := CLIConfig{}

	flag.StringVar(&cfg.PageURL, "page-url", envString("OTEWATCH_PAGE_URL", defaultPageURL), "Intraday market page URL")
	flag.StringVar(&cfg.Out, "out", envString("OTEWATCH_OUT", "./index.html"), "Output HTML path")
	flag.StringVar(&cfg.Columns, "columns", envString("OTEWATCH_COLUMNS", ""), "Optional columns.yaml overriding the report schema")
	flag.StringVar(&cfg.Timezone, "tz", envString("OTEWATCH_TZ", "Europe/Prague"), "Market timezone")
	flag.StringVar(&cfg.LogLevel, "log-level", envString("OTEWATCH_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	flag.IntVar(&cfg.Port, "port", envInt("OTEWATCH_PORT", 8093), "HTTP port (serve mode)")
	flag.IntVar(&cfg.HeaderRow, "header-row", envInt("OTEWATCH_HEADER_ROW", 5), "0-indexed sheet row carrying column names")
	flag.IntVar(&cfg.Attempts, "attempts", envInt("OTEWATCH_ATTEMPTS", 3), "Fetch attempts per refresh")
	flag.IntVar(&cfg.RetryS, "retry-delay", envInt("OTEWATCH_RETRY_DELAY", 30), "Delay between fetch attempts (s)")
	flag.IntVar(&cfg.TimeoutS, "timeout", envInt("OTEWATCH_TIMEOUT", 10), "HTTP timeout per request (s)")
	flag.IntVar(&cfg.CacheS, "cache-ttl", envInt("OTEWATCH_CACHE_TTL", 60), "Download cache TTL (s)")
	flag.IntVar(&cfg.GraceS, "grace", envInt("OTEWATCH_GRACE", 20), "Delay after a quarter-hour boundary before refreshing (s)")
	flag.BoolVar(&cfg.Serve, "serve", envBool("OTEWATCH_SERVE", false), "Run as a service: refresh each quarter hour and serve the page")

	flag.Parse()

	log := NewLogger(cfg.LogLevel)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Errorf("failed to load %s: %v", cfg.Timezone, err)
		os.Exit(1)
	}

	cols := DefaultColumns()
	if cfg.Columns != "" {
		cols, err = LoadColumns(cfg.Columns)
		if err != nil {
			log.Errorf("failed to load columns: %v", err)
			os.Exit(1)
		}
	}

	metrics := NewMetrics(time.Now().In(loc), version, commit, buildDate)

	fetcher := NewFetcher(FetcherConfig{
		PageURL:  cfg.PageURL,
		Sheet:    SheetConfig{HeaderRow: cfg.HeaderRow},
		Timeout:  time.Duration(cfg.TimeoutS) * time.Second,
		CacheTTL: time.Duration(cfg.CacheS) * time.Second,
		Log:      log,
	}, metrics)

	rcfg := RetryConfig{
		Attempts: uint(cfg.Attempts),
		Delay:    time.Duration(cfg.RetryS) * time.Second,
		Log:      log,
		M:        metrics,
	}

	app := &App{}

	refresh := func(ctx context.Context, now time.Time) (ResolutionResult, error) {
		table := FetchWithRetry(ctx, rcfg, fetcher.FetchTable)

		res, err := ResolveBlock(now, table, cols)
		if err != nil {
			return ResolutionResult{}, err
		}
		metrics.Resolved(res.Outcome)
		app.Store(table, res, now)

		if err := RenderPage(cfg.Out, res, cols, now); err != nil {
			metrics.RenderFailed()
			return res, err
		}
		metrics.Rendered()

		if res.Diagnostic != "" {
			log.Warnf("fallback: %s", res.Diagnostic)
		} else if res.Row != nil {
			log.Infof("resolved block %s", res.Row.Cell(cols.Interval))
		}
		return res, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Serve {
		res, err := refresh(ctx, time.Now().In(loc))
		if err != nil {
			color.Red("otewatch: %v", err)
			os.Exit(1)
		}
		printSummary(res, cols, cfg.Out)
		return
	}

	httpSrv := NewHTTPServer(HTTPConfig{
		Addr:     fmt.Sprintf(":%d", cfg.Port),
		Loc:      loc,
		Log:      log,
		M:        metrics,
		App:      app,
		Cols:     cols,
		PagePath: cfg.Out,
	})

	go func() {
		log.Infof("http listening on http://localhost:%d", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server error: %v", err)
			stop()
		}
	}()

	if _, err := refresh(ctx, time.Now().In(loc)); err != nil {
		log.Errorf("initial refresh: %v", err)
	}

	grace := time.Duration(cfg.GraceS) * time.Second
	for {
		now := time.Now().In(loc)
		// Add(1s) forces a strictly future boundary when we land on one.
		target := NextQuarterHour(now.Truncate(time.Second).Add(time.Second)).Add(grace)
		timer := time.NewTimer(time.Until(target))

		select {
		case <-ctx.Done():
			timer.Stop()
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			log.Infof("shutting down...")
			_ = httpSrv.Shutdown(shCtx)
			cancel()
			log.Infof("bye")
			return
		case <-timer.C:
			if _, err := refresh(ctx, time.Now().In(loc)); err != nil {
				log.Errorf("refresh: %v", err)
			}
		}
	}
}

func printSummary(res ResolutionResult, cols Columns, out string) {
	switch {
	case res.Row == nil:
		color.Red("no data: %s", res.Diagnostic)
	case res.Diagnostic != "":
		color.Yellow("%s -> %s (%s)", res.Row.Cell(cols.Interval), out, res.Diagnostic)
	default:
		color.Green("%s -> %s", res.Row.Cell(cols.Interval), out)
	}
}

func envString(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(k)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}
