package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

type HTTPConfig struct {
	Addr     string
	Loc      *time.Location
	Log      *Logger
	M        *Metrics
	App      *App
	Cols     Columns
	PagePath string
}

type HTTPServer struct {
	cfg HTTPConfig
	srv *http.Server
}

func NewHTTPServer(cfg HTTPConfig) *http.Server {
	mux := http.NewServeMux()
	hs := &HTTPServer{cfg: cfg}

	mux.HandleFunc("/", hs.handlePage)
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/resolve", hs.handleResolve)

	hs.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return hs.srv
}

func (hs *HTTPServer) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, err := os.Stat(hs.cfg.PagePath); err != nil {
		http.Error(w, "page not generated yet", http.StatusServiceUnavailable)
		return
	}
	http.ServeFile(w, r, hs.cfg.PagePath)
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := hs.cfg.M.Snapshot()

	_, res, fetchedAt := hs.cfg.App.Snapshot()
	snap["last_resolution"] = map[string]any{
		"outcome":     res.Outcome,
		"diagnostic":  res.Diagnostic,
		"fetched_at":  fetchedAt.Format(time.RFC3339),
		"next_update": NextQuarterHour(time.Now().In(hs.cfg.Loc)).Format("15:04"),
	}

	writeJSON(w, snap)
}

// handleResolve re-runs resolution over the last fetched table at an
// arbitrary clock time (?at=HH:MM), defaulting to now. Debug surface for
// the clock-injection seam.
func (hs *HTTPServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(hs.cfg.Loc)
	if at := r.URL.Query().Get("at"); at != "" {
		clock, err := time.Parse("15:04", at)
		if err != nil {
			http.Error(w, fmt.Sprintf("bad at=%q: want HH:MM", at), http.StatusBadRequest)
			return
		}
		now = time.Date(now.Year(), now.Month(), now.Day(),
			clock.Hour(), clock.Minute(), 0, 0, hs.cfg.Loc)
	}

	table, _, _ := hs.cfg.App.Snapshot()
	res, err := ResolveBlock(now, table, hs.cfg.Cols)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"at":         now.Format("15:04"),
		"outcome":    res.Outcome,
		"diagnostic": res.Diagnostic,
	}
	if res.Row != nil {
		resp["interval"] = res.Row.Cell(hs.cfg.Cols.Interval)
		resp["row_index"] = res.Row.Index
		resp["cells"] = res.Row.Cells
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
