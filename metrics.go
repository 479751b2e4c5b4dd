package main

import (
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	start time.Time

	version   string
	commit    string
	buildDate string

	fetchOK          atomic.Int64
	fetchErr         atomic.Int64
	retriesExhausted atomic.Int64
	lastFetchRows    atomic.Int64
	lastFetchAtMs    atomic.Int64

	renders      atomic.Int64
	renderErrors atomic.Int64
	lastRenderMs atomic.Int64

	mu        sync.Mutex
	byOutcome map[string]int64
}

func NewMetrics(start time.Time, version, commit, buildDate string) *Metrics {
	return &Metrics{
		start:     start,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		byOutcome: make(map[string]int64, 8),
	}
}

func (m *Metrics) FetchSucceeded(rows int) {
	m.fetchOK.Add(1)
	m.lastFetchRows.Store(int64(rows))
	m.lastFetchAtMs.Store(time.Now().UnixMilli())
}

func (m *Metrics) FetchFailed()      { m.fetchErr.Add(1) }
func (m *Metrics) RetriesExhausted() { m.retriesExhausted.Add(1) }

func (m *Metrics) Resolved(outcome string) {
	m.mu.Lock()
	m.byOutcome[outcome]++
	m.mu.Unlock()
}

func (m *Metrics) Rendered() {
	m.renders.Add(1)
	m.lastRenderMs.Store(time.Now().UnixMilli())
}

func (m *Metrics) RenderFailed() { m.renderErrors.Add(1) }

func (m *Metrics) Snapshot() map[string]any {
	uptime := time.Since(m.start)

	m.mu.Lock()
	outcomes := make(map[string]int64, len(m.byOutcome))
	for k, v := range m.byOutcome {
		outcomes[k] = v
	}
	m.mu.Unlock()

	return map[string]any{
		"ok": true,

		"uptime_ms": uptime.Milliseconds(),
		"uptime":    uptime.String(),

		"build": map[string]any{
			"version":    m.version,
			"commit":     m.commit,
			"build_date": m.buildDate,
		},

		"fetch": map[string]any{
			"ok_total":          m.fetchOK.Load(),
			"error_total":       m.fetchErr.Load(),
			"retries_exhausted": m.retriesExhausted.Load(),
			"last_rows":         m.lastFetchRows.Load(),
			"last_at_unix_ms":   m.lastFetchAtMs.Load(),
		},

		"resolve": map[string]any{
			"by_outcome": outcomes,
		},

		"render": map[string]any{
			"total":           m.renders.Load(),
			"error_total":     m.renderErrors.Load(),
			"last_at_unix_ms": m.lastRenderMs.Load(),
		},
	}
}
