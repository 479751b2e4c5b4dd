package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"
	"golang.org/x/net/html"
)

// Cap on page/report downloads. The XLSX is a few hundred KB.
const maxFetchBytes = 16 << 20

var (
	errNoAttachment = errors.New("report attachment container not found")
	errNoLink       = errors.New("report download link not found")
)

type FetcherConfig struct {
	// PageURL is the intraday market page that links the current report.
	PageURL string
	// Sheet locates the table inside the downloaded workbook.
	Sheet    SheetConfig
	Timeout  time.Duration
	CacheTTL time.Duration
	Log      *Logger
}

// Fetcher downloads the market page, discovers the report attachment
// link and pulls the XLSX into a Table. Downloads are cached in-memory
// by URL with a short TTL so service-mode re-renders and the retry loop
// don't re-hit upstream inside one block.
type Fetcher struct {
	cfg     FetcherConfig
	client  *http.Client
	cache   *otter.Cache[string, []byte]
	metrics *Metrics
}

func NewFetcher(cfg FetcherConfig, m *Metrics) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	cache := otter.Must(&otter.Options[string, []byte]{
		MaximumSize:      32,
		ExpiryCalculator: otter.ExpiryWriting[string, []byte](cfg.CacheTTL),
	})
	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		cache:   cache,
		metrics: m,
	}
}

// FetchTable produces a fresh Table from upstream: page, link, workbook.
func (f *Fetcher) FetchTable(ctx context.Context) (*Table, error) {
	page, err := f.get(ctx, f.cfg.PageURL)
	if err != nil {
		f.metrics.FetchFailed()
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	link, err := findReportLink(page, f.cfg.PageURL)
	if err != nil {
		f.metrics.FetchFailed()
		return nil, fmt.Errorf("fetch: %w", err)
	}
	f.cfg.Log.Debugf("report link %s", link)

	raw, err := f.get(ctx, link)
	if err != nil {
		f.metrics.FetchFailed()
		return nil, fmt.Errorf("fetch report: %w", err)
	}

	t, err := ParseSheet(raw, f.cfg.Sheet)
	if err != nil {
		f.metrics.FetchFailed()
		return nil, err
	}
	f.metrics.FetchSucceeded(len(t.Rows))
	return t, nil
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	if b, ok := f.cache.GetIfPresent(u); ok {
		f.cfg.Log.Debugf("cache hit url=%s bytes=%d", u, len(b))
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", u, resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, err
	}
	f.cache.Set(u, b)
	return b, nil
}

// findReportLink locates <p class="report_attachment_links"> and takes
// the href of the first <a> inside it, resolved against the page URL.
func findReportLink(page []byte, base string) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", err
	}

	container := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "p" && hasClass(n, "report_attachment_links")
	})
	if container == nil {
		return "", errNoAttachment
	}

	link := findNode(container, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" && attrVal(n, "href") != ""
	})
	if link == nil {
		return "", errNoLink
	}

	bu, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	hu, err := url.Parse(attrVal(link, "href"))
	if err != nil {
		return "", err
	}
	return bu.ResolveReference(hu).String(), nil
}

// findNode walks the subtree depth-first and returns the first node
// matching the predicate.
func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attrVal(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

// TableProducer is the injected "produce table" operation the retry
// orchestrator wraps.
type TableProducer func(ctx context.Context) (*Table, error)

var errEmptyTable = errors.New("table has no rows")

type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	Log      *Logger
	M        *Metrics
}

// FetchWithRetry runs produce up to cfg.Attempts times with a fixed
// inter-attempt delay, accepting the first non-empty table. When every
// attempt errors or comes back empty it proceeds with whatever was last
// obtained (possibly nil) — publication delay upstream and unresolvable
// rows are separate failure layers, and the resolver's own fallbacks
// handle the second one.
func FetchWithRetry(ctx context.Context, cfg RetryConfig, produce TableProducer) *Table {
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}

	var last *Table
	err := retry.Do(
		func() error {
			t, err := produce(ctx)
			if err != nil {
				return err
			}
			last = t
			if t == nil || len(t.Rows) == 0 {
				return errEmptyTable
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(cfg.Attempts),
		retry.Delay(cfg.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			cfg.Log.Warnf("fetch attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		cfg.M.RetriesExhausted()
		cfg.Log.Warnf("all %d fetch attempts exhausted, proceeding with last result: %v", cfg.Attempts, err)
	}
	return last
}
