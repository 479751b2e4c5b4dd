package main

// Table is the parsed intraday report: cleaned column names in document
// order plus data rows in document order. Row order is semantically
// meaningful — the table is assumed chronological and fallback walks
// backward through it.
type Table struct {
	Columns []string
	Rows    []Row
}

// Row is one report row. Index is its stable ordinal position in the
// table; Cells maps cleaned column name to the cell's display string
// ("" for absent/blank cells). Rows are read-only once produced.
type Row struct {
	Cells map[string]string
	Index int
}

// Cell returns the display string for a column ("" when absent).
func (r Row) Cell(col string) string { return r.Cells[col] }

// ParsedInterval is a half-open time-of-day range derived from a block
// label like "20:30-20:45". Start/End are minutes since midnight; End is
// exclusive. CrossesMidnight marks ranges that wrap past 24:00
// (Start > End); Start == End is not a valid interval.
type ParsedInterval struct {
	Label           string
	RowIndex        int
	Start           int
	End             int
	CrossesMidnight bool
}

// Resolution outcomes, stamped into metrics and the once-mode summary.
const (
	OutcomeExact          = "exact"
	OutcomeLatestBefore   = "latest_before"
	OutcomeEarliestFuture = "earliest_future"
	OutcomeWalkBack       = "walk_back"
	OutcomeNoParseable    = "no_parseable"
	OutcomeNoNonEmpty     = "no_non_empty"
	OutcomeNoData         = "no_data"
)

// ResolutionResult is what the resolver hands to the renderer. Row is nil
// only when the table itself was empty. Diagnostic is "" for an exact,
// non-empty match and explains the fallback path otherwise — it is the
// sole channel by which degraded data states reach the page.
type ResolutionResult struct {
	Row        *Row
	Diagnostic string
	Outcome    string
}
