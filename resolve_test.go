package main

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testCols = Columns{Interval: "Interval", Payload: []string{"Price", "Volume"}}

// tableOf builds a table where each entry is (label, price); price ""
// makes the row empty.
func tableOf(entries ...[2]string) *Table {
	t := &Table{Columns: []string{"Interval", "Price", "Volume"}}
	for _, e := range entries {
		t.Rows = append(t.Rows, Row{
			Index: len(t.Rows),
			Cells: map[string]string{"Interval": e[0], "Price": e[1], "Volume": ""},
		})
	}
	return t
}

func at(clock string) time.Time {
	tm, err := time.Parse("15:04:05", clock)
	if err != nil {
		tm, err = time.Parse("15:04", clock)
		if err != nil {
			panic(err)
		}
	}
	return time.Date(2025, 1, 15, tm.Hour(), tm.Minute(), tm.Second(), 0, time.UTC)
}

func TestResolveExactMatch(t *testing.T) {
	table := tableOf(
		[2]string{"09:00-09:15", "101.5"},
		[2]string{"09:15-09:30", "102.0"},
		[2]string{"09:30-09:45", "103.0"},
	)

	res := Resolve(at("09:20"), table, testCols)
	if res.Row == nil || res.Row.Index != 1 {
		t.Fatalf("want row 1, got %+v", res.Row)
	}
	if res.Diagnostic != "" {
		t.Errorf("exact match must carry empty diagnostic, got %q", res.Diagnostic)
	}
	if res.Outcome != OutcomeExact {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeExact)
	}
}

func TestResolveStartInclusiveEndExclusive(t *testing.T) {
	table := tableOf(
		[2]string{"09:00-09:15", "1"},
		[2]string{"09:15-09:30", "2"},
	)

	if res := Resolve(at("09:15"), table, testCols); res.Row.Index != 1 {
		t.Errorf("09:15 belongs to the second block, got row %d", res.Row.Index)
	}
	if res := Resolve(at("09:14"), table, testCols); res.Row.Index != 0 {
		t.Errorf("09:14 belongs to the first block, got row %d", res.Row.Index)
	}
}

func TestResolveWraparound(t *testing.T) {
	table := tableOf([2]string{"23:45-00:00", "99"})

	if res := Resolve(at("23:50"), table, testCols); res.Row == nil || res.Outcome != OutcomeExact {
		t.Errorf("23:50 must match 23:45-00:00 exactly, got %+v", res)
	}
	// An end of exactly 00:00 leaves no post-midnight fragment under the
	// half-open rule, so noon (or any other time) cannot match exactly.
	if res := Resolve(at("12:00"), table, testCols); res.Outcome == OutcomeExact {
		t.Errorf("12:00 must not match 23:45-00:00 exactly")
	}
}

func TestResolveWraparoundOpenEnd(t *testing.T) {
	table := tableOf([2]string{"23:45-00:10", "99"})

	if res := Resolve(at("00:05"), table, testCols); res.Outcome != OutcomeExact {
		t.Errorf("00:05 sits inside the wrapped fragment of 23:45-00:10, got %+v", res)
	}
}

func TestResolveLatestBeforeNow(t *testing.T) {
	table := tableOf(
		[2]string{"09:00-09:15", "1"},
		[2]string{"09:30-09:45", "2"}, // gap between 09:15 and 09:30
	)

	res := Resolve(at("09:20"), table, testCols)
	if res.Row == nil || res.Row.Index != 0 {
		t.Fatalf("want gap to resolve to row 0, got %+v", res.Row)
	}
	if res.Outcome != OutcomeLatestBefore {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeLatestBefore)
	}
	if !strings.Contains(res.Diagnostic, "no exact match") || !strings.Contains(res.Diagnostic, "09:00-09:15") {
		t.Errorf("diagnostic %q must name the fallback block", res.Diagnostic)
	}
}

func TestResolveTieBreakFirstSeen(t *testing.T) {
	// Identical start times in different table positions: first in table
	// order wins the latest-before-now slot.
	table := tableOf(
		[2]string{"09:00-09:15", "first"},
		[2]string{"09:00-09:15", "second"},
	)

	res := Resolve(at("10:00"), table, testCols)
	if res.Row == nil || res.Row.Index != 0 {
		t.Fatalf("duplicate labels must resolve to the first row, got %+v", res.Row)
	}
}

func TestResolveDegenerateNeverSelected(t *testing.T) {
	table := tableOf(
		[2]string{"09:00-09:00", "degenerate"},
		[2]string{"08:00-08:15", "real"},
	)

	res := Resolve(at("09:00"), table, testCols)
	if res.Row == nil || res.Row.Index != 1 {
		t.Fatalf("degenerate interval must never be selected, got %+v", res.Row)
	}

	// Alone in the table it leaves no candidates at all.
	solo := tableOf([2]string{"09:00-09:00", "degenerate"})
	res = Resolve(at("09:00"), solo, testCols)
	if res.Outcome != OutcomeNoParseable {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeNoParseable)
	}
}

func TestResolveScenarioAEmptyMatchWalksBack(t *testing.T) {
	table := tableOf(
		[2]string{"09:00-09:15", "data"},
		[2]string{"09:15-09:30", ""}, // published but empty
	)

	res := Resolve(at("09:20"), table, testCols)
	if res.Row == nil || res.Row.Index != 0 {
		t.Fatalf("want fallback to row 0, got %+v", res.Row)
	}
	if res.Outcome != OutcomeWalkBack {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeWalkBack)
	}
	if !strings.Contains(res.Diagnostic, "09:00-09:15") || !strings.Contains(res.Diagnostic, "09:15-09:30") {
		t.Errorf("diagnostic %q must name both blocks", res.Diagnostic)
	}
}

func TestResolveScenarioBAllFuture(t *testing.T) {
	table := tableOf(
		[2]string{"15:00-15:15", "a"},
		[2]string{"15:15-15:30", "b"},
	)

	res := Resolve(at("09:00"), table, testCols)
	if res.Row == nil || res.Row.Index != 0 {
		t.Fatalf("want earliest row, got %+v", res.Row)
	}
	if res.Outcome != OutcomeEarliestFuture {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeEarliestFuture)
	}
	if !strings.Contains(res.Diagnostic, "all intervals start after") {
		t.Errorf("diagnostic = %q", res.Diagnostic)
	}
}

func TestResolveScenarioCUnparseableExcluded(t *testing.T) {
	table := tableOf(
		[2]string{"09:00-09:15", "a"},
		[2]string{"foo-bar", "junk"},
		[2]string{"09:15-09:30", "b"},
	)

	res := Resolve(at("09:20"), table, testCols)
	if res.Row == nil || res.Row.Index != 2 {
		t.Fatalf("unparseable row must not disturb resolution, got %+v", res.Row)
	}
	if res.Outcome != OutcomeExact {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeExact)
	}
}

func TestResolveScenarioDEmptyTable(t *testing.T) {
	for _, table := range []*Table{nil, {}} {
		res := Resolve(at("09:00"), table, testCols)
		if res.Row != nil {
			t.Errorf("empty table must yield no row, got %+v", res.Row)
		}
		if res.Diagnostic != "no data at all" {
			t.Errorf("diagnostic = %q", res.Diagnostic)
		}
	}
}

func TestResolveNoParseableIntervals(t *testing.T) {
	table := tableOf(
		[2]string{"garbage", "x"},
		[2]string{"more garbage", "y"},
	)

	res := Resolve(at("09:00"), table, testCols)
	if res.Row == nil || res.Row.Index != 1 {
		t.Fatalf("want last row in table order, got %+v", res.Row)
	}
	if res.Diagnostic != "no parseable intervals" {
		t.Errorf("diagnostic = %q", res.Diagnostic)
	}
}

func TestResolveWalkBackTerminal(t *testing.T) {
	table := tableOf(
		[2]string{"09:00-09:15", ""},
		[2]string{"09:15-09:30", ""},
	)

	res := Resolve(at("09:20"), table, testCols)
	if res.Row == nil || res.Row.Index != 0 {
		t.Fatalf("terminal fallback must land on row 0, got %+v", res.Row)
	}
	if res.Diagnostic != "no non-empty row found; showing earliest row" {
		t.Errorf("diagnostic = %q", res.Diagnostic)
	}
}

func TestResolveFallbackNeverReturnsEmptyRow(t *testing.T) {
	table := tableOf(
		[2]string{"08:45-09:00", "data"},
		[2]string{"09:00-09:15", ""},
		[2]string{"09:15-09:30", ""},
	)

	res := Resolve(at("09:20"), table, testCols)
	if res.Row == nil {
		t.Fatal("want a row")
	}
	if RowIsEmpty(*res.Row, testCols.Payload) {
		t.Errorf("fallback returned an empty row at index %d", res.Row.Index)
	}
	if res.Row.Index != 0 {
		t.Errorf("want row 0, got %d", res.Row.Index)
	}
}

func TestResolveDeterministic(t *testing.T) {
	table := tableOf(
		[2]string{"09:00-09:15", "a"},
		[2]string{"09:00-09:15", "b"},
		[2]string{"09:15-09:30", ""},
		[2]string{"junk", "c"},
	)

	first := Resolve(at("09:20"), table, testCols)
	for i := 0; i < 10; i++ {
		again := Resolve(at("09:20"), table, testCols)
		if again.Row == nil || first.Row == nil {
			t.Fatal("want rows on both resolutions")
		}
		if again.Row.Index != first.Row.Index || again.Diagnostic != first.Diagnostic {
			t.Fatalf("resolution not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestResolveBlockMissingColumn(t *testing.T) {
	table := tableOf([2]string{"09:00-09:15", "a"})
	badCols := Columns{Interval: "Interval", Payload: []string{"Price", "Does Not Exist"}}

	_, err := ResolveBlock(at("09:05"), table, badCols)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("want ErrMissingColumn, got %v", err)
	}

	// An empty table is not a schema failure.
	if _, err := ResolveBlock(at("09:05"), &Table{}, badCols); err != nil {
		t.Errorf("empty table must not fail validation: %v", err)
	}
}
