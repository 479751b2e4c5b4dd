package main

import (
	"fmt"
	"time"
)

// minutesOfDay reduces an instant to its clock time in minutes since
// midnight. Dates never participate in block selection.
func minutesOfDay(t time.Time) int {
	h, m, _ := t.Clock()
	return h*60 + m
}

// ResolveBlock is the resolution entry point: it fails fast when the
// table's schema is missing a required column, otherwise it always
// produces a ResolutionResult so the renderer always gets a page out.
func ResolveBlock(now time.Time, t *Table, cols Columns) (ResolutionResult, error) {
	if t != nil && len(t.Rows) > 0 {
		if err := cols.Validate(t); err != nil {
			return ResolutionResult{}, err
		}
	}
	return Resolve(now, t, cols), nil
}

// Resolve selects the single row that best represents now.
//
// Precedence: the first candidate (table order) whose interval contains
// now; else the candidate with the latest start at or before now
// (first-seen wins start ties); else the earliest future candidate. A
// selected row with no payload data falls back to the nearest non-empty
// row at or before it in table order. Total: every path yields a result,
// and a non-empty Diagnostic marks every fallback taken.
func Resolve(now time.Time, t *Table, cols Columns) ResolutionResult {
	if t == nil || len(t.Rows) == 0 {
		return ResolutionResult{Diagnostic: "no data at all", Outcome: OutcomeNoData}
	}

	nowMin := minutesOfDay(now)

	candidates := make([]ParsedInterval, 0, len(t.Rows))
	for _, r := range t.Rows {
		if p, ok := ParseInterval(r.Index, r.Cell(cols.Interval), cols.Interval); ok {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return ResolutionResult{
			Row:        &t.Rows[len(t.Rows)-1],
			Diagnostic: "no parseable intervals",
			Outcome:    OutcomeNoParseable,
		}
	}

	var exact *ParsedInterval
	var latest *ParsedInterval // maximal start <= now; first seen wins ties
	for i := range candidates {
		c := &candidates[i]
		if c.Contains(nowMin) {
			// First match in table order wins; the table is assumed
			// chronological, so duplicates/overlaps resolve by position.
			exact = c
			break
		}
		if c.Start <= nowMin && (latest == nil || c.Start > latest.Start) {
			latest = c
		}
	}

	if exact != nil {
		row := &t.Rows[exact.RowIndex]
		if !RowIsEmpty(*row, cols.Payload) {
			return ResolutionResult{Row: row, Outcome: OutcomeExact}
		}
		return walkBack(t, cols, exact.RowIndex-1, exact.Label)
	}

	if latest != nil {
		row := &t.Rows[latest.RowIndex]
		if !RowIsEmpty(*row, cols.Payload) {
			return ResolutionResult{
				Row:        row,
				Diagnostic: fmt.Sprintf("no exact match, showing last known data from %s", latest.Label),
				Outcome:    OutcomeLatestBefore,
			}
		}
		return walkBack(t, cols, latest.RowIndex, latest.Label)
	}

	// Every candidate starts after now.
	first := candidates[0]
	row := &t.Rows[first.RowIndex]
	if !RowIsEmpty(*row, cols.Payload) {
		return ResolutionResult{
			Row:        row,
			Diagnostic: fmt.Sprintf("all intervals start after %02d:%02d; showing earliest %s", nowMin/60, nowMin%60, first.Label),
			Outcome:    OutcomeEarliestFuture,
		}
	}
	return walkBack(t, cols, first.RowIndex, first.Label)
}

// walkBack scans table indices from startIndex down to 0 for the first
// row with payload data. The scan covers the full table, not just
// candidates — a non-empty row whose label failed to parse is still last
// known data. Terminal case: row 0 with an explicit diagnostic.
func walkBack(t *Table, cols Columns, startIndex int, origLabel string) ResolutionResult {
	for i := startIndex; i >= 0; i-- {
		if RowIsEmpty(t.Rows[i], cols.Payload) {
			continue
		}
		return ResolutionResult{
			Row: &t.Rows[i],
			Diagnostic: fmt.Sprintf("no new data after interval %s; showing last known data from %s",
				origLabel, t.Rows[i].Cell(cols.Interval)),
			Outcome: OutcomeWalkBack,
		}
	}
	return ResolutionResult{
		Row:        &t.Rows[0],
		Diagnostic: "no non-empty row found; showing earliest row",
		Outcome:    OutcomeNoNonEmpty,
	}
}
