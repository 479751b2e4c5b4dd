package main

import (
	"strings"
	"time"
)

// Parse "HH:MM" (leading zero optional) into minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// ParseInterval parses a block label like "20:30-20:45" into a half-open
// time-of-day range. ok=false marks the label unparseable; such rows are
// excluded from candidacy but keep their table slots for fallback
// indexing. Unparseable shapes: missing or extra "-" separators,
// non-clock halves, start == end, and labels that repeat the interval
// column's own header words — upstream re-emits header rows mid-document.
func ParseInterval(rowIndex int, label, intervalColumn string) (ParsedInterval, bool) {
	lab := strings.TrimSpace(label)
	if lab == "" {
		return ParsedInterval{}, false
	}

	low := strings.ToLower(lab)
	for _, word := range strings.Fields(strings.ToLower(intervalColumn)) {
		if strings.Contains(low, word) {
			return ParsedInterval{}, false
		}
	}

	parts := strings.Split(lab, "-")
	if len(parts) != 2 {
		return ParsedInterval{}, false
	}
	start, ok := parseClock(parts[0])
	if !ok {
		return ParsedInterval{}, false
	}
	end, ok := parseClock(parts[1])
	if !ok {
		return ParsedInterval{}, false
	}
	if start == end {
		// Degenerate range, never matches anything.
		return ParsedInterval{}, false
	}

	return ParsedInterval{
		Label:           lab,
		RowIndex:        rowIndex,
		Start:           start,
		End:             end,
		CrossesMidnight: start > end,
	}, true
}

// Contains reports whether the half-open interval holds the given
// time-of-day (minutes since midnight). Wrapping intervals match the
// union of both day fragments.
func (p ParsedInterval) Contains(nowMin int) bool {
	if p.CrossesMidnight {
		return nowMin >= p.Start || nowMin < p.End
	}
	return nowMin >= p.Start && nowMin < p.End
}
