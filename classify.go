package main

import "strings"

// blank reports whether a cell's string form carries no data. Upstream
// exports sometimes print missing numbers as "nan".
func blank(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "nan")
}

// RowIsEmpty reports whether every payload cell is absent or blank. A row
// can carry a perfectly valid interval label and still be empty —
// upstream publishes future blocks before their figures exist. Empty rows
// trigger the resolver's backward walk.
func RowIsEmpty(r Row, payload []string) bool {
	for _, col := range payload {
		if v, ok := r.Cells[col]; ok && !blank(v) {
			return false
		}
	}
	return true
}
