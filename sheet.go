package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tsawler/tabula/xlsx"
)

// SheetConfig locates the data inside the published workbook.
type SheetConfig struct {
	// HeaderRow is the 0-indexed sheet row carrying the column names.
	// The OTE report puts them on the 6th row.
	HeaderRow int
}

var spaceRuns = regexp.MustCompile(` +`)

// cleanColumn normalizes a header cell: newlines stripped, space runs
// collapsed, ends trimmed. Upstream wraps long headers across lines.
func cleanColumn(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ParseSheet turns raw XLSX bytes into a Table. Column names come from
// cfg.HeaderRow; every sheet row below it becomes a data row in document
// order. Rows with no content in any named column are dropped.
func ParseSheet(raw []byte, cfg SheetConfig) (*Table, error) {
	// The xlsx reader works off a file path.
	tmp, err := os.CreateTemp("", "otewatch-*.xlsx")
	if err != nil {
		return nil, fmt.Errorf("sheet: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("sheet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("sheet: %w", err)
	}

	r, err := xlsx.Open(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("sheet: %w", err)
	}
	defer r.Close()

	sh, err := r.Sheet(0)
	if err != nil {
		return nil, fmt.Errorf("sheet: %w", err)
	}
	if sh.RowCount() <= cfg.HeaderRow {
		return nil, fmt.Errorf("sheet: header row %d out of range (rows=%d)", cfg.HeaderRow, sh.RowCount())
	}

	cols := make([]string, sh.ColCount())
	for c := range cols {
		if cell := sh.Cell(cfg.HeaderRow, c); cell != nil {
			cols[c] = cleanColumn(cell.Value)
		}
	}

	t := &Table{Columns: cols}
	for i := cfg.HeaderRow + 1; i < sh.RowCount(); i++ {
		cells := make(map[string]string, len(cols))
		empty := true
		for c, name := range cols {
			if name == "" {
				continue
			}
			var v string
			if cell := sh.Cell(i, c); cell != nil {
				v = strings.TrimSpace(cell.Value)
			}
			cells[name] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, Row{Index: len(t.Rows), Cells: cells})
	}
	return t, nil
}
