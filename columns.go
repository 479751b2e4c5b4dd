package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Columns names the report's schema: the column carrying the
// "HH:MM-HH:MM" block label, and the payload columns whose values the
// page shows. Payload columns also decide whether a row counts as empty.
type Columns struct {
	Interval string   `yaml:"interval_column"`
	Payload  []string `yaml:"payload_columns"`
}

// DefaultColumns is the OTE intraday report schema as published.
func DefaultColumns() Columns {
	return Columns{
		Interval: "Časový interval",
		Payload: []string{
			"Zobchodované množství(MWh)",
			"Zobchodované množství - nákup(MWh)",
			"Zobchodované množství - prodej(MWh)",
			"Vážený průměr cen (EUR/MWh)",
			"Minimální cena(EUR/MWh)",
			"Maximální cena(EUR/MWh)",
			"Poslední cena(EUR/MWh)",
		},
	}
}

// LoadColumns reads a schema override from a YAML file. Empty fields fall
// back to the defaults; payload names are trimmed and deduped.
func LoadColumns(path string) (Columns, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Columns{}, err
	}
	var c Columns
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Columns{}, err
	}

	def := DefaultColumns()
	c.Interval = strings.TrimSpace(c.Interval)
	if c.Interval == "" {
		c.Interval = def.Interval
	}

	seen := make(map[string]struct{}, len(c.Payload))
	out := make([]string, 0, len(c.Payload))
	for _, p := range c.Payload {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		out = def.Payload
	}
	c.Payload = out
	return c, nil
}

// ErrMissingColumn marks a structural schema failure: a required column
// is absent from the table entirely. Unlike per-row parse trouble this is
// fatal to resolution.
var ErrMissingColumn = errors.New("required column missing")

// Validate checks every required column name against the table schema.
func (c Columns) Validate(t *Table) error {
	have := make(map[string]struct{}, len(t.Columns))
	for _, name := range t.Columns {
		have[name] = struct{}{}
	}
	if _, ok := have[c.Interval]; !ok {
		return fmt.Errorf("%w: %q", ErrMissingColumn, c.Interval)
	}
	for _, p := range c.Payload {
		if _, ok := have[p]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingColumn, p)
		}
	}
	return nil
}
