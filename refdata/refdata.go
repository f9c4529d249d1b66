// Package refdata loads the tab-separated reference tables that accompany a
// schema directory: the message-structure trigger map, code tables, field and
// data type length limits, and value sets.
//
// Only the trigger map is mandatory. Each of the other files independently
// enables one validation layer: a missing file means that layer is skipped,
// and a malformed file is reported once as a load warning and then treated
// the same way. All tables are immutable after Load and safe for concurrent
// readers.
package refdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// File names looked up inside the schema directory.
const (
	TriggerMapFile      = "hl7Table0354.csv"
	CodeTablesFile      = "hl7Tables.csv"
	FieldLengthsFile    = "hl7Fields.csv"
	DataTypeLengthsFile = "hl7DataTypes.csv"
	ValueSetsFile       = "valueSets.csv"
)

// Tables aggregates every reference table loaded from a schema directory.
// A nil table means its validation layer is disabled.
type Tables struct {
	Triggers        *TriggerMap
	Codes           *CodeTables
	FieldLengths    *FieldLengths
	DataTypeLengths *DataTypeLengths
	ValueSets       *ValueSets

	// Warnings records optional files that were present but malformed;
	// their layers are disabled.
	Warnings []string
}

// Load reads the reference tables from dir. The trigger map file is
// mandatory; its absence or a parse failure in it is an error. Every other
// file is optional.
func Load(dir string) (*Tables, error) {
	t := &Tables{}

	var err error
	t.Triggers, err = LoadTriggerMap(filepath.Join(dir, TriggerMapFile))
	if err != nil {
		return nil, err
	}

	t.Codes = loadOptional(t, CodeTablesFile, dir, LoadCodeTables)
	t.FieldLengths = loadOptional(t, FieldLengthsFile, dir, LoadFieldLengths)
	t.DataTypeLengths = loadOptional(t, DataTypeLengthsFile, dir, LoadDataTypeLengths)
	t.ValueSets = loadOptional(t, ValueSetsFile, dir, LoadValueSets)
	return t, nil
}

func loadOptional[T any](t *Tables, name, dir string, load func(string) (*T, error)) *T {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v, err := load(path)
	if err != nil {
		t.Warnings = append(t.Warnings, fmt.Sprintf("%s: %v", name, err))
		return nil
	}
	return v
}

// readRows opens a tab-separated file and returns its rows with the header
// row dropped. Rows may have ragged column counts.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}
