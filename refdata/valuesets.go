package refdata

import "fmt"

// ValueSets maps a field or component locator (e.g. "OBX-3" or "PID-10.1")
// and a coding system to the set of codes legal at that location. A locator
// with no entry for a given coding system means no validation is performed
// there, never that the code is invalid.
type ValueSets struct {
	m map[string]map[string]map[string]bool
}

// LoadValueSets reads the value sets file. Columns are locator, coding
// system, code; the locator and coding system carry down from the last row
// that set them. One- and two-column rows only move the carried state.
func LoadValueSets(path string) (*ValueSets, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	vs := &ValueSets{m: make(map[string]map[string]map[string]bool)}
	var locator, system string
	for _, row := range rows {
		switch len(row) {
		case 0:
		case 1:
			locator = row[0]
		case 2:
			if row[0] != "" {
				locator = row[0]
			}
			system = row[1]
		case 3:
			if row[0] != "" {
				locator = row[0]
			}
			if row[1] != "" {
				system = row[1]
			}
			if locator == "" {
				return nil, fmt.Errorf("code %q precedes any locator", row[2])
			}
			if system == "" {
				return nil, fmt.Errorf("code %q precedes any coding system", row[2])
			}
			if vs.m[locator] == nil {
				vs.m[locator] = make(map[string]map[string]bool)
			}
			if vs.m[locator][system] == nil {
				vs.m[locator][system] = make(map[string]bool)
			}
			vs.m[locator][system][row[2]] = true
		default:
			return nil, fmt.Errorf("row %v has %d columns; want at most 3", row, len(row))
		}
	}
	return vs, nil
}

// Contains reports whether code is a member of the value set at (locator,
// system). The second result is false when no such set exists, which callers
// treat as "no check".
func (v *ValueSets) Contains(locator, system, code string) (member, known bool) {
	systems, ok := v.m[locator]
	if !ok {
		return false, false
	}
	set, ok := systems[system]
	if !ok {
		return false, false
	}
	return set[code], true
}

// Len returns the number of locators with at least one value set.
func (v *ValueSets) Len() int {
	return len(v.m)
}
