package refdata

import "fmt"

// CodeTable is one HL7 or User table: its kind plus the set of legal codes.
type CodeTable struct {
	Type  string
	codes map[string]bool
}

// Contains reports whether code is a member of the table.
func (c *CodeTable) Contains(code string) bool {
	return c.codes[code]
}

// Len returns the number of codes in the table.
func (c *CodeTable) Len() int {
	return len(c.codes)
}

// CodeTables maps table identifiers (e.g. "HL70003") to their code sets.
type CodeTables struct {
	tables map[string]*CodeTable
}

// LoadCodeTables reads the code tables file. Columns are Type, Table, Name,
// Value; the Type and Table columns carry down from the last row that set
// them, so the file is interpreted as a sequential fold whose accumulator is
// the current (type, table) pair.
func LoadCodeTables(path string) (*CodeTables, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	ct := &CodeTables{tables: make(map[string]*CodeTable)}
	var tableType, tableID string
	for _, row := range rows {
		if len(row) > 0 && row[0] != "" {
			tableType = row[0]
		}
		if len(row) > 1 && row[1] != "" {
			tableID = row[1]
			if _, ok := ct.tables[tableID]; !ok {
				if tableType == "" {
					return nil, fmt.Errorf("table %s has no table type", tableID)
				}
				ct.tables[tableID] = &CodeTable{Type: tableType, codes: make(map[string]bool)}
			}
		}
		if len(row) < 4 || row[3] == "" {
			continue
		}
		if tableID == "" {
			return nil, fmt.Errorf("code %q belongs to no table", row[3])
		}
		ct.tables[tableID].codes[row[3]] = true
	}
	return ct, nil
}

// Table returns the named code table.
func (c *CodeTables) Table(id string) (*CodeTable, bool) {
	t, ok := c.tables[id]
	return t, ok
}

// Contains reports whether code is a member of the identified table. The
// second result is false when the table itself is unknown, which callers
// treat as "no check", not as an invalid code.
func (c *CodeTables) Contains(id, code string) (member, known bool) {
	t, ok := c.tables[id]
	if !ok {
		return false, false
	}
	return t.Contains(code), true
}
