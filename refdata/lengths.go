package refdata

import (
	"fmt"
	"strconv"
)

// Sentinel lengths that mean "no limit" in the field lengths file.
const (
	unlimitedLen    = 65356
	unlimitedLenAlt = 999999
)

// FieldLengths maps (segment name, field number) to a maximum value length.
type FieldLengths struct {
	m map[string]int
}

// LoadFieldLengths reads the field lengths file. Rows are exactly three
// columns: segment name, field number, maximum length.
func LoadFieldLengths(path string) (*FieldLengths, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	fl := &FieldLengths{m: make(map[string]int)}
	for _, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("row %v has %d columns; want 3", row, len(row))
		}
		length, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("illegal length %q for %s-%s", row[2], row[0], row[1])
		}
		fl.m[row[0]+"-"+row[1]] = length
	}
	return fl, nil
}

// Limit returns the maximum length for a field. Sentinel entries that mean
// "unlimited" report no limit.
func (f *FieldLengths) Limit(segment string, field int) (int, bool) {
	n, ok := f.m[segment+"-"+strconv.Itoa(field)]
	if !ok || n == unlimitedLen || n == unlimitedLenAlt {
		return 0, false
	}
	return n, true
}

// Len returns the number of field entries.
func (f *FieldLengths) Len() int {
	return len(f.m)
}

// DataTypeLengths maps (data type name, zero-based slot within the type) to
// a maximum value length. Slot 0 of a primitive type covers the whole value.
type DataTypeLengths struct {
	m map[string]map[int]int
}

// LoadDataTypeLengths reads the data type lengths file. A one-column row
// names the data type that subsequent two-column (slot, length) rows belong
// to; slot numbers in the file are one-based. The carried data type is the
// fold's only state.
func LoadDataTypeLengths(path string) (*DataTypeLengths, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	dl := &DataTypeLengths{m: make(map[string]map[int]int)}
	var current string
	for _, row := range rows {
		switch len(row) {
		case 0:
		case 1:
			current = row[0]
			if _, ok := dl.m[current]; !ok {
				dl.m[current] = make(map[int]int)
			}
		case 2:
			seq, err1 := strconv.Atoi(row[0])
			length, err2 := strconv.Atoi(row[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("invalid sequence %q or length %q", row[0], row[1])
			}
			if current == "" {
				return nil, fmt.Errorf("sequence %s precedes any data type", row[0])
			}
			dl.m[current][seq-1] = length
		default:
			return nil, fmt.Errorf("row %v has %d columns; want 1 or 2", row, len(row))
		}
	}
	return dl, nil
}

// Limit returns the maximum length for a slot of a data type.
func (d *DataTypeLengths) Limit(dataType string, slot int) (int, bool) {
	slots, ok := d.m[dataType]
	if !ok {
		return 0, false
	}
	n, ok := slots[slot]
	return n, ok
}

// Len returns the number of data types with at least one entry.
func (d *DataTypeLengths) Len() int {
	return len(d.m)
}
