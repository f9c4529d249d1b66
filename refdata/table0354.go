package refdata

import (
	"fmt"
	"strconv"
	"strings"
)

// TriggerMap maps (message code, trigger event) pairs to message structure
// identifiers, per HL7 Table 0354.
type TriggerMap struct {
	m map[string]map[string]string
}

// LoadTriggerMap reads the trigger map file. Each row names a message
// structure (e.g. "ADT_A01") and a comma-separated list of trigger events
// that select it; a trigger written as a range ("A01-A12") is expanded.
func LoadTriggerMap(path string) (*TriggerMap, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	tm := &TriggerMap{m: make(map[string]map[string]string)}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		structure := strings.TrimSpace(row[0])
		if len(structure) < 3 {
			continue
		}
		code := structure[:3]
		if tm.m[code] == nil {
			tm.m[code] = make(map[string]string)
		}

		for _, trigger := range strings.Split(row[1], ",") {
			trigger = strings.TrimSpace(trigger)
			switch {
			case len(trigger) == 3:
				tm.m[code][trigger] = structure
			case len(trigger) == 7 && trigger[3] == '-':
				if err := expandTriggerRange(tm.m[code], trigger, structure); err != nil {
					return nil, err
				}
			case trigger == "":
			default:
				return nil, fmt.Errorf("malformed trigger %q for structure %s", trigger, structure)
			}
		}
	}
	return tm, nil
}

// expandTriggerRange fills in every trigger of a range like "A01-A12".
func expandTriggerRange(dst map[string]string, r, structure string) error {
	letter := r[:1]
	start, err1 := strconv.Atoi(r[1:3])
	end, err2 := strconv.Atoi(r[5:7])
	if err1 != nil || err2 != nil {
		return fmt.Errorf("malformed trigger range %q for structure %s", r, structure)
	}
	for n := start; n <= end; n++ {
		dst[fmt.Sprintf("%s%02d", letter, n)] = structure
	}
	return nil
}

// Lookup returns the message structure identifier for a message code and
// trigger event.
func (t *TriggerMap) Lookup(code, trigger string) (string, bool) {
	triggers, ok := t.m[code]
	if !ok {
		return "", false
	}
	s, ok := triggers[trigger]
	return s, ok
}

// Len returns the total number of (code, trigger) entries.
func (t *TriggerMap) Len() int {
	n := 0
	for _, triggers := range t.m {
		n += len(triggers)
	}
	return n
}
