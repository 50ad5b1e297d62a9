package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"gokinet/internal/errors"
)

// Canonical column roles for kinetic input tables
const (
	ColTime  = "time"
	ColConc  = "conc"
	ColConc0 = "conc0"
	ColRatio = "ratio"
)

// columnAliases maps normalized header spellings to canonical roles.
// The original lab sheets use Russian headers; English spellings are
// accepted as well.
var columnAliases = map[string]string{
	"т, мин":   ColTime,
	"т,мин":    ColTime,
	"time":     ColTime,
	"time_min": ColTime,
	"t":        ColTime,
	"t, min":   ColTime,

	"а":             ColConc,
	"a":             ColConc,
	"conc":          ColConc,
	"concentration": ColConc,

	"а0":                    ColConc0,
	"a0":                    ColConc0,
	"conc0":                 ColConc0,
	"initial_concentration": ColConc0,

	"а/а0":  ColRatio,
	"a/a0":  ColRatio,
	"ratio": ColRatio,
}

// ColumnMap maps canonical roles to the actual header names in a table
type ColumnMap map[string]string

// Has reports whether the table provides the given role
func (m ColumnMap) Has(role string) bool {
	_, ok := m[role]
	return ok
}

// ResolveColumns matches table headers against the known aliases.
// time, conc and conc0 are required; ratio is optional.
func ResolveColumns(headers []string) (ColumnMap, error) {
	resolved := make(ColumnMap)

	for _, header := range headers {
		normalized := strings.ToLower(strings.TrimSpace(header))
		if role, ok := columnAliases[normalized]; ok {
			if _, taken := resolved[role]; !taken {
				resolved[role] = header
			}
		}
	}

	var missing []string
	for _, role := range []string{ColTime, ColConc, ColConc0} {
		if !resolved.Has(role) {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return nil, errors.ValidationError(fmt.Sprintf(
			"missing required columns: %s", strings.Join(missing, ", ")))
	}

	return resolved, nil
}

// ParseNumber parses a cell value, tolerating European decimal commas
// and dot thousands separators ("1.234,5" -> 1234.5).
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	// European format: comma is the decimal separator
	if strings.Contains(s, ",") {
		converted := s
		if strings.Contains(converted, ".") {
			converted = strings.ReplaceAll(converted, ".", "")
		}
		converted = strings.Replace(converted, ",", ".", 1)
		if v, err := strconv.ParseFloat(converted, 64); err == nil {
			return v, nil
		}
	}

	return 0, fmt.Errorf("cannot parse number %q", raw)
}
