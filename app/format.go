package app

import "strconv"

// formatFloat renders a float for the raw-table pipeline without losing
// precision
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
