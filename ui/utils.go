package ui

import (
	"html/template"
	"strconv"
	"strings"

	"gokinet/internal/errors"

	"github.com/gin-gonic/gin"
)

// renderError shows the user-facing error page with the mapped status
func (s *Server) renderError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	s.render(c, status, "error.html", gin.H{
		"Status":  status,
		"Code":    errors.GetCode(err),
		"Message": err.Error(),
	})
}

// templateHTML marks pre-rendered markup as safe for templates
func templateHTML(b []byte) template.HTML {
	return template.HTML(b)
}

// parseManualRows parses textarea input: one point per line, time and
// concentration separated by comma, semicolon or whitespace. Decimal
// commas are accepted when fields are not comma-separated.
func parseManualRows(raw string) ([]float64, []float64, error) {
	var times, concs []float64

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := splitRowFields(line)
		if len(fields) < 2 {
			return nil, nil, errors.InvalidInput(
				"each line needs a time and a concentration, e.g. \"10 86.5\"")
		}

		t, err := parseField(fields[0])
		if err != nil {
			return nil, nil, errors.InvalidInput("cannot parse time value " + strconv.Quote(fields[0]))
		}
		conc, err := parseField(fields[1])
		if err != nil {
			return nil, nil, errors.InvalidInput("cannot parse concentration value " + strconv.Quote(fields[1]))
		}

		times = append(times, t)
		concs = append(concs, conc)
	}

	if len(times) == 0 {
		return nil, nil, errors.InvalidInput("no data rows entered")
	}
	return times, concs, nil
}

// splitRowFields splits a manual-entry line into its value fields
func splitRowFields(line string) []string {
	separators := []string{";", "\t"}
	for _, sep := range separators {
		if strings.Contains(line, sep) {
			return trimFields(strings.Split(line, sep))
		}
	}

	// Comma is ambiguous: it may separate fields or mark decimals.
	// Two commas or a comma plus spaces means field separator.
	if strings.Count(line, ",") >= 2 || (strings.Contains(line, ",") && strings.ContainsAny(line, " ")) {
		if fields := trimFields(strings.Split(line, ",")); len(fields) >= 2 && !strings.ContainsAny(fields[0], " ") {
			return fields
		}
	}
	if strings.ContainsAny(line, " ") {
		return trimFields(strings.Fields(line))
	}
	return trimFields(strings.Split(line, ","))
}

func trimFields(fields []string) []string {
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseField parses one numeric field, tolerating a decimal comma
func parseField(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}
