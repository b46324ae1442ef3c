// Package toon implements TOON (Token-Oriented Object Notation) encoding,
// plus the other output formats segments can be written in.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/funcseg/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts file results into TOON format. Failed results are listed
// in an errors table after the segments.
func Encode(results []model.FileResult) string {
	var parts []string

	var segRows [][]string
	var errRows [][]string
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			errRows = append(errRows, []string{r.Path, r.Err.Error()})
			continue
		}
		for j := range r.Segments {
			s := &r.Segments[j]
			segRows = append(segRows, []string{
				r.Path,
				fmt.Sprintf("%d", s.Start),
				fmt.Sprintf("%d", s.End),
				string(s.Kind),
				s.Text,
			})
		}
	}
	parts = append(parts, formatTabular("segments", []string{"file", "start", "end", "kind", "text"}, segRows))

	if len(errRows) > 0 {
		parts = append(parts, formatTabular("errors", []string{"file", "error"}, errRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
