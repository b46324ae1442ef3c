package toon

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/funcseg/internal/model"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatTOON = "toon"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatTOON, FormatJSON, FormatYAML}

// Write encodes the successful results in the given format. Failed results
// are skipped except in TOON, which carries an errors table; callers report
// failures themselves.
func Write(w io.Writer, format string, results []model.FileResult) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, Text(results))
		return err
	case FormatTOON:
		_, err := fmt.Fprintln(w, Encode(results))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(succeeded(results))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(succeeded(results)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Text renders each file as a path line followed by one indented
// (start, end, kind, "text") line per segment.
func Text(results []model.FileResult) string {
	var b strings.Builder
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s\n", r.Path)
		for _, s := range r.Segments {
			fmt.Fprintf(&b, "  (%d, %d, %s, %s)\n", s.Start, s.End, s.Kind, quote(s.Text))
		}
	}
	return b.String()
}

func succeeded(results []model.FileResult) []model.FileResult {
	out := make([]model.FileResult, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r)
		}
	}
	return out
}
