package toon

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/funcseg/internal/model"
)

func sampleResults() []model.FileResult {
	return []model.FileResult{
		{
			Path: "a.py",
			Segments: []model.Segment{
				{Start: 0, End: 1, Kind: model.Code, Text: "x = 1"},
				{Start: 1, End: 3, Kind: model.Function, Text: "def f():\n    pass"},
			},
		},
		{Path: "bad.py", Err: errors.New("boom")},
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatText, sampleResults()); err != nil {
		t.Fatal(err)
	}
	want := "a.py\n" +
		"  (0, 1, code, \"x = 1\")\n" +
		"  (1, 3, function, \"def f():\\n    pass\")\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleResults()); err != nil {
		t.Fatal(err)
	}
	var got []model.FileResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0].Path != "a.py" || len(got[0].Segments) != 2 {
		t.Errorf("got %+v", got)
	}
	if got[0].Segments[1].Kind != model.Function {
		t.Errorf("kind = %q", got[0].Segments[1].Kind)
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, sampleResults()); err != nil {
		t.Fatal(err)
	}
	var got []model.FileResult
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0].Segments[1].Text != "def f():\n    pass" {
		t.Errorf("got %+v", got)
	}
}

func TestWriteTOON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatTOON, sampleResults()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "segments[2]{file,start,end,kind,text}:") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "errors[1]{file,error}:\n  bad.py,boom") {
		t.Errorf("missing errors table:\n%s", buf.String())
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, "xml", nil); err == nil {
		t.Error("expected error")
	}
}
