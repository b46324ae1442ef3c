package toon

import (
	"errors"
	"strings"
	"testing"

	"github.com/phobologic/funcseg/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main.py", "src/main.py"},
		{"dotted name", "Foo.__init__", "Foo.__init__"},
		{"statement no special", "return x + 1", "return x + 1"},
		{"function header", "def f(x):", `"def f(x):"`},
		{"multi-line function", "def f():\n    pass", `"def f():\n    pass"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	results := []model.FileResult{
		{
			Path: "src/main.py",
			Segments: []model.Segment{
				{Start: 0, End: 1, Kind: model.Code, Text: "import os"},
				{Start: 1, End: 3, Kind: model.Function, Text: "def f():\n    pass"},
			},
		},
		{Path: "src/bad.py", Err: errors.New("invalid syntax (line 1, column 7)")},
		{Path: "src/empty.py"},
	}

	got := Encode(results)
	want := []string{
		"segments[2]{file,start,end,kind,text}:",
		"  src/main.py,0,1,code,import os",
		`  src/main.py,1,3,function,"def f():\n    pass"`,
		"errors[1]{file,error}:",
		`  src/bad.py,"invalid syntax (line 1, column 7)"`,
	}
	lines := strings.Split(got, "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(nil)
	if got != "segments[0]{file,start,end,kind,text}:" {
		t.Errorf("got %q", got)
	}
}
