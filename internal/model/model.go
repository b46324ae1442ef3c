// Package model defines core data structures for funcseg.
package model

// Kind labels a segment as free statements or a function definition.
type Kind string

const (
	Code     Kind = "code"
	Function Kind = "function"
)

// Segment is a labeled span of canonical text. Start and End are
// zero-indexed, half-open line offsets into the canonical rendering.
type Segment struct {
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	Text  string `json:"text" yaml:"text"`
}

// FileResult holds the segments of one input file, or the error that
// stopped it.
type FileResult struct {
	Path     string    `json:"path" yaml:"path"`
	Segments []Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
	Err      error     `json:"-" yaml:"-"`
	Cached   bool      `json:"-" yaml:"-"`
}
