package segment

import (
	"cmp"
	"slices"

	"github.com/phobologic/funcseg/internal/pyast"
	"github.com/phobologic/funcseg/internal/walk"
)

// Range is a zero-indexed, half-open interval of canonical text lines.
type Range struct {
	Start int
	End   int
}

// CoveredRanges maps each collected function's Range to its node.
type CoveredRanges map[Range]*pyast.FunctionDef

// Sorted returns the ranges ordered by start line.
func (c CoveredRanges) Sorted() []Range {
	out := make([]Range, 0, len(c))
	for r := range c {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Range) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})
	return out
}

// FunctionCollector records the range of every function definition it
// reaches and does not descend into function bodies, so nested
// definitions stay inside their enclosing function.
type FunctionCollector struct {
	walk.Base
	Ranges CoveredRanges
}

// NewFunctionCollector returns an empty collector.
func NewFunctionCollector() *FunctionCollector {
	return &FunctionCollector{Ranges: CoveredRanges{}}
}

// FunctionDef converts the node's one-indexed inclusive lines into a
// zero-indexed half-open Range that starts at the first decorator.
func (c *FunctionCollector) FunctionDef(fn *pyast.FunctionDef) bool {
	first := fn.Line
	if len(fn.Decorators) > 0 {
		first = fn.Decorators[0].Line
	}
	c.Ranges[Range{Start: first - 1, End: fn.EndLine}] = fn
	return false
}

// CollectFunctions walks root and returns the ranges of the outermost
// function definitions reached.
func CollectFunctions(root pyast.Node) CoveredRanges {
	c := NewFunctionCollector()
	walk.Walk(c, root)
	return c.Ranges
}
