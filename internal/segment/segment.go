// Package segment splits canonical Python text into an ordered sequence of
// code and function segments.
package segment

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/phobologic/funcseg/internal/model"
	"github.com/phobologic/funcseg/internal/normalize"
	"github.com/phobologic/funcseg/internal/pyast"
)

// Split yields the segments of text given the function ranges found in it.
// Functions are emitted as their own rendering; the lines between them are
// trimmed of whitespace-only lines at both ends, dedented and emitted as
// code unless nothing but whitespace remains. Segments come out in
// increasing line order and never overlap. Each range over the sequence
// starts again from the first line.
func Split(text string, ranges CoveredRanges) iter.Seq[model.Segment] {
	return func(yield func(model.Segment) bool) {
		lines := splitLines(text)
		prev := 0
		for _, r := range ranges.Sorted() {
			if prev != r.Start {
				if seg, ok := gap(lines, prev, r.Start); ok && !yield(seg) {
					return
				}
			}
			if !yield(model.Segment{
				Start: r.Start,
				End:   r.End,
				Kind:  model.Function,
				Text:  pyast.Render(ranges[r]),
			}) {
				return
			}
			prev = r.End
		}
		if prev != len(lines) {
			if seg, ok := gap(lines, prev, len(lines)); ok {
				yield(seg)
			}
		}
	}
}

// gap builds the code segment for lines[start:end], if any remains after
// trimming.
func gap(lines []string, start, end int) (model.Segment, bool) {
	if start < 0 || end > len(lines) || start >= end {
		return model.Segment{}, false
	}
	between := strings.Join(trimBookends(lines[start:end]), "")
	if strings.TrimSpace(between) == "" {
		return model.Segment{}, false
	}
	return model.Segment{
		Start: start,
		End:   end,
		Kind:  model.Code,
		Text:  strings.TrimSuffix(dedent.Dedent(between), "\n"),
	}, true
}

// trimBookends drops whitespace-only lines from both ends.
func trimBookends(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// splitLines splits text after each "\n", keeping the terminators. Only
// "\n" counts as a line break, matching the parser's row numbering.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Segmenter runs the full pipeline for one goroutine: normalize, render,
// re-parse for canonical positions, collect functions and split.
type Segmenter struct {
	parser     *pyast.Parser
	normalizer *normalize.Normalizer
}

// New returns a Segmenter that parses with parser and normalizes with n.
// A nil n selects the default rules.
func New(parser *pyast.Parser, n *normalize.Normalizer) *Segmenter {
	if n == nil {
		n = normalize.New()
	}
	return &Segmenter{parser: parser, normalizer: n}
}

// Canonical renders mod and parses the result again, so positions refer to
// the canonical text rather than the original input.
func (s *Segmenter) Canonical(ctx context.Context, mod *pyast.Module) (string, *pyast.Module, error) {
	text := pyast.Render(mod)
	canon, err := s.parser.Parse(ctx, []byte(text))
	if err != nil {
		return "", nil, fmt.Errorf("re-parsing canonical text: %w", err)
	}
	return text, canon, nil
}

// Module segments an already normalized module.
func (s *Segmenter) Module(ctx context.Context, mod *pyast.Module) (iter.Seq[model.Segment], error) {
	text, canon, err := s.Canonical(ctx, mod)
	if err != nil {
		return nil, err
	}
	return Split(text, CollectFunctions(canon)), nil
}

// Source parses, normalizes and segments src.
func (s *Segmenter) Source(ctx context.Context, src []byte) (iter.Seq[model.Segment], error) {
	mod, err := s.parser.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	return s.Module(ctx, s.normalizer.Module(mod))
}

// Normalized parses src and returns its normalized canonical text.
func (s *Segmenter) Normalized(ctx context.Context, src []byte) (string, error) {
	mod, err := s.parser.Parse(ctx, src)
	if err != nil {
		return "", err
	}
	return pyast.Render(s.normalizer.Module(mod)), nil
}
