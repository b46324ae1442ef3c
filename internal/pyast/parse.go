package pyast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/funcseg/internal/lang"
)

// SyntaxError reports source that the grammar could not parse.
type SyntaxError struct {
	Line   int // one-indexed
	Column int // one-indexed
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (line %d, column %d)", e.Msg, e.Line, e.Column)
}

// Parser turns Python source into a Module.
// A Parser is not safe for concurrent use; give each goroutine its own.
type Parser struct {
	ts *sitter.Parser
}

// NewParser creates a Parser backed by the registered Python grammar.
func NewParser() *Parser {
	return &Parser{ts: lang.Python().NewParser()}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.ts.Close()
}

// Parse parses src. Malformed input yields a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, src []byte) (*Module, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, locateError(root, src)
	}

	b := &builder{src: src}
	return b.module(root), nil
}

// Parse is a convenience wrapper that parses src with a throwaway Parser.
func Parse(ctx context.Context, src []byte) (*Module, error) {
	p := NewParser()
	defer p.Close()
	return p.Parse(ctx, src)
}

// locateError finds the first ERROR or MISSING node in document order.
func locateError(root *sitter.Node, src []byte) *SyntaxError {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.IsMissing() {
			return &SyntaxError{
				Line:   int(n.StartPoint().Row) + 1,
				Column: int(n.StartPoint().Column) + 1,
				Msg:    fmt.Sprintf("missing %q", n.Type()),
			}
		}
		if n.Type() == "ERROR" {
			msg := "invalid syntax"
			if text := lang.CollapseWhitespace(lang.NodeText(n, src)); text != "" && len(text) <= 40 {
				msg = fmt.Sprintf("invalid syntax near %q", text)
			}
			return &SyntaxError{
				Line:   int(n.StartPoint().Row) + 1,
				Column: int(n.StartPoint().Column) + 1,
				Msg:    msg,
			}
		}
		if !n.HasError() {
			continue
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}
	return &SyntaxError{Line: 1, Column: 1, Msg: "invalid syntax"}
}
