package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/funcseg/internal/lang"
)

// exprNode wraps the canonical text of n in an Expr leaf.
func (b *builder) exprNode(n *sitter.Node) *Expr {
	if n == nil {
		return nil
	}
	return &Expr{
		Pos:     b.pos(n),
		Type:    n.Type(),
		Text:    b.expr(n),
		Literal: b.literal(n),
	}
}

// expr prints an expression subtree in canonical form: single spaces around
// binary operators, ", " between items, no padding inside brackets. String
// literals are kept verbatim.
func (b *builder) expr(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "string", "integer", "float", "identifier", "true", "false", "none",
		"ellipsis", "escape_sequence":
		return b.text(n)

	case "dotted_name", "relative_import", "import_prefix", "unary_operator",
		"slice", "member_type", "splat_type", "keyword_pattern", "splat_pattern":
		return b.joined(n, "")

	case "concatenated_string":
		return b.joinNamed(n, " ")

	case "call":
		return b.expr(n.ChildByFieldName("function")) + b.expr(n.ChildByFieldName("arguments"))

	case "attribute":
		return b.expr(n.ChildByFieldName("object")) + "." + b.expr(n.ChildByFieldName("attribute"))

	case "subscript":
		// The subscripted value is always the first named child.
		parts := b.named(n)
		if len(parts) == 0 {
			return lang.CollapseWhitespace(b.text(n))
		}
		items := make([]string, 0, len(parts)-1)
		for _, c := range parts[1:] {
			items = append(items, b.expr(c))
		}
		return b.expr(parts[0]) + "[" + strings.Join(items, ", ") + "]"

	case "generic_type":
		return b.joined(n, "")

	case "keyword_argument":
		return b.expr(n.ChildByFieldName("name")) + "=" + b.expr(n.ChildByFieldName("value"))

	case "pair":
		return b.expr(n.ChildByFieldName("key")) + ": " + b.expr(n.ChildByFieldName("value"))

	case "argument_list", "tuple", "list", "set", "dictionary", "tuple_pattern",
		"list_pattern", "type_parameter", "parenthesized_expression",
		"parenthesized_list_splat":
		return b.bracketed(n)

	case "dict_pattern":
		return b.mapping(n)

	case "with_clause":
		if parts := b.children(n); len(parts) > 0 && parts[0].Type() == "(" {
			return b.bracketed(n)
		}
		return b.joinNamed(n, ", ")

	case "list_comprehension", "set_comprehension", "dictionary_comprehension",
		"generator_expression":
		return b.comprehension(n)

	case "expression_list", "pattern_list":
		// A single item is only a tuple because of its trailing comma.
		if len(b.named(n)) == 1 {
			return b.joinNamed(n, ", ") + ","
		}
		return b.joinNamed(n, ", ")

	case "list_splat", "list_splat_pattern":
		return "*" + b.joinNamed(n, "")

	case "dictionary_splat", "dictionary_splat_pattern":
		return "**" + b.joinNamed(n, "")

	case "lambda":
		out := "lambda"
		if params := n.ChildByFieldName("parameters"); params != nil {
			ps := b.params(params)
			texts := make([]string, len(ps))
			for i, p := range ps {
				texts[i] = renderParam(p)
			}
			out += " " + strings.Join(texts, ", ")
		}
		return out + ": " + b.expr(n.ChildByFieldName("body"))

	case "type", "case_pattern":
		if inner := b.named(n); len(inner) == 1 {
			return b.expr(inner[0])
		}
		return b.tokens(b.children(n))

	case "class_pattern":
		var out string
		for _, c := range b.children(n) {
			if c.Type() == "dotted_name" {
				out = b.expr(c)
				break
			}
		}
		var items []string
		for _, c := range b.named(n) {
			if c.Type() != "dotted_name" {
				items = append(items, b.expr(c))
			}
		}
		return out + "(" + strings.Join(items, ", ") + ")"

	case "keyword_separator":
		return "*"

	case "positional_separator":
		return "/"

	case "comment", "line_continuation":
		return ""
	}

	if len(b.named(n)) == 0 {
		return lang.CollapseWhitespace(b.text(n))
	}
	return b.tokens(b.children(n))
}

// extra reports tree-sitter extras that carry no syntax: comments and
// backslash line continuations.
func extra(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "line_continuation":
		return true
	}
	return false
}

// children returns every child of n except extras.
func (b *builder) children(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); !extra(c) {
			out = append(out, c)
		}
	}
	return out
}

// named returns the named children of n except extras.
func (b *builder) named(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); !extra(c) {
			out = append(out, c)
		}
	}
	return out
}

func (b *builder) piece(n *sitter.Node) string {
	if n.IsNamed() {
		return b.expr(n)
	}
	return b.text(n)
}

// tokens joins the children of a node with single spaces, attaching commas
// to the preceding item.
func (b *builder) tokens(parts []*sitter.Node) string {
	var sb strings.Builder
	for _, c := range parts {
		if extra(c) {
			continue
		}
		if !c.IsNamed() && c.Type() == "," {
			sb.WriteString(",")
			continue
		}
		s := b.piece(c)
		if s == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func (b *builder) joined(n *sitter.Node, sep string) string {
	parts := b.children(n)
	texts := make([]string, 0, len(parts))
	for _, c := range parts {
		texts = append(texts, b.piece(c))
	}
	return strings.Join(texts, sep)
}

func (b *builder) joinNamed(n *sitter.Node, sep string) string {
	parts := b.named(n)
	texts := make([]string, 0, len(parts))
	for _, c := range parts {
		texts = append(texts, b.expr(c))
	}
	return strings.Join(texts, sep)
}

// bracketed prints an opening token, the named items separated by ", " and
// the closing token. A one-element tuple keeps its trailing comma.
func (b *builder) bracketed(n *sitter.Node) string {
	parts := b.children(n)
	var open, closing string
	if len(parts) > 0 && !parts[0].IsNamed() {
		open = parts[0].Type()
	}
	if len(parts) > 1 && !parts[len(parts)-1].IsNamed() {
		closing = parts[len(parts)-1].Type()
	}

	items := b.named(n)
	texts := make([]string, len(items))
	for i, c := range items {
		texts[i] = b.expr(c)
	}
	body := strings.Join(texts, ", ")
	if n.Type() == "tuple" && len(items) == 1 {
		body += ","
	}
	return open + body + closing
}

// mapping prints a mapping pattern. Its key and value are direct children
// separated by ":" tokens, so items are grouped by the commas between them.
func (b *builder) mapping(n *sitter.Node) string {
	var items []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			items = append(items, cur.String())
			cur.Reset()
		}
	}
	for _, c := range b.children(n) {
		switch {
		case c.IsNamed():
			cur.WriteString(b.expr(c))
		case c.Type() == "{" || c.Type() == "}":
		case c.Type() == ",":
			flush()
		case c.Type() == ":":
			cur.WriteString(": ")
		default:
			cur.WriteString(b.text(c))
		}
	}
	flush()
	return "{" + strings.Join(items, ", ") + "}"
}

// comprehension prints [body for x in y if z] and its set, dict and
// generator variants.
func (b *builder) comprehension(n *sitter.Node) string {
	parts := b.children(n)
	var open, closing string
	if len(parts) > 0 && !parts[0].IsNamed() {
		open = parts[0].Type()
	}
	if len(parts) > 1 && !parts[len(parts)-1].IsNamed() {
		closing = parts[len(parts)-1].Type()
	}

	items := b.named(n)
	texts := make([]string, len(items))
	for i, c := range items {
		texts[i] = b.expr(c)
	}
	return open + strings.Join(texts, " ") + closing
}

// literal classifies constants, looking through redundant parentheses.
func (b *builder) literal(n *sitter.Node) Literal {
	switch n.Type() {
	case "parenthesized_expression":
		if inner := b.named(n); len(inner) == 1 {
			return b.literal(inner[0])
		}
	case "integer":
		return IntLiteral
	case "float":
		return FloatLiteral
	case "string":
		return stringLiteral(b.text(n))
	case "concatenated_string":
		kind := StrLiteral
		for _, c := range b.named(n) {
			switch stringLiteral(b.text(c)) {
			case FStringLiteral:
				return FStringLiteral
			case BytesLiteral:
				kind = BytesLiteral
			}
		}
		return kind
	}
	return NotLiteral
}

// stringLiteral inspects the prefix letters before the opening quote.
func stringLiteral(text string) Literal {
	i := strings.IndexAny(text, `'"`)
	if i < 0 {
		return NotLiteral
	}
	prefix := strings.ToLower(text[:i])
	switch {
	case strings.ContainsAny(prefix, "ft"):
		return FStringLiteral
	case strings.Contains(prefix, "b"):
		return BytesLiteral
	}
	return StrLiteral
}
