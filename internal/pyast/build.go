package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/funcseg/internal/lang"
)

// builder converts a tree-sitter concrete syntax tree into Nodes.
type builder struct {
	src []byte
}

// clauseTypes are the continuation clauses of compound statements.
var clauseTypes = map[string]bool{
	"elif_clause":         true,
	"else_clause":         true,
	"except_clause":       true,
	"except_group_clause": true,
	"finally_clause":      true,
}

var compoundTypes = map[string]bool{
	"if_statement":    true,
	"for_statement":   true,
	"while_statement": true,
	"try_statement":   true,
	"with_statement":  true,
	"match_statement": true,
	"case_clause":     true,
}

func (b *builder) text(n *sitter.Node) string {
	return lang.NodeText(n, b.src)
}

func (b *builder) pos(n *sitter.Node) Pos {
	start, end := n.StartPoint(), n.EndPoint()
	p := Pos{Line: int(start.Row) + 1, EndLine: int(end.Row) + 1}
	// A node ending at column 0 stops at the previous line's terminator.
	if end.Column == 0 && end.Row > start.Row {
		p.EndLine = int(end.Row)
	}
	return p
}

func (b *builder) module(root *sitter.Node) *Module {
	return &Module{Pos: b.pos(root), Body: b.block(root)}
}

func (b *builder) block(n *sitter.Node) []Stmt {
	if n == nil {
		return nil
	}
	var out []Stmt
	for _, c := range b.named(n) {
		out = append(out, b.stmt(c))
	}
	return out
}

func (b *builder) stmt(n *sitter.Node) Stmt {
	switch t := n.Type(); {
	case t == "function_definition":
		return b.function(n, nil)
	case t == "class_definition":
		return b.class(n, nil)
	case t == "decorated_definition":
		return b.decorated(n)
	case t == "expression_statement":
		return b.expressionStatement(n)
	case compoundTypes[t]:
		c := &Compound{Pos: b.pos(n), Type: t}
		b.clauses(n, c)
		return c
	default:
		return &Simple{Pos: b.pos(n), Type: t, Text: b.simpleText(n)}
	}
}

func (b *builder) decorated(n *sitter.Node) Stmt {
	var decorators []*Decorator
	for _, c := range b.named(n) {
		if c.Type() != "decorator" {
			continue
		}
		d := &Decorator{Pos: b.pos(c)}
		if inner := b.named(c); len(inner) > 0 {
			d.Expr = b.exprNode(inner[0])
		}
		decorators = append(decorators, d)
	}

	def := n.ChildByFieldName("definition")
	if def != nil && def.Type() == "class_definition" {
		return b.class(def, decorators)
	}
	return b.function(def, decorators)
}

func (b *builder) function(n *sitter.Node, decorators []*Decorator) *FunctionDef {
	fn := &FunctionDef{Pos: b.pos(n), Decorators: decorators}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "async" {
			fn.Async = true
		}
		if c.Type() == "def" {
			break
		}
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = b.text(name)
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		fn.TypeParams = b.expr(tp)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		fn.Params = b.params(params)
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = b.exprNode(ret)
	}
	fn.Body = b.block(n.ChildByFieldName("body"))
	return fn
}

func (b *builder) class(n *sitter.Node, decorators []*Decorator) *ClassDef {
	cls := &ClassDef{Pos: b.pos(n), Decorators: decorators}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = b.text(name)
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		cls.TypeParams = b.expr(tp)
	}
	if sup := n.ChildByFieldName("superclasses"); sup != nil {
		cls.Bases = b.exprNode(sup)
	}
	cls.Body = b.block(n.ChildByFieldName("body"))
	return cls
}

// params converts a parameters or lambda_parameters node.
func (b *builder) params(n *sitter.Node) []*Param {
	var out []*Param
	for _, c := range b.named(n) {
		out = append(out, b.param(c))
	}
	return out
}

func (b *builder) param(n *sitter.Node) *Param {
	p := &Param{Pos: b.pos(n)}
	switch n.Type() {
	case "identifier":
		p.Name = b.text(n)
	case "list_splat_pattern":
		p.Prefix, p.Name = "*", b.splatName(n)
	case "dictionary_splat_pattern":
		p.Prefix, p.Name = "**", b.splatName(n)
	case "keyword_separator":
		p.Prefix = "*"
	case "positional_separator":
		p.Name = "/"
	case "typed_parameter":
		if inner := n.NamedChild(0); inner != nil {
			sub := b.param(inner)
			p.Prefix, p.Name = sub.Prefix, sub.Name
		}
		if typ := n.ChildByFieldName("type"); typ != nil {
			p.Annotation = b.exprNode(typ)
		}
	case "default_parameter", "typed_default_parameter":
		if name := n.ChildByFieldName("name"); name != nil {
			p.Name = b.expr(name)
		}
		if typ := n.ChildByFieldName("type"); typ != nil {
			p.Annotation = b.exprNode(typ)
		}
		if val := n.ChildByFieldName("value"); val != nil {
			p.Default = b.exprNode(val)
		}
	default:
		p.Name = b.expr(n)
	}
	return p
}

func (b *builder) splatName(n *sitter.Node) string {
	if inner := n.NamedChild(0); inner != nil {
		return b.expr(inner)
	}
	return strings.TrimLeft(b.text(n), "*")
}

func (b *builder) expressionStatement(n *sitter.Node) Stmt {
	parts := b.named(n)
	tuple := false
	for _, c := range b.children(n) {
		if !c.IsNamed() && c.Type() == "," {
			tuple = true
		}
	}

	if len(parts) == 1 && !tuple {
		switch c := parts[0]; c.Type() {
		case "assignment":
			return b.assignment(c)
		case "augmented_assignment":
			aug := &AugAssign{Pos: b.pos(n)}
			aug.Target = b.exprNode(c.ChildByFieldName("left"))
			if op := c.ChildByFieldName("operator"); op != nil {
				aug.Op = b.text(op)
			}
			aug.Value = b.exprNode(c.ChildByFieldName("right"))
			return aug
		default:
			return &ExprStmt{Pos: b.pos(n), Value: b.exprNode(c)}
		}
	}

	// A bare tuple: 1, 2
	texts := make([]string, len(parts))
	for i, c := range parts {
		texts[i] = b.expr(c)
	}
	text := strings.Join(texts, ", ")
	if len(parts) == 1 {
		text += ","
	}
	return &ExprStmt{Pos: b.pos(n), Value: &Expr{
		Pos:  b.pos(n),
		Type: "expression_list",
		Text: text,
	}}
}

func (b *builder) assignment(n *sitter.Node) Stmt {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	if typ := n.ChildByFieldName("type"); typ != nil {
		ann := &AnnAssign{
			Pos:        b.pos(n),
			Target:     b.exprNode(left),
			Annotation: b.exprNode(typ),
		}
		if right != nil {
			ann.Value = b.exprNode(right)
		}
		return ann
	}

	a := &Assign{Pos: b.pos(n), Targets: []*Expr{b.exprNode(left)}}
	for right != nil && right.Type() == "assignment" && right.ChildByFieldName("type") == nil {
		a.Targets = append(a.Targets, b.exprNode(right.ChildByFieldName("left")))
		right = right.ChildByFieldName("right")
	}
	a.Value = b.exprNode(right)
	return a
}

// clauses appends one Clause per header-plus-block pair found in n, then
// recurses into continuation clauses (elif, else, except, finally).
func (b *builder) clauses(n *sitter.Node, c *Compound) {
	var header []*sitter.Node
	for _, child := range b.children(n) {
		t := child.Type()
		switch {
		case t == ":" && !child.IsNamed():
		case t == "block":
			cl := &Clause{Header: b.tokens(header), Body: b.block(child)}
			cl.Pos = b.pos(n)
			if len(header) > 0 {
				cl.Line = b.pos(header[0]).Line
			}
			cl.EndLine = b.pos(child).EndLine
			c.Clauses = append(c.Clauses, cl)
			header = nil
		case clauseTypes[t]:
			b.clauses(child, c)
		default:
			header = append(header, child)
		}
	}
}

func (b *builder) simpleText(n *sitter.Node) string {
	var parts []*sitter.Node
	for _, c := range b.children(n) {
		if n.Type() == "import_from_statement" && !c.IsNamed() && (c.Type() == "(" || c.Type() == ")") {
			continue
		}
		parts = append(parts, c)
	}
	text := b.tokens(parts)
	if n.Type() == "import_from_statement" {
		text = strings.TrimSuffix(text, ",")
	}
	return text
}
