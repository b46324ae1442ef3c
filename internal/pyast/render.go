package pyast

import (
	"strings"
)

const indent = "    "

// Render prints n as canonical source: one statement per line, four-space
// indentation, compound bodies always in block form, no comments and no
// blank lines. The result has no trailing newline. Rendering is
// deterministic, and rendering the parse of a rendering reproduces it.
func Render(n Node) string {
	p := &printer{}
	p.node(n, 0)
	return strings.Join(p.lines, "\n")
}

type printer struct {
	lines []string
}

func (p *printer) line(depth int, s string) {
	p.lines = append(p.lines, strings.Repeat(indent, depth)+s)
}

func (p *printer) node(n Node, depth int) {
	switch n := n.(type) {
	case *Module:
		for _, s := range n.Body {
			p.node(s, depth)
		}
	case *FunctionDef:
		p.decorators(n.Decorators, depth)
		p.line(depth, functionHeader(n))
		p.block(n.Body, depth+1)
	case *ClassDef:
		p.decorators(n.Decorators, depth)
		header := "class " + n.Name + n.TypeParams
		if n.Bases != nil && n.Bases.Text != "()" {
			header += n.Bases.Text
		}
		p.line(depth, header+":")
		p.block(n.Body, depth+1)
	case *Decorator:
		p.line(depth, "@"+exprText(n.Expr))
	case *Compound:
		for _, cl := range n.Clauses {
			p.node(cl, depth)
		}
	case *Clause:
		p.line(depth, n.Header+":")
		p.block(n.Body, depth+1)
	case *Param:
		p.line(depth, renderParam(n))
	case *Assign:
		parts := make([]string, 0, len(n.Targets)+1)
		for _, t := range n.Targets {
			parts = append(parts, exprText(t))
		}
		parts = append(parts, exprText(n.Value))
		p.line(depth, strings.Join(parts, " = "))
	case *AnnAssign:
		s := exprText(n.Target) + ": " + exprText(n.Annotation)
		if n.Value != nil {
			s += " = " + exprText(n.Value)
		}
		p.line(depth, s)
	case *AugAssign:
		p.line(depth, exprText(n.Target)+" "+n.Op+" "+exprText(n.Value))
	case *ExprStmt:
		p.line(depth, exprText(n.Value))
	case *Simple:
		p.line(depth, n.Text)
	case *Expr:
		p.line(depth, n.Text)
	}
}

func (p *printer) decorators(ds []*Decorator, depth int) {
	for _, d := range ds {
		p.node(d, depth)
	}
}

// block prints body one level deeper. An empty body prints as pass.
func (p *printer) block(body []Stmt, depth int) {
	if len(body) == 0 {
		p.line(depth, "pass")
		return
	}
	for _, s := range body {
		p.node(s, depth)
	}
}

func functionHeader(fn *FunctionDef) string {
	var sb strings.Builder
	if fn.Async {
		sb.WriteString("async ")
	}
	sb.WriteString("def ")
	sb.WriteString(fn.Name)
	sb.WriteString(fn.TypeParams)
	sb.WriteByte('(')
	for i, param := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(renderParam(param))
	}
	sb.WriteByte(')')
	if fn.Returns != nil {
		sb.WriteString(" -> ")
		sb.WriteString(fn.Returns.Text)
	}
	sb.WriteByte(':')
	return sb.String()
}

func renderParam(p *Param) string {
	s := p.Prefix + p.Name
	if p.Annotation != nil {
		s += ": " + p.Annotation.Text
		if p.Default != nil {
			s += " = " + p.Default.Text
		}
		return s
	}
	if p.Default != nil {
		s += "=" + p.Default.Text
	}
	return s
}

func exprText(e *Expr) string {
	if e == nil {
		return ""
	}
	return e.Text
}
