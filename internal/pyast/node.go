// Package pyast is a small structural model of Python source built on the
// tree-sitter Python grammar. It parses source text into a closed set of node
// kinds and renders those nodes back to canonical text.
package pyast

// Kind identifies the syntactic variant of a Node.
type Kind int

const (
	KindModule Kind = iota
	KindFunctionDef
	KindClassDef
	KindDecorator
	KindParam
	KindCompound
	KindClause
	KindAssign
	KindAnnAssign
	KindAugAssign
	KindExprStmt
	KindSimple
	KindExpr
)

var kindNames = [...]string{
	KindModule:      "Module",
	KindFunctionDef: "FunctionDef",
	KindClassDef:    "ClassDef",
	KindDecorator:   "Decorator",
	KindParam:       "Param",
	KindCompound:    "Compound",
	KindClause:      "Clause",
	KindAssign:      "Assign",
	KindAnnAssign:   "AnnAssign",
	KindAugAssign:   "AugAssign",
	KindExprStmt:    "ExprStmt",
	KindSimple:      "Simple",
	KindExpr:        "Expr",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Pos is the line extent of a node. Both lines are one-indexed and
// inclusive, and refer to the text the node was parsed from.
type Pos struct {
	Line    int
	EndLine int
}

// Position returns p. It lets every node embedding Pos satisfy Node.
func (p Pos) Position() Pos { return p }

// Node is implemented by every syntax node.
type Node interface {
	Kind() Kind
	Position() Pos
	// Children returns the child nodes in field-declaration order.
	Children() []Node
}

// Stmt is a Node that may appear in a statement block.
type Stmt interface {
	Node
	stmtNode()
}

// Literal classifies constant expressions.
type Literal int

const (
	NotLiteral Literal = iota
	StrLiteral
	BytesLiteral
	FStringLiteral
	IntLiteral
	FloatLiteral
)

// Module is the root of a parsed file.
type Module struct {
	Pos
	Body []Stmt
}

// FunctionDef is a def or async def statement. Its Pos covers the def line
// through the last body line; decorators carry their own positions.
type FunctionDef struct {
	Pos
	Decorators []*Decorator
	Async      bool
	Name       string
	TypeParams string
	Params     []*Param
	Returns    *Expr
	Body       []Stmt
}

// ClassDef is a class statement.
type ClassDef struct {
	Pos
	Decorators []*Decorator
	Name       string
	TypeParams string
	Bases      *Expr
	Body       []Stmt
}

// Decorator is a single @expression line.
type Decorator struct {
	Pos
	Expr *Expr
}

// Param is one entry of a parameter list. A bare "*" separator has
// Prefix "*" and no Name; the positional-only marker has Name "/".
type Param struct {
	Pos
	Prefix     string
	Name       string
	Annotation *Expr
	Default    *Expr
}

// Compound is any block statement other than def and class: if, for, while,
// try, with, match and case. Each header-plus-block pair is a Clause.
type Compound struct {
	Pos
	Type    string
	Clauses []*Clause
}

// Clause is a header line and the block it introduces. Header excludes the
// trailing colon.
type Clause struct {
	Pos
	Header string
	Body   []Stmt
}

// Assign is a plain (possibly chained) assignment.
type Assign struct {
	Pos
	Targets []*Expr
	Value   *Expr
}

// AnnAssign is an annotated assignment. Value is nil for a bare annotation.
type AnnAssign struct {
	Pos
	Target     *Expr
	Annotation *Expr
	Value      *Expr
}

// AugAssign is an augmented assignment such as x += 1.
type AugAssign struct {
	Pos
	Target *Expr
	Op     string
	Value  *Expr
}

// ExprStmt is an expression evaluated as a statement.
type ExprStmt struct {
	Pos
	Value *Expr
}

// Simple is any other one-line statement (return, import, pass, raise...),
// kept as canonical text.
type Simple struct {
	Pos
	Type string
	Text string
}

// Expr is an expression leaf holding its canonical text.
type Expr struct {
	Pos
	Type    string
	Text    string
	Literal Literal
}

// IsStringLiteral reports whether e is a plain str constant, including
// implicitly concatenated ones. Bytes and f-strings are not.
func (e *Expr) IsStringLiteral() bool {
	return e != nil && e.Literal == StrLiteral
}

func (*Module) Kind() Kind      { return KindModule }
func (*FunctionDef) Kind() Kind { return KindFunctionDef }
func (*ClassDef) Kind() Kind    { return KindClassDef }
func (*Decorator) Kind() Kind   { return KindDecorator }
func (*Param) Kind() Kind       { return KindParam }
func (*Compound) Kind() Kind    { return KindCompound }
func (*Clause) Kind() Kind      { return KindClause }
func (*Assign) Kind() Kind      { return KindAssign }
func (*AnnAssign) Kind() Kind   { return KindAnnAssign }
func (*AugAssign) Kind() Kind   { return KindAugAssign }
func (*ExprStmt) Kind() Kind    { return KindExprStmt }
func (*Simple) Kind() Kind      { return KindSimple }
func (*Expr) Kind() Kind        { return KindExpr }

func (*FunctionDef) stmtNode() {}
func (*ClassDef) stmtNode()    {}
func (*Compound) stmtNode()    {}
func (*Assign) stmtNode()      {}
func (*AnnAssign) stmtNode()   {}
func (*AugAssign) stmtNode()   {}
func (*ExprStmt) stmtNode()    {}
func (*Simple) stmtNode()      {}

func (m *Module) Children() []Node { return stmtNodes(nil, m.Body) }

func (f *FunctionDef) Children() []Node {
	var out []Node
	for _, d := range f.Decorators {
		out = append(out, d)
	}
	for _, p := range f.Params {
		out = append(out, p)
	}
	out = appendExpr(out, f.Returns)
	return stmtNodes(out, f.Body)
}

func (c *ClassDef) Children() []Node {
	var out []Node
	for _, d := range c.Decorators {
		out = append(out, d)
	}
	out = appendExpr(out, c.Bases)
	return stmtNodes(out, c.Body)
}

func (d *Decorator) Children() []Node { return appendExpr(nil, d.Expr) }

func (p *Param) Children() []Node {
	return appendExpr(appendExpr(nil, p.Annotation), p.Default)
}

func (c *Compound) Children() []Node {
	out := make([]Node, 0, len(c.Clauses))
	for _, cl := range c.Clauses {
		out = append(out, cl)
	}
	return out
}

func (c *Clause) Children() []Node { return stmtNodes(nil, c.Body) }

func (a *Assign) Children() []Node {
	var out []Node
	for _, t := range a.Targets {
		out = appendExpr(out, t)
	}
	return appendExpr(out, a.Value)
}

func (a *AnnAssign) Children() []Node {
	return appendExpr(appendExpr(appendExpr(nil, a.Target), a.Annotation), a.Value)
}

func (a *AugAssign) Children() []Node {
	return appendExpr(appendExpr(nil, a.Target), a.Value)
}

func (e *ExprStmt) Children() []Node { return appendExpr(nil, e.Value) }
func (*Simple) Children() []Node     { return nil }
func (*Expr) Children() []Node       { return nil }

// appendExpr skips nil so no typed-nil Node ever reaches a caller.
func appendExpr(out []Node, e *Expr) []Node {
	if e == nil {
		return out
	}
	return append(out, e)
}

func stmtNodes(out []Node, body []Stmt) []Node {
	for _, s := range body {
		out = append(out, s)
	}
	return out
}

// Pass returns a fresh pass statement.
func Pass() *Simple {
	return &Simple{Type: "pass_statement", Text: "pass"}
}
