// Package walk implements a pre-order traversal over pyast trees in which
// each per-kind handler decides whether the walk descends into the node's
// children.
package walk

import (
	"github.com/phobologic/funcseg/internal/pyast"
)

// Handler has one method per node kind. Each returns true to visit the
// node's children and false to skip everything beneath it.
type Handler interface {
	Module(*pyast.Module) bool
	FunctionDef(*pyast.FunctionDef) bool
	ClassDef(*pyast.ClassDef) bool
	Decorator(*pyast.Decorator) bool
	Param(*pyast.Param) bool
	Compound(*pyast.Compound) bool
	Clause(*pyast.Clause) bool
	Assign(*pyast.Assign) bool
	AnnAssign(*pyast.AnnAssign) bool
	AugAssign(*pyast.AugAssign) bool
	ExprStmt(*pyast.ExprStmt) bool
	Simple(*pyast.Simple) bool
	Expr(*pyast.Expr) bool
}

// Base descends into every node. Embed it and override only the kinds a
// handler cares about.
type Base struct{}

func (Base) Module(*pyast.Module) bool           { return true }
func (Base) FunctionDef(*pyast.FunctionDef) bool { return true }
func (Base) ClassDef(*pyast.ClassDef) bool       { return true }
func (Base) Decorator(*pyast.Decorator) bool     { return true }
func (Base) Param(*pyast.Param) bool             { return true }
func (Base) Compound(*pyast.Compound) bool       { return true }
func (Base) Clause(*pyast.Clause) bool           { return true }
func (Base) Assign(*pyast.Assign) bool           { return true }
func (Base) AnnAssign(*pyast.AnnAssign) bool     { return true }
func (Base) AugAssign(*pyast.AugAssign) bool     { return true }
func (Base) ExprStmt(*pyast.ExprStmt) bool       { return true }
func (Base) Simple(*pyast.Simple) bool           { return true }
func (Base) Expr(*pyast.Expr) bool               { return true }

// Walk visits root and its descendants in pre-order, children in field
// order. It keeps an explicit stack, so tree depth does not grow the call
// stack.
func Walk(h Handler, root pyast.Node) {
	if root == nil {
		return
	}
	stack := []pyast.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !dispatch(h, n) {
			continue
		}
		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

func dispatch(h Handler, n pyast.Node) bool {
	switch n := n.(type) {
	case *pyast.Module:
		return h.Module(n)
	case *pyast.FunctionDef:
		return h.FunctionDef(n)
	case *pyast.ClassDef:
		return h.ClassDef(n)
	case *pyast.Decorator:
		return h.Decorator(n)
	case *pyast.Param:
		return h.Param(n)
	case *pyast.Compound:
		return h.Compound(n)
	case *pyast.Clause:
		return h.Clause(n)
	case *pyast.Assign:
		return h.Assign(n)
	case *pyast.AnnAssign:
		return h.AnnAssign(n)
	case *pyast.AugAssign:
		return h.AugAssign(n)
	case *pyast.ExprStmt:
		return h.ExprStmt(n)
	case *pyast.Simple:
		return h.Simple(n)
	case *pyast.Expr:
		return h.Expr(n)
	default:
		return true
	}
}
