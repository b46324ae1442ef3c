// Package normalize rewrites a pyast tree so that semantically equivalent
// spellings render identically. The input tree is never modified.
package normalize

import (
	"github.com/phobologic/funcseg/internal/pyast"
)

// Rule rewrites one statement into zero or more statements. Rules return
// their input unchanged for kinds they do not handle.
type Rule struct {
	Name  string
	Apply func(pyast.Stmt) []pyast.Stmt
}

// AnnotatedAssignment turns "x: T = v" into "x = v". A bare "x: T" has no
// plain equivalent and is kept.
var AnnotatedAssignment = Rule{
	Name: "annotated-assignment",
	Apply: func(s pyast.Stmt) []pyast.Stmt {
		ann, ok := s.(*pyast.AnnAssign)
		if !ok || ann.Value == nil {
			return []pyast.Stmt{s}
		}
		return []pyast.Stmt{&pyast.Assign{
			Pos:     ann.Pos,
			Targets: []*pyast.Expr{ann.Target},
			Value:   ann.Value,
		}}
	},
}

// ParameterAnnotations drops the type annotations of function parameters.
// Defaults and the return annotation are kept.
var ParameterAnnotations = Rule{
	Name: "parameter-annotations",
	Apply: func(s pyast.Stmt) []pyast.Stmt {
		fn, ok := s.(*pyast.FunctionDef)
		if !ok {
			return []pyast.Stmt{s}
		}
		out := *fn
		out.Params = make([]*pyast.Param, len(fn.Params))
		for i, p := range fn.Params {
			cp := *p
			cp.Annotation = nil
			out.Params[i] = &cp
		}
		return []pyast.Stmt{&out}
	},
}

// StringStatements drops statements that are a bare str literal, such as
// docstrings. Other bare literals (integers, bytes, f-strings) are kept.
var StringStatements = Rule{
	Name: "string-statements",
	Apply: func(s pyast.Stmt) []pyast.Stmt {
		if es, ok := s.(*pyast.ExprStmt); ok && es.Value.IsStringLiteral() {
			return nil
		}
		return []pyast.Stmt{s}
	},
}

// DefaultRules is the rule set applied by Module.
var DefaultRules = []Rule{AnnotatedAssignment, ParameterAnnotations, StringStatements}

// Normalizer applies a fixed list of rules to every statement block,
// innermost blocks first.
type Normalizer struct {
	rules []Rule
}

// New returns a Normalizer applying rules in order. With no rules it uses
// DefaultRules.
func New(rules ...Rule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Normalizer{rules: rules}
}

// Identity returns a Normalizer with no rules. Its output renders exactly
// like its input.
func Identity() *Normalizer {
	return &Normalizer{}
}

// Module returns a normalized copy of m using DefaultRules.
func Module(m *pyast.Module) *pyast.Module {
	return New().Module(m)
}

// RuleNames lists the names of the rules n applies.
func (n *Normalizer) RuleNames() []string {
	names := make([]string, len(n.rules))
	for i, r := range n.rules {
		names[i] = r.Name
	}
	return names
}

// Module returns a normalized copy of m.
func (n *Normalizer) Module(m *pyast.Module) *pyast.Module {
	if m == nil {
		return nil
	}
	out := *m
	out.Body = n.block(m.Body, false)
	return &out
}

// block normalizes each statement of body. A nested block that the rules
// empty gets a pass statement so it stays valid; the module body may be
// left empty.
func (n *Normalizer) block(body []pyast.Stmt, nested bool) []pyast.Stmt {
	var out []pyast.Stmt
	for _, s := range body {
		out = append(out, n.stmt(s)...)
	}
	if nested && len(out) == 0 {
		out = append(out, pyast.Pass())
	}
	return out
}

func (n *Normalizer) stmt(s pyast.Stmt) []pyast.Stmt {
	pending := []pyast.Stmt{n.children(s)}
	for _, r := range n.rules {
		var next []pyast.Stmt
		for _, p := range pending {
			next = append(next, r.Apply(p)...)
		}
		pending = next
	}
	return pending
}

// children returns a copy of s with its nested blocks normalized. Kinds
// without nested blocks pass through unchanged.
func (n *Normalizer) children(s pyast.Stmt) pyast.Stmt {
	switch s := s.(type) {
	case *pyast.FunctionDef:
		out := *s
		out.Body = n.block(s.Body, true)
		return &out
	case *pyast.ClassDef:
		out := *s
		out.Body = n.block(s.Body, true)
		return &out
	case *pyast.Compound:
		out := *s
		out.Clauses = make([]*pyast.Clause, len(s.Clauses))
		for i, cl := range s.Clauses {
			c := *cl
			c.Body = n.block(cl.Body, true)
			out.Clauses[i] = &c
		}
		return &out
	default:
		return s
	}
}
