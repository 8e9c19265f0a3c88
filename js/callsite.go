package js

import (
	"bytes"

	"github.com/tdewolff/parse/v2/js"
)

// CallSite is a call expression whose callee is a function binding. It refers to the binding by arena index.
type CallSite struct {
	Binding  int
	Call     *js.CallExpr
	Optional bool
}

// collector classifies every occurrence of a binding's identifier as either a direct call or an escape. Instead of
// recognizing escapes, it counts all occurrences and compares them to the occurrences it accounted for: the
// definition and the callees of direct calls. Anything else, including syntax this package does not know about,
// is an escape.
type collector struct {
	bindings []*FuncBinding
	byVar    map[*js.Var]int

	calls   []CallSite
	seen    []int // occurrences per binding
	allowed []int // definitions and direct calls per binding
	with    int   // depth of with statements
	eval    bool
	global  bool // the global object is referenced, top-level functions are reachable as its properties
}

func collectCallSites(ast *js.AST, bindings []*FuncBinding, byVar map[*js.Var]int, o Options) []CallSite {
	c := &collector{
		bindings: bindings,
		byVar:    byVar,
		seen:     make([]int, len(bindings)),
		allowed:  make([]int, len(bindings)),
	}
	for i, b := range bindings {
		c.allowed[i] = b.defs()
	}
	js.Walk(c, ast)

	for i, b := range bindings {
		if c.eval || c.allowed[i] < c.seen[i] || (o.KeepTopLevel || c.global) && b.topLevel {
			b.Calls = Unknown
		}
	}

	calls := c.calls[:0]
	for _, call := range c.calls {
		if bindings[call.Binding].Calls == Known {
			calls = append(calls, call)
		}
	}
	return calls
}

func (c *collector) binding(v *js.Var) (*FuncBinding, bool) {
	if i, ok := c.byVar[rootVar(v)]; ok {
		return c.bindings[i], true
	}
	return nil, false
}

func (c *collector) escape(v *js.Var) {
	if b, ok := c.binding(v); ok {
		b.Calls = Unknown
	}
}

func (c *collector) Enter(n js.INode) js.IVisitor {
	switch n := n.(type) {
	case *js.Var:
		if rootVar(n).Decl == js.NoDecl {
			if bytes.Equal(n.Name(), evalBytes) {
				c.eval = true
			} else if isGlobalObject(n.Name()) {
				c.global = true
			}
		}
		if b, ok := c.binding(n); ok {
			c.seen[b.Index]++
			if 0 < c.with {
				b.Calls = Unknown
			}
		}
	case *js.CallExpr:
		if v, ok := unwrapGroup(n.X).(*js.Var); ok {
			if b, ok := c.binding(v); ok {
				c.allowed[b.Index]++
				for _, arg := range n.Args.List {
					if arg.Rest {
						b.Calls = Unknown
					}
				}
				c.calls = append(c.calls, CallSite{b.Index, n, n.Optional})
			}
		}
	case *js.WithStmt:
		c.with++
	case *js.ExportStmt:
		if n.Module == nil {
			for _, alias := range n.List {
				name := alias.Binding
				if alias.Name != nil {
					name = alias.Name
				}
				for _, b := range c.bindings {
					if b.topLevel && bytes.Equal(b.Name.Data, name) {
						b.Calls = Unknown
					}
				}
			}
		}
		switch decl := n.Decl.(type) {
		case *js.FuncDecl:
			if decl.Name != nil {
				c.escape(decl.Name)
			}
		case *js.VarDecl:
			for _, item := range decl.List {
				for _, v := range bindingVars(item.Binding) {
					c.escape(v)
				}
			}
		}
	case *js.ClassElementName:
		// computed keys of methods and fields are not visited by js.Walk
		js.Walk(c, &n.PropertyName)
	}
	return c
}

func (c *collector) Exit(n js.INode) {
	if _, ok := n.(*js.WithStmt); ok {
		c.with--
	}
}
