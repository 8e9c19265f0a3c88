package js

import (
	"bytes"

	"github.com/tdewolff/parse/v2/js"
)

// ParamKind is the binding pattern of a formal parameter.
type ParamKind uint8

// ParamKind values.
const (
	SimpleParam ParamKind = iota
	DestructuredParam
	RestParam
)

func (k ParamKind) String() string {
	switch k {
	case SimpleParam:
		return "Simple"
	case DestructuredParam:
		return "Destructured"
	case RestParam:
		return "Rest"
	}
	return "Invalid"
}

// Param is one formal parameter slot.
type Param struct {
	Index      int
	Kind       ParamKind
	Var        *js.Var // nil unless Kind is SimpleParam
	HasDefault bool
	Reassigned bool
}

// removable is true when the parameter can become a const declaration. A sloppy mode parameter named let cannot,
// since let is not allowed as a lexically bound name.
func (p Param) removable() bool {
	return p.Kind == SimpleParam && !p.HasDefault && !p.Reassigned && !bytes.Equal(p.Var.Data, letBytes)
}

// FuncFlags describe properties of a function that matter for inlining its parameters.
type FuncFlags uint16

// FuncFlags values.
const (
	UsesArguments FuncFlags = 1 << iota
	IsArrow
	IsAsync
	IsGenerator
	HasRest
	HasDestructured
	HasDefault
	SelfReferencing
	UsesEval
	UsesWith
)

// disqualifying flags make the arity of a call observable
const disqualifying = UsesArguments | IsArrow | IsGenerator | HasRest | UsesEval | UsesWith

// Has returns true if all flags in g are set.
func (f FuncFlags) Has(g FuncFlags) bool {
	return f&g == g
}

// Completeness tells whether all call sites of a function are known.
type Completeness uint8

// Completeness values.
const (
	Known Completeness = iota
	Unknown
)

func (c Completeness) String() string {
	if c == Known {
		return "Known"
	}
	return "Unknown"
}

// FuncBinding is a function definition together with the identifier that denotes it. Bindings live in an arena
// and are addressed by Index.
type FuncBinding struct {
	Index  int
	Name   *js.Var // root variable of the identifier that denotes the function
	Self   *js.Var // name of a named function expression, nil otherwise
	Func   *js.FuncDecl
	Params []Param
	Flags  FuncFlags
	Calls  Completeness

	topLevel bool
}

func (b *FuncBinding) String() string {
	return string(b.Name.Data)
}

// Disqualified returns true if no parameter of the function can be removed regardless of its call sites.
func (b *FuncBinding) Disqualified() bool {
	return b.Flags&disqualifying != 0
}

// defs returns the number of defining occurrences of the function's identifiers in the tree.
func (b *FuncBinding) defs() int {
	if b.Self != nil {
		return 2
	}
	return 1
}

func newFuncBinding(index int, name *js.Var, fn *js.FuncDecl, topLevel bool) *FuncBinding {
	b := &FuncBinding{
		Index:    index,
		Name:     name,
		Func:     fn,
		topLevel: topLevel,
	}
	if fn.Name != nil && rootVar(fn.Name) != name {
		b.Self = rootVar(fn.Name)
		b.Flags |= SelfReferencing
	}
	if fn.Async {
		b.Flags |= IsAsync
	}
	if fn.Generator {
		b.Flags |= IsGenerator
	}

	b.Params = make([]Param, 0, len(fn.Params.List)+1)
	for i, item := range fn.Params.List {
		p := Param{Index: i, HasDefault: item.Default != nil}
		if v, ok := item.Binding.(*js.Var); ok {
			p.Var = v
		} else {
			p.Kind = DestructuredParam
			b.Flags |= HasDestructured
		}
		if p.HasDefault {
			b.Flags |= HasDefault
		}
		b.Params = append(b.Params, p)
	}
	if fn.Params.Rest != nil {
		b.Params = append(b.Params, Param{Index: len(fn.Params.List), Kind: RestParam})
		b.Flags |= HasRest
	}
	return b
}

// resolver finds all function bindings in a tree. Function declarations count only when declared directly in a
// function body or at the top level, function expressions only when they initialize a plain variable.
type resolver struct {
	bindings []*FuncBinding
	byVar    map[*js.Var]int

	bodies map[*js.BlockStmt]bool
	depth  int // function nesting
}

func resolveBindings(ast *js.AST) ([]*FuncBinding, map[*js.Var]int) {
	r := &resolver{
		byVar:  map[*js.Var]int{},
		bodies: map[*js.BlockStmt]bool{&ast.BlockStmt: true},
	}
	js.Walk(r, ast)
	return r.bindings, r.byVar
}

func (r *resolver) add(name *js.Var, fn *js.FuncDecl) {
	name = rootVar(name)
	b := newFuncBinding(len(r.bindings), name, fn, r.depth == 0)
	r.bindings = append(r.bindings, b)
	if i, ok := r.byVar[name]; ok {
		// declared more than once, it is ambiguous which function a call refers to
		r.bindings[i].Calls = Unknown
		b.Calls = Unknown
		return
	}
	r.byVar[name] = b.Index
	if b.Self != nil {
		r.byVar[b.Self] = b.Index
	}
}

func (r *resolver) Enter(n js.INode) js.IVisitor {
	switch n := n.(type) {
	case *js.FuncDecl:
		r.bodies[&n.Body] = true
		r.depth++
	case *js.MethodDecl:
		r.bodies[&n.Body] = true
		r.depth++
	case *js.ArrowFunc:
		r.bodies[&n.Body] = true
		r.depth++
	case *js.BlockStmt:
		if r.bodies[n] {
			for _, item := range n.List {
				var decl js.INode = item
				if export, ok := item.(*js.ExportStmt); ok && !export.Default {
					decl = export.Decl
				}
				if fn, ok := decl.(*js.FuncDecl); ok && fn.Name != nil {
					r.add(fn.Name, fn)
				}
			}
		}
	case *js.VarDecl:
		if n.InFor || n.InForInOf {
			break
		}
		for _, item := range n.List {
			if v, ok := item.Binding.(*js.Var); ok {
				if fn, ok := unwrapGroup(item.Default).(*js.FuncDecl); ok {
					r.add(v, fn)
				}
			}
		}
	}
	return r
}

func (r *resolver) Exit(n js.INode) {
	switch n.(type) {
	case *js.FuncDecl, *js.MethodDecl, *js.ArrowFunc:
		r.depth--
	}
}
