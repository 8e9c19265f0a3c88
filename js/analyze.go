package js

import (
	"bytes"

	"github.com/tdewolff/parse/v2/js"
)

// Profile is the set of distinct values passed for one parameter position over all call sites.
type Profile struct {
	Values []Value
	Impure bool
}

// Add records the value of one call site.
func (p *Profile) Add(v Value) {
	if !v.Pure() {
		p.Impure = true
		return
	}
	for _, w := range p.Values {
		if w.Equal(v) {
			return
		}
	}
	p.Values = append(p.Values, v)
}

// Single returns the only value passed at this position. It fails when a call site passes an impure value, when
// call sites disagree, or when there are no call sites.
func (p *Profile) Single() (Value, bool) {
	if p.Impure || len(p.Values) != 1 {
		return Value{}, false
	}
	return p.Values[0], true
}

// Cut splits the parameters of a function: Params[:K] stay formal parameters and Params[K:] become constants with
// the given values.
type Cut struct {
	Binding int
	K       int
	Values  []Value
}

// bodyVisitor walks a function's parameters and body. Nested functions are visited as well since closures can
// assign to a parameter, but arguments only counts outside of nested non-arrow functions.
type bodyVisitor struct {
	b      *FuncBinding
	params map[*js.Var]int
	nested int
}

func analyzeBody(b *FuncBinding) {
	fn := b.Func
	if fn.Body.Scope.HasWith {
		b.Flags |= UsesWith
	}

	v := &bodyVisitor{b: b, params: map[*js.Var]int{}}
	for i, p := range b.Params {
		if p.Var != nil {
			v.params[rootVar(p.Var)] = i
		}
	}
	js.Walk(v, &fn.Params)
	js.Walk(v, &fn.Body)
}

func (v *bodyVisitor) reassign(vars ...*js.Var) {
	for _, w := range vars {
		if i, ok := v.params[rootVar(w)]; ok {
			v.b.Params[i].Reassigned = true
		}
	}
}

func (v *bodyVisitor) Enter(n js.INode) js.IVisitor {
	switch n := n.(type) {
	case *js.Var:
		if name := n.Name(); bytes.Equal(name, argumentsBytes) && v.nested == 0 {
			v.b.Flags |= UsesArguments
		} else if bytes.Equal(name, evalBytes) {
			v.b.Flags |= UsesEval
		}
	case *js.FuncDecl:
		if n.Name != nil {
			v.reassign(n.Name)
		}
		v.nested++
	case *js.MethodDecl:
		v.nested++
	case *js.ClassElementName:
		js.Walk(v, &n.PropertyName)
	case *js.WithStmt:
		v.b.Flags |= UsesWith
	case *js.BinaryExpr:
		if isAssignOp(n.Op) {
			v.reassign(collectVars(n.X)...)
		}
	case *js.UnaryExpr:
		switch n.Op {
		case js.PreIncrToken, js.PreDecrToken, js.PostIncrToken, js.PostDecrToken:
			v.reassign(collectVars(n.X)...)
		}
	case *js.ForInStmt:
		if _, ok := n.Init.(*js.VarDecl); !ok {
			v.reassign(collectVars(n.Init)...)
		}
	case *js.ForOfStmt:
		if _, ok := n.Init.(*js.VarDecl); !ok {
			v.reassign(collectVars(n.Init)...)
		}
	case *js.VarDecl:
		// a redeclaration, even without initializer, conflicts with the inserted const declaration
		for _, item := range n.List {
			v.reassign(bindingVars(item.Binding)...)
		}
	}
	return v
}

func (v *bodyVisitor) Exit(n js.INode) {
	switch n.(type) {
	case *js.FuncDecl, *js.MethodDecl:
		v.nested--
	}
}

func isAssignOp(op js.TokenType) bool {
	switch op {
	case js.EqToken, js.MulEqToken, js.DivEqToken, js.ModEqToken, js.ExpEqToken, js.AddEqToken, js.SubEqToken,
		js.LtLtEqToken, js.GtGtEqToken, js.GtGtGtEqToken, js.BitAndEqToken, js.BitXorEqToken, js.BitOrEqToken,
		js.AndEqToken, js.OrEqToken, js.NullishEqToken:
		return true
	}
	return false
}

// profiles returns the observed values for every parameter position of a binding.
func profiles(b *FuncBinding, calls []CallSite, maxStringLen int) []Profile {
	ps := make([]Profile, len(b.Params))
	for _, call := range calls {
		if call.Binding != b.Index {
			continue
		}
		args := call.Call.Args.List
		for i := range ps {
			if i < len(args) {
				ps[i].Add(valueOf(args[i].Value, maxStringLen))
			} else {
				ps[i].Add(omitted)
			}
		}
	}
	return ps
}

// findCut scans the parameters from last to first and stops at the first one that must stay. It returns false when
// no parameter can be removed.
func findCut(b *FuncBinding, ps []Profile) (Cut, bool) {
	if b.Calls != Known || b.Disqualified() {
		return Cut{}, false
	}

	n := len(b.Params)
	k := n
	for i := n - 1; 0 <= i; i-- {
		p := b.Params[i]
		if !p.removable() {
			break
		} else if _, ok := ps[i].Single(); !ok {
			break
		}
		k = i
	}

	// kept parameters whose default or pattern refers to a removed one keep it too
	for k < n {
		j := lastReferenced(b, k)
		if j < k {
			break
		}
		k = j + 1
	}
	if k == n {
		return Cut{}, false
	}

	c := Cut{Binding: b.Index, K: k, Values: make([]Value, 0, n-k)}
	for i := k; i < n; i++ {
		v, _ := ps[i].Single()
		c.Values = append(c.Values, v)
	}
	return c, true
}

// lastReferenced returns the highest index in [k,n) of a parameter whose name appears in the first k parameters,
// or -1. Names are compared instead of variables since a default may refer to a later parameter in its TDZ.
func lastReferenced(b *FuncBinding, k int) int {
	var names [][]byte
	for _, item := range b.Func.Params.List[:k] {
		for _, v := range bindingVars(item.Binding) {
			names = append(names, v.Name())
		}
		for _, v := range collectVars(item.Default) {
			names = append(names, v.Name())
		}
	}

	j := -1
	for i := k; i < len(b.Params); i++ {
		for _, name := range names {
			if bytes.Equal(name, b.Params[i].Var.Data) {
				j = i
			}
		}
	}
	return j
}
