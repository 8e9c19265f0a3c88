package js

import (
	"bytes"

	"github.com/tdewolff/parse/v2/js"
)

var (
	argumentsBytes = []byte("arguments")
	evalBytes      = []byte("eval")
	undefinedBytes = []byte("undefined")
	zeroBytes      = []byte("0")
	trueBytes      = []byte("true")
	falseBytes     = []byte("false")
	letBytes       = []byte("let")
)

var globalObjectNames = [][]byte{[]byte("globalThis"), []byte("window"), []byte("self"), []byte("global"), []byte("frames")}

func isGlobalObject(name []byte) bool {
	for _, global := range globalObjectNames {
		if bytes.Equal(name, global) {
			return true
		}
	}
	return false
}

// rootVar follows the links of a variable use to its declaration.
func rootVar(v *js.Var) *js.Var {
	for v.Link != nil {
		v = v.Link
	}
	return v
}

func unwrapGroup(expr js.IExpr) js.IExpr {
	for {
		group, ok := expr.(*js.GroupExpr)
		if !ok {
			return expr
		}
		expr = group.X
	}
}

// varCollector gathers every variable in a subtree, including those in nested functions.
type varCollector struct {
	vars []*js.Var
}

func (c *varCollector) Enter(n js.INode) js.IVisitor {
	switch n := n.(type) {
	case *js.Var:
		c.vars = append(c.vars, n)
	case *js.ClassElementName:
		js.Walk(c, &n.PropertyName)
	}
	return c
}

func (c *varCollector) Exit(js.INode) {}

func collectVars(n js.INode) []*js.Var {
	if n == nil {
		return nil
	}
	c := &varCollector{}
	js.Walk(c, n)
	return c.vars
}

// bindingVars returns the variables declared by a binding pattern, and the ones used in its defaults or computed
// keys.
func bindingVars(binding js.IBinding) []*js.Var {
	if binding == nil {
		return nil
	}
	return collectVars(binding)
}

// isDirective returns true for statements that must stay at the start of a function body.
func isDirective(stmt js.IStmt) bool {
	switch stmt.(type) {
	case *js.DirectivePrologueStmt, *js.Comment:
		return true
	}
	return false
}

// isDeclared returns true if a variable with the given name is declared in the scope or any of its parents.
func isDeclared(s *js.Scope, name []byte) bool {
	for ; s != nil; s = s.Parent {
		for _, v := range s.Declared {
			if bytes.Equal(v.Data, name) {
				return true
			}
		}
	}
	return false
}

// removeArgument moves a parameter out of the function arguments at the start of the scope's declarations.
func removeArgument(s *js.Scope, v *js.Var) {
	n := int(s.NumFuncArgs)
	for i := 0; i < n && i < len(s.Declared); i++ {
		if s.Declared[i] == v {
			copy(s.Declared[i:], s.Declared[i+1:n])
			s.Declared[n-1] = v
			s.NumFuncArgs--
			return
		}
	}
}

// releaseVars decrements the use counts of all variables in a removed expression.
func releaseVars(expr js.IExpr) {
	for _, v := range collectVars(expr) {
		if 0 < v.Uses {
			v.Uses--
		}
	}
}
