package js

import (
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2/js"
)

// ErrInvalidCut is returned when a cut does not correspond to a removable run of trailing parameters. It indicates
// a defect in the analysis and no part of the tree is modified.
var ErrInvalidCut = errors.New("invalid parameter cut")

func validateCut(b *FuncBinding, c Cut) error {
	n := len(b.Params)
	if b.Index != c.Binding {
		return fmt.Errorf("%w: cut for binding %d applied to %v", ErrInvalidCut, c.Binding, b)
	} else if b.Calls != Known {
		return fmt.Errorf("%w: %v has unknown call sites", ErrInvalidCut, b)
	} else if b.Disqualified() {
		return fmt.Errorf("%w: %v observes its arity", ErrInvalidCut, b)
	} else if c.K < 0 || n <= c.K {
		return fmt.Errorf("%w: %v has %d parameters, cut at %d", ErrInvalidCut, b, n, c.K)
	} else if len(c.Values) != n-c.K {
		return fmt.Errorf("%w: %v needs %d values, got %d", ErrInvalidCut, b, n-c.K, len(c.Values))
	} else if len(b.Func.Params.List) != n {
		return fmt.Errorf("%w: parameters of %v changed after analysis", ErrInvalidCut, b)
	}
	for i, p := range b.Params[c.K:] {
		if !p.removable() {
			return fmt.Errorf("%w: parameter %d of %v cannot be removed", ErrInvalidCut, p.Index, b)
		} else if !c.Values[i].Pure() {
			return fmt.Errorf("%w: parameter %d of %v has no constant value", ErrInvalidCut, p.Index, b)
		}
	}
	return nil
}

// rewrite removes the parameters Params[c.K:] of a binding, declares them as constants at the start of the body,
// and removes the corresponding arguments from all call sites. It returns the number of removed arguments.
func rewrite(b *FuncBinding, c Cut, calls []CallSite, maxStringLen int) int {
	fn := b.Func
	n := len(b.Params)
	scope := &fn.Body.Scope

	decl := &js.VarDecl{
		TokenType: js.ConstToken,
		List:      make([]js.BindingElement, 0, n-c.K),
		Scope:     scope,
	}
	for i, item := range fn.Params.List[c.K:] {
		v := item.Binding.(*js.Var)
		v.Decl = js.LexicalDecl
		removeArgument(scope, v)
		decl.List = append(decl.List, js.BindingElement{
			Binding: v,
			Default: constExpr(c.Values[i], scope),
		})
	}
	fn.Params.List = fn.Params.List[:c.K:c.K]
	b.Params = b.Params[:c.K:c.K]

	i := 0
	for i < len(fn.Body.List) && isDirective(fn.Body.List[i]) {
		i++
	}
	list := make([]js.IStmt, 0, len(fn.Body.List)+1)
	list = append(list, fn.Body.List[:i]...)
	list = append(list, decl)
	fn.Body.List = append(list, fn.Body.List[i:]...)

	removed := 0
	for _, call := range calls {
		if call.Binding != b.Index {
			continue
		}
		args := call.Call.Args.List
		kept := make([]js.Arg, 0, len(args))
		for j, arg := range args {
			if j < c.K || n <= j && !valueOf(arg.Value, maxStringLen).Pure() {
				kept = append(kept, arg)
				continue
			}
			releaseVars(arg.Value)
			removed++
		}
		call.Call.Args.List = kept
	}
	return removed
}

// constExpr returns the initializer of a removed parameter. Undefined is written as the global identifier, or as
// void 0 when undefined is shadowed.
func constExpr(v Value, scope *js.Scope) js.IExpr {
	switch {
	case v.Kind == Undefined || v.Kind == Omitted:
		if isDeclared(scope, undefinedBytes) {
			return &js.UnaryExpr{Op: js.VoidToken, X: &js.LiteralExpr{TokenType: js.IntegerToken, Data: zeroBytes}}
		}
		return scope.Use(undefinedBytes)
	case v.ident:
		if v.truthy() {
			return &js.LiteralExpr{TokenType: js.TrueToken, Data: trueBytes}
		}
		return &js.LiteralExpr{TokenType: js.FalseToken, Data: falseBytes}
	}
	return v.Expr
}
