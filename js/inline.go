package js

import (
	"github.com/tdewolff/parse/v2/js"
)

// Options are the options for inlining parameters.
//
// Top-level functions of a script are properties of the global object and may be called by other scripts that share
// it. By default the tree is assumed to be the whole program, and top-level functions are only left alone when the
// script refers to the global object itself (globalThis, window, self, global or frames). Set KeepTopLevel for
// scripts that are loaded next to others.
type Options struct {
	KeepTopLevel bool // top-level functions may be called by other scripts
	MaxStringLen int  // longest string value to inline, 0 is DefaultMaxStringLen
}

// Stats report what InlineParams did.
type Stats struct {
	Functions    int // function declarations and function expressions bound to a variable
	Escaped      int // functions with unknown call sites
	Disqualified int // functions that observe their arity
	Rewritten    int // functions that lost parameters
	Params       int // removed parameters
	Args         int // removed arguments
}

// InlineParams removes trailing parameters that receive the same literal value, or no value, at every call site.
// The removed parameters are declared as constants at the start of the function body and the corresponding
// arguments are removed from all calls. Functions whose identifier is used other than as a direct callee, and
// functions that can observe their arity, are left untouched. The tree is fully analyzed before it is modified; an
// error means that nothing was changed.
func InlineParams(ast *js.AST, o Options) (Stats, error) {
	if o.MaxStringLen == 0 {
		o.MaxStringLen = DefaultMaxStringLen
	}

	bindings, byVar := resolveBindings(ast)
	calls := collectCallSites(ast, bindings, byVar, o)

	stats := Stats{Functions: len(bindings)}
	cuts := []Cut{}
	for _, b := range bindings {
		if b.Calls != Known {
			stats.Escaped++
			continue
		}
		analyzeBody(b)
		if b.Disqualified() {
			stats.Disqualified++
			continue
		}
		if c, ok := findCut(b, profiles(b, calls, o.MaxStringLen)); ok {
			cuts = append(cuts, c)
		}
	}

	for _, c := range cuts {
		if err := validateCut(bindings[c.Binding], c); err != nil {
			return Stats{}, err
		}
	}
	for _, c := range cuts {
		stats.Args += rewrite(bindings[c.Binding], c, calls, o.MaxStringLen)
		stats.Rewritten++
		stats.Params += len(c.Values)
	}
	return stats, nil
}
