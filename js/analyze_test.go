package js

import (
	"testing"

	"github.com/tdewolff/test"
)

// analyze returns the cut of the first binding in src, or -1 when none is found.
func analyze(t *testing.T, src string) (*FuncBinding, int) {
	t.Helper()
	ast := parseJS(t, src)
	bindings, byVar := resolveBindings(ast)
	calls := collectCallSites(ast, bindings, byVar, Options{})
	b := bindings[0]
	if b.Calls != Known {
		return b, -1
	}
	analyzeBody(b)
	c, ok := findCut(b, profiles(b, calls, DefaultMaxStringLen))
	if !ok {
		return b, -1
	}
	test.T(t, len(c.Values), len(b.Params)-c.K)
	return b, c.K
}

func TestFindCut(t *testing.T) {
	var cutTests = []struct {
		js string
		k  int
	}{
		{`function f(a, b, c) {} f(1, 2, 3); f(1, 2, 3);`, 0},
		{`function f(a, b, c) {} f(1, 2, 3); f(0, 2, 3);`, 1},
		{`function f(a, b, c) {} f(1, 2, 3); f(1, 0, 3);`, 2},
		{`function f(a, b, c) {} f(1, 2, 3); f(1, 2, 0);`, -1},
		{`function f(a, b, c) {} f(1, 2, 3); f(0, 2);`, -1},
		{`function f(a, b, c) {} f(1); f(2);`, 1},
		{`function f(a, b, c) {} f(1, 2, x);`, -1},
		{`function f(a, b, c) {} f(1, x, 3);`, 2},
		{`function f(a, b) {}`, -1},
		{`function f() {} f();`, -1},
		{`function f(a, b = 1, c) {} f(1, 2, 3);`, 2},
		{`function f(a = c, b, c) {} f(1, 2, 3);`, -1},
		{`function f(a = b, b, c) {} f(1, 2, 3);`, 2},
		{`function f({a = c}, b, c) {} f({}, 2, 3);`, -1},
		{`function f([a], b) {} f([], 2);`, 1},
		{`function f(a, b) { b = a; } f(1, 2);`, -1},
		{`function f(a, b) { a = b; } f(1, 2);`, 1},
		{`function f(a, b) { var c = b; } f(1, 2);`, 0},
		{`function f(a, b) { return function(b) { b = 1; }; } f(1, 2);`, 0},
		{`function f(a, b) { return function() { b--; }; } f(1, 2);`, -1},
		{`function f(a, b) { for (b of a); } f(1, 2);`, -1},
		{`function f(a, b) { for (var b of a); } f(1, 2);`, -1},
		{`function f(a, b) { ({b} = a); } f(1, 2);`, -1},
		{`function f(a, b) { eval(""); } f(1, 2);`, -1},
		{`function f(a, b) { return () => arguments; } f(1, 2);`, -1},
		{`function f(a, b) { return { m() { return arguments; } }; } f(1, 2);`, 0},
		{`function f(a, b) { with (a) {} } f(1, 2);`, -1},
		{`var f = function(a, b) {}; f(1, 2);`, 0},
		{`function f(a, let) { return let; } f(1, 2);`, -1},
		{`function f(let, b) { return let + b; } f(1, 2);`, 1},
	}
	for _, tt := range cutTests {
		t.Run(tt.js, func(t *testing.T) {
			_, k := analyze(t, tt.js)
			test.T(t, k, tt.k)
		})
	}
}

func TestAnalyzeBody(t *testing.T) {
	b, _ := analyze(t, `function f(a, b, c) { a++; c += 1; return arguments; } f();`)
	test.That(t, b.Flags.Has(UsesArguments), "f uses arguments")
	test.That(t, b.Disqualified(), "f is disqualified")
	test.T(t, b.Params[0].Reassigned, true)
	test.T(t, b.Params[1].Reassigned, false)
	test.T(t, b.Params[2].Reassigned, true)

	b, _ = analyze(t, `function f(a) { function g() { return arguments; } } f();`)
	test.That(t, !b.Flags.Has(UsesArguments), "arguments of nested function")

	bindings, _ := resolveBindings(parseJS(t, `function f(a) { function g() { eval(""); } } f();`))
	analyzeBody(bindings[0])
	test.That(t, bindings[0].Flags.Has(UsesEval), "eval in nested function")
}

func TestProfile(t *testing.T) {
	p := Profile{}
	_, ok := p.Single()
	test.T(t, ok, false)

	p.Add(omitted)
	p.Add(argValue(t, `void 0`, DefaultMaxStringLen))
	p.Add(argValue(t, `undefined`, DefaultMaxStringLen))
	v, ok := p.Single()
	test.T(t, ok, true)
	test.T(t, v.Kind, Omitted)

	p.Add(argValue(t, `null`, DefaultMaxStringLen))
	_, ok = p.Single()
	test.T(t, ok, false)

	p = Profile{}
	p.Add(argValue(t, `1`, DefaultMaxStringLen))
	p.Add(argValue(t, `x`, DefaultMaxStringLen))
	p.Add(argValue(t, `1`, DefaultMaxStringLen))
	test.T(t, p.Impure, true)
	test.T(t, len(p.Values), 1)
	_, ok = p.Single()
	test.T(t, ok, false)
}
