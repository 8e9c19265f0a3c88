package js

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestCollectCallSites(t *testing.T) {
	var callTests = []struct {
		js    string
		calls int
		known bool
	}{
		{`function f() {}`, 0, true},
		{`function f() {} f(); f(1); (f)(2); f?.();`, 4, true},
		{`f(); function f() {}`, 1, true},
		{`function f() {} (function() { f(); })();`, 1, true},
		{`function f() {} (function(f) { f(); })(0);`, 0, true},
		{`function f() {} { let f = 1; f(); } f();`, 1, true},
		{`var f = function g() { g(); }; f();`, 2, true},
		{`function f() {} f(f());`, 2, true},
		{`function f() {} g(f);`, 0, false},
		{`function f() {} (function() { return f; })();`, 0, false},
		{`function f() {} f.x = 1;`, 0, false},
		{`function f() {} f.call();`, 0, false},
		{`function f() {} f(...a);`, 0, false},
		{`function f() {} new f();`, 0, false},
		{`function f() {} f = 1;`, 0, false},
		{"function f() {} f``;", 0, false},
		{`function f() {} var o = {f};`, 0, false},
		{`function f() {} var o = {[f]: 1};`, 0, false},
		{`function f() {} class A { [f] = 1 }`, 0, false},
		{`function f() {} with (o) { f(); }`, 0, false},
		{`function f() {} f(); eval("");`, 0, false},
		{`function f() {} export {f};`, 0, false},
		{`export function f() {} f();`, 0, false},
		{`export var f = function() {}; f();`, 0, false},
		{`var f = function g() {}; g.x;`, 0, true},
		{`var f = function g() { return g; }; f();`, 0, false},
		{`function f() {} f(); globalThis.f(2);`, 0, false},
		{`function f() {} f(); window["f"](2);`, 0, false},
		{`function f() { var self = 1; return self.x; } f();`, 1, true},
	}
	for _, tt := range callTests {
		t.Run(tt.js, func(t *testing.T) {
			ast := parseJS(t, tt.js)
			bindings, byVar := resolveBindings(ast)
			test.T(t, len(bindings), 1)

			calls := collectCallSites(ast, bindings, byVar, Options{})
			test.T(t, len(calls), tt.calls)
			test.T(t, bindings[0].Calls == Known, tt.known)
		})
	}
}

func TestCallSiteOptional(t *testing.T) {
	ast := parseJS(t, `function f() {} f(); f?.();`)
	bindings, byVar := resolveBindings(ast)
	calls := collectCallSites(ast, bindings, byVar, Options{})
	test.T(t, len(calls), 2)
	test.T(t, calls[0].Optional, false)
	test.T(t, calls[1].Optional, true)
}

func TestCallSiteEvalShadowed(t *testing.T) {
	ast := parseJS(t, `function f() {} function g(eval) { eval(""); } f(); g(0);`)
	bindings, byVar := resolveBindings(ast)
	collectCallSites(ast, bindings, byVar, Options{})
	test.T(t, bindings[0].Calls, Known)
	test.T(t, bindings[1].Calls, Known)
}

func TestCallSiteKeepTopLevel(t *testing.T) {
	ast := parseJS(t, `function f() { function g() {} g(); } f();`)
	bindings, byVar := resolveBindings(ast)
	calls := collectCallSites(ast, bindings, byVar, Options{KeepTopLevel: true})
	test.T(t, bindings[0].Calls, Unknown)
	test.T(t, bindings[1].Calls, Known)
	test.T(t, len(calls), 1)
}

func TestCallSiteGlobalObject(t *testing.T) {
	ast := parseJS(t, `function f() { function g() {} g(); } f(); self.postMessage(0);`)
	bindings, byVar := resolveBindings(ast)
	calls := collectCallSites(ast, bindings, byVar, Options{})
	test.T(t, bindings[0].Calls, Unknown)
	test.T(t, bindings[1].Calls, Known)
	test.T(t, len(calls), 1)
}
