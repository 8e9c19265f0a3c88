package js

import (
	"testing"

	"github.com/tdewolff/parse/v2/js"
	"github.com/tdewolff/test"
)

// argValue returns the value of the first argument of the call f(...) in src.
func argValue(t *testing.T, src string, maxStringLen int) Value {
	t.Helper()
	ast := parseJS(t, "f("+src+")")
	call := ast.List[0].(*js.ExprStmt).Value.(*js.CallExpr)
	return valueOf(call.Args.List[0].Value, maxStringLen)
}

func TestValueKind(t *testing.T) {
	var valueTests = []struct {
		arg  string
		kind ValueKind
	}{
		{`null`, Null},
		{`true`, Boolean},
		{`false`, Boolean},
		{`!0`, Boolean},
		{`!!""`, Boolean},
		{`undefined`, Undefined},
		{`void 0`, Undefined},
		{`void "x"`, Undefined},
		{`(undefined)`, Undefined},
		{`0`, Number},
		{`-1.5`, Number},
		{`1e3`, Number},
		{`.5`, Number},
		{`0b101`, Number},
		{`1_000`, Number},
		{`1n`, BigInt},
		{`-0x1fn`, BigInt},
		{`"abc"`, String},
		{`'\u{1F600}'`, String},
		{`x`, Impure},
		{`void x`, Impure},
		{`-x`, Impure},
		{`+1`, Impure},
		{`g()`, Impure},
		{`[]`, Impure},
		{`{}`, Impure},
		{"`abc`", Impure},
		{`/abc/`, Impure},
		{`this`, Impure},
		{`1 + 2`, Impure},
		{`NaN`, Impure},
	}
	for _, tt := range valueTests {
		t.Run(tt.arg, func(t *testing.T) {
			v := argValue(t, tt.arg, DefaultMaxStringLen)
			test.T(t, v.Kind, tt.kind)
		})
	}
}

func TestValueEqual(t *testing.T) {
	var valueTests = []struct {
		a, b  string
		equal bool
	}{
		{`1`, `1.0`, true},
		{`16`, `0x10`, true},
		{`8`, `0o10`, true},
		{`5`, `0b101`, true},
		{`1000`, `1e3`, true},
		{`1000`, `1_000`, true},
		{`0.5`, `.5`, true},
		{`-1`, `-1.0`, true},
		{`0`, `-0`, false},
		{`1`, `1n`, false},
		{`1n`, `0x1n`, true},
		{`-1n`, `-0b1n`, true},
		{`9007199254740993`, `9007199254740992`, true},
		{`"a"`, `'a'`, true},
		{`"a"`, `"\x61"`, true},
		{`"a"`, `"a"`, true},
		{`"a"`, `"\u{61}"`, true},
		{`"\n"`, `"\u000A"`, true},
		{`"\0"`, `"\x00"`, true},
		{`"\q"`, `"q"`, true},
		{`"😀"`, `"😀"`, true},
		{`"😀"`, `"\u{1F600}"`, true},
		{`"a"`, `"A"`, false},
		{`""`, `''`, true},
		{`"1"`, `1`, false},
		{`true`, `!0`, true},
		{`false`, `!1`, true},
		{`true`, `!""`, true},
		{`false`, `!"a"`, true},
		{`true`, `!0n`, true},
		{`true`, `!null`, true},
		{`true`, `!undefined`, true},
		{`true`, `1`, false},
		{`undefined`, `void 0`, true},
		{`undefined`, `void "x"`, true},
		{`undefined`, `null`, false},
		{`null`, `null`, true},
		{`x`, `x`, false},
	}
	for _, tt := range valueTests {
		t.Run(tt.a+"=="+tt.b, func(t *testing.T) {
			a := argValue(t, tt.a, DefaultMaxStringLen)
			b := argValue(t, tt.b, DefaultMaxStringLen)
			test.T(t, a.Equal(b), tt.equal, a.String()+" == "+b.String())
			test.T(t, b.Equal(a), tt.equal, b.String()+" == "+a.String())
		})
	}
}

func TestValueOmitted(t *testing.T) {
	test.That(t, omitted.Pure(), "omitted must be pure")
	test.That(t, omitted.Equal(argValue(t, `undefined`, DefaultMaxStringLen)), "omitted must equal undefined")
	test.That(t, omitted.Equal(argValue(t, `void 0`, DefaultMaxStringLen)), "omitted must equal void 0")
	test.That(t, !omitted.Equal(argValue(t, `null`, DefaultMaxStringLen)), "omitted must not equal null")
}

func TestValueShadowedUndefined(t *testing.T) {
	ast := parseJS(t, `function g(undefined) { f(undefined); }`)
	fn := ast.List[0].(*js.FuncDecl)
	call := fn.Body.List[0].(*js.ExprStmt).Value.(*js.CallExpr)
	v := valueOf(call.Args.List[0].Value, DefaultMaxStringLen)
	test.T(t, v.Kind, Impure)
}

func TestValueMaxStringLen(t *testing.T) {
	test.T(t, argValue(t, `"abc"`, 3).Kind, String)
	test.T(t, argValue(t, `"abcd"`, 3).Kind, Impure)
	test.T(t, argValue(t, `""`, 0).Kind, String)
	test.T(t, argValue(t, `"\u0061\u0062\u0063"`, 3).Kind, String)
	test.T(t, argValue(t, `"\x61\x62\x63\x64"`, 3).Kind, Impure)
	test.T(t, argValue(t, `"é"`, 1).Kind, Impure)
	test.T(t, argValue(t, `"\u00e9"`, 2).Kind, String)
}

func TestValueString(t *testing.T) {
	test.String(t, argValue(t, `0x10`, DefaultMaxStringLen).String(), "Number(16)")
	test.String(t, argValue(t, `-0x1fn`, DefaultMaxStringLen).String(), "BigInt(-31)")
	test.String(t, argValue(t, `'a\tb'`, DefaultMaxStringLen).String(), `String("a\tb")`)
	test.String(t, argValue(t, `!1`, DefaultMaxStringLen).String(), "Boolean(false)")
	test.String(t, argValue(t, `void 0`, DefaultMaxStringLen).String(), "Undefined")
	test.String(t, omitted.String(), "Omitted")
}
