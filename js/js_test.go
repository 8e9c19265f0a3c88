package js

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"testing"

	"github.com/jsmin/minify"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/test"
)

func TestJS(t *testing.T) {
	var jsTests = []struct {
		js       string
		expected string
	}{
		{``, ``},
		{`a = 5`, `a=5;`},
		{`function f(a, b) { return a + b; } f(5, 10); f(5, 10);`, `function f(){const a=5,b=10;return a+b;}f();f();`},
		{`function f(a, b) { return arguments.length; } f(5, 10);`, `function f(a,b){return arguments.length;}f(5,10);`},
		{`const f = function(x, y) { return x + y; }; f(null, 5); f(1, 5);`, `const f=function(x){const y=5;return x+y;};f(null);f(1);`},
		{`var re = /a b/g; if (x) /c d/.test(y); z = a / 2 / b;`, `var re=/a b/g;if(x)/c d/.test(y);z=a/2/b;`},
		{`a = b + +c - -d; e = f++ + g;`, `a=b+ +c- -d;e=f++ +g;`},
		{`x = typeof y === "z" ? .5 : 1 in o;`, `x=typeof y==="z"? .5:1 in o;`},
		{"s = `a  b`;", "s=`a  b`;"},
	}

	for _, tt := range jsTests {
		t.Run(tt.js, func(t *testing.T) {
			m := minify.New()
			out, err := m.String("application/javascript", tt.js)
			test.T(t, err, minify.ErrNotExist)
			test.String(t, out, tt.js)

			m.AddFunc("application/javascript", Minify)
			out, err = m.String("application/javascript", tt.js)
			test.Error(t, err)
			test.String(t, out, tt.expected)
			test.That(t, len(out) <= len(tt.js), "output must not be larger than the input")
		})
	}
}

func TestJSKeepTopLevel(t *testing.T) {
	m := minify.New()
	m.Add("text/javascript", &Minifier{KeepTopLevel: true})

	src := `function f(a) { return a; } f(1);`
	out, err := m.String("text/javascript", src)
	test.Error(t, err)
	test.String(t, out, `function f(a){return a;}f(1);`)
}

func TestCompact(t *testing.T) {
	var compactTests = []struct {
		js       string
		expected string
	}{
		{"a = 1;\nb = 2;", "a=1;b=2;"},
		{"if (x) /a b/.test(y);", "if(x)/a b/.test(y);"},
		{"while (x) /a b/g.exec(y);", "while(x)/a b/g.exec(y);"},
		{"for await (x of y) /a b/.test(x);", "for await(x of y)/a b/.test(x);"},
		{"{\n}\n/a b/.test(y);", "{}/a b/.test(y);"},
		{"f(function() {\n    /a b/.test(y);\n});", "f(function(){/a b/.test(y);});"},
		{"x = a / b / c;", "x=a/b/c;"},
		{"x = (a) / b / c;", "x=(a)/b/c;"},
		{"x = f(a) / b;", "x=f(a)/b;"},
		{"x = a[0] / b;", "x=a[0]/b;"},
		{"x = a / /b c/;", "x=a/ /b c/;"},
		{"x = /a b/ in o;", "x=/a b/ in o;"},
		{"x = /a b/g in o;", "x=/a b/g in o;"},
		{"x = a - -b + +c;", "x=a- -b+ +c;"},
		{"x = a + ++b;", "x=a+ ++b;"},
		{"x = y-- > z;", "x=y-- >z;"},
		{"x = a < !b;", "x=a< !b;"},
		{"x = a ? .5 : b;", "x=a? .5:b;"},
		{"x = 1 .toString();", "x=1 .toString();"},
		{"return 1 in o;", "return 1 in o;"},
		{"return \"a b\" + 'c d';", "return\"a b\"+'c d';"},
		{"x = `a  ${b}  c`;", "x=`a  ${b}  c`;"},
		{"/* c */ x = 1; // d\ny = 2;", "x=1;y=2;"},
		{"x = a \\u0062 in o;", "x=a \\u0062 in o;"},
	}
	for _, tt := range compactTests {
		t.Run(tt.js, func(t *testing.T) {
			w := &bytes.Buffer{}
			err := compact(w, parse.NewInputString(tt.js))
			test.Error(t, err)
			test.String(t, w.String(), tt.expected)
		})
	}
}

func TestJSParseError(t *testing.T) {
	m := minify.New()
	m.AddFunc("text/javascript", Minify)

	_, err := m.String("text/javascript", `function (`)
	var perr *parse.Error
	test.That(t, errors.As(err, &perr), "must return a parse error")
}

func TestReaderErrors(t *testing.T) {
	r := test.NewErrorReader(0)
	w := &bytes.Buffer{}
	m := minify.New()
	err := Minify(m, w, r, nil)
	test.T(t, err, test.ErrPlain, "return error at first read")
}

func TestWriterErrors(t *testing.T) {
	var errorTests = []int{0, 1, 2}

	m := minify.New()
	for _, n := range errorTests {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			r := bytes.NewBufferString("function f(a) {\n    return a;\n}\nf(1);")
			w := test.NewErrorWriter(n)
			err := Minify(m, w, r, nil)
			test.T(t, err, test.ErrPlain)
		})
	}
}

////////////////////////////////////////////////////////////////

func ExampleMinify() {
	m := minify.New()
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma|j|live)script(1\\.[0-8])?$|^module$"), Minify)

	if err := m.Minify("application/javascript", os.Stdout, os.Stdin); err != nil {
		panic(err)
	}
}

func TestJSReport(t *testing.T) {
	var stats []Stats
	m := minify.New()
	m.Add("text/javascript", &Minifier{Report: func(s Stats) {
		stats = append(stats, s)
	}})

	_, err := m.String("text/javascript", `function f(a, b) { return a + b; } f(1, 2); f(3, 2); function g(a) { return arguments; } g(1);`)
	test.Error(t, err)
	test.T(t, len(stats), 1)
	test.T(t, stats[0], Stats{Functions: 2, Disqualified: 1, Rewritten: 1, Params: 1, Args: 2})
}
