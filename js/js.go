// Package js inlines function parameters that receive the same literal value at every call site.
package js

import (
	"bytes"
	"io"

	"github.com/jsmin/minify"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

var spaceBytes = []byte(" ")

// Minifier is a JS minifier that removes constant trailing parameters.
type Minifier struct {
	KeepTopLevel bool
	MaxStringLen int

	// Report receives the statistics of every minified script, it must be safe for concurrent use
	Report func(Stats)
}

// Minify minifies JS data, it reads from r and writes to w.
func Minify(m *minify.M, w io.Writer, r io.Reader, params map[string]string) error {
	return (&Minifier{}).Minify(m, w, r, params)
}

// Minify minifies JS data, it reads from r and writes to w.
func (o *Minifier) Minify(_ *minify.M, w io.Writer, r io.Reader, _ map[string]string) error {
	z := parse.NewInput(r)
	defer z.Restore()
	if err := z.Err(); err != nil && err != io.EOF {
		return err
	}

	ast, err := js.Parse(z, js.Options{})
	if err != nil {
		return err
	}
	stats, err := InlineParams(ast, Options{KeepTopLevel: o.KeepTopLevel, MaxStringLen: o.MaxStringLen})
	if err != nil {
		return err
	}
	if o.Report != nil {
		o.Report(stats)
	}

	buf := &bytes.Buffer{}
	ast.JS(buf)
	return compact(w, parse.NewInputBytes(buf.Bytes()))
}

// compact writes the printed tree without comments and without whitespace that does not separate tokens. Every
// statement of the printed tree is terminated by a semicolon or a closing brace, so line terminators are never
// needed. A slash at the start of a line begins a statement and is thus a regular expression.
func compact(w io.Writer, r *parse.Input) error {
	l := js.NewLexer(r)
	lineTerminatorQueued := true
	whitespaceQueued := false
	prev, prevPrev := js.ErrorToken, js.ErrorToken
	prevLast := byte(0)

	heads := []bool{} // open parentheses, true for the condition of if, for, while and with
	closedHead := false
	for {
		tt, text := l.Next()
		switch tt {
		case js.ErrorToken:
			if l.Err() != io.EOF {
				return l.Err()
			}
			return nil
		case js.WhitespaceToken, js.CommentToken:
			whitespaceQueued = true
			continue
		case js.LineTerminatorToken, js.CommentLineTerminatorToken:
			lineTerminatorQueued = true
			continue
		case js.DivToken, js.DivEqToken:
			if lineTerminatorQueued || regExpAllowed(prev, closedHead) {
				if tt, text = l.RegExp(); tt == js.ErrorToken {
					return l.Err()
				}
			}
		case js.OpenParenToken:
			head := prev == js.IfToken || prev == js.WhileToken || prev == js.ForToken || prev == js.WithToken
			heads = append(heads, head || prev == js.AwaitToken && prevPrev == js.ForToken)
		case js.CloseParenToken:
			closedHead = false
			if 0 < len(heads) {
				closedHead = heads[len(heads)-1]
				heads = heads[:len(heads)-1]
			}
		}

		if (whitespaceQueued || lineTerminatorQueued) && prevLast != 0 && needsSpace(prev, prevLast, tt, text) {
			if _, err := w.Write(spaceBytes); err != nil {
				return err
			}
		}
		if _, err := w.Write(text); err != nil {
			return err
		}
		lineTerminatorQueued = false
		whitespaceQueued = false
		prev, prevPrev = tt, prev
		prevLast = text[len(text)-1]
	}
}

// regExpAllowed returns true if a slash following a token of type prev starts a regular expression.
func regExpAllowed(prev js.TokenType, closedHead bool) bool {
	switch prev {
	case js.CloseParenToken:
		return closedHead
	case js.CloseBracketToken, js.CloseBraceToken, js.IncrToken, js.DecrToken,
		js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken, js.PrivateIdentifierToken,
		js.ThisToken, js.SuperToken, js.NullToken, js.TrueToken, js.FalseToken:
		return false
	}
	return !js.IsNumeric(prev) && !js.IsIdentifier(prev)
}

// needsSpace returns true if the two tokens would lex differently when written without a space in between.
func needsSpace(prev js.TokenType, prevLast byte, tt js.TokenType, text []byte) bool {
	first := text[0]
	if isIdentifierByte(prevLast) || js.IsIdentifierName(prev) || js.IsNumeric(prev) || prev == js.RegExpToken || prev == js.PrivateIdentifierToken {
		// regular expression flags and numbers such as 1. would absorb a following identifier
		if isIdentifierByte(first) || first == '\\' || first == '#' || first == '`' {
			return true
		}
	}
	if js.IsNumeric(prev) && first == '.' {
		return true
	}
	switch prevLast {
	case '+', '-':
		return first == prevLast || prevLast == '-' && first == '>'
	case '/':
		return first == '/' || first == '*'
	case '<':
		return first == '!'
	case '?':
		return first == '.'
	}
	return false
}

func isIdentifierByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_' || c == '$' || 0x80 <= c
}
