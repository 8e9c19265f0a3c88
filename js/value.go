package js

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/big"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2/js"
)

// DefaultMaxStringLen is the longest string value, in UTF-8 bytes after decoding escapes, that is considered for
// inlining.
const DefaultMaxStringLen = 32

// ValueKind is the kind of canonical argument value.
type ValueKind uint8

// ValueKind values.
const (
	Impure ValueKind = iota
	Omitted
	Undefined
	Null
	Boolean
	Number
	BigInt
	String
)

func (k ValueKind) String() string {
	switch k {
	case Impure:
		return "Impure"
	case Omitted:
		return "Omitted"
	case Undefined:
		return "Undefined"
	case Null:
		return "Null"
	case Boolean:
		return "Boolean"
	case Number:
		return "Number"
	case BigInt:
		return "BigInt"
	case String:
		return "String"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// Value is the canonical form of an argument at a call site. Two values are equal when they denote the same
// primitive, regardless of how the literal was written.
type Value struct {
	Kind ValueKind
	Expr js.IExpr // argument expression, nil when omitted

	key   string
	ident bool // Expr contains an identifier
}

// Equal returns true if both values are pure and denote the same primitive. Omitted equals undefined.
func (v Value) Equal(w Value) bool {
	a, b := v.Kind, w.Kind
	if a == Omitted {
		a = Undefined
	}
	if b == Omitted {
		b = Undefined
	}
	return a != Impure && a == b && v.key == w.key
}

// Pure returns true if the value has no side effects and can be compared.
func (v Value) Pure() bool {
	return v.Kind != Impure
}

func (v Value) String() string {
	switch v.Kind {
	case Impure, Omitted, Undefined, Null:
		return v.Kind.String()
	case Number:
		f := math.Float64frombits(binary.BigEndian.Uint64([]byte(v.key)))
		return "Number(" + strconv.FormatFloat(f, 'g', -1, 64) + ")"
	case String:
		return "String(" + strconv.Quote(string(utf16.Decode(stringUnits(v.key)))) + ")"
	}
	return v.Kind.String() + "(" + v.key + ")"
}

// truthy returns the boolean value of a pure value following JavaScript's ToBoolean.
func (v Value) truthy() bool {
	switch v.Kind {
	case Boolean:
		return v.key == "true"
	case Number:
		f := math.Float64frombits(binary.BigEndian.Uint64([]byte(v.key)))
		return f != 0 && !math.IsNaN(f)
	case BigInt:
		return v.key != "0"
	case String:
		return v.key != ""
	}
	return false
}

var omitted = Value{Kind: Omitted}

func boolValue(expr js.IExpr, b bool) Value {
	if b {
		return Value{Kind: Boolean, Expr: expr, key: "true"}
	}
	return Value{Kind: Boolean, Expr: expr, key: "false"}
}

func numberValue(expr js.IExpr, f float64) Value {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], math.Float64bits(f))
	return Value{Kind: Number, Expr: expr, key: string(key[:])}
}

// valueOf returns the canonical value of an argument expression. Anything that is not a literal, the global
// undefined, or a negation or void of one is impure.
func valueOf(expr js.IExpr, maxStringLen int) Value {
	switch e := expr.(type) {
	case *js.GroupExpr:
		return valueOf(e.X, maxStringLen)
	case *js.LiteralExpr:
		switch e.TokenType {
		case js.NullToken:
			return Value{Kind: Null, Expr: e}
		case js.TrueToken:
			return boolValue(e, true)
		case js.FalseToken:
			return boolValue(e, false)
		case js.StringToken:
			if len(e.Data) < 2 {
				break
			}
			if units, ok := decodeString(e.Data); ok && stringLen(units) <= maxStringLen {
				return Value{Kind: String, Expr: e, key: unitsKey(units)}
			}
		case js.DecimalToken, js.IntegerToken, js.BinaryToken, js.OctalToken, js.HexadecimalToken:
			if 0 < len(e.Data) && e.Data[len(e.Data)-1] == 'n' {
				if i, ok := new(big.Int).SetString(string(e.Data[:len(e.Data)-1]), 0); ok {
					return Value{Kind: BigInt, Expr: e, key: i.String()}
				}
			} else if f, ok := parseNumber(e.Data); ok {
				return numberValue(e, f)
			}
		}
	case *js.Var:
		if v := rootVar(e); v.Decl == js.NoDecl && bytes.Equal(v.Data, undefinedBytes) {
			return Value{Kind: Undefined, Expr: e, ident: true}
		}
	case *js.UnaryExpr:
		x := valueOf(e.X, maxStringLen)
		if !x.Pure() {
			break
		}
		switch e.Op {
		case js.VoidToken:
			return Value{Kind: Undefined, Expr: e, ident: x.ident}
		case js.NotToken:
			v := boolValue(e, !x.truthy())
			v.ident = x.ident
			return v
		case js.NegToken:
			if x.Kind == Number {
				f := math.Float64frombits(binary.BigEndian.Uint64([]byte(x.key)))
				return numberValue(e, -f)
			} else if x.Kind == BigInt {
				i, _ := new(big.Int).SetString(x.key, 10)
				return Value{Kind: BigInt, Expr: e, key: i.Neg(i).String()}
			}
		}
	}
	return Value{Kind: Impure, Expr: expr}
}

// parseNumber returns the exactly rounded float64 of a numeric literal. Integers in any base, including legacy
// octal, go through math/big so that large literals round the same way JavaScript rounds them.
func parseNumber(b []byte) (float64, bool) {
	if i, ok := new(big.Int).SetString(string(b), 0); ok {
		f, _ := new(big.Float).SetInt(i).Float64()
		return f, true
	}
	f, err := strconv.ParseFloat(string(bytes.ReplaceAll(b, []byte("_"), nil)), 64)
	if err != nil && !isRangeError(err) {
		return 0, false
	}
	return f, true
}

func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

// stringLen returns the UTF-8 length of a string value, lone surrogates count as three bytes.
func stringLen(units []uint16) int {
	n := 0
	for _, r := range utf16.Decode(units) {
		n += utf8.RuneLen(r)
	}
	return n
}

// decodeString returns the UTF-16 code units of a quoted string literal. Legacy octal escapes are rejected.
func decodeString(b []byte) ([]uint16, bool) {
	b = b[1 : len(b)-1]
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		if c != '\\' {
			r, n := utf8.DecodeRune(b[i:])
			units = utf16.AppendRune(units, r)
			i += n
			continue
		} else if i+1 == len(b) {
			return nil, false
		}

		c = b[i+1]
		i += 2
		switch c {
		case 'n':
			units = append(units, '\n')
		case 'r':
			units = append(units, '\r')
		case 't':
			units = append(units, '\t')
		case 'b':
			units = append(units, '\b')
		case 'f':
			units = append(units, '\f')
		case 'v':
			units = append(units, '\v')
		case '0':
			if i < len(b) && '0' <= b[i] && b[i] <= '9' {
				return nil, false
			}
			units = append(units, 0)
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return nil, false
		case '\n':
		case '\r':
			if i < len(b) && b[i] == '\n' {
				i++
			}
		case 'x':
			if len(b) < i+2 {
				return nil, false
			}
			u, err := strconv.ParseUint(string(b[i:i+2]), 16, 8)
			if err != nil {
				return nil, false
			}
			units = append(units, uint16(u))
			i += 2
		case 'u':
			var digits []byte
			if i < len(b) && b[i] == '{' {
				end := bytes.IndexByte(b[i:], '}')
				if end == -1 {
					return nil, false
				}
				digits = b[i+1 : i+end]
				i += end + 1
			} else if i+4 <= len(b) {
				digits = b[i : i+4]
				i += 4
			}
			r, err := strconv.ParseUint(string(digits), 16, 32)
			if err != nil || utf8.MaxRune < r {
				return nil, false
			}
			if r < 0x10000 {
				units = append(units, uint16(r))
			} else {
				units = utf16.AppendRune(units, rune(r))
			}
		default:
			// identity escape, or a line continuation with U+2028/U+2029
			r, n := utf8.DecodeRune(b[i-1:])
			if r != '\u2028' && r != '\u2029' {
				units = utf16.AppendRune(units, r)
			}
			i += n - 1
		}
	}
	return units, true
}

func unitsKey(units []uint16) string {
	key := make([]byte, 2*len(units))
	for i, u := range units {
		binary.BigEndian.PutUint16(key[2*i:], u)
	}
	return string(key)
}

func stringUnits(key string) []uint16 {
	units := make([]uint16, len(key)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16([]byte(key[2*i:]))
	}
	return units
}
