package domain

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "missing"
	}
}

// Value is a single cell: string, integer, float or missing.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// Missing returns the missing marker.
func Missing() Value { return Value{} }

// String wraps a string cell.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int wraps an integer cell.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float cell. NaN is stored as missing.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{kind: KindFloat, f: f}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Str returns the string payload and whether the cell is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// IntValue returns the integer payload and whether the cell is an integer.
func (v Value) IntValue() (int64, bool) { return v.i, v.kind == KindInt }

// Number returns the numeric payload of int and float cells.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Text renders the cell the way it is written to delimited text.
// Missing cells render as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	default:
		return ""
	}
}

// key is a kind-tagged rendering used for row hashing.
func (v Value) key() string {
	t := v.Text()
	return strconv.Itoa(int(v.kind)) + ":" + strconv.Itoa(len(t)) + ":" + t
}

// FormatFloat keeps a trailing ".0" on integral values so floats survive a
// text round trip as floats.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
