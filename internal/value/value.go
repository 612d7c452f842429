// Package value implements the runtime value type shared by the script
// interpreter and the plugin ABI: a small tagged union with total,
// coercing operators.
package value

import (
	"fmt"
	"strconv"
)

// Type orders the variants of RawValue for binary-operator type promotion:
// Unit < Bool < Num < Str.
type Type int

const (
	TypeUnit Type = iota
	TypeBool
	TypeNum
	TypeStr
)

func (t Type) String() string {
	switch t {
	case TypeUnit:
		return "unit"
	case TypeBool:
		return "bool"
	case TypeNum:
		return "num"
	case TypeStr:
		return "str"
	default:
		return "unknown"
	}
}

// Raw is the runtime value. The zero Raw is Unit.
type Raw struct {
	typ Type
	b   bool
	n   int64
	s   string
}

// Unit is the empty value.
var Unit = Raw{typ: TypeUnit}

// Bool constructs a boolean value.
func Bool(b bool) Raw { return Raw{typ: TypeBool, b: b} }

// Num constructs a numeric (64-bit signed integer) value.
func Num(n int64) Raw { return Raw{typ: TypeNum, n: n} }

// Str constructs a string value.
func Str(s string) Raw { return Raw{typ: TypeStr, s: s} }

// Type returns the value's tag, used to pick the result type of binary ops.
func (v Raw) Type() Type { return v.typ }

// GetBool coerces to bool: Unit -> false, Num -> nonzero, Str -> nonempty.
func (v Raw) GetBool() bool {
	switch v.typ {
	case TypeBool:
		return v.b
	case TypeNum:
		return v.n != 0
	case TypeStr:
		return v.s != ""
	default:
		return false
	}
}

// GetNum coerces to int64: Bool -> 0/1, Str -> best-effort parse (0 on failure).
func (v Raw) GetNum() int64 {
	switch v.typ {
	case TypeNum:
		return v.n
	case TypeBool:
		if v.b {
			return 1
		}
		return 0
	case TypeStr:
		n, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// GetStr coerces to string via the value's natural textual form.
func (v Raw) GetStr() string {
	switch v.typ {
	case TypeStr:
		return v.s
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeNum:
		return strconv.FormatInt(v.n, 10)
	default:
		return ""
	}
}

// Equal reports whether two values compare equal after promotion to the
// higher of their two types. Unit is promoted like any other type, so it
// equals Bool(false), Num(0) and Str("") as well as Unit.
func (v Raw) Equal(o Raw) bool {
	t := v.typ
	if o.typ > t {
		t = o.typ
	}
	switch t {
	case TypeUnit:
		return true
	case TypeBool:
		return v.GetBool() == o.GetBool()
	case TypeNum:
		return v.GetNum() == o.GetNum()
	case TypeStr:
		return v.GetStr() == o.GetStr()
	default:
		return false
	}
}

// Less reports v < o under the ordering of their promoted type. Unit
// compares always false for ordering.
func (v Raw) Less(o Raw) bool {
	t := v.typ
	if o.typ > t {
		t = o.typ
	}
	switch t {
	case TypeBool:
		return !v.GetBool() && o.GetBool()
	case TypeNum:
		return v.GetNum() < o.GetNum()
	case TypeStr:
		return v.GetStr() < o.GetStr()
	default:
		return false
	}
}

func (v Raw) String() string {
	switch v.typ {
	case TypeUnit:
		return "()"
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeNum:
		return strconv.FormatInt(v.n, 10)
	case TypeStr:
		return strconv.Quote(v.s)
	default:
		return fmt.Sprintf("<invalid raw value %d>", v.typ)
	}
}

// GoString supports %#v formatting in test failure output.
func (v Raw) GoString() string {
	return "value." + v.String()
}
