package mathcmd

import (
	"strings"
)

// Value is the result of evaluating an expression. The concrete types are
// Number, List, and Vector. Any value can be viewed as any kind: a number is a
// collection of one element, and a collection is the number of its elements.
type Value interface {
	// Kind returns the kind of the value.
	Kind() Kind
	// Num views the value as a number.
	Num() float64
	// Elems views the value as a list. The result must not be modified.
	Elems() []Value
	// Comps views the value as a vector. The result must not be modified.
	Comps() []float64
	// String formats the value as text that Parse accepts.
	String() string

	value()
}

// Kind is the kind of a value or function parameter.
type Kind int8

const (
	KindNumber Kind = iota
	KindList
	KindVector
	// KindDelegate is only a parameter kind. No value has it.
	KindDelegate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	case KindVector:
		return "vector"
	case KindDelegate:
		return "delegate"
	default:
		return "invalid"
	}
}

// Number is a scalar value.
type Number float64

// List is an ordered list of values of any kind.
type List []Value

// Vector is a geometric vector.
type Vector []float64

func (Number) value() {}
func (List) value()   {}
func (Vector) value() {}

func (Number) Kind() Kind { return KindNumber }
func (List) Kind() Kind   { return KindList }
func (Vector) Kind() Kind { return KindVector }

func (n Number) Num() float64 { return float64(n) }
func (l List) Num() float64   { return float64(len(l)) }
func (v Vector) Num() float64 { return float64(len(v)) }

func (n Number) Elems() []Value { return List{n} }
func (l List) Elems() []Value   { return l }

func (v Vector) Elems() []Value {
	r := make(List, len(v))
	for i, c := range v {
		r[i] = Number(c)
	}
	return r
}

func (n Number) Comps() []float64 { return Vector{float64(n)} }

func (l List) Comps() []float64 {
	r := make(Vector, len(l))
	for i, e := range l {
		r[i] = e.Num()
	}
	return r
}

func (v Vector) Comps() []float64 { return v }

func (n Number) String() string {
	f := float64(n)
	if f == 0 {
		// Don't show -0.
		return "0"
	}
	if f < 0 {
		return "-" + formatNum(-f)
	}
	return formatNum(f)
}

func (l List) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(e.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (v Vector) String() string {
	var b strings.Builder
	b.WriteByte('<')
	for i, c := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Number(c).String())
	}
	b.WriteByte('>')
	return b.String()
}

// Equal reports whether two values have the same kind and contents. Numbers
// compare as floats, so NaN equals nothing.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Number:
		b, ok := b.(Number)
		return ok && a == b
	case List:
		b, ok := b.(List)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case Vector:
		b, ok := b.(Vector)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// As views v as the given kind. Delegate is not a value kind, so asking for
// it returns v unchanged.
func As(v Value, k Kind) Value {
	switch k {
	case KindNumber:
		return Number(v.Num())
	case KindList:
		return List(v.Elems())
	case KindVector:
		return Vector(v.Comps())
	default:
		return v
	}
}
