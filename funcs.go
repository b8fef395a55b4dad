package mathcmd

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a built-in or user-defined function.
type Func struct {
	// Names are the names by which the function can be called. The first is
	// its primary name.
	Names []string
	// Params describes the function's parameters.
	Params []Param
	// Desc is a human-readable description, possibly empty.
	Desc string
	// Body is the expression text of a user-defined function. It is empty
	// for built-in functions.
	Body string
	// Impl evaluates the function. Arguments are checked against Params
	// before Impl is called, so args has one element per parameter, with
	// Delegate set for delegate parameters and Value set for all others.
	Impl func(h Host, args []Arg) (Value, error)
}

// Param is a function parameter.
type Param struct {
	Name string
	Kind Kind
	// Arity is the number of parameters a delegate argument must have. It is
	// meaningful only when Kind is KindDelegate.
	Arity int
}

// Arg is an argument to a function call after evaluation. Delegate arguments
// are passed unevaluated.
type Arg struct {
	Value    Value
	Delegate *Delegate
}

// Num is a shortcut for a.Value.Num().
func (a Arg) Num() float64 {
	return a.Value.Num()
}

// Host is the part of the evaluator that functions use to evaluate delegate
// bodies. Each binding map adds variables on top of the caller's
// environment for the duration of one evaluation only.
type Host interface {
	// EvalString parses and evaluates src.
	EvalString(src string, binds map[string]Value) (Value, error)
	// ParseString parses src. Empty input is an error.
	ParseString(src string) (Node, error)
	// EvalNode evaluates a parsed expression.
	EvalNode(n Node, binds map[string]Value) (Value, error)
}

// Signature formats the function's names and parameters, e.g.
// "len/length(list list)". If user is true, non-delegate parameters are
// labeled "var", since user functions accept values of any kind.
func (f *Func) Signature(user bool) string {
	var b strings.Builder
	b.WriteString(strings.Join(f.Names, "/"))
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		switch {
		case p.Kind == KindDelegate:
			b.WriteString("lambda[" + strconv.Itoa(p.Arity) + "]")
		case user:
			b.WriteString("var")
		default:
			b.WriteString(p.Kind.String())
		}
		b.WriteByte(' ')
		b.WriteString(p.Name)
	}
	b.WriteByte(')')
	return b.String()
}

// ParamSpec formats the function's parameters in the form DefineFunction
// accepts, e.g. "x,f(1)".
func (f *Func) ParamSpec() string {
	v := make([]string, len(f.Params))
	for i, p := range f.Params {
		v[i] = p.Name
		if p.Kind == KindDelegate {
			v[i] += "(" + strconv.Itoa(p.Arity) + ")"
		}
	}
	return strings.Join(v, ",")
}

func (f *Func) name() string {
	if len(f.Names) == 0 {
		return "<anonymous>"
	}
	return f.Names[0]
}

// bind creates the variable bindings for invoking a delegate.
func bind(d *Delegate, vals ...Value) map[string]Value {
	m := make(map[string]Value, len(d.Params))
	for i, p := range d.Params {
		m[p] = vals[i]
	}
	return m
}

// Monadic wraps a function of one number into a function implementation.
func Monadic(f func(float64) float64) func(Host, []Arg) (Value, error) {
	return func(h Host, args []Arg) (Value, error) {
		return Number(f(args[0].Num())), nil
	}
}

// Dyadic wraps a function of two numbers into a function implementation.
func Dyadic(f func(x, y float64) float64) func(Host, []Arg) (Value, error) {
	return func(h Host, args []Arg) (Value, error) {
		return Number(f(args[0].Num(), args[1].Num())), nil
	}
}

// bigPrec is the precision of intermediate results of transcendental
// functions, enough that rounding to float64 is almost always correct.
const bigPrec = 64

// precise evaluates f with extended precision on arguments in the open
// interval (lo, hi) and rounds the result to float64. Outside that interval,
// or if f panics with big.ErrNaN, the result is native(x).
func precise(f func(out, in *big.Float) *big.Float, native func(float64) float64, lo, hi float64) func(float64) float64 {
	return func(x float64) (r float64) {
		if !(lo < x && x < hi) {
			return native(x)
		}
		defer func() {
			e := recover()
			if e == nil {
				return
			}
			if _, ok := e.(big.ErrNaN); !ok {
				panic(e)
			}
			r = native(x)
		}()
		out := new(big.Float).SetPrec(bigPrec)
		f(out, new(big.Float).SetPrec(bigPrec).SetFloat64(x))
		r, _ = out.Float64()
		return r
	}
}

var (
	preciseExp  = precise(bigfloat.Exp, math.Exp, -700, 700)
	preciseLn   = precise(bigfloat.Log, math.Log, 0, math.MaxFloat64)
	preciseSqrt = precise((*big.Float).Sqrt, math.Sqrt, 0, math.MaxFloat64)
)

// precisePow computes x^y through exp(y ln x) at extended precision when x is
// positive and the result is in range, otherwise with math.Pow.
func precisePow(x, y float64) (r float64) {
	if !(x > 0 && x < math.MaxFloat64) || math.IsNaN(y) || math.IsInf(y, 0) {
		return math.Pow(x, y)
	}
	if l := y * math.Log(x); !(-700 < l && l < 700) {
		return math.Pow(x, y)
	}
	defer func() {
		e := recover()
		if e == nil {
			return
		}
		if _, ok := e.(big.ErrNaN); !ok {
			panic(e)
		}
		r = math.Pow(x, y)
	}()
	out := new(big.Float).SetPrec(bigPrec)
	bx := new(big.Float).SetPrec(bigPrec).SetFloat64(x)
	by := new(big.Float).SetPrec(bigPrec).SetFloat64(y)
	bigfloat.Pow(out, bx, by)
	r, _ = out.Float64()
	return r
}

// preciseLog computes the logarithm of x in the given base.
func preciseLog(x, base float64) float64 {
	return preciseLn(x) / preciseLn(base)
}

// ArgumentError is an error returned when a function is called with
// arguments it can't accept. It matches ErrInvalidArguments.
type ArgumentError struct {
	// Func is a name identifying the function, possibly empty.
	Func string
	// Arg is the 1-based index of the argument, or 0 if the error is not
	// about a particular argument.
	Arg int
	// Msg describes the problem.
	Msg string
}

func (err *ArgumentError) Error() string {
	r := err.Msg
	if err.Arg > 0 {
		r = "argument " + strconv.Itoa(err.Arg) + ": " + r
	}
	if err.Func != "" {
		r = err.Func + ": " + r
	}
	return r
}

func (err *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArguments
}
