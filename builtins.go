package mathcmd

import (
	"math"
	"strconv"
	"strings"
)

func pnum(name string) Param  { return Param{Name: name, Kind: KindNumber} }
func plist(name string) Param { return Param{Name: name, Kind: KindList} }
func pvec(name string) Param  { return Param{Name: name, Kind: KindVector} }

func pdel(name string, arity int) Param {
	return Param{Name: name, Kind: KindDelegate, Arity: arity}
}

// builtins is the table of built-in functions in the order they are listed.
var builtins = []*Func{
	{Names: []string{"sin"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Sin)},
	{Names: []string{"cos"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Cos)},
	{Names: []string{"tan"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Tan)},
	{Names: []string{"csc"}, Params: []Param{pnum("value")}, Impl: Monadic(func(x float64) float64 { return 1 / math.Sin(x) })},
	{Names: []string{"sec"}, Params: []Param{pnum("value")}, Impl: Monadic(func(x float64) float64 { return 1 / math.Cos(x) })},
	{Names: []string{"cot"}, Params: []Param{pnum("value")}, Impl: Monadic(func(x float64) float64 { return 1 / math.Tan(x) })},
	{Names: []string{"asin"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Asin)},
	{Names: []string{"acos"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Acos)},
	{Names: []string{"atan"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Atan)},
	{Names: []string{"abs"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Abs)},
	{
		Names:  []string{"sign"},
		Params: []Param{pnum("value")},
		Impl:   Monadic(sign),
		Desc:   "Returns 1 if the argument is positive and -1 if it is negative",
	},
	{Names: []string{"round"}, Params: []Param{pnum("value")}, Impl: Monadic(math.RoundToEven)},
	{Names: []string{"floor"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Floor)},
	{Names: []string{"ceil"}, Params: []Param{pnum("value")}, Impl: Monadic(math.Ceil)},
	{Names: []string{"exp"}, Params: []Param{pnum("value")}, Impl: Monadic(preciseExp)},
	{Names: []string{"ln"}, Params: []Param{pnum("value")}, Impl: Monadic(preciseLn)},
	{Names: []string{"log"}, Params: []Param{pnum("argument"), pnum("base")}, Impl: Dyadic(preciseLog)},
	{Names: []string{"pow"}, Params: []Param{pnum("base"), pnum("power")}, Impl: Dyadic(precisePow)},
	{
		Names:  []string{"root", "rt"},
		Params: []Param{pnum("argument"), pnum("root")},
		Impl:   Dyadic(func(x, n float64) float64 { return precisePow(x, 1/n) }),
	},
	{Names: []string{"sqrt"}, Params: []Param{pnum("value")}, Impl: Monadic(preciseSqrt)},
	{Names: []string{"fact"}, Params: []Param{pnum("value")}, Impl: Monadic(fact)},
	{Names: []string{"max"}, Params: []Param{plist("list")}, Impl: reduce("max", math.Max)},
	{Names: []string{"min"}, Params: []Param{plist("list")}, Impl: reduce("min", math.Min)},
	{Names: []string{"avg", "amean"}, Params: []Param{plist("list")}, Impl: average},
	{
		Names:  []string{"sum"},
		Params: []Param{pdel("expression", 1), pnum("start"), pnum("max")},
		Impl:   summation,
		Desc:   "Performs a summation",
	},
	{
		Names:  []string{"int"},
		Params: []Param{pdel("expression", 1), pnum("lower_bound"), pnum("upper_bound")},
		Impl:   integrate,
		Desc:   "Returns the integral of the expression between lower_bound and upper_bound",
	},
	{
		Names:  []string{"diff"},
		Params: []Param{pdel("expression", 1), pnum("variable_value")},
		Impl:   derivative,
		Desc:   "Takes the derivative of the expression at the given value",
	},
	{
		Names:  []string{"solve"},
		Params: []Param{pdel("expression", 1)},
		Impl: func(h Host, args []Arg) (Value, error) {
			return solve(h, args[0].Delegate, 0)
		},
		Desc: "Solves for where the expression is equal to 0 using an initial guess of 0",
	},
	{
		Names:  []string{"solves"},
		Params: []Param{pdel("expression", 1), pnum("start_value")},
		Impl: func(h Host, args []Arg) (Value, error) {
			return solve(h, args[0].Delegate, args[1].Num())
		},
		Desc: "Solves for where the expression is equal to 0 from an initial guess",
	},
	{
		Names:  []string{"add"},
		Params: []Param{plist("list"), pnum("element")},
		Impl: func(h Host, args []Arg) (Value, error) {
			l := args[0].Value.Elems()
			r := make(List, len(l), len(l)+1)
			copy(r, l)
			return append(r, args[1].Value), nil
		},
		Desc: "Adds a value to the end of a list and returns the new list",
	},
	{
		Names:  []string{"len", "length"},
		Params: []Param{plist("list")},
		Impl: func(h Host, args []Arg) (Value, error) {
			return Number(len(args[0].Value.Elems())), nil
		},
		Desc: "Returns the length of the list",
	},
	{
		Names:  []string{"remove"},
		Params: []Param{plist("list"), pnum("index")},
		Impl: func(h Host, args []Arg) (Value, error) {
			l := args[0].Value.Elems()
			i, err := index("remove", 2, args[1].Num(), len(l))
			if err != nil {
				return nil, err
			}
			r := make(List, 0, len(l)-1)
			r = append(r, l[:i]...)
			return append(r, l[i+1:]...), nil
		},
		Desc: "Removes the value at the index from the list and returns the new list",
	},
	{
		Names:  []string{"get"},
		Params: []Param{plist("list"), pnum("index")},
		Impl: func(h Host, args []Arg) (Value, error) {
			l := args[0].Value.Elems()
			i, err := index("get", 2, args[1].Num(), len(l))
			if err != nil {
				return nil, err
			}
			return l[i], nil
		},
		Desc: "Returns the value at the index in the list",
	},
	{
		Names:  []string{"insert"},
		Params: []Param{plist("list"), pnum("element"), pnum("index")},
		Impl: func(h Host, args []Arg) (Value, error) {
			l := args[0].Value.Elems()
			i, err := index("insert", 3, args[2].Num(), len(l))
			if err != nil {
				return nil, err
			}
			r := make(List, 0, len(l)+1)
			r = append(r, l[:i]...)
			r = append(r, args[1].Value)
			return append(r, l[i:]...), nil
		},
		Desc: "Inserts the value at the index in the list and returns the new list",
	},
	{
		Names:  []string{"concat", "union"},
		Params: []Param{plist("list1"), plist("list2")},
		Impl: func(h Host, args []Arg) (Value, error) {
			a, b := args[0].Value.Elems(), args[1].Value.Elems()
			r := make(List, 0, len(a)+len(b))
			r = append(r, a...)
			return append(r, b...), nil
		},
		Desc: "Returns a list of all values in list1 followed by all values in list2",
	},
	{
		Names:  []string{"intersect"},
		Params: []Param{plist("list1"), plist("list2")},
		Impl:   filter(true),
		Desc:   "Returns a list of the values in list1 that are also in list2",
	},
	{
		Names:  []string{"less"},
		Params: []Param{plist("list1"), plist("list2")},
		Impl:   filter(false),
		Desc:   "Returns a list of the values in list1 that are not in list2",
	},
	{
		Names:  []string{"indexof"},
		Params: []Param{plist("list"), pnum("element")},
		Impl: func(h Host, args []Arg) (Value, error) {
			return Number(indexOf(args[0].Value.Elems(), args[1].Value)), nil
		},
		Desc: "Returns the first index of the value in the list, or -1 if it does not appear",
	},
	{
		Names:  []string{"foreach"},
		Params: []Param{plist("list"), pdel("delegate", 1)},
		Impl:   foreach,
		Desc:   "Evaluates the delegate with each value of the list and returns the list of results",
	},
	{
		Names:  []string{"join"},
		Params: []Param{plist("list")},
		Impl: func(h Host, args []Arg) (Value, error) {
			var r List
			for _, e := range args[0].Value.Elems() {
				r = append(r, e.Elems()...)
			}
			if r == nil {
				r = List{}
			}
			return r, nil
		},
		Desc: "Combines a list of lists into one list",
	},
	{
		Names:  []string{"toascii"},
		Params: []Param{pnum("value")},
		Impl:   Monadic(toASCII),
		Desc:   "Returns the character code of the first hexadecimal digit of an integer, e.g. 15 gives 70 for F",
	},
	{
		Names:  []string{"dotproduct", "dot"},
		Params: []Param{pvec("vector1"), pvec("vector2")},
		Impl:   dot,
	},
	{
		Names:  []string{"crossproduct", "cross"},
		Params: []Param{pvec("vector1"), pvec("vector2")},
		Impl:   cross,
	},
	{
		Names:  []string{"magnitude", "mag"},
		Params: []Param{pvec("vector")},
		Impl: func(h Host, args []Arg) (Value, error) {
			var s float64
			for _, c := range args[0].Value.Comps() {
				s += c * c
			}
			return Number(preciseSqrt(s)), nil
		},
	},
}

// builtin maps every name and alias of each built-in function to it.
var builtin = func() map[string]*Func {
	m := make(map[string]*Func, len(builtins)+8)
	for _, f := range builtins {
		for _, name := range f.Names {
			m[name] = f
		}
	}
	return m
}()

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		// Zero or NaN.
		return x
	}
}

// fact computes the factorial of the integer part of x. Non-positive x gives
// 1, and results too large for float64 are infinite.
func fact(x float64) float64 {
	if x > 170 {
		return math.Inf(1)
	}
	r := 1.0
	for i := 2.0; i <= math.Trunc(x); i++ {
		r *= i
	}
	return r
}

func toASCII(x float64) float64 {
	s := strings.ToUpper(strconv.FormatInt(int64(x), 16))
	if s[0] == '-' {
		// Negative numbers format as two's complement in the other
		// representation, where the first digit is always F.
		return 'F'
	}
	return float64(s[0])
}

// reduce creates a function reducing a list of numbers with f.
func reduce(name string, f func(x, y float64) float64) func(Host, []Arg) (Value, error) {
	return func(h Host, args []Arg) (Value, error) {
		l := args[0].Value.Elems()
		if len(l) == 0 {
			return nil, &ArgumentError{Func: name, Arg: 1, Msg: "list is empty"}
		}
		r := l[0].Num()
		for _, e := range l[1:] {
			r = f(r, e.Num())
		}
		return Number(r), nil
	}
}

func average(h Host, args []Arg) (Value, error) {
	l := args[0].Value.Elems()
	if len(l) == 0 {
		return nil, &ArgumentError{Func: "avg", Arg: 1, Msg: "list is empty"}
	}
	var s float64
	for _, e := range l {
		s += e.Num()
	}
	return Number(s / float64(len(l))), nil
}

// index converts an index argument to an int in [0, n).
func index(fn string, arg int, x float64, n int) (int, error) {
	if !(x > -1 && x < float64(n)) {
		return 0, &ArgumentError{Func: fn, Arg: arg, Msg: "index " + Number(x).String() + " is out of range for a list of length " + strconv.Itoa(n)}
	}
	return int(x), nil
}

func indexOf(l []Value, v Value) int {
	for i, e := range l {
		if Equal(e, v) {
			return i
		}
	}
	return -1
}

// filter creates a function selecting the elements of its first list that
// are in the second (keep true) or not (keep false).
func filter(keep bool) func(Host, []Arg) (Value, error) {
	return func(h Host, args []Arg) (Value, error) {
		a, b := args[0].Value.Elems(), args[1].Value.Elems()
		r := List{}
		for _, e := range a {
			if (indexOf(b, e) >= 0) == keep {
				r = append(r, e)
			}
		}
		return r, nil
	}
}

func foreach(h Host, args []Arg) (Value, error) {
	l := args[0].Value.Elems()
	d := args[1].Delegate
	r := make(List, len(l))
	for i, e := range l {
		v, err := h.EvalString(d.Body, bind(d, e))
		if err != nil {
			return nil, err
		}
		r[i] = v
	}
	return r, nil
}

func dot(h Host, args []Arg) (Value, error) {
	a, b := args[0].Value.Comps(), args[1].Value.Comps()
	if len(a) != len(b) {
		return nil, &ArgumentError{Func: "dot", Msg: "vector lengths must be equal to compute a dot product"}
	}
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return Number(s), nil
}

func cross(h Host, args []Arg) (Value, error) {
	a, b := args[0].Value.Comps(), args[1].Value.Comps()
	if len(a) != 3 || len(b) != 3 {
		return nil, &ArgumentError{Func: "cross", Msg: "vector lengths must be 3 to compute a cross product"}
	}
	r := Vector{
		a[1]*b[2] - b[1]*a[2],
		b[0]*a[2] - a[0]*b[2],
		a[0]*b[1] - b[0]*a[1],
	}
	for i, c := range r {
		if c == 0 {
			// No -0.
			r[i] = 0
		}
	}
	return r, nil
}
