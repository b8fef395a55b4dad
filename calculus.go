package mathcmd

import (
	"math"
)

const (
	// integrationSteps is the number of subintervals in numeric integration.
	integrationSteps = 100000
	// newtonLimit is the maximum number of Newton iterations in solve.
	newtonLimit = 1000
	// solveTolerance is how close to zero a solution must bring its
	// expression.
	solveTolerance = 0.001
)

// diffSteps are the step sizes whose difference quotients are averaged for a
// derivative.
var diffSteps = [...]float64{1e-5, 1e-6, 1e-7, 1e-9}

// round5 rounds x to five decimal places, half to even. Calculus results are
// rounded this way to hide the error of the approximations.
func round5(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= 1e15 {
		return x
	}
	r := math.RoundToEven(x*1e5) / 1e5
	if r == 0 {
		// No -0.
		return 0
	}
	return r
}

// unary is a delegate parsed once for repeated evaluation at numbers.
type unary struct {
	h Host
	d *Delegate
	n Node
}

func parseDelegate(h Host, d *Delegate) (unary, error) {
	n, err := h.ParseString(d.Body)
	if err != nil {
		return unary{}, err
	}
	return unary{h: h, d: d, n: n}, nil
}

func (f unary) value(x float64) (Value, error) {
	return f.h.EvalNode(f.n, bind(f.d, Number(x)))
}

func (f unary) at(x float64) (float64, error) {
	v, err := f.value(x)
	if err != nil {
		return 0, err
	}
	return v.Num(), nil
}

func summation(h Host, args []Arg) (Value, error) {
	f, err := parseDelegate(h, args[0].Delegate)
	if err != nil {
		return nil, err
	}
	start, stop := int(args[1].Num()), int(args[2].Num())
	var s float64
	for i := start; i <= stop; i++ {
		v, err := f.at(float64(i))
		if err != nil {
			return nil, err
		}
		s += v
	}
	return Number(s), nil
}

// integrate applies the trapezoid rule.
func integrate(h Host, args []Arg) (Value, error) {
	f, err := parseDelegate(h, args[0].Delegate)
	if err != nil {
		return nil, err
	}
	lo, hi := args[1].Num(), args[2].Num()
	dx := (hi - lo) / integrationSteps
	a, err := f.at(lo)
	if err != nil {
		return nil, err
	}
	b, err := f.at(hi)
	if err != nil {
		return nil, err
	}
	s := a + b
	for i := 1; i < integrationSteps; i++ {
		v, err := f.at(lo + float64(i)*dx)
		if err != nil {
			return nil, err
		}
		s += 2 * v
	}
	return Number(round5(s * dx / 2)), nil
}

func derivative(h Host, args []Arg) (Value, error) {
	f, err := parseDelegate(h, args[0].Delegate)
	if err != nil {
		return nil, err
	}
	x := args[1].Num()
	base, err := f.value(x)
	if err != nil {
		return nil, err
	}
	_, lit := f.n.(*VectorLit)
	if lit || base.Kind() == KindVector {
		return vectorDerivative(f, x, base.Comps())
	}
	d, err := differentiate(f, x)
	if err != nil {
		return nil, err
	}
	return Number(round5(d)), nil
}

// differentiate averages forward difference quotients of f at x. The result
// is not rounded.
func differentiate(f unary, x float64) (float64, error) {
	y, err := f.at(x)
	if err != nil {
		return 0, err
	}
	var s float64
	for _, dx := range diffSteps {
		v, err := f.at(x + dx)
		if err != nil {
			return 0, err
		}
		s += (v - y) / dx
	}
	return s / float64(len(diffSteps)), nil
}

// vectorDerivative differentiates each component of a vector-valued f.
func vectorDerivative(f unary, x float64, base []float64) (Value, error) {
	s := make(Vector, len(base))
	for _, dx := range diffSteps {
		v, err := f.value(x + dx)
		if err != nil {
			return nil, err
		}
		c := v.Comps()
		if len(c) != len(base) {
			return nil, &ArgumentError{Func: "diff", Arg: 1, Msg: "vector lengths must be equal"}
		}
		for i := range s {
			s[i] += (c[i] - base[i]) / dx
		}
	}
	for i := range s {
		s[i] = round5(s[i] / float64(len(diffSteps)))
	}
	return s, nil
}

// solve finds a zero of the delegate by Newton's method. If it does not
// converge, the result is NaN.
func solve(h Host, d *Delegate, guess float64) (Value, error) {
	f, err := parseDelegate(h, d)
	if err != nil {
		return nil, err
	}
	x := guess
	y, err := f.at(x)
	if err != nil {
		return nil, err
	}
	for i := 0; math.Abs(y) > solveTolerance; i++ {
		if i >= newtonLimit {
			return Number(math.NaN()), nil
		}
		der, err := differentiate(f, x)
		if err != nil {
			return nil, err
		}
		der = round5(der)
		if der == 0 {
			x++
		} else {
			x -= y / der
		}
		if y, err = f.at(x); err != nil {
			return nil, err
		}
	}
	return Number(round5(x)), nil
}
