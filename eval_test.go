package mathcmd_test

import (
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/mathcmd"
)

type (
	num  = mathcmd.Number
	list = mathcmd.List
	vec  = mathcmd.Vector
)

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want mathcmd.Value
	}{
		{"num", "1", num(1)},
		{"prec", "1+2*3", num(7)},
		{"left-assoc", "1-2-3", num(-4)},
		{"div", "8/4/2", num(1)},
		{"mod", "10%4", num(2)},
		{"mod-neg", "-7%3", num(-1)},
		{"neg", "-(2*3)", num(-6)},
		{"div-zero", "1/0", num(math.Inf(1))},
		{"div-zero-neg", "-1/0", num(math.Inf(-1))},
		{"exponent", "2E3+5e-1", num(2000.5)},
		{"pi", "PI", num(math.Pi)},
		{"e", "E", num(math.E)},
		{"inf", "INF", num(math.Inf(1))},
		{"list", "{1, {2}, <3>}", list{num(1), list{num(2)}, vec{3}}},
		{"list-empty", "{}", list{}},
		{"string", `"Hi"`, list{num('H'), num('i')}},
		{"vector", "<1, 2+3>", vec{1, 5}},
		// Collections in arithmetic are their lengths.
		{"list-plus-num", "{1,2,3}+1", num(4)},
		{"list-times-list", "{1,2}*{3,4,5}", num(6)},
		{"vector-plus-num", "<1,2>+1", num(3)},
		{"vector-add", "<1,2>+<3,4>", vec{4, 6}},
		{"vector-sub", "<1,2>-<3,5>", vec{-2, -3}},
		{"vector-scale", "<1,2>*2", vec{2, 4}},
		{"scale-vector", "3*<1,2>", vec{3, 6}},
		{"vector-div", "<2,4>/2", vec{1, 2}},
		{"div-vector", "2/<2,4>", vec{1, 2}},
		{"vector-times-vector", "<1,2>*<3,4>", num(4)},
		{"vector-mod", "<1,2,3>%2", num(1)},
		{"list-plus-vector", "{1}+<1,2>", num(3)},
	}
	ctx := mathcmd.NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := ctx.EvalString(c.src)
			if err != nil {
				t.Fatalf("couldn't evaluate %q: %v", c.src, err)
			}
			if !mathcmd.Equal(r, c.want) {
				t.Errorf("wrong result from %q: want %v, got %v", c.src, c.want, r)
			}
		})
	}
}

func TestEvalNaN(t *testing.T) {
	for _, src := range []string{"0/0", "INF-INF", "1%0", "pow(-8, 1/3)"} {
		r, err := mathcmd.EvalString(src)
		if err != nil {
			t.Errorf("couldn't evaluate %q: %v", src, err)
			continue
		}
		if r.Kind() != mathcmd.KindNumber || !math.IsNaN(r.Num()) {
			t.Errorf("%q should be NaN, got %v", src, r)
		}
	}
}

func TestBuiltins(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want mathcmd.Value
	}{
		{"abs", "abs(-2)", num(2)},
		{"sign-neg", "sign(-3)", num(-1)},
		{"sign-pos", "sign(0.5)", num(1)},
		{"sign-zero", "sign(0)", num(0)},
		{"round-even", "round(2.5)", num(2)},
		{"round-odd", "round(3.5)", num(4)},
		{"floor", "floor(-1.5)", num(-2)},
		{"ceil", "ceil(1.2)", num(2)},
		{"sqrt", "sqrt(16)", num(4)},
		{"fact", "fact(5)", num(120)},
		{"fact-zero", "fact(0)", num(1)},
		{"fact-neg", "fact(-3)", num(1)},
		{"fact-big", "fact(200)", num(math.Inf(1))},
		{"max", "max({3, 1, 2})", num(3)},
		{"min", "min({3, 1, 2})", num(1)},
		{"avg", "avg({1, 2, 3, 6})", num(3)},
		{"amean", "amean(<2, 4>)", num(3)},
		{"max-num", "max(7)", num(7)},
		{"len", "len({1, 2, 3})", num(3)},
		{"length", "length(<1, 2>)", num(2)},
		{"len-num", "len(5)", num(1)},
		{"add", "add({1}, 2)", list{num(1), num(2)}},
		{"add-list", "add({1}, {2})", list{num(1), list{num(2)}}},
		{"get", "get({5, 6, 7}, 1)", num(6)},
		{"get-truncates", "get({5, 6, 7}, 1.9)", num(6)},
		{"remove", "remove({1, 2, 3}, 0)", list{num(2), num(3)}},
		{"insert", "insert({1, 3}, 2, 1)", list{num(1), num(2), num(3)}},
		{"union", "union(1, 2)", list{num(1), num(2)}},
		{"concat", "concat({1, 2}, {2})", list{num(1), num(2), num(2)}},
		{"intersect", "intersect({1, 2, 3}, {2, 3, 4})", list{num(2), num(3)}},
		{"less", "less({1, 2, 3}, {2, 3, 4})", list{num(1)}},
		{"less-nested", "less({{1}, 2}, {{1}})", list{num(2)}},
		{"indexof", "indexof({5, 6, 7}, 6)", num(1)},
		{"indexof-missing", "indexof({5, 6, 7}, 8)", num(-1)},
		{"indexof-list", "indexof({1, {2}}, {2})", num(1)},
		{"foreach", "foreach({1, 2, 3}, [e: e*2])", list{num(2), num(4), num(6)}},
		{"foreach-kinds", "foreach({1, <1, 2>}, [e: e])", list{num(1), vec{1, 2}}},
		{"join", "join({{1, 2}, {3}, 4})", list{num(1), num(2), num(3), num(4)}},
		{"toascii-hex", "toascii(15)", num('F')},
		{"toascii-digit", "toascii(1)", num('1')},
		{"toascii-multi", "toascii(171)", num('A')},
		{"dot", "dot({1, 2}, {3, 4})", num(11)},
		{"dotproduct", "dotproduct(<1, 2, 3>, <1, 1, 1>)", num(6)},
		{"cross", "cross(<1, 0, 0>, <0, 1, 0>)", vec{0, 0, 1}},
		{"crossproduct", "crossproduct(<0, 1, 0>, <1, 0, 0>)", vec{0, 0, -1}},
		{"mag", "mag(<3, 4>)", num(5)},
		{"sum", "sum([n: n], 1, 10)", num(55)},
		{"sum-truncates", "sum([n: n], 1.5, 3.9)", num(6)},
		{"sum-empty", "sum([n: n], 3, 1)", num(0)},
		{"int", "int([x: x], 0, 1)", num(0.5)},
		{"solve", "solve([x: x - 3])", num(3)},
		{"diff-vector", "diff([t: <t, 2*t>], 1)", vec{1, 2}},
	}
	ctx := mathcmd.NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := ctx.EvalString(c.src)
			if err != nil {
				t.Fatalf("couldn't evaluate %q: %v", c.src, err)
			}
			if !mathcmd.Equal(r, c.want) {
				t.Errorf("wrong result from %q: want %v, got %v", c.src, c.want, r)
			}
		})
	}
}

func TestBuiltinsApprox(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want float64
		tol  float64
	}{
		{"sin", "sin(PI/2)", 1, 1e-15},
		{"csc", "csc(PI/2)", 1, 1e-15},
		{"asin", "asin(1)", math.Pi / 2, 1e-15},
		{"acos", "acos(0)", math.Pi / 2, 1e-15},
		{"atan", "atan(1)", math.Pi / 4, 1e-15},
		{"exp", "exp(1)", math.E, 1e-15},
		{"exp-big", "exp(710)", math.Inf(1), 0},
		{"ln", "ln(E)", 1, 1e-15},
		{"log", "log(8, 2)", 3, 1e-14},
		{"log10", "log(1000, 10)", 3, 1e-14},
		{"pow", "pow(2, 10)", 1024, 1e-12},
		{"pow-neg-base", "pow(-2, 3)", -8, 0},
		{"root", "root(27, 3)", 3, 1e-14},
		{"rt", "rt(16, 4)", 2, 1e-14},
		{"sqrt2", "sqrt(2)", math.Sqrt2, 1e-15},
		{"int-square", "int([x: pow(x, 2)], 0, 3)", 9, 1e-4},
		{"int-sin", "int([x: sin(x)], 0, PI)", 2, 1e-4},
		{"diff", "diff([x: pow(x, 2)], 11)", 22, 1e-3},
		{"diff-sin", "diff([x: sin(x)], 0)", 1, 1e-3},
		{"solves", "solves([x: pow(x, 2) - 5*x + 4], 0.5)", 1, 1e-3},
		{"solves-other", "solves([x: pow(x, 2) - 5*x + 4], 6)", 4, 1e-3},
		{"solve-sqrt", "solve([x: x*x - 2])", math.Sqrt2, 1e-3},
	}
	ctx := mathcmd.NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := ctx.EvalString(c.src)
			if err != nil {
				t.Fatalf("couldn't evaluate %q: %v", c.src, err)
			}
			if r.Kind() != mathcmd.KindNumber {
				t.Fatalf("%q gave %v, not a number", c.src, r)
			}
			got := r.Num()
			if math.IsInf(c.want, 0) {
				if got != c.want {
					t.Errorf("wrong result from %q: want %g, got %g", c.src, c.want, got)
				}
				return
			}
			if math.Abs(got-c.want) > c.tol {
				t.Errorf("wrong result from %q: want %g±%g, got %g", c.src, c.want, c.tol, got)
			}
		})
	}
}

func TestCalculusRounding(t *testing.T) {
	// Results of calculus functions have at most five decimal places and are
	// never negative zero.
	srcs := []string{
		"int([x: x*x*x], -1, 1)",
		"diff([x: 1], 3)",
		"int([x: sin(x)], 0, 1)",
		"diff([x: x/3], 0)",
	}
	for _, src := range srcs {
		r, err := mathcmd.EvalString(src)
		if err != nil {
			t.Errorf("couldn't evaluate %q: %v", src, err)
			continue
		}
		x := r.Num()
		if math.Signbit(x) && x == 0 {
			t.Errorf("%q gave -0", src)
		}
		if s := x * 1e5; math.Abs(s-math.Round(s)) > 1e-6 {
			t.Errorf("%q gave %v with more than five decimal places", src, x)
		}
	}
}

func TestSolveDiverges(t *testing.T) {
	r, err := mathcmd.EvalString("solve([x: x*x + 1])")
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(r.Num()) {
		t.Errorf("solving a function with no zero should give NaN, got %v", r)
	}
}

func TestMillis(t *testing.T) {
	now := time.UnixMilli(1234567)
	ctx := mathcmd.NewContext(mathcmd.Clock(func() time.Time { return now }))
	r, err := ctx.EvalString("MILLIS + 1")
	if err != nil {
		t.Fatal(err)
	}
	if !mathcmd.Equal(r, num(1234568)) {
		t.Errorf("wrong MILLIS: want 1234568, got %v", r)
	}
	if c := ctx.Constants()["MILLIS"]; !mathcmd.Equal(c, num(1234567)) {
		t.Errorf("wrong MILLIS constant: %v", c)
	}
}

func TestEvalUndefNames(t *testing.T) {
	srcs := []string{"x", "x+1", "sin(x)", "{1, x}", "foreach({1}, [e: x])", "sum([n: n*y], 1, 2)"}
	vre := regexp.MustCompile(`(?i)\bvar`)
	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			_, err := mathcmd.EvalString(src)
			var nerr *mathcmd.NameError
			if !errors.As(err, &nerr) {
				t.Fatalf("expected NameError, got %T (%v)", err, err)
			}
			if !errors.Is(err, mathcmd.ErrInvalidExpression) {
				t.Errorf("%v is not ErrInvalidExpression", err)
			}
			msg := err.Error()
			if !vre.MatchString(msg) {
				t.Errorf("error message %q doesn't mention variables", msg)
			}
			if !regexp.MustCompile(`\b` + nerr.Name + `\b`).MatchString(msg) {
				t.Errorf("error message %q doesn't mention the name", msg)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		is   error
		re   string
	}{
		{"nofunc", "nope(1)", mathcmd.ErrInvalidExpression, `not a pre-defined or user-defined function`},
		{"delegate-alone", "[x: x]", mathcmd.ErrInvalidExpression, `(?i)delegate`},
		{"delegate-operand", "1+[x: x]", mathcmd.ErrInvalidExpression, `(?i)delegate`},
		{"vector-of-list", "<{1, 2}>", mathcmd.ErrInvalidExpression, `(?i)\bnumber\b`},
		{"argcount", "sin(1, 2)", mathcmd.ErrInvalidArguments, `\bsin\b.*\b1 argument\b`},
		{"argcount0", "sin()", mathcmd.ErrInvalidArguments, `\bsin\b`},
		{"delegate-for-number", "sin([x: x])", mathcmd.ErrInvalidArguments, `(?i)delegate`},
		{"number-for-delegate", "sum(1, 1, 2)", mathcmd.ErrInvalidArguments, `(?i)expected a delegate`},
		{"delegate-arity", "sum([x, y: x], 1, 2)", mathcmd.ErrInvalidArguments, `\b1 parameter\b`},
		{"delegate-reserved", "sum([PI: PI], 1, 2)", mathcmd.ErrInvalidArguments, `(?i)\breserved\b`},
		{"vector-length", "<1, 2> + <1>", mathcmd.ErrInvalidArguments, `(?i)\blength`},
		{"get-range", "get({5}, 1)", mathcmd.ErrInvalidArguments, `(?i)\brange\b`},
		{"get-negative", "get({5}, -1)", mathcmd.ErrInvalidArguments, `(?i)\brange\b`},
		{"insert-range", "insert({5}, 1, 1)", mathcmd.ErrInvalidArguments, `(?i)\brange\b`},
		{"remove-empty", "remove({}, 0)", mathcmd.ErrInvalidArguments, `(?i)\brange\b`},
		{"max-empty", "max({})", mathcmd.ErrInvalidArguments, `(?i)\bempty\b`},
		{"avg-empty", "avg({})", mathcmd.ErrInvalidArguments, `(?i)\bempty\b`},
		{"dot-length", "dot(<1>, <1, 2>)", mathcmd.ErrInvalidArguments, `(?i)\blength`},
		{"cross-length", "cross(<1, 2>, <1, 2>)", mathcmd.ErrInvalidArguments, `\b3\b`},
		{"diff-vector-length", "diff([x: foreach({1, x}, [e: e])], 1)", nil, ``},
		{"parse", "1+", mathcmd.ErrParse, `(?i)\bexpression\b`},
		{"empty", "", mathcmd.ErrParse, `(?i)\bexpression\b`},
		{"body-parse", "sum([x: x+], 1, 2)", mathcmd.ErrParse, ``},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := mathcmd.EvalString(c.src)
			if c.is == nil {
				// Only checking that evaluation doesn't panic.
				return
			}
			if err == nil {
				t.Fatalf("%q gave %v with no error", c.src, r)
			}
			if !errors.Is(err, c.is) {
				t.Errorf("%q: error %q (%T) is not %v", c.src, err, err, c.is)
			}
			if !regexp.MustCompile(c.re).MatchString(err.Error()) {
				t.Errorf("%q: error message %q does not match %s", c.src, err, c.re)
			}
		})
	}
}

func TestUserFunctions(t *testing.T) {
	ctx := mathcmd.NewContext()
	defs := []struct {
		name, params, body string
	}{
		{"sq", "x", "x*x"},
		{"twice", "f(1), x", "f(f(x))"},
		{"plusa", "x", "x + a"},
		{"scaled", "x", "sum([n: n*x], 1, 3)"},
		{"pair", "x, y", "{x, y}"},
		{"apply", "g(2)", "g(3, 4)"},
		{"seven", "", "7"},
	}
	for _, d := range defs {
		if err := ctx.DefineFunction(d.name, d.params, d.body); err != nil {
			t.Fatalf("couldn't define %s(%s) = %s: %v", d.name, d.params, d.body, err)
		}
	}
	if err := ctx.DefineVariable("a", num(10)); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		src  string
		want mathcmd.Value
	}{
		{"sq(3)", num(9)},
		{"sq(sq(2))", num(16)},
		{"sq({1, 2})", num(4)},
		{"sq(<1, 2>)", num(4)},
		{"twice([y: y + 1], 5)", num(7)},
		{"twice([y: sq(y)], 3)", num(81)},
		{"plusa(1)", num(11)},
		{"scaled(2)", num(12)},
		{"pair(1, <2>)", list{num(1), vec{2}}},
		{"apply([p, q: p*q])", num(12)},
		{"seven()", num(7)},
		{"sum([x: sq(x)], 1, 3)", num(14)},
		// Parameters hide variables of the same name.
		{"sum([a: a], 1, 2)", num(3)},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			r, err := ctx.EvalString(c.src)
			if err != nil {
				t.Fatalf("couldn't evaluate %q: %v", c.src, err)
			}
			if !mathcmd.Equal(r, c.want) {
				t.Errorf("wrong result from %q: want %v, got %v", c.src, c.want, r)
			}
		})
	}
	// Bindings made for calls must not leak into the context.
	for _, name := range []string{"x", "y", "n", "p", "q", "e"} {
		if v := ctx.Lookup(name); v != nil {
			t.Errorf("%s leaked into the context as %v", name, v)
		}
	}
	if v := ctx.Lookup("a"); !mathcmd.Equal(v, num(10)) {
		t.Errorf("a changed to %v", v)
	}
}

func TestUserFunctionErrors(t *testing.T) {
	ctx := mathcmd.NewContext()
	if err := ctx.DefineFunction("twice", "f(1),x", "f(f(x))"); err != nil {
		t.Fatal(err)
	}
	srcs := []string{
		"twice(1, 2)",
		"twice([a, b: a], 2)",
		"twice([y: y], [y: y])",
		"twice([y: y])",
	}
	for _, src := range srcs {
		_, err := ctx.EvalString(src)
		if !errors.Is(err, mathcmd.ErrInvalidArguments) {
			t.Errorf("%q: want invalid arguments, got %v", src, err)
		}
	}
}

func TestDefinitions(t *testing.T) {
	ctx := mathcmd.NewContext()
	bad := []struct {
		name string
		err  error
	}{
		{"PI", ctx.DefineVariable("PI", num(1))},
		{"x1", ctx.DefineVariable("x1", num(1))},
		{"empty", ctx.DefineVariable("", num(1))},
		{"builtin", ctx.DefineFunction("sin", "x", "x")},
		{"underscore-func", ctx.DefineFunction("f_g", "x", "x")},
		{"reserved-func", ctx.DefineFunction("MILLIS", "", "1")},
		{"reserved-param", ctx.DefineFunction("f", "E", "E")},
		{"bad-param", ctx.DefineFunction("f", "x y", "1")},
		{"duplicate-param", ctx.DefineFunction("f", "x,x", "x")},
		{"bad-arity", ctx.DefineFunction("f", "g(a)", "1")},
		{"unclosed-arity", ctx.DefineFunction("f", "g(1", "1")},
		{"builtin-delegate", ctx.DefineFunction("f", "sin(1)", "sin(1)")},
		{"empty-body", ctx.DefineFunction("f", "x", " ")},
	}
	for _, c := range bad {
		if !errors.Is(c.err, mathcmd.ErrInvalidArguments) {
			t.Errorf("%s: want invalid arguments, got %v", c.name, c.err)
		}
	}
	if err := ctx.DefineFunction("f", "x", "x+"); !errors.Is(err, mathcmd.ErrParse) {
		t.Errorf("unparseable body: want parse error, got %v", err)
	}
	if len(ctx.UserFunctions()) != 0 || len(ctx.Variables()) != 0 {
		t.Errorf("failed definitions changed the context: %v %v", ctx.UserFunctions(), ctx.Variables())
	}

	if err := ctx.DefineVariable("a_b", num(1)); err != nil {
		t.Errorf("couldn't define a_b: %v", err)
	}
	if err := ctx.DeleteVariable("a_b"); err != nil {
		t.Errorf("couldn't delete a_b: %v", err)
	}
	if err := ctx.DeleteVariable("a_b"); err == nil {
		t.Error("deleted a_b twice")
	}
	if err := ctx.DeleteFunction("nope"); !errors.Is(err, mathcmd.ErrInvalidExpression) {
		t.Errorf("deleting a missing function: want invalid expression, got %v", err)
	}
}

func TestRedefine(t *testing.T) {
	ctx := mathcmd.NewContext()
	if err := ctx.DefineFunction("f", "x", "x+1"); err != nil {
		t.Fatal(err)
	}
	if err := ctx.DefineFunction("f", "x", "x+2"); err != nil {
		t.Fatal(err)
	}
	r, err := ctx.EvalString("f(1)")
	if err != nil {
		t.Fatal(err)
	}
	if !mathcmd.Equal(r, num(3)) {
		t.Errorf("redefinition didn't take: f(1) = %v", r)
	}
	if len(ctx.UserFunctions()) != 1 {
		t.Errorf("wrong number of functions after redefinition: %d", len(ctx.UserFunctions()))
	}
	ctx.ClearFunctions()
	if _, err := ctx.EvalString("f(1)"); !errors.Is(err, mathcmd.ErrInvalidExpression) {
		t.Errorf("f survived clearing: %v", err)
	}
}

func TestRecursionGuard(t *testing.T) {
	ctx := mathcmd.NewContext(mathcmd.SetVar("keep", num(1)))
	if err := ctx.DefineFunction("f", "x", "f(x+1)"); err != nil {
		t.Fatal(err)
	}
	_, err := ctx.EvalString("f(1)")
	var oerr *mathcmd.OverflowError
	if !errors.As(err, &oerr) {
		t.Fatalf("want OverflowError, got %T (%v)", err, err)
	}
	if !errors.Is(err, mathcmd.ErrOverflow) {
		t.Errorf("%v is not ErrOverflow", err)
	}
	if oerr.Depth != mathcmd.DefaultMaxDepth {
		t.Errorf("wrong depth: want %d, got %d", mathcmd.DefaultMaxDepth, oerr.Depth)
	}
	// The context still works afterward.
	r, err := ctx.EvalString("keep + 1")
	if err != nil || !mathcmd.Equal(r, num(2)) {
		t.Errorf("context broken after overflow: %v, %v", r, err)
	}
	if len(ctx.Variables()) != 1 {
		t.Errorf("overflow changed variables: %v", ctx.Variables())
	}
}

func TestMaxDepth(t *testing.T) {
	const src = "1+(1+(1+1))"
	if _, err := mathcmd.EvalString(src, mathcmd.MaxDepth(3)); !errors.Is(err, mathcmd.ErrOverflow) {
		t.Errorf("depth 3: want overflow, got %v", err)
	}
	r, err := mathcmd.EvalString(src, mathcmd.MaxDepth(4))
	if err != nil || !mathcmd.Equal(r, num(4)) {
		t.Errorf("depth 4: got %v, %v", r, err)
	}
	// The budget is per evaluation.
	ctx := mathcmd.NewContext(mathcmd.MaxDepth(4))
	for i := 0; i < 3; i++ {
		if _, err := ctx.EvalString(src); err != nil {
			t.Errorf("evaluation %d: %v", i, err)
		}
	}
}

func TestIdempotentEval(t *testing.T) {
	srcs := []string{
		"1+2*3",
		"foreach({1, 2}, [e: e*e])",
		"sum([n: n], 1, 4)",
		"diff([x: <x, x*x>], 2)",
		`"abc"`,
	}
	ctx := mathcmd.NewContext()
	for _, src := range srcs {
		n, err := mathcmd.Parse(src)
		if err != nil {
			t.Fatalf("couldn't parse %q: %v", src, err)
		}
		before := n.String()
		a, err := ctx.Eval(n)
		if err != nil {
			t.Fatalf("couldn't evaluate %q: %v", src, err)
		}
		b, err := ctx.Eval(n)
		if err != nil {
			t.Fatalf("couldn't evaluate %q again: %v", src, err)
		}
		if !mathcmd.Equal(a, b) {
			t.Errorf("%q gave %v then %v", src, a, b)
		}
		if after := n.String(); after != before {
			t.Errorf("evaluation changed %q to %q", before, after)
		}
	}
}

func TestValueRoundTrip(t *testing.T) {
	// Formatted values evaluate back to themselves.
	vals := []mathcmd.Value{
		num(1.5),
		num(-2),
		num(0),
		num(1e-7),
		num(math.Inf(1)),
		num(math.Inf(-1)),
		list{},
		list{num(1), list{num(-2)}, vec{3, -4}},
		vec{0.1, 0.2},
	}
	for _, v := range vals {
		s := v.String()
		r, err := mathcmd.EvalString(s)
		if err != nil {
			t.Errorf("couldn't evaluate %q: %v", s, err)
			continue
		}
		if !mathcmd.Equal(r, v) {
			t.Errorf("%q evaluated to %v, want %v", s, r, v)
		}
	}
}

func TestCoercions(t *testing.T) {
	cases := []struct {
		v     mathcmd.Value
		num   float64
		elems []mathcmd.Value
		comps []float64
	}{
		{num(3), 3, []mathcmd.Value{num(3)}, []float64{3}},
		{list{num(1), list{num(2), num(3)}}, 2, []mathcmd.Value{num(1), list{num(2), num(3)}}, []float64{1, 2}},
		{vec{4, 5}, 2, []mathcmd.Value{num(4), num(5)}, []float64{4, 5}},
	}
	for _, c := range cases {
		if got := c.v.Num(); got != c.num {
			t.Errorf("%v as number: want %v, got %v", c.v, c.num, got)
		}
		if diff := cmp.Diff(c.elems, c.v.Elems()); diff != "" {
			t.Errorf("%v as list (-want +got):\n%s", c.v, diff)
		}
		if diff := cmp.Diff(c.comps, c.v.Comps()); diff != "" {
			t.Errorf("%v as vector (-want +got):\n%s", c.v, diff)
		}
	}
	if v := mathcmd.As(list{num(1), num(2)}, mathcmd.KindVector); !mathcmd.Equal(v, vec{1, 2}) {
		t.Errorf("list as vector: %v", v)
	}
}

func TestContextVars(t *testing.T) {
	ctx := mathcmd.NewContext(
		mathcmd.SetVars(map[string]mathcmd.Value{"x": num(1), "y": num(2)}),
		mathcmd.SetVar("z", list{num(3)}),
	)
	want := map[string]mathcmd.Value{"x": num(1), "y": num(2), "z": list{num(3)}}
	if diff := cmp.Diff(want, ctx.Variables()); diff != "" {
		t.Errorf("wrong variables (-want +got):\n%s", diff)
	}
	c := ctx.Clone(mathcmd.SetVar("x", num(4)))
	if err := c.DefineVariable("w", num(5)); err != nil {
		t.Fatal(err)
	}
	if ctx.Lookup("w") != nil {
		t.Error("definition in clone appeared in original")
	}
	if !mathcmd.Equal(ctx.Lookup("x"), num(1)) || !mathcmd.Equal(c.Lookup("x"), num(4)) {
		t.Errorf("wrong x: original %v, clone %v", ctx.Lookup("x"), c.Lookup("x"))
	}
	ctx.ClearVariables()
	if len(ctx.Variables()) != 0 {
		t.Errorf("variables survived clearing: %v", ctx.Variables())
	}
	if len(c.Variables()) != 4 {
		t.Errorf("clearing the original changed the clone: %v", c.Variables())
	}
}

func TestSignatures(t *testing.T) {
	ctx := mathcmd.NewContext()
	want := map[string]string{
		"len":  "len/length(list list)",
		"log":  "log(number argument, number base)",
		"sum":  "sum(lambda[1] expression, number start, number max)",
		"dot":  "dotproduct/dot(vector vector1, vector vector2)",
		"root": "root/rt(number argument, number root)",
	}
	found := 0
	for _, f := range ctx.BuiltinFunctions() {
		for _, name := range f.Names {
			if w, ok := want[name]; ok {
				found++
				if got := f.Signature(false); got != w {
					t.Errorf("wrong signature for %s: want %q, got %q", name, w, got)
				}
			}
		}
	}
	if found != len(want) {
		t.Errorf("found %d of %d functions", found, len(want))
	}

	if err := ctx.DefineFunction("twice", "f(1), x", "f(f(x))"); err != nil {
		t.Fatal(err)
	}
	fs := ctx.UserFunctions()
	if len(fs) != 1 {
		t.Fatalf("wrong number of user functions: %d", len(fs))
	}
	if got := fs[0].Signature(true); got != "twice(lambda[1] f, var x)" {
		t.Errorf("wrong user signature: %q", got)
	}
	if got := fs[0].ParamSpec(); got != "f(1),x" {
		t.Errorf("wrong parameter spec: %q", got)
	}
	if fs[0].Body != "f(f(x))" {
		t.Errorf("wrong body: %q", fs[0].Body)
	}
}
