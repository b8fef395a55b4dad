package mathcmd

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidExpression is matched by errors from expressions that parse
	// but have no meaning, such as references to undefined names.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrInvalidArguments is matched by errors from calls with the wrong
	// number or kinds of arguments, and by invalid definitions.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrOverflow is matched by errors from evaluations that recurse too deeply.
	ErrOverflow = errors.New("evaluation too deep")
)

// DefaultMaxDepth is the evaluation depth budget of a context created without
// the MaxDepth option.
const DefaultMaxDepth = 512

// Reserved are the names of constants. They cannot be used as variable,
// function, or parameter names.
var Reserved = []string{"PI", "E", "INF", "MILLIS"}

// Context is a context for evaluating expressions. It holds variables and
// user-defined functions. It is not safe to use a Context concurrently.
type Context struct {
	vars  map[string]Value
	funcs map[string]*Func
	now   func() time.Time
	depth int
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Value
	}
	varsopt  map[string]Value
	clockopt func() time.Time
	depthopt int
)

func (varopt) ctxOption()   {}
func (varsopt) ctxOption()  {}
func (clockopt) ctxOption() {}
func (depthopt) ctxOption() {}

// SetVar sets the value of a variable in the context. The name is not
// validated.
func SetVar(name string, val Value) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]Value) ContextOption {
	return varsopt(vars)
}

// Clock sets the source of the MILLIS constant.
func Clock(now func() time.Time) ContextOption {
	return clockopt(now)
}

// MaxDepth sets the maximum nesting depth of an evaluation. Non-positive
// values select DefaultMaxDepth.
func MaxDepth(depth int) ContextOption {
	return depthopt(depth)
}

// NewContext creates a new evaluation context.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{now: time.Now, depth: DefaultMaxDepth}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it. Variables and
// functions defined in either context afterward do not affect the other.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		vars:  make(map[string]Value, len(ctx.vars)),
		funcs: make(map[string]*Func, len(ctx.funcs)),
		now:   ctx.now,
		depth: ctx.depth,
	}
	for k, v := range ctx.vars {
		n.vars[k] = v
	}
	for k, v := range ctx.funcs {
		n.funcs[k] = v
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.vars[opt.name] = opt.val
		case varsopt:
			for k, v := range opt {
				n.vars[k] = v
			}
		case clockopt:
			n.now = opt
		case depthopt:
			n.depth = int(opt)
			if n.depth <= 0 {
				n.depth = DefaultMaxDepth
			}
		default:
			panic("mathcmd: unknown option type")
		}
	}
	return &n
}

// Eval evaluates a parsed expression. A nil node is an empty expression.
func (ctx *Context) Eval(n Node) (Value, error) {
	if n == nil {
		return nil, &EmptyExpressionError{}
	}
	return ctx.eval(ctx.root(), 1, n)
}

// EvalString parses and evaluates an expression.
func (ctx *Context) EvalString(src string) (Value, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return ctx.Eval(n)
}

// EvalString is a shortcut to parse and evaluate an expression in a new
// context.
func EvalString(src string, opts ...ContextOption) (Value, error) {
	return NewContext(opts...).EvalString(src)
}

// Lookup returns the value of a variable, or nil if there is no such variable.
// Constants are not variables.
func (ctx *Context) Lookup(name string) Value {
	return ctx.vars[name]
}

// DefineVariable sets a variable, replacing any existing value.
func (ctx *Context) DefineVariable(name string, val Value) error {
	if err := checkName(name, "variable", false); err != nil {
		return err
	}
	ctx.vars[name] = val
	return nil
}

// DeleteVariable removes a variable.
func (ctx *Context) DeleteVariable(name string) error {
	if _, ok := ctx.vars[name]; !ok {
		return &NameError{Name: name}
	}
	delete(ctx.vars, name)
	return nil
}

// ClearVariables removes all variables.
func (ctx *Context) ClearVariables() {
	ctx.vars = make(map[string]Value)
}

// Variables returns a copy of the context's variables.
func (ctx *Context) Variables() map[string]Value {
	r := make(map[string]Value, len(ctx.vars))
	for k, v := range ctx.vars {
		r[k] = v
	}
	return r
}

// Constants returns the values of the constants. MILLIS is the current time of
// the context's clock.
func (ctx *Context) Constants() map[string]Value {
	r := make(map[string]Value, len(Reserved))
	for _, k := range Reserved {
		r[k], _ = ctx.constant(k)
	}
	return r
}

func (ctx *Context) constant(name string) (Value, bool) {
	switch name {
	case "PI":
		return Number(math.Pi), true
	case "E":
		return Number(math.E), true
	case "INF":
		return Number(math.Inf(1)), true
	case "MILLIS":
		return Number(ctx.now().UnixMilli()), true
	}
	return nil, false
}

// DefineFunction adds or replaces a user function. params is a comma-separated
// list of parameter names, where a parameter written as f(n) accepts a
// delegate of n parameters. body is the text of the function's expression. It
// is parsed now to check syntax and again on each call.
func (ctx *Context) DefineFunction(name, params, body string) error {
	if err := checkName(name, "function", true); err != nil {
		return err
	}
	if builtin[name] != nil {
		return &ArgumentError{Func: name, Msg: "cannot replace a built-in function"}
	}
	ps, err := parseParams(name, params)
	if err != nil {
		return err
	}
	n, err := Parse(body)
	if err != nil {
		return err
	}
	if n == nil {
		return &ArgumentError{Func: name, Msg: "function has no body"}
	}
	f := &Func{Names: []string{name}, Params: ps, Body: body}
	f.Impl = userImpl(f)
	ctx.funcs[name] = f
	return nil
}

// DeleteFunction removes a user function.
func (ctx *Context) DeleteFunction(name string) error {
	if _, ok := ctx.funcs[name]; !ok {
		return &ExpressionError{Msg: strconv.Quote(name) + " is not a user-defined function"}
	}
	delete(ctx.funcs, name)
	return nil
}

// ClearFunctions removes all user functions.
func (ctx *Context) ClearFunctions() {
	ctx.funcs = make(map[string]*Func)
}

// UserFunctions returns the context's user functions sorted by name.
func (ctx *Context) UserFunctions() []*Func {
	r := make([]*Func, 0, len(ctx.funcs))
	for _, f := range ctx.funcs {
		r = append(r, f)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Names[0] < r[j].Names[0] })
	return r
}

// BuiltinFunctions returns the built-in functions in their documented order.
// The functions must not be modified.
func (ctx *Context) BuiltinFunctions() []*Func {
	return append([]*Func(nil), builtins...)
}

func isReserved(name string) bool {
	for _, r := range Reserved {
		if name == r {
			return true
		}
	}
	return false
}

// checkName validates a variable, parameter, or function name. Function names
// are letters only. Other names may also contain underscores.
func checkName(name, what string, fn bool) *ArgumentError {
	if name == "" {
		return &ArgumentError{Msg: what + " name is empty"}
	}
	for _, r := range name {
		if 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' && !fn {
			continue
		}
		return &ArgumentError{Msg: strconv.Quote(name) + " is not a valid " + what + " name"}
	}
	if isReserved(name) {
		return &ArgumentError{Msg: strconv.Quote(name) + " is reserved"}
	}
	return nil
}

// parseParams parses a parameter list like "x,y,f(1)".
func parseParams(fn, spec string) ([]Param, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	ps := make([]Param, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for i, s := range parts {
		s = strings.TrimSpace(s)
		p := Param{Name: s, Kind: KindNumber}
		if k := strings.IndexByte(s, '('); k >= 0 {
			if !strings.HasSuffix(s, ")") {
				return nil, &ArgumentError{Func: fn, Arg: i + 1, Msg: "bad delegate parameter " + strconv.Quote(s)}
			}
			n, err := strconv.Atoi(strings.TrimSpace(s[k+1 : len(s)-1]))
			if err != nil || n < 0 {
				return nil, &ArgumentError{Func: fn, Arg: i + 1, Msg: "bad delegate arity in " + strconv.Quote(s)}
			}
			p = Param{Name: strings.TrimSpace(s[:k]), Kind: KindDelegate, Arity: n}
			if builtin[p.Name] != nil {
				return nil, &ArgumentError{Func: fn, Arg: i + 1, Msg: "delegate parameter " + strconv.Quote(p.Name) + " is a built-in function"}
			}
		}
		if err := checkName(p.Name, "parameter", p.Kind == KindDelegate); err != nil {
			err.Func, err.Arg = fn, i+1
			return nil, err
		}
		if seen[p.Name] {
			return nil, &ArgumentError{Func: fn, Arg: i + 1, Msg: "duplicate parameter " + strconv.Quote(p.Name)}
		}
		seen[p.Name] = true
		ps = append(ps, p)
	}
	return ps, nil
}

// scope is one level of the environment. The root scope shares the context's
// maps. Inner scopes are created for each call of a user function or delegate
// and are discarded when the call returns.
type scope struct {
	up    *scope
	vars  map[string]Value
	funcs map[string]*Func
}

func (ctx *Context) root() *scope {
	return &scope{vars: ctx.vars, funcs: ctx.funcs}
}

func (sc *scope) lookup(name string) Value {
	for ; sc != nil; sc = sc.up {
		if v, ok := sc.vars[name]; ok {
			return v
		}
	}
	return nil
}

func (sc *scope) function(name string) *Func {
	for ; sc != nil; sc = sc.up {
		if f := sc.funcs[name]; f != nil {
			return f
		}
	}
	return nil
}

// host is the Host given to functions. It evaluates in the scope of the call
// and continues its depth budget.
type host struct {
	ctx   *Context
	sc    *scope
	depth int
}

func (h *host) ParseString(src string) (Node, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, &EmptyExpressionError{}
	}
	return n, nil
}

func (h *host) EvalNode(n Node, binds map[string]Value) (Value, error) {
	sc := h.sc
	if len(binds) != 0 {
		sc = &scope{up: sc, vars: binds}
	}
	return h.ctx.eval(sc, h.depth+1, n)
}

func (h *host) EvalString(src string, binds map[string]Value) (Value, error) {
	n, err := h.ParseString(src)
	if err != nil {
		return nil, err
	}
	return h.EvalNode(n, binds)
}

// eval evaluates a node in a scope at a given depth.
func (ctx *Context) eval(sc *scope, depth int, n Node) (Value, error) {
	if depth > ctx.depth {
		return nil, &OverflowError{Depth: ctx.depth}
	}
	switch n := n.(type) {
	case *Num:
		return Number(n.Value), nil
	case *Var:
		if v := sc.lookup(n.Name); v != nil {
			return v, nil
		}
		if v, ok := ctx.constant(n.Name); ok {
			return v, nil
		}
		return nil, &NameError{Name: n.Name}
	case *BinOp:
		l, err := ctx.eval(sc, depth+1, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ctx.eval(sc, depth+1, n.Right)
		if err != nil {
			return nil, err
		}
		return binop(n.Op, l, r)
	case *ListLit:
		r := make(List, len(n.Elems))
		for i, e := range n.Elems {
			v, err := ctx.eval(sc, depth+1, e)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return r, nil
	case *VectorLit:
		r := make(Vector, len(n.Elems))
		for i, e := range n.Elems {
			v, err := ctx.eval(sc, depth+1, e)
			if err != nil {
				return nil, err
			}
			if v.Kind() != KindNumber {
				return nil, &ExpressionError{Msg: "vector component " + strconv.Itoa(i+1) + " is a " + v.Kind().String() + ", not a number"}
			}
			r[i] = v.Num()
		}
		return r, nil
	case *Call:
		return ctx.call(sc, depth, n)
	case *Delegate:
		return nil, &ExpressionError{Msg: "delegate " + n.String() + " can only be a function argument"}
	default:
		panic("mathcmd: invalid AST node")
	}
}

// call evaluates a function call.
func (ctx *Context) call(sc *scope, depth int, n *Call) (Value, error) {
	f := builtin[n.Name]
	if f == nil {
		f = sc.function(n.Name)
	}
	if f == nil {
		return nil, &ExpressionError{Msg: strconv.Quote(n.Name) + " is not a pre-defined or user-defined function"}
	}
	if len(n.Args) != len(f.Params) {
		return nil, &ArgumentError{Func: n.Name, Msg: "requires " + plural(len(f.Params), "argument") + " but got " + strconv.Itoa(len(n.Args))}
	}
	args := make([]Arg, len(n.Args))
	for i, p := range f.Params {
		d, isdel := n.Args[i].(*Delegate)
		if p.Kind == KindDelegate {
			if !isdel {
				return nil, &ArgumentError{Func: n.Name, Arg: i + 1, Msg: "expected a delegate but found " + describe(n.Args[i])}
			}
			if len(d.Params) != p.Arity {
				return nil, &ArgumentError{Func: n.Name, Arg: i + 1, Msg: "delegate must have " + plural(p.Arity, "parameter")}
			}
			for _, name := range d.Params {
				if err := checkName(name, "parameter", false); err != nil {
					err.Func, err.Arg = n.Name, i+1
					return nil, err
				}
			}
			args[i].Delegate = d
			continue
		}
		if isdel {
			return nil, &ArgumentError{Func: n.Name, Arg: i + 1, Msg: "expected a " + p.Kind.String() + " but found a delegate"}
		}
		v, err := ctx.eval(sc, depth+1, n.Args[i])
		if err != nil {
			return nil, err
		}
		args[i].Value = v
	}
	return f.Impl(&host{ctx: ctx, sc: sc, depth: depth}, args)
}

// userImpl creates the implementation of a user function. Value arguments
// become variables and delegate arguments become functions in a new scope for
// the body.
func userImpl(f *Func) func(Host, []Arg) (Value, error) {
	return func(hh Host, args []Arg) (Value, error) {
		h, ok := hh.(*host)
		if !ok {
			return nil, &ExpressionError{Msg: strconv.Quote(f.name()) + " must be called by its context"}
		}
		sc := &scope{up: h.sc, vars: make(map[string]Value, len(args))}
		for i, p := range f.Params {
			if p.Kind != KindDelegate {
				sc.vars[p.Name] = args[i].Value
				continue
			}
			if sc.funcs == nil {
				sc.funcs = make(map[string]*Func)
			}
			sc.funcs[p.Name] = delegateFunc(p.Name, args[i].Delegate)
		}
		n, err := h.ParseString(f.Body)
		if err != nil {
			return nil, err
		}
		return h.ctx.eval(sc, h.depth+1, n)
	}
}

// delegateFunc wraps a delegate argument as a function callable by name. Its
// parameters accept values of any kind but not delegates.
func delegateFunc(name string, d *Delegate) *Func {
	f := &Func{Names: []string{name}, Params: make([]Param, len(d.Params)), Body: d.Body}
	for i, p := range d.Params {
		f.Params[i] = Param{Name: p, Kind: KindNumber}
	}
	f.Impl = userImpl(f)
	return f
}

// binop applies a binary operator. Vectors add and subtract elementwise and
// scale by numbers. Every other combination operates on the numeric views of
// the operands.
func binop(op Op, l, r Value) (Value, error) {
	lv, rv := l.Kind() == KindVector, r.Kind() == KindVector
	switch op {
	case OpAdd, OpSub:
		if lv && rv {
			a, b := l.Comps(), r.Comps()
			if len(a) != len(b) {
				return nil, &ArgumentError{Func: op.String(), Msg: "vector lengths " + strconv.Itoa(len(a)) + " and " + strconv.Itoa(len(b)) + " differ"}
			}
			s := make(Vector, len(a))
			for i := range a {
				if op == OpAdd {
					s[i] = a[i] + b[i]
				} else {
					s[i] = a[i] - b[i]
				}
			}
			return s, nil
		}
	case OpMul, OpDiv:
		if lv != rv {
			v, k := l.Comps(), r.Num()
			if rv {
				v, k = r.Comps(), l.Num()
			}
			if op == OpDiv {
				k = 1 / k
			}
			return scale(v, k), nil
		}
	}
	a, b := l.Num(), r.Num()
	switch op {
	case OpAdd:
		return Number(a + b), nil
	case OpSub:
		return Number(a - b), nil
	case OpMul:
		return Number(a * b), nil
	case OpDiv:
		return Number(a / b), nil
	case OpMod:
		return Number(math.Mod(a, b)), nil
	default:
		panic("mathcmd: invalid operator " + op.String())
	}
}

func scale(v []float64, k float64) Vector {
	r := make(Vector, len(v))
	for i, c := range v {
		r[i] = c * k
	}
	return r
}

func plural(n int, what string) string {
	if n == 1 {
		return "1 " + what
	}
	return strconv.Itoa(n) + " " + what + "s"
}

// describe names the kind of syntax a node is for error messages.
func describe(n Node) string {
	switch n.(type) {
	case *Num:
		return "a number"
	case *Var:
		return "a variable"
	case *BinOp:
		return "an operation"
	case *Call:
		return "a function call"
	case *ListLit:
		return "a list"
	case *VectorLit:
		return "a vector"
	case *Delegate:
		return "a delegate"
	default:
		return "an unknown expression"
	}
}

// NameError is an error from a lookup for a variable that is neither defined
// nor a constant.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return strconv.Quote(err.Name) + " is not a valid variable"
}

func (err *NameError) Is(target error) bool {
	return target == ErrInvalidExpression
}

// ExpressionError is an error from an expression that parsed but cannot be
// evaluated, such as a call to an undefined function.
type ExpressionError struct {
	Msg string
}

func (err *ExpressionError) Error() string {
	return err.Msg
}

func (err *ExpressionError) Is(target error) bool {
	return target == ErrInvalidExpression
}

// OverflowError is an error from an evaluation that nested more deeply than
// its context allows, usually because of unbounded recursion.
type OverflowError struct {
	// Depth is the depth limit that was exceeded.
	Depth int
}

func (err *OverflowError) Error() string {
	return "evaluation exceeded depth " + strconv.Itoa(err.Depth)
}

func (err *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}
