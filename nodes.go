package mathcmd

import (
	"math"
	"strconv"
	"strings"
)

// Node is a node in the abstract syntax tree of an expression. The concrete
// types are *Num, *Var, *BinOp, *Call, *ListLit, *VectorLit, and *Delegate.
// Nodes are never modified by evaluation.
type Node interface {
	// String formats the node as text that Parse accepts.
	String() string
	// Clone returns a deep copy of the node.
	Clone() Node

	node()
}

// Op is a binary operation.
type Op int8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

// prec is the binding strength of the operator. Higher binds tighter.
func (op Op) prec() int {
	switch op {
	case OpMul, OpDiv, OpMod:
		return 1
	default:
		return 0
	}
}

// Num is a number literal.
type Num struct {
	Value float64
}

// Var is a variable or constant reference.
type Var struct {
	Name string
}

// BinOp is a binary operation.
type BinOp struct {
	Left, Right Node
	Op          Op
}

// Call is a function call.
type Call struct {
	Name string
	Args []Node
}

// ListLit is a list literal, {a, b, c}. String literals also parse to lists.
type ListLit struct {
	Elems []Node
}

// VectorLit is a vector literal, <a, b, c>.
type VectorLit struct {
	Elems []Node
}

// Delegate is an unevaluated expression with named parameters, [x, y: body].
// The body is kept as text and parsed by whatever invokes the delegate.
type Delegate struct {
	Params []string
	Body   string
}

func (*Num) node()       {}
func (*Var) node()       {}
func (*BinOp) node()     {}
func (*Call) node()      {}
func (*ListLit) node()   {}
func (*VectorLit) node() {}
func (*Delegate) node()  {}

func (n *Num) String() string {
	if math.Signbit(n.Value) && !math.IsNaN(n.Value) {
		// A leading minus parses as a subtraction from zero, so write it that
		// way to keep formatting stable across a reparse.
		return "(0 - " + formatNum(math.Abs(n.Value)) + ")"
	}
	return formatNum(n.Value)
}

func (n *Var) String() string {
	return n.Name
}

func (n *BinOp) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *Call) String() string {
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteByte('(')
	fmtnodes(&b, n.Args)
	b.WriteByte(')')
	return b.String()
}

func (n *ListLit) String() string {
	var b strings.Builder
	b.WriteByte('{')
	fmtnodes(&b, n.Elems)
	b.WriteByte('}')
	return b.String()
}

func (n *VectorLit) String() string {
	var b strings.Builder
	b.WriteByte('<')
	fmtnodes(&b, n.Elems)
	b.WriteByte('>')
	return b.String()
}

func (n *Delegate) String() string {
	return "[" + strings.Join(n.Params, ", ") + ": " + n.Body + "]"
}

func fmtnodes(b *strings.Builder, nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n.String())
	}
}

func (n *Num) Clone() Node {
	return &Num{Value: n.Value}
}

func (n *Var) Clone() Node {
	return &Var{Name: n.Name}
}

func (n *BinOp) Clone() Node {
	return &BinOp{Left: n.Left.Clone(), Right: n.Right.Clone(), Op: n.Op}
}

func (n *Call) Clone() Node {
	return &Call{Name: n.Name, Args: clonenodes(n.Args)}
}

func (n *ListLit) Clone() Node {
	return &ListLit{Elems: clonenodes(n.Elems)}
}

func (n *VectorLit) Clone() Node {
	return &VectorLit{Elems: clonenodes(n.Elems)}
}

func (n *Delegate) Clone() Node {
	return &Delegate{Params: append([]string(nil), n.Params...), Body: n.Body}
}

func clonenodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	r := make([]Node, len(nodes))
	for i, n := range nodes {
		r[i] = n.Clone()
	}
	return r
}

// formatNum formats a number so that the parser reads it back exactly. Callers
// handle the sign of finite negative numbers.
func formatNum(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
