package mathcmd

import (
	"strconv"
	"strings"
	"unicode"
)

// Expr = num | name | Call | List | Vector | String | Delegate | Neg | BinOp | '(' Expr ')'
// Call = letters '(' [ Expr { ',' Expr } ] ')'
// List = '{' [ Expr ] { ',' [ Expr ] } '}'
// Vector = '<' Expr { ',' Expr } '>'
// String = '"' chars '"'
// Delegate = '[' [ name { ',' name } ] ':' Expr ']'
// Neg = '-' Expr
// BinOp = Expr ('+' | '-' | '*' | '/' | '%') Expr

// Parse parses an expression. If src contains no tokens, the result is a nil
// Node with a nil error.
func Parse(src string) (Node, error) {
	toks := lex(src)
	if len(toks) == 0 {
		return nil, nil
	}
	return parse(toks)
}

// parse parses a non-empty token list.
func parse(toks []token) (Node, error) {
	if len(toks) == 0 {
		return nil, &EmptyExpressionError{}
	}
	for toks[0].text == "(" && matchBracket(toks, 0, "(", ")") == len(toks)-1 {
		if len(toks) == 2 {
			return nil, &EmptyExpressionError{Col: toks[1].pos, Near: ")"}
		}
		toks = toks[1 : len(toks)-1]
	}
	if len(toks) == 1 {
		return parseatom(toks[0])
	}
	first := toks[0].text
	switch {
	case wraps(toks, "{", "}"):
		groups := splitArgs(toks[1:len(toks)-1], ",")
		elems := make([]Node, 0, len(groups))
		for _, g := range groups {
			if len(g) == 0 {
				continue
			}
			n, err := parse(g)
			if err != nil {
				return nil, err
			}
			elems = append(elems, n)
		}
		return &ListLit{Elems: elems}, nil
	case wraps(toks, "<", ">"):
		elems, err := parseargs(toks[1:len(toks)-1], toks[len(toks)-1])
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return nil, &EmptyExpressionError{Col: toks[len(toks)-1].pos, Near: ">"}
		}
		return &VectorLit{Elems: elems}, nil
	case wraps(toks, quote, quote):
		return parsestring(toks[1 : len(toks)-1]), nil
	case first == "-":
		// Negation is subtraction from zero.
		v := make([]token, 0, len(toks)+3)
		v = append(v, token{text: "(", pos: toks[0].pos}, token{text: "0", pos: toks[0].pos}, toks[0])
		v = append(v, toks[1:]...)
		v = append(v, token{text: ")", pos: toks[len(toks)-1].pos})
		return parse(v)
	case first == "[":
		end := matchBracket(toks, 0, "[", "]")
		if end < 0 {
			return nil, &BracketError{Col: toks[0].pos, Left: "[", Right: "]"}
		}
		if end == len(toks)-1 {
			return parsedelegate(toks)
		}
	case isIdent(first) && toks[1].text == "(":
		end := matchBracket(toks, 1, "(", ")")
		if end < 0 {
			return nil, &BracketError{Col: toks[1].pos, Left: "(", Right: ")"}
		}
		if end == len(toks)-1 {
			args, err := parseargs(toks[2:end], toks[end])
			if err != nil {
				return nil, err
			}
			return &Call{Name: first, Args: args}, nil
		}
	}
	return parsebinary(toks)
}

// parseatom parses a single token as a number or a variable.
func parseatom(tok token) (Node, error) {
	if f, err := strconv.ParseFloat(tok.text, 64); err == nil {
		return &Num{Value: f}, nil
	}
	if tok.text == quote || len(tok.text) == 1 && strings.Contains(Punctuation+Operators, tok.text) {
		return nil, &TokenError{Col: tok.pos, Text: tok.text}
	}
	return &Var{Name: tok.text}, nil
}

// wraps reports whether toks opens with open and closes with the close that
// matches it.
func wraps(toks []token, open, close string) bool {
	return toks[0].text == open && matchBracket(toks, 0, open, close) == len(toks)-1
}

// parseargs parses a comma-separated list of expressions, as in function
// arguments or vector components. An empty list gives no expressions, but
// empty expressions between commas are errors.
func parseargs(toks []token, end token) ([]Node, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	groups := splitArgs(toks, ",")
	args := make([]Node, 0, len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			near := end
			if i+1 < len(groups) && len(groups[i+1]) > 0 {
				near = groups[i+1][0]
			}
			return nil, &EmptyExpressionError{Col: near.pos, Near: near.text}
		}
		n, err := parse(g)
		if err != nil {
			return nil, err
		}
		args = append(args, n)
	}
	return args, nil
}

// parsestring converts the contents of a string literal to a list of
// character codes.
func parsestring(toks []token) Node {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.text)
	}
	s := []rune(b.String())
	elems := make([]Node, len(s))
	for i, r := range s {
		elems[i] = &Num{Value: float64(r)}
	}
	return &ListLit{Elems: elems}
}

// parsedelegate parses a delegate literal. toks begins with [ and ends with
// the matching ].
func parsedelegate(toks []token) (Node, error) {
	inner := toks[1 : len(toks)-1]
	colon := -1
	for i := 0; i < len(inner) && colon < 0; i++ {
		switch inner[i].text {
		case ":":
			colon = i
		case "(", "{", "<", "[", quote:
			if k := matchAny(inner, i); k > 0 {
				i = k
			}
		}
	}
	if colon < 0 {
		return nil, &TokenError{Col: toks[0].pos, Text: strings.Join(texts(toks), "")}
	}
	var params []string
	if colon > 0 {
		for _, g := range splitArgs(inner[:colon], ",") {
			if len(g) != 1 {
				return nil, &TokenError{Col: toks[0].pos, Text: strings.Join(texts(inner[:colon]), "")}
			}
			params = append(params, g[0].text)
		}
	}
	body := inner[colon+1:]
	if len(body) == 0 {
		return nil, &EmptyExpressionError{Col: toks[len(toks)-1].pos, Near: "]"}
	}
	return &Delegate{Params: params, Body: strings.Join(texts(body), "")}, nil
}

// parsebinary parses toks as a binary operation. The split point is the
// rightmost operator of lowest precedence outside of any brackets. An
// operator immediately following another operator is a negation of the right
// operand rather than a binary operator.
func parsebinary(toks []token) (Node, error) {
	at, prec := -1, 100
	var (
		op  Op
		bad *token
	)
	for i := 0; i < len(toks); i++ {
		t := toks[i].text
		switch t {
		case "(", "{", "<", "[", quote:
			k := matchAny(toks, i)
			if k < 0 {
				return nil, unmatched(toks[i])
			}
			i = k
			continue
		}
		if !isOperator(t) {
			if bad == nil && isSymbol(t) && !strings.Contains(Punctuation, t) {
				bad = &toks[i]
			}
			continue
		}
		if i > 0 && isOperator(toks[i-1].text) {
			continue
		}
		o := opFor(t)
		if p := o.prec(); p <= prec {
			at, prec, op = i, p, o
		}
	}
	if at < 0 {
		if bad != nil {
			return nil, &OperatorError{Col: bad.pos, Operator: bad.text}
		}
		return nil, &TokenError{Col: toks[0].pos, Text: strings.Join(texts(toks), "")}
	}
	if at == 0 {
		return nil, &EmptyExpressionError{Col: toks[0].pos, Near: toks[0].text}
	}
	if at == len(toks)-1 {
		return nil, &EmptyExpressionError{Col: toks[at].pos, Near: toks[at].text}
	}
	l, err := parse(toks[:at])
	if err != nil {
		return nil, err
	}
	r, err := parse(toks[at+1:])
	if err != nil {
		return nil, err
	}
	return &BinOp{Left: l, Right: r, Op: op}, nil
}

func opFor(s string) Op {
	switch s {
	case "+":
		return OpAdd
	case "-":
		return OpSub
	case "*":
		return OpMul
	case "/":
		return OpDiv
	case "%":
		return OpMod
	default:
		panic("mathcmd: invalid operator " + strconv.Quote(s))
	}
}

// isSymbol reports whether s looks like an operator, i.e. it is made only of
// punctuation and symbol runes.
func isSymbol(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return s != ""
}

var closers = map[string]string{
	"(":   ")",
	"{":   "}",
	"<":   ">",
	"[":   "]",
	quote: quote,
}

func unmatched(open token) error {
	return &BracketError{Col: open.pos, Left: open.text, Right: closers[open.text]}
}

// matchAny finds the bracket closing the one at toks[start], or -1.
func matchAny(toks []token, start int) int {
	return matchBracket(toks, start, toks[start].text, closers[toks[start].text])
}

// matchBracket finds the index of the close bracket matching the open bracket
// at toks[start], counting nested pairs of the same kind. String literals
// inside are skipped. The result is -1 if there is no match.
func matchBracket(toks []token, start int, open, close string) int {
	depth := 0
	for i := start + 1; i < len(toks); i++ {
		switch toks[i].text {
		case close:
			if depth == 0 {
				return i
			}
			depth--
		case open:
			depth++
		case quote:
			// Brackets inside strings don't count.
			i = nextQuote(toks, i)
			if i < 0 {
				return -1
			}
		}
	}
	return -1
}

func nextQuote(toks []token, start int) int {
	for i := start + 1; i < len(toks); i++ {
		if toks[i].text == quote {
			return i
		}
	}
	return -1
}

// splitArgs partitions toks at each top-level sep. Bracketed spans and string
// literals are never split. Empty groups are kept; callers decide whether
// they are allowed.
func splitArgs(toks []token, sep string) [][]token {
	groups := [][]token{nil}
	for i := 0; i < len(toks); i++ {
		last := len(groups) - 1
		switch t := toks[i].text; t {
		case "(", "{", "<", "[", quote:
			end := matchAny(toks, i)
			if end < 0 {
				// Let the parser report the bracket when it gets to it.
				end = len(toks) - 1
			}
			groups[last] = append(groups[last], toks[i:end+1]...)
			i = end
		case sep:
			groups = append(groups, nil)
		default:
			groups[last] = append(groups[last], toks[i])
		}
	}
	return groups
}
