package mathcmd

import (
	"strconv"
	"strings"
	"unicode"
)

type token struct {
	text string
	pos  int
}

func (t token) String() string {
	return t.text + "@" + strconv.Itoa(t.pos)
}

// Punctuation contains the runes which always form single-rune tokens.
const Punctuation = `*()/,%[]:{}<>"`

// Operators contains the binary operators of the language.
const Operators = "+-*/%"

const quote = `"`

// lex splits src into tokens. + and - are split from their surroundings
// except when they follow the exponent marker of a numeric mantissa, so that
// 1E-5 remains one token. Whitespace separates tokens outside of string
// literals. Text between two quotes is a single opaque token.
func lex(src string) []token {
	var (
		toks []token
		buf  strings.Builder
		at   int
	)
	flush := func() {
		if buf.Len() > 0 {
			toks = append(toks, token{text: buf.String(), pos: at})
			buf.Reset()
		}
	}
	rs := []rune(src)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		pos := i + 1
		switch {
		case r == '"':
			flush()
			toks = append(toks, token{text: quote, pos: pos})
			// Everything up to the next quote is raw string content.
			j := i + 1
			for j < len(rs) && rs[j] != '"' {
				j++
			}
			if j > i+1 {
				toks = append(toks, token{text: string(rs[i+1 : j]), pos: pos + 1})
			}
			if j < len(rs) {
				toks = append(toks, token{text: quote, pos: j + 1})
			}
			i = j
		case unicode.IsSpace(r):
			flush()
		case strings.ContainsRune(Punctuation, r):
			flush()
			toks = append(toks, token{text: string(r), pos: pos})
		case r == '+' || r == '-':
			if exponentPending(buf.String()) {
				buf.WriteRune(r)
				continue
			}
			flush()
			toks = append(toks, token{text: string(r), pos: pos})
		default:
			if buf.Len() == 0 {
				at = pos
			}
			buf.WriteRune(r)
		}
	}
	flush()
	return toks
}

// exponentPending reports whether s is a decimal mantissa followed by an
// exponent marker, i.e. whether a sign rune continues a number like 1E-5.
func exponentPending(s string) bool {
	if len(s) < 2 {
		return false
	}
	if e := s[len(s)-1]; e != 'E' && e != 'e' {
		return false
	}
	dig := false
	for _, r := range s[:len(s)-1] {
		switch {
		case '0' <= r && r <= '9':
			dig = true
		case r == '.':
		default:
			return false
		}
	}
	return dig
}

func isOperator(s string) bool {
	return len(s) == 1 && strings.Contains(Operators, s)
}

// isIdent reports whether s consists only of ASCII letters.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
			return false
		}
	}
	return true
}

func texts(toks []token) []string {
	v := make([]string, len(toks))
	for i, t := range toks {
		v[i] = t.text
	}
	return v
}
