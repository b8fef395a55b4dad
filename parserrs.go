package mathcmd

import (
	"errors"
	"strconv"
)

// ErrParse is matched by every error describing input that cannot be parsed.
var ErrParse = errors.New("parse error")

// TokenError is an error indicating a token or token sequence that cannot be
// interpreted as an expression. It implements InputError.
type TokenError struct {
	// Col is the position of the first token of the sequence.
	Col int
	// Text is the offending input, reassembled from its tokens.
	Text string
}

func (err *TokenError) Error() string {
	return errpos(err.Col, "cannot parse "+strconv.Quote(err.Text))
}

func (err *TokenError) Pos() int {
	return err.Col
}

func (err *TokenError) Is(target error) bool {
	return target == ErrParse
}

// OperatorError reports a symbol in operator position that is not one of
// + - * / %. It implements InputError.
type OperatorError struct {
	// Col is where the symbol starts.
	Col int
	// Operator is the symbol.
	Operator string
}

func (err *OperatorError) Error() string {
	return errpos(err.Col, "unknown binary operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

func (err *OperatorError) Is(target error) bool {
	return target == ErrParse
}

// BracketError is an error indicating an opening bracket with no matching
// close. It implements InputError.
type BracketError struct {
	// Col is where the unclosed bracket is.
	Col int
	// Left and Right are the unclosed bracket and the one that would close
	// it. Quotes are their own closers.
	Left, Right string
}

func (err *BracketError) Error() string {
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket "+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

func (err *BracketError) Is(target error) bool {
	return target == ErrParse
}

// EmptyExpressionError is an error indicating an empty subexpression, such as
// an operand missing from one side of an operator or an empty argument.
type EmptyExpressionError struct {
	// Col is the position of the token next to the missing subexpression.
	Col int
	// Near is that token, or the empty string at the end of input.
	Near string
}

func (err *EmptyExpressionError) Error() string {
	if err.Near == "" {
		return errpos(err.Col, "no expression")
	}
	return errpos(err.Col, "no expression near "+strconv.Quote(err.Near))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

func (err *EmptyExpressionError) Is(target error) bool {
	return target == ErrParse
}

// errpos prefixes msg with a column.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is a parse error that knows where in the input it happened.
// Parse returns only InputErrors.
type InputError interface {
	error
	// Pos is the 1-based rune column of the token at fault.
	Pos() int
}

var (
	_ InputError = (*TokenError)(nil)
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
)
