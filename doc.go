// Package mathcmd implements a calculator language of numbers, lists, and
// vectors.
//
// Expressions are written in ordinary infix notation with the operators + - *
// / and %. Lists are written {1, 2, 3}, vectors <1, 2, 3>, and strings "abc"
// are lists of character codes. Every value can stand in for every other kind:
// a number is a collection of one element, and a collection used as a number
// is its length, so {1,2,3}+1 is 4. Vectors add and subtract elementwise and
// scale by numbers.
//
// Delegates, written [x, y: body], are unevaluated expressions passed to
// functions like sum, int, diff, solve, and foreach. User functions are
// defined with Context.DefineFunction from parameter and body text. A
// parameter written f(n) accepts a delegate of n parameters, callable as a
// function in the body. Names resolve dynamically: a function or delegate body
// sees the variables of whatever called it.
//
// The transcendental functions exp, ln, log, pow, root, and sqrt are computed
// with extended precision and rounded, so results are usually correctly
// rounded float64 values. Results of the calculus functions are rounded to
// five decimal places.
package mathcmd
