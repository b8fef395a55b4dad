package shell

import (
	"fmt"
	"strings"
)

const helpText = `§a== Commands ==§f
help	Shows this text.
vars	Lists variables.
consts	Lists constants.
functions	Lists built-in and user functions.
colors	Lists the color codes used by display.
function NAME PARAMS EXPR	Defines a function. PARAMS is a comma-separated list of names.
delvar NAME	Deletes a variable, or every variable if NAME is ~.
delf NAME	Deletes a function, or every function if NAME is ~.
display EXPR	Shows a list of character codes as text.
dump	Prints the saved variables and functions.
NAME=EXPR	Assigns a variable.
Anything else is evaluated. The result is kept in the variable "ans".

§b== Values ==§f
There are §anumbers§f, §alists§f like §7{1,{2},3}§f, and §avectors§f like §7<1,2,3>§f.
Each kind can stand in for the others. A list or vector used as a number is its
length, so §7{1,2,3}+1§f is §74§f. A number used as a list or vector has itself as its
only element, so §7union(1,2)§f is §7{1,2}§f. Lists and vectors convert elementwise,
so §7dot({1,2},{3,4})§f is §711§f. Text in quotes is a list of character codes.

§b== Operators ==§f
+ -	add or subtract numbers or vectors
* /	multiply or divide numbers, or a vector by a number
%	remainder of numbers
Operators on a list use its length.

§b== Functions and delegates ==§f
A delegate is an expression passed to a function: §7[x,y: x*y+2]§f.
A function parameter written as §7f(n)§f takes a delegate of n parameters, which
the body calls like any function:
	§7function twice f(1),x f(f(x))§f
	§7twice([y: y*3], 2)§f is §718§f
Variables are looked up where a function is called, not where it is defined.

§b== Display ==§f
display converts each element of a list to a character. 128 becomes the color
marker §§, and the character after a marker picks a color (see colors):
	§7display union({128,toascii(MILLIS%16)}, "Hello")§f

§b== Examples ==§f
	§7diff([x: pow(x,2)], 11)§f is §722§f
	§7int([x: exp(-x)], 1, 10)§f
	§7solve([x: pow(x,2)-5*x+4], 0.5)§f is about §71§f
	§7foreach({1,2,3}, [x: x+1])§f is §7{2,3,4}§f
	§7function r t <sin(t),cos(t),t>§f then §7diff([x: r(x)], 0)§f is §7<1,0,1>§f`

// colorsText is the listing for the colors command.
var colorsText = func() string {
	var b strings.Builder
	b.WriteString("§f== Colors ==")
	for i, c := range colors {
		fmt.Fprintf(&b, "\n§§%X %s (§%X===§f)", i, c.name, i)
	}
	return b.String()
}()
