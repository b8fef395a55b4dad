package shell

import (
	"strings"
)

// Marker introduces a color code in messages. The character after it is a
// hexadecimal digit selecting one of the 16 console colors, and a doubled
// marker is a literal one.
const Marker = '§'

// colors are the console colors in code order.
var colors = [16]struct {
	name string
	ansi string
}{
	{"Black", "30"},
	{"Dark Blue", "34"},
	{"Dark Green", "32"},
	{"Dark Cyan", "36"},
	{"Dark Red", "31"},
	{"Dark Magenta", "35"},
	{"Dark Yellow", "33"},
	{"Gray", "37"},
	{"Dark Gray", "90"},
	{"Blue", "94"},
	{"Green", "92"},
	{"Cyan", "96"},
	{"Red", "91"},
	{"Magenta", "95"},
	{"Yellow", "93"},
	{"White", "97"},
}

const (
	white = 0xf
	reset = "\x1b[0m"
)

// Render converts color codes in msg to ANSI escapes, or removes them if
// color is false. An invalid code selects white. A marker at the end of msg
// is dropped.
func Render(msg string, color bool) string {
	if !strings.ContainsRune(msg, Marker) {
		return msg
	}
	var b strings.Builder
	rs := []rune(msg)
	used := false
	for i := 0; i < len(rs); i++ {
		if rs[i] != Marker {
			b.WriteRune(rs[i])
			continue
		}
		i++
		if i >= len(rs) {
			break
		}
		if rs[i] == Marker {
			b.WriteRune(Marker)
			continue
		}
		if color {
			b.WriteString(escape(hexDigit(rs[i])))
			used = true
		}
	}
	if used {
		b.WriteString(reset)
	}
	return b.String()
}

func escape(code int) string {
	return "\x1b[" + colors[code].ansi + "m"
}

func hexDigit(r rune) int {
	switch {
	case '0' <= r && r <= '9':
		return int(r - '0')
	case 'a' <= r && r <= 'f':
		return int(r-'a') + 10
	case 'A' <= r && r <= 'F':
		return int(r-'A') + 10
	}
	return white
}

// Red colors s red with ANSI escapes.
func Red(s string) string {
	return escape(12) + s + reset
}
