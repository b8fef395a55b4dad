//go:build go1.18
// +build go1.18

package mathcmd_test

import (
	"testing"

	"github.com/zephyrtronium/mathcmd"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("1E-5*-(2+y)")
	f.Add("[a, b: {a, <b>}]")
	f.Add(`f("(", 1)`)
	f.Fuzz(func(t *testing.T, s string) {
		n, err := mathcmd.Parse(s)
		if err != nil || n == nil {
			return
		}
		// Anything that parses must format to text that parses.
		if _, err := mathcmd.Parse(n.String()); err != nil {
			t.Errorf("%q parsed, but its formatting %q did not: %v", s, n.String(), err)
		}
	})
}
