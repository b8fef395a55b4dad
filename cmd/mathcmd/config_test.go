package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseArgs(t *testing.T) {
	path := writeConfig(t, `
store = "/tmp/x.db"
history = ""
color = "never"
prompt = "math> "
max_depth = 100
`)
	cases := []struct {
		name string
		args []string
		want config
		rest []string
	}{
		{
			name: "file",
			args: []string{"-config", path},
			want: config{Store: "/tmp/x.db", Color: "never", Prompt: "math> ", MaxDepth: 100},
		},
		{
			name: "flags override",
			args: []string{"-config", path, "-color", "always", "-depth", "7", "-store", ""},
			want: config{Color: "always", Prompt: "math> ", MaxDepth: 7},
		},
		{
			name: "command",
			args: []string{"-config", path, "1", "+", "2"},
			want: config{Store: "/tmp/x.db", Color: "never", Prompt: "math> ", MaxDepth: 100},
			rest: []string{"1", "+", "2"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, rest, err := parseArgs(c.args)
			if err != nil {
				t.Fatalf("couldn't parse %q: %v", c.args, err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong config (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(c.rest, rest, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("wrong remaining args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")
	unknown := writeConfig(t, `colour = "never"`)
	cases := []struct {
		name string
		args []string
	}{
		{"missing config", []string{"-config", missing}},
		{"unknown key", []string{"-config", unknown}},
		{"bad color", []string{"-config", "", "-color", "sometimes"}},
		{"bad depth", []string{"-config", "", "-depth", "0"}},
		{"bad flag", []string{"-nope"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, _, err := parseArgs(c.args); err == nil {
				t.Errorf("no error from %q", c.args)
			}
		})
	}
}

func TestUseColor(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if !useColor("always", f) {
		t.Error("no color with always")
	}
	if useColor("never", f) {
		t.Error("color with never")
	}
	if useColor("auto", f) {
		t.Error("color on a regular file")
	}
}
