// Package shell implements the calculator's line-oriented commands on top of
// a mathcmd.Context, saving definitions to a store.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/zephyrtronium/mathcmd"
	"github.com/zephyrtronium/mathcmd/internal/store"
)

// Ans is the variable that holds the result of the last evaluation.
const Ans = "ans"

// Store saves variables and functions between sessions. *store.Store
// implements it.
type Store interface {
	SetVar(name, value string) error
	DelVar(name string) error
	ClearVars() error
	Vars() ([]store.Var, error)
	SetFunc(f store.Func) error
	DelFunc(name string) error
	ClearFuncs() error
	Funcs() ([]store.Func, error)
	Dump(w io.Writer) error
}

// Config configures a Shell.
type Config struct {
	// Store saves definitions. If it is nil, nothing is saved.
	Store Store
	// Out receives command output. Nil discards it.
	Out io.Writer
	// Log receives reports of stored definitions that fail to load. Nil
	// discards them.
	Log *log.Logger
	// Color enables ANSI colors in output.
	Color bool
}

// Shell runs commands.
type Shell struct {
	ctx   *mathcmd.Context
	store Store
	out   io.Writer
	log   *log.Logger
	color bool
}

// New creates a shell that evaluates in ctx.
func New(ctx *mathcmd.Context, cfg Config) *Shell {
	s := &Shell{ctx: ctx, store: cfg.Store, out: cfg.Out, log: cfg.Log, color: cfg.Color}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	return s
}

// Context returns the shell's evaluation context.
func (s *Shell) Context() *mathcmd.Context {
	return s.ctx
}

// Color reports whether the shell writes ANSI colors.
func (s *Shell) Color() bool {
	return s.color
}

// Load defines the stored functions and variables in the shell's context.
// Entries that no longer parse or evaluate are logged and skipped. The
// returned error is from reading the store.
func (s *Shell) Load() error {
	if s.store == nil {
		return nil
	}
	funcs, err := s.store.Funcs()
	if err != nil {
		return fmt.Errorf("loading functions: %w", err)
	}
	for _, f := range funcs {
		if err := s.ctx.DefineFunction(f.Name, f.Params, f.Body); err != nil {
			s.log.Printf("skipping stored function %s: %v", f.Name, err)
		}
	}
	vars, err := s.store.Vars()
	if err != nil {
		return fmt.Errorf("loading variables: %w", err)
	}
	for _, v := range vars {
		r, err := s.ctx.EvalString(v.Value)
		if err == nil {
			err = s.ctx.DefineVariable(v.Name, r)
		}
		if err != nil {
			s.log.Printf("skipping stored variable %s: %v", v.Name, err)
		}
	}
	return nil
}

// Run executes one command line. Errors are returned, not printed.
func (s *Shell) Run(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "help":
		s.message(helpText)
		return nil
	case "colors":
		s.message(colorsText)
		return nil
	case "vars":
		s.listVars(s.ctx.Variables(), nil)
		return nil
	case "consts":
		s.listVars(s.ctx.Constants(), mathcmd.Reserved)
		return nil
	case "functions":
		s.listFuncs()
		return nil
	case "dump":
		if s.store == nil {
			return errors.New("no store is open")
		}
		return s.store.Dump(s.out)
	case "display":
		return s.display(arg)
	case "delvar":
		return s.delvar(arg)
	case "delf":
		return s.delf(arg)
	case "function":
		return s.function(arg)
	}
	if name, expr, ok := strings.Cut(line, "="); ok {
		return s.assign(strings.TrimSpace(name), expr)
	}
	r, err := s.ctx.EvalString(line)
	if err != nil {
		return err
	}
	s.message(r.String())
	if err := s.ctx.DefineVariable(Ans, r); err != nil {
		return err
	}
	return s.save(func(st Store) error { return st.SetVar(Ans, r.String()) })
}

var commands = []string{"colors", "consts", "delf", "delvar", "display", "dump", "function", "functions", "help", "vars"}

// Complete returns the lines formed by completing the name at the end of line
// with commands, functions, variables, and constants.
func (s *Shell) Complete(line string) []string {
	start := len(line)
	for start > 0 {
		r, n := utf8.DecodeLastRuneInString(line[:start])
		if r != '_' && !unicode.IsLetter(r) {
			break
		}
		start -= n
	}
	head, word := line[:start], line[start:]
	if word == "" {
		return nil
	}
	var names []string
	if strings.TrimSpace(head) == "" {
		names = append(names, commands...)
	}
	for _, f := range s.ctx.BuiltinFunctions() {
		names = append(names, f.Names...)
	}
	for _, f := range s.ctx.UserFunctions() {
		names = append(names, f.Names...)
	}
	for k := range s.ctx.Variables() {
		names = append(names, k)
	}
	names = append(names, mathcmd.Reserved...)
	sort.Strings(names)
	var r []string
	for i, name := range names {
		if i > 0 && name == names[i-1] {
			continue
		}
		if strings.HasPrefix(name, word) {
			r = append(r, head+name)
		}
	}
	return r
}

// UsageError is returned when a command has the wrong arguments.
type UsageError struct {
	Usage string
}

func (err *UsageError) Error() string {
	return "usage: " + err.Usage
}

func (s *Shell) assign(name, expr string) error {
	r, err := s.ctx.EvalString(expr)
	if err != nil {
		return err
	}
	if err := s.ctx.DefineVariable(name, r); err != nil {
		return err
	}
	if err := s.save(func(st Store) error { return st.SetVar(name, r.String()) }); err != nil {
		return err
	}
	s.message("Set " + strconv.Quote(name) + " to " + r.String() + ".")
	return nil
}

func (s *Shell) delvar(name string) error {
	if name == "" {
		return &UsageError{Usage: "delvar NAME|~"}
	}
	if name == "~" {
		s.ctx.ClearVariables()
		if err := s.save(Store.ClearVars); err != nil {
			return err
		}
		s.message("Deleted all variables")
		return nil
	}
	if err := s.ctx.DeleteVariable(name); err != nil {
		return fmt.Errorf("the variable %q does not exist", name)
	}
	if err := s.save(func(st Store) error { return ignoreNotFound(st.DelVar(name)) }); err != nil {
		return err
	}
	s.message("Deleted " + strconv.Quote(name) + ".")
	return nil
}

func (s *Shell) delf(name string) error {
	if name == "" {
		return &UsageError{Usage: "delf NAME|~"}
	}
	if name == "~" {
		s.ctx.ClearFunctions()
		if err := s.save(Store.ClearFuncs); err != nil {
			return err
		}
		s.message("Deleted all functions")
		return nil
	}
	if err := s.ctx.DeleteFunction(name); err != nil {
		return fmt.Errorf("the function %q does not exist", name)
	}
	if err := s.save(func(st Store) error { return ignoreNotFound(st.DelFunc(name)) }); err != nil {
		return err
	}
	s.message("Deleted " + strconv.Quote(name) + ".")
	return nil
}

func (s *Shell) function(arg string) error {
	name, rest, _ := strings.Cut(arg, " ")
	params, body, _ := strings.Cut(strings.TrimSpace(rest), " ")
	body = strings.TrimSpace(body)
	if name == "" || params == "" || body == "" {
		return &UsageError{Usage: "function NAME PARAMS EXPR"}
	}
	if err := s.ctx.DefineFunction(name, params, body); err != nil {
		return err
	}
	err := s.save(func(st Store) error {
		return st.SetFunc(store.Func{Name: name, Params: params, Body: body})
	})
	if err != nil {
		return err
	}
	s.message("Defined function " + name + "(" + params + ")=" + escapeMarkers(body))
	return nil
}

func (s *Shell) display(expr string) error {
	if expr == "" {
		return &UsageError{Usage: "display EXPR"}
	}
	r, err := s.ctx.EvalString(expr)
	if err != nil {
		return err
	}
	if n, ok := r.(mathcmd.Number); ok {
		fmt.Fprintln(s.out, string(char(float64(n))))
		return nil
	}
	codes := r.Comps()
	text := make([]rune, len(codes))
	for i, c := range codes {
		if c == 128 {
			text[i] = Marker
		} else {
			text[i] = char(c)
		}
	}
	s.message(string(text))
	return nil
}

// char converts a character code to a rune, truncating toward zero.
func char(c float64) rune {
	if c != c || c < 0 || c > 0x10ffff {
		return utf8.RuneError
	}
	return rune(c)
}

func (s *Shell) listVars(vars map[string]mathcmd.Value, order []string) {
	if order == nil {
		for k := range vars {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	w := 0
	for _, k := range order {
		if n := runewidth.StringWidth(k); n > w {
			w = n
		}
	}
	for _, k := range order {
		s.message(runewidth.FillRight(k+":", w+1) + " " + vars[k].String())
	}
}

func (s *Shell) listFuncs() {
	var b strings.Builder
	b.WriteString("Pre-Defined Functions\n")
	builtins := s.ctx.BuiltinFunctions()
	sigs := make([]string, len(builtins))
	w := 0
	for i, f := range builtins {
		sigs[i] = f.Signature(false)
		if n := runewidth.StringWidth(sigs[i]); n > w {
			w = n
		}
	}
	for i, f := range builtins {
		b.WriteString("\t")
		if f.Desc == "" {
			b.WriteString(sigs[i])
		} else {
			b.WriteString(runewidth.FillRight(sigs[i], w))
			b.WriteString("  ")
			b.WriteString(f.Desc)
		}
		b.WriteByte('\n')
	}
	b.WriteString("User-Defined Functions")
	for _, f := range s.ctx.UserFunctions() {
		b.WriteString("\n\t" + f.Signature(true) + ": §7" + escapeMarkers(f.Body) + "§f")
	}
	s.message(b.String())
}

// escapeMarkers doubles color markers so that they print literally.
func escapeMarkers(s string) string {
	return strings.ReplaceAll(s, string(Marker), string(Marker)+string(Marker))
}

// message writes msg with color codes rendered, indenting each line.
func (s *Shell) message(msg string) {
	msg = Render(msg, s.color)
	fmt.Fprintln(s.out, "\t"+strings.ReplaceAll(msg, "\n", "\n\t"))
}

// save applies f to the store if there is one.
func (s *Shell) save(f func(Store) error) error {
	if s.store == nil {
		return nil
	}
	if err := f(s.store); err != nil {
		return fmt.Errorf("saving: %w", err)
	}
	return nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
