package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-isatty"

	"github.com/zephyrtronium/mathcmd"
)

// config is the program configuration. Fields come from the config file and
// then from flags that were set explicitly.
type config struct {
	// Store is the path of the database of saved definitions. Empty disables
	// saving.
	Store string `toml:"store"`
	// History is the path of the REPL history file. Empty disables history.
	History string `toml:"history"`
	// Color is auto, always, or never.
	Color    string `toml:"color"`
	Prompt   string `toml:"prompt"`
	MaxDepth int    `toml:"max_depth"`
}

func defaultConfig() config {
	c := config{Color: "auto", Prompt: "> ", MaxDepth: mathcmd.DefaultMaxDepth}
	if dir, err := os.UserConfigDir(); err == nil {
		c.Store = filepath.Join(dir, "mathcmd", "mathcmd.db")
		c.History = filepath.Join(dir, "mathcmd", "history")
	}
	return c
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mathcmd", "config.toml")
}

// parseArgs parses command-line arguments and the config file they name,
// returning the configuration and the remaining arguments.
func parseArgs(args []string) (config, []string, error) {
	cfg := defaultConfig()
	fl := cfg
	flags := flag.NewFlagSet("mathcmd", flag.ContinueOnError)
	path := flags.String("config", defaultConfigPath(), "TOML configuration file")
	flags.StringVar(&fl.Store, "store", fl.Store, "database of saved variables and functions (empty to not save)")
	flags.StringVar(&fl.History, "history", fl.History, "REPL history file (empty for no history)")
	flags.StringVar(&fl.Color, "color", fl.Color, "colored output: auto, always, or never")
	flags.StringVar(&fl.Prompt, "prompt", fl.Prompt, "REPL prompt")
	flags.IntVar(&fl.MaxDepth, "depth", fl.MaxDepth, "maximum evaluation depth")
	if err := flags.Parse(args); err != nil {
		return cfg, nil, err
	}

	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := decodeConfig(*path, &cfg, set["config"]); err != nil {
		return cfg, nil, err
	}
	for name, v := range map[string]func(){
		"store":   func() { cfg.Store = fl.Store },
		"history": func() { cfg.History = fl.History },
		"color":   func() { cfg.Color = fl.Color },
		"prompt":  func() { cfg.Prompt = fl.Prompt },
		"depth":   func() { cfg.MaxDepth = fl.MaxDepth },
	} {
		if set[name] {
			v()
		}
	}

	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return cfg, nil, fmt.Errorf("color must be auto, always, or never, not %q", cfg.Color)
	}
	if cfg.MaxDepth <= 0 {
		return cfg, nil, fmt.Errorf("depth (%d) must be positive", cfg.MaxDepth)
	}
	return cfg, flags.Args(), nil
}

// decodeConfig decodes the TOML file at path into cfg. A missing file is an
// error only if required is true.
func decodeConfig(path string, cfg *config, required bool) error {
	if path == "" {
		return nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("%s: unknown setting %s", path, keys[0])
	}
	return nil
}

// useColor reports whether output to f should be colored under mode.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
