package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/mathcmd"
	"github.com/zephyrtronium/mathcmd/internal/shell"
	"github.com/zephyrtronium/mathcmd/internal/store"
)

func main() {
	log.SetFlags(0)
	os.Exit(run())
}

// run runs the program and returns its exit status.
func run() int {
	cfg, args, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		log.Fatal(err)
	}
	color := useColor(cfg.Color, os.Stdout)

	cf := shell.Config{Out: os.Stdout, Log: log.Default(), Color: color}
	if cfg.Store != "" {
		st, err := store.Open(cfg.Store)
		if err != nil {
			// Usually another instance has the database open.
			log.Printf("definitions will not be saved: %v", err)
		} else {
			defer st.Close()
			cf.Store = st
		}
	}
	sh := shell.New(mathcmd.NewContext(mathcmd.MaxDepth(cfg.MaxDepth)), cf)
	if err := sh.Load(); err != nil {
		log.Println(err)
		return 1
	}

	if len(args) > 0 {
		if err := sh.Run(strings.Join(args, " ")); err != nil {
			printErr(sh, err)
			return 1
		}
		return 0
	}
	repl(sh, cfg)
	return 0
}

func repl(sh *shell.Shell, cfg config) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(sh.Complete)

	if cfg.History != "" {
		if f, err := os.Open(cfg.History); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(cfg.History), 0o755); err != nil {
				log.Println(err)
				return
			}
			f, err := os.Create(cfg.History)
			if err != nil {
				log.Println(err)
				return
			}
			ln.WriteHistory(f)
			f.Close()
		}()
	}

	for {
		line, err := ln.Prompt(cfg.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if !errors.Is(err, io.EOF) {
				log.Println(err)
			}
			fmt.Println()
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if err := sh.Run(line); err != nil {
			printErr(sh, err)
		}
	}
}

func printErr(sh *shell.Shell, err error) {
	msg := "\t" + err.Error()
	if sh.Color() {
		msg = shell.Red(msg)
	}
	fmt.Fprintln(os.Stderr, msg)
}
