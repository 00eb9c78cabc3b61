package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/nooga/explicate/pkg/driver"
	"github.com/nooga/explicate/pkg/lexer"
	"github.com/nooga/explicate/pkg/parser"
	"github.com/nooga/explicate/pkg/source"
)

const (
	historyFile = ".explicate_history"
	promptMain  = "> "
	promptCont  = "... "
	replHelp    = `Commands:
  :fold            Toggle constant folding
  :module          Toggle the module goal
  :format <name>   Switch the output format
  :quit            Exit
`
)

// runRepl lowers each entry as its own program. An entry spans lines until
// the parser stops asking for more input.
func runRepl(opts driver.Options, emit emitter) {
	fmt.Println("Explicate (:help for commands, Ctrl+D to exit)")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readEntry(ln, opts.Module)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(trimmed, &opts, &emit); quit {
				break
			}
			continue
		}
		lowerSource(os.Stdout, source.NewReplSource(code), opts, emit)
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
}

// readEntry reads lines until they parse or fail for a reason other than
// running out of input. It returns false at end of input.
func readEntry(ln *liner.State, module bool) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		code := b.String()
		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			return code, true
		}

		src := source.NewReplSource(code)
		src.Module = module
		p := parser.NewParser(lexer.NewLexerWithSource(src))
		if _, errs := p.ParseProgram(); len(errs) > 0 && p.Incomplete() {
			continue
		}
		return code, true
	}
}

func replCommand(line string, opts *driver.Options, emit *emitter) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Print(replHelp)
	case ":fold":
		opts.Fold = !opts.Fold
		fmt.Printf("folding %s\n", onOff(opts.Fold))
	case ":module":
		opts.Module = !opts.Module
		fmt.Printf("module goal %s\n", onOff(opts.Module))
	case ":format":
		if len(fields) != 2 {
			fmt.Printf("usage: :format <%s>\n", formatNames())
			break
		}
		e, ok := emitters[fields[1]]
		if !ok {
			fmt.Printf("unknown format %q\n", fields[1])
			break
		}
		*emit = e
	default:
		fmt.Printf("unknown command %s\n", fields[0])
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
