package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/driver"
	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/render"
	"github.com/nooga/explicate/pkg/source"
)

// Exit codes follow sysexits.h.
const (
	exitUsage   = 64
	exitFailure = 70
)

type emitter func(io.Writer, *asg.Semantics) error

var emitters = map[string]emitter{
	"sexp": writeSexp,
	"dot":  render.DOT,
	"yaml": render.YAML,
}

func writeSexp(w io.Writer, sem *asg.Semantics) error {
	_, err := fmt.Fprintln(w, asg.FormatSemantics(sem))
	return err
}

func formatNames() string {
	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func main() {
	exprFlag := flag.String("e", "", "Lower the given code and exit")
	moduleFlag := flag.Bool("module", false, "Parse input with the module goal")
	foldFlag := flag.Bool("fold", false, "Fold constants after lowering")
	formatFlag := flag.String("format", "sexp", "Output format: "+formatNames())
	watchFlag := flag.Bool("watch", false, "Lower the files again whenever they change")
	verboseFlag := flag.Bool("v", false, "Log pipeline progress to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	emit, ok := emitters[*formatFlag]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown format %q (want one of %s)\n", *formatFlag, formatNames())
		os.Exit(exitUsage)
	}
	opts := driver.Options{Module: *moduleFlag, Fold: *foldFlag, Logger: logger}

	switch {
	case *exprFlag != "":
		if flag.NArg() > 0 || *watchFlag {
			usage()
		}
		if !lowerSource(os.Stdout, source.NewEvalSource(*exprFlag), opts, emit) {
			os.Exit(exitFailure)
		}
	case flag.NArg() == 0:
		if *watchFlag {
			usage()
		}
		runRepl(opts, emit)
	case *watchFlag:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := runWatch(ctx, flag.Args(), opts, emit); err != nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %s\n", err)
			os.Exit(exitFailure)
		}
	default:
		if !runFiles(context.Background(), flag.Args(), opts, emit) {
			os.Exit(exitFailure)
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: explicate [flags] [file ...] or explicate -e \"code\"\n")
	flag.PrintDefaults()
	os.Exit(exitUsage)
}

// lowerSource lowers one source and writes the graph to w, or the errors to
// stderr. It reports whether lowering succeeded.
func lowerSource(w io.Writer, src *source.SourceFile, opts driver.Options, emit emitter) bool {
	sem, errs := driver.Explicate(src, opts)
	return report(w, src, sem, errs, emit)
}

func report(w io.Writer, src *source.SourceFile, sem *asg.Semantics, errs []errors.Error, emit emitter) bool {
	if len(errs) > 0 {
		errors.DisplayErrors(os.Stderr, src.Content, errs)
		return false
	}
	if err := emit(w, sem); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %s\n", err)
		return false
	}
	return true
}

// runFiles lowers every file and prints each graph under a header naming
// its file when there is more than one.
func runFiles(ctx context.Context, paths []string, opts driver.Options, emit emitter) bool {
	results, err := driver.ExplicateFiles(ctx, paths, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %s\n", err)
		return false
	}
	ok := true
	for _, r := range results {
		if len(paths) > 1 {
			fmt.Printf("// %s\n", r.Source.DisplayPath())
		}
		if !report(os.Stdout, r.Source, r.Semantics, r.Errors, emit) {
			ok = false
		}
	}
	return ok
}
