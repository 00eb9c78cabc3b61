// Package driver wires the pipeline together: read, parse, resolve scopes,
// analyze jumps, lower, and optionally fold.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/constfold"
	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/explicator"
	"github.com/nooga/explicate/pkg/jumps"
	"github.com/nooga/explicate/pkg/lexer"
	"github.com/nooga/explicate/pkg/parser"
	"github.com/nooga/explicate/pkg/scope"
	"github.com/nooga/explicate/pkg/source"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf("[Driver] "+format+"\n", args...)
	}
}

// Options configure one run of the pipeline.
type Options struct {
	// Module parses every input with the module goal.
	Module bool
	// Fold runs constant folding on the lowered graph.
	Fold bool
	// Logger receives progress at debug level. nil discards it.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Result is the outcome of lowering one file.
type Result struct {
	Source    *source.SourceFile
	Semantics *asg.Semantics
	Errors    []errors.Error
}

// ReadSource reads a file and decodes it to UTF-8. A UTF-8 or UTF-16 byte
// order mark selects the encoding and is dropped; without one the file is
// taken as UTF-8, with invalid bytes replaced. Files ending in .mjs use the
// module goal.
func ReadSource(path string) (*source.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	src := source.FromFile(path, string(decoded))
	src.Module = filepath.Ext(path) == ".mjs"
	return src, nil
}

// Explicate runs the pipeline on src. The returned errors are syntax errors
// from parsing and scope analysis, or a single unsupported-construct error
// from lowering; the graph is nil whenever errors are returned.
func Explicate(src *source.SourceFile, opts Options) (*asg.Semantics, []errors.Error) {
	log := opts.logger().With("file", src.DisplayPath())
	if opts.Module {
		src.Module = true
	}

	program, errs := parser.NewParser(lexer.NewLexerWithSource(src)).ParseProgram()
	if len(errs) > 0 {
		log.Debug("parse failed", "errors", len(errs))
		return nil, errs
	}
	log.Debug("parsed", "statements", len(program.Statements), "module", src.Module)

	lookup, errs := scope.Analyze(program)
	if len(errs) > 0 {
		log.Debug("scope analysis failed", "errors", len(errs))
		return nil, errs
	}
	table := jumps.Analyze(program)
	log.Debug("analyzed", "jumps", table.Len(), "strict", program.Strict)

	sem, err := explicator.Explicate(program, lookup, table)
	if err != nil {
		unsupported, ok := err.(*errors.UnsupportedError)
		if !ok {
			errors.Invariantf("lowering failed with %T: %v", err, err)
		}
		log.Debug("unsupported construct", "construct", unsupported.Construct)
		return nil, []errors.Error{unsupported}
	}
	log.Debug("lowered", "locals", len(sem.Locals), "functions", len(sem.FunctionScopes))

	if opts.Fold {
		sem = constfold.Fold(sem)
		log.Debug("folded")
	}
	debugPrintf("%s: done", src.DisplayPath())
	return sem, nil
}

// ExplicateString lowers code passed inline, e.g. with -e.
func ExplicateString(code string, opts Options) (*source.SourceFile, *asg.Semantics, []errors.Error) {
	src := source.NewEvalSource(code)
	sem, errs := Explicate(src, opts)
	return src, sem, errs
}

// ExplicateFiles lowers files concurrently, at most GOMAXPROCS at a time.
// Results are in the order of paths. Pipeline errors are reported per
// result; the returned error is the first file that could not be read, or
// the context's error.
func ExplicateFiles(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := ReadSource(path)
			if err != nil {
				return err
			}
			sem, errs := Explicate(src, opts)
			results[i] = Result{Source: src, Semantics: sem, Errors: errs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
