package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nooga/explicate/pkg/driver"
)

// settle is how long a file must stay quiet before it is lowered again.
// Editors often write a file in several steps.
const settle = 50 * time.Millisecond

// runWatch lowers the files once and then again each time one of them is
// written, until ctx is done. Directories are watched rather than the files
// themselves so that editors replacing a file by rename are seen.
func runWatch(ctx context.Context, paths []string, opts driver.Options, emit emitter) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
	}

	runFiles(ctx, paths, opts, emit)

	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[ev.Name] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			opts.Logger.Debug("changed", "file", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = true
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %s\n", err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			fmt.Printf("// %s\n", time.Now().Format(time.TimeOnly))
			runFiles(ctx, changed, opts, emit)
		}
	}
}
