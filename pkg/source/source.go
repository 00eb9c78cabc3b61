package source

import (
	"path/filepath"
	"strings"
)

// SourceFile is one unit of ECMAScript input handed to the pipeline.
type SourceFile struct {
	Name    string // Display name ("main.js", "<repl>", "<eval>")
	Path    string // Full file path, empty for inline code
	Content string
	Module  bool // Parse with module goal (strict, top-level bindings are local)

	lines []string
}

func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{Name: name, Path: path, Content: content}
}

// NewEvalSource wraps code passed on the command line with -e.
func NewEvalSource(content string) *SourceFile {
	return &SourceFile{Name: "<eval>", Content: content}
}

// NewReplSource wraps one REPL entry.
func NewReplSource(content string) *SourceFile {
	return &SourceFile{Name: "<repl>", Content: content}
}

// FromFile names the source after the base of filePath.
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// Lines returns the content split on newlines; the result is cached.
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// Line returns the 1-based line n, or "" when out of range.
func (sf *SourceFile) Line(n int) string {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r")
}

// DisplayPath prefers Path and falls back to Name.
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}
