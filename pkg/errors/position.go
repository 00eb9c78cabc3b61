package errors

import (
	"fmt"

	"github.com/nooga/explicate/pkg/source"
)

// Position is a location in a source file. Line and Column are 1-based,
// StartPos and EndPos are byte offsets into the content.
type Position struct {
	Line     int
	Column   int
	StartPos int
	EndPos   int
	Source   *source.SourceFile
}

func (p Position) String() string {
	if p.Source != nil {
		return fmt.Sprintf("%s:%d:%d", p.Source.DisplayPath(), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
