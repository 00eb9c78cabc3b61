package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/nooga/explicate/pkg/source"
)

func TestMessages(t *testing.T) {
	cause := stderrors.New("bad escape")
	syn := (&SyntaxError{Position: Position{Line: 2, Column: 3}, Msg: "unexpected token"}).CausedBy(cause)
	if got := syn.Error(); got != "Syntax Error at 2:3: unexpected token" {
		t.Errorf("syntax: %q", got)
	}
	if !stderrors.Is(syn, cause) {
		t.Error("syntax error does not unwrap to its cause")
	}

	tests := []struct {
		err  *UnsupportedError
		want string
	}{
		{&UnsupportedError{Construct: "ForOfStatement"}, "ForOfStatement is not supported"},
		{&UnsupportedError{Construct: "LetDeclaration", Detail: "captured loop binding"}, "LetDeclaration is not supported (captured loop binding)"},
	}
	for _, tt := range tests {
		if got := tt.err.Message(); got != tt.want {
			t.Errorf("message = %q, want %q", got, tt.want)
		}
		if tt.err.Kind() != "Unsupported" {
			t.Errorf("kind = %q", tt.err.Kind())
		}
	}
}

func TestInvariantf(t *testing.T) {
	defer func() {
		r := recover()
		ie, ok := r.(*InvariantError)
		if !ok {
			t.Fatalf("recovered %v", r)
		}
		if ie.Error() != "invariant violated: target 3 missing" {
			t.Errorf("message = %q", ie.Error())
		}
	}()
	Invariantf("target %d missing", 3)
}

func TestDisplayErrors(t *testing.T) {
	src := source.FromFile("/tmp/a.js", "x = 1;\n  y = ;\n")
	errs := []Error{
		&SyntaxError{Position: Position{Line: 2, Column: 7, Source: src}, Msg: "unexpected ;"},
		&UnsupportedError{Position: Position{Line: 9, Column: 1}, Construct: "WithStatement"},
	}
	var buf bytes.Buffer
	DisplayErrors(&buf, src.Content, errs)

	want := strings.Join([]string{
		"Syntax Error at /tmp/a.js:2:7: unexpected ;",
		"    y = ;",
		"        ^",
		"",
		"Unsupported Error: WithStatement is not supported",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 4, Column: 2}
	if p.String() != "4:2" {
		t.Errorf("got %q", p.String())
	}
	p.Source = source.NewEvalSource("")
	if p.String() != "<eval>:4:2" {
		t.Errorf("got %q", p.String())
	}
}
