package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kis-lang/kis/analyzer"
	"github.com/kis-lang/kis/ast"
	"github.com/kis-lang/kis/golden"
	"github.com/kis-lang/kis/parser"
)

// Diagnostic returns the user-facing message of a compile error: the
// syntax or semantic error without the pipeline stage prefix.
func Diagnostic(err error) (string, bool) {
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		return serr.Error(), true
	}
	var aerr *analyzer.Error
	if errors.As(err, &aerr) {
		return aerr.Error(), true
	}
	return "", false
}

// Mismatch is a fixture whose compilation did not produce the expected
// output.
type Mismatch struct {
	Case golden.Case
	Got  string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s: want %s:\n%s\ngot:\n%s", m.Case.Name, m.Case.Kind, m.Case.Want, m.Got)
}

// Verify compiles a fixture and compares the result with its expectation.
// A wrong result is reported as a *Mismatch.
func (c *Compiler) Verify(ctx context.Context, tc golden.Case) error {
	res, err := c.CompileSource(ctx, tc.Name+".kis", []byte(tc.Source))
	if err != nil {
		msg, ok := Diagnostic(err)
		if !ok {
			return err
		}
		if tc.Kind != golden.Error || msg != tc.Want {
			return &Mismatch{Case: tc, Got: msg}
		}
		return nil
	}

	var got string
	switch tc.Kind {
	case golden.JS:
		got = res.JS
	case golden.Tree:
		got = ast.Sprint(res.Script)
	default:
		got = res.JS
	}
	got = strings.TrimSuffix(got, "\n")
	if tc.Kind == golden.Error || got != tc.Want {
		return &Mismatch{Case: tc, Got: got}
	}
	return nil
}
