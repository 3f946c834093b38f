// Package compiler runs the Kis pipeline: parse, analyze, optimize and
// generate JavaScript.
package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/kis-lang/kis/analyzer"
	"github.com/kis-lang/kis/ast"
	"github.com/kis-lang/kis/generator"
	"github.com/kis-lang/kis/optimizer"
	"github.com/kis-lang/kis/parser"
)

// Compiler holds the pipeline options. The zero value optimizes.
type Compiler struct {
	// NoOptimize skips the optimizer; the analyzed tree goes straight to
	// the generator.
	NoOptimize bool
}

// Result holds the output of a compilation.
type Result struct {
	JS         string
	Script     *ast.Script // the tree the JavaScript was generated from
	SourceFile string
}

// Passes returns the tree transforms run between analysis and generation.
func (c *Compiler) Passes() []ast.Transform {
	if c.NoOptimize {
		return nil
	}
	return []ast.Transform{optimizer.Pass()}
}

// Compile reads a .kis file and compiles it.
func (c *Compiler) Compile(ctx context.Context, filename string) (*Result, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "name", filename, "size", len(src))

	return c.CompileSource(ctx, filename, src)
}

// CompileSource compiles src. name only shows up in positions.
func (c *Compiler) CompileSource(ctx context.Context, name string, src []byte) (*Result, error) {
	script, err := c.Check(ctx, name, src)
	if err != nil {
		return nil, err
	}

	script = c.transform(ctx, script)

	js, err := generate(ctx, script)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	return &Result{JS: js, Script: script, SourceFile: name}, nil
}

// Check parses and analyzes src without optimizing or generating code.
func (c *Compiler) Check(ctx context.Context, name string, src []byte) (*ast.Script, error) {
	m, err := parse(ctx, name, src)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	script, err := analyze(ctx, m)
	if err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	return script, nil
}

func parse(ctx context.Context, name string, src []byte) (*parser.Match, error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "parse", "name", name, "size", len(src))
	defer tr.Finish()

	m, err := parser.Parse(name, src)
	if err != nil {
		tr.Printw("syntax error", "err", err)
		return nil, err
	}

	tr.Printw("parsed", "statements", len(m.File.Stmts))

	return m, nil
}

func analyze(ctx context.Context, m *parser.Match) (*ast.Script, error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "analyze", "name", m.Name())
	defer tr.Finish()

	s, err := analyzer.Analyze(m)
	if err != nil {
		tr.Printw("semantic error", "err", err)
		return nil, err
	}

	tr.Printw("analyzed", "statements", len(s.Statements), "entities", s.Entities.Len())

	return s, nil
}

func (c *Compiler) transform(ctx context.Context, s *ast.Script) *ast.Script {
	for _, p := range c.Passes() {
		tr, _ := tlog.SpawnFromContextAndWrap(ctx, p.Name())

		out := p.Transform(s)

		tr.Printw("pass done", "changed", out != s, "statements", len(out.Statements))
		tr.Finish()

		s = out
	}

	return s
}

func generate(ctx context.Context, s *ast.Script) (string, error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "generate")
	defer tr.Finish()

	js, err := generator.Generate(s)
	if err != nil {
		return "", err
	}

	tr.Printw("generated", "size", len(js))

	return js, nil
}
