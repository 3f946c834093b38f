// Package golden extracts end-to-end compiler fixtures from Markdown.
//
// A fixture file holds any number of cases. Each case starts at a heading
// "Test: name" and is followed by one kis fence with the source and exactly
// one expectation fence: js for the generated program, error for the
// diagnostic, or tree for the printed program tree.
package golden

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind names an expectation fence.
type Kind string

const (
	JS    Kind = "js"
	Error Kind = "error"
	Tree  Kind = "tree"
)

const sourceFence = "kis"

// Case is one fixture.
type Case struct {
	Name   string
	Line   int // line of the heading in the fixture file
	Source string
	Kind   Kind
	Want   string
}

// ReadFile extracts the cases of a fixture file.
func ReadFile(name string) ([]Case, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	cases, err := Extract(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cases, nil
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(source []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var cur *Case
	finish := func() error {
		if cur == nil {
			return nil
		}
		if err := validate(cur); err != nil {
			return err
		}
		cases = append(cases, *cur)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			name, ok := strings.CutPrefix(heading, "Test: ")
			if !ok {
				return ast.WalkSkipChildren, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			cur = &Case{Name: strings.TrimSpace(name), Line: lineOf(n, source)}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lang := string(n.Language(source))
			line := lineOf(n, source)
			if cur == nil {
				if lang != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test", line, lang)
				}
				return ast.WalkContinue, nil
			}
			body := strings.TrimRight(fenceText(n, source), "\n")
			switch Kind(lang) {
			case sourceFence:
				if cur.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: second kis fence in test %q", line, cur.Name)
				}
				cur.Source = body
			case JS, Error, Tree:
				if cur.Kind != "" {
					return ast.WalkStop, fmt.Errorf("line %d: second expectation in test %q", line, cur.Name)
				}
				cur.Kind, cur.Want = Kind(lang), body
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence %q in test %q", line, lang, cur.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("line %d: test without a name", c.Line)
	}
	if c.Source == "" {
		return fmt.Errorf("test %q has no kis fence", c.Name)
	}
	if c.Kind == "" {
		return fmt.Errorf("test %q has no expectation", c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceText(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of a block's first content line, or 0
// for an empty block.
func lineOf(n ast.Node, source []byte) int {
	start := -1
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		start = n.Lines().At(0).Start
	} else if t, ok := n.FirstChild().(*ast.Text); ok {
		start = t.Segment.Start
	}
	if start < 0 {
		return 0
	}
	return bytes.Count(source[:start], []byte("\n")) + 1
}
