// Package doc extracts documentation from Kis source files.
//
// Consecutive // lines immediately before a top-level kitty or breed
// declaration (no blank line gap) are attached as the doc comment for that
// declaration. The first comment block of a file, before any code, is the
// file doc.
package doc

import (
	"fmt"
	"os"
	"strings"

	"github.com/kis-lang/kis/parser"
)

// FileDoc holds all extracted documentation for a single Kis file.
type FileDoc struct {
	Path    string
	Doc     string // file-level doc (first // block before any code)
	Funcs   []FuncDoc
	Structs []StructDoc
}

// FuncDoc describes a top-level function.
type FuncDoc struct {
	Name      string
	Signature string // e.g. "kitty gcd(x: int, y: int) -> int"
	Doc       string
	Line      int // 1-based line number of the kitty keyword
}

// StructDoc describes a top-level struct.
type StructDoc struct {
	Name   string
	Fields []string // "name: type"
	Doc    string
	Line   int
}

// ExtractFile reads a Kis file and extracts all documentation.
func ExtractFile(path string) (*FileDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Extract(data, path)
}

// Extract parses src and returns its documentation. Declarations come from
// the parse tree, so a file with a syntax error has no documentation.
func Extract(src []byte, path string) (*FileDoc, error) {
	m, err := parser.Parse(path, src)
	if err != nil {
		return nil, err
	}

	blocks := commentBlocks(string(src))
	fd := &FileDoc{Path: path}
	if len(blocks) > 0 && onlyBlankBefore(string(src), blocks[0].first) {
		fd.Doc = blocks[0].text
	}

	// A block documents the declaration on the line right after it.
	byEnd := make(map[int]string, len(blocks))
	for _, b := range blocks {
		byEnd[b.last] = b.text
	}

	for _, s := range m.File.Stmts {
		switch d := s.(type) {
		case *parser.FuncDecl:
			line := m.Position(d.At).Line
			fd.Funcs = append(fd.Funcs, FuncDoc{
				Name:      d.Name.Name,
				Signature: signature(d),
				Doc:       byEnd[line-1],
				Line:      line,
			})
		case *parser.StructDecl:
			line := m.Position(d.At).Line
			fields := make([]string, len(d.Fields))
			for i, f := range d.Fields {
				fields[i] = f.Name.Name + ": " + typeString(f.Type)
			}
			fd.Structs = append(fd.Structs, StructDoc{
				Name:   d.Name.Name,
				Fields: fields,
				Doc:    byEnd[line-1],
				Line:   line,
			})
		}
	}

	return fd, nil
}

type commentBlock struct {
	first, last int // 1-based lines
	text        string
}

// commentBlocks returns the runs of whole-line // comments in src.
func commentBlocks(src string) []commentBlock {
	var blocks []commentBlock
	var cur []string
	start := 0
	flush := func(end int) {
		if len(cur) > 0 {
			blocks = append(blocks, commentBlock{first: start, last: end, text: strings.Join(cur, "\n")})
			cur = nil
		}
	}
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//") {
			flush(i)
			continue
		}
		if len(cur) == 0 {
			start = i + 1
		}
		cur = append(cur, strings.TrimPrefix(trimmed[2:], " "))
	}
	flush(len(lines))
	return blocks
}

// onlyBlankBefore reports whether every line before line is blank.
func onlyBlankBefore(src string, line int) bool {
	for _, l := range strings.SplitN(src, "\n", line)[:line-1] {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

func signature(d *parser.FuncDecl) string {
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Name.Name + ": " + typeString(p.Type)
	}
	sig := "kitty " + d.Name.Name + "(" + strings.Join(params, ", ") + ")"
	if d.Result != nil {
		sig += " -> " + typeString(d.Result)
	}
	return sig
}

func typeString(t parser.TypeExpr) string {
	switch t := t.(type) {
	case *parser.TypeName:
		return t.Name.Name
	case *parser.ArrayTypeExpr:
		return "[" + typeString(t.Elem) + "]"
	case *parser.OptionalTypeExpr:
		return typeString(t.Base) + "?"
	case *parser.FuncTypeExpr:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = typeString(p)
		}
		s := "(" + strings.Join(params, ", ") + ")"
		if t.Result != nil {
			s += " -> " + typeString(t.Result)
		}
		return s
	}
	return "?"
}

// LookupSymbol finds a specific function or struct by name in a FileDoc.
func LookupSymbol(fd *FileDoc, name string) (doc, sig string, found bool) {
	for _, f := range fd.Funcs {
		if f.Name == name {
			return f.Doc, f.Signature, true
		}
	}
	for _, s := range fd.Structs {
		if s.Name == name {
			return s.Doc, structSignature(s), true
		}
	}
	return "", "", false
}

func structSignature(s StructDoc) string {
	return "breed " + s.Name + ": " + strings.Join(s.Fields, ", ")
}
