package doc

import (
	"strings"

	"github.com/kis-lang/kis/ast"
)

// FormatFile formats a FileDoc for terminal display. Undocumented
// declarations are left out.
func FormatFile(fd *FileDoc) string {
	var sb strings.Builder

	if fd.Doc != "" {
		sb.WriteString(fd.Doc)
		sb.WriteString("\n\n")
	}

	for _, s := range fd.Structs {
		if s.Doc == "" {
			continue
		}
		writeSymbol(&sb, structSignature(s), s.Doc)
		sb.WriteString("\n")
	}

	for _, f := range fd.Funcs {
		if f.Doc == "" {
			continue
		}
		writeSymbol(&sb, f.Signature, f.Doc)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// FormatSymbol formats a single symbol lookup result.
func FormatSymbol(doc, signature string) string {
	var sb strings.Builder
	writeSymbol(&sb, signature, doc)
	return sb.String()
}

// FormatStdlib lists the standard library: the prelude functions and the
// members of each importable module.
func FormatStdlib() string {
	var sb strings.Builder

	sb.WriteString("Prelude:\n")
	var modules []*ast.Module
	for _, e := range ast.Prelude() {
		switch e := e.(type) {
		case *ast.Function:
			sb.WriteString("  " + e.Name + ": " + e.Type.String() + "\n")
		case *ast.Module:
			modules = append(modules, e)
		}
	}

	for _, m := range modules {
		sb.WriteString("\nimport " + m.Name + ":\n")
		for _, e := range m.Members {
			switch e := e.(type) {
			case *ast.Function:
				sb.WriteString("  " + e.Name + ": " + e.Type.String() + "\n")
			case *ast.Variable:
				sb.WriteString("  " + e.Name + ": " + e.Type.String() + "\n")
			}
		}
	}

	return sb.String()
}

func writeSymbol(sb *strings.Builder, signature, doc string) {
	sb.WriteString(signature)
	sb.WriteString("\n")
	if doc != "" {
		sb.WriteString("    ")
		sb.WriteString(strings.ReplaceAll(doc, "\n", "\n    "))
		sb.WriteString("\n")
	}
}
