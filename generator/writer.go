package generator

import (
	"fmt"
	"strings"
)

// jsWriter manages indented JavaScript output for the code generator.
type jsWriter struct {
	sb     strings.Builder
	indent int
}

// Linef writes an indented, formatted line with a trailing newline appended.
func (w *jsWriter) Linef(format string, args ...interface{}) {
	w.sb.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

// Indent increases the indentation level.
func (w *jsWriter) Indent() { w.indent++ }

// Dedent decreases the indentation level.
func (w *jsWriter) Dedent() { w.indent-- }

// String returns the accumulated output.
func (w *jsWriter) String() string { return w.sb.String() }
