package ast

// Transform rewrites a program tree. Implementations must not mutate the
// input script.
type Transform interface {
	Name() string
	Transform(s *Script) *Script
}

// TransformFunc adapts a named function to the Transform interface.
type TransformFunc struct {
	N string
	F func(*Script) *Script
}

func (t TransformFunc) Name() string                { return t.N }
func (t TransformFunc) Transform(s *Script) *Script { return t.F(s) }

// Chain composes transforms left-to-right into a single Transform.
// Each transform receives the output of the previous one.
func Chain(transforms ...Transform) Transform {
	return TransformFunc{
		N: "chain",
		F: func(s *Script) *Script {
			for _, t := range transforms {
				s = t.Transform(s)
			}
			return s
		},
	}
}

// --- Copy-on-write traversal helpers ---

// MapSlice applies fn to each element. Returns (newSlice, true) if any
// element changed, or (original, false) if all elements are identical.
func MapSlice[T comparable](items []T, fn func(T) T) ([]T, bool) {
	var out []T
	modified := false
	for i, item := range items {
		newItem := fn(item)
		if newItem != item {
			if !modified {
				out = make([]T, len(items))
				copy(out[:i], items[:i])
				modified = true
			}
		}
		if modified {
			out[i] = newItem
		}
	}
	if !modified {
		return items, false
	}
	return out, true
}

// FlatMapStatements applies fn to each statement and concatenates the
// results, so fn can drop a statement (nil/empty) or splice a block in its
// place. Returns (original, false) when every statement maps to itself.
func FlatMapStatements(stmts []Statement, fn func(Statement) []Statement) ([]Statement, bool) {
	var out []Statement
	modified := false
	for i, s := range stmts {
		ns := fn(s)
		same := len(ns) == 1 && ns[0] == s
		if !same && !modified {
			out = make([]Statement, i, len(stmts))
			copy(out, stmts[:i])
			modified = true
		}
		if modified {
			out = append(out, ns...)
		}
	}
	if !modified {
		return stmts, false
	}
	return out, true
}
