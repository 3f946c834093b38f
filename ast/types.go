package ast

import "strings"

// Type is the interface implemented by every Kis type.
type Type interface {
	String() string
	isType()
}

// PrimitiveType is one of the built-in scalar types.
type PrimitiveType struct {
	name string
}

func (t *PrimitiveType) String() string { return t.name }
func (t *PrimitiveType) isType()        {}

// The primitive types. Each is a singleton, so primitives compare by pointer.
var (
	IntType     = &PrimitiveType{"int"}
	FloatType   = &PrimitiveType{"float"}
	StringType  = &PrimitiveType{"string"}
	BooleanType = &PrimitiveType{"boolean"}
	VoidType    = &PrimitiveType{"void"}
	// AnyType only appears in standard-library signatures.
	AnyType = &PrimitiveType{"any"}
)

// ArrayType is [Element].
type ArrayType struct {
	Element Type
}

func (t *ArrayType) String() string { return "[" + t.Element.String() + "]" }
func (t *ArrayType) isType()        {}

// OptionalType is Base?.
type OptionalType struct {
	Base Type
}

func (t *OptionalType) String() string { return t.Base.String() + "?" }
func (t *OptionalType) isType()        {}

// FunctionType is (Params...) -> Return.
type FunctionType struct {
	Params []Type
	Return Type
}

func (t *FunctionType) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return "(" + strings.Join(params, ", ") + ") -> " + t.Return.String()
}
func (t *FunctionType) isType() {}

// Field is one member of a struct type. Fields are entities so that the
// generator can rename them.
type Field struct {
	ID   int
	Name string
	Type Type
}

func (f *Field) EntityID() int      { return f.ID }
func (f *Field) EntityName() string { return f.Name }

// StructType is a named record type. Two struct types are equivalent only
// when they are the same declaration.
type StructType struct {
	ID     int
	Name   string
	Fields []*Field
}

func (t *StructType) String() string     { return t.Name }
func (t *StructType) isType()            {}
func (t *StructType) EntityID() int      { return t.ID }
func (t *StructType) EntityName() string { return t.Name }

// FieldNamed returns the field called name, or nil.
func (t *StructType) FieldNamed(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Equivalent reports whether a and b denote the same type. Structural types
// are compared component-wise; everything else by identity.
func Equivalent(a, b Type) bool {
	if a == b {
		return true
	}
	switch ta := a.(type) {
	case *ArrayType:
		tb, ok := b.(*ArrayType)
		return ok && Equivalent(ta.Element, tb.Element)
	case *OptionalType:
		tb, ok := b.(*OptionalType)
		return ok && Equivalent(ta.Base, tb.Base)
	case *FunctionType:
		tb, ok := b.(*FunctionType)
		if !ok || len(ta.Params) != len(tb.Params) || !Equivalent(ta.Return, tb.Return) {
			return false
		}
		for i := range ta.Params {
			if !Equivalent(ta.Params[i], tb.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Assignable reports whether a value of type from may be stored where a
// value of type to is expected. An int may widen to a float; there is no
// other implicit conversion.
func Assignable(from, to Type) bool {
	if Equivalent(from, to) {
		return true
	}
	return from == IntType && to == FloatType
}

// IsNumeric returns true for int and float.
func IsNumeric(t Type) bool {
	return t == IntType || t == FloatType
}

// IsArray returns true for array types.
func IsArray(t Type) bool {
	_, ok := t.(*ArrayType)
	return ok
}
