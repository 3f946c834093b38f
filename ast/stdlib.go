package ast

func builtin(name string, params []Type, ret Type) *Function {
	return &Function{ID: -1, Name: name, Type: &FunctionType{Params: params, Return: ret}}
}

var anyArray = &ArrayType{Element: AnyType}

// Standard-library entities. They are shared by every compilation and are
// never renamed by the generator.
var (
	Length = builtin("length", []Type{anyArray}, IntType)
	Random = builtin("random", []Type{anyArray}, AnyType)

	Pi    = &Variable{ID: -1, Name: "pi", Type: FloatType}
	Sin   = builtin("sin", []Type{FloatType}, FloatType)
	Cos   = builtin("cos", []Type{FloatType}, FloatType)
	Sqrt  = builtin("sqrt", []Type{FloatType}, FloatType)
	Exp   = builtin("exp", []Type{FloatType}, FloatType)
	Ln    = builtin("ln", []Type{FloatType}, FloatType)
	Hypot = builtin("hypot", []Type{FloatType, FloatType}, FloatType)

	MathModule = &Module{
		Name:    "math",
		Members: []Entity{Pi, Sin, Cos, Sqrt, Exp, Ln, Hypot},
	}
)

// Prelude lists the entities bound in the outermost scope of every program.
func Prelude() []Entity {
	return []Entity{Length, Random, MathModule}
}

// IsArrayBuiltin reports whether f takes any array and must be checked
// against the argument's element type rather than its signature.
func IsArrayBuiltin(f *Function) bool {
	return f == Length || f == Random
}
