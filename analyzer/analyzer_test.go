package analyzer

import (
	"testing"

	"github.com/kis-lang/kis/ast"
	"github.com/kis-lang/kis/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(src string) (*ast.Script, error) {
	m, err := parser.Parse("test.kis", []byte(src))
	if err != nil {
		return nil, err
	}
	return Analyze(m)
}

func mustAnalyze(t *testing.T, src string) *ast.Script {
	t.Helper()
	s, err := analyze(src)
	require.NoError(t, err)
	return s
}

func TestAnalyzeValidPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"string variable", `set catName = "Kis"`},
		{"print", `meow("Hi, my name is Kis!")`},
		{"reassignment", "set x = 1 reset x = x * 5 - ((-3) + x)"},
		{"increment and decrement", "set x = 10 pounce x-- pounce x++"},
		{"for over array", `set cats = ["garfield", "cleopatra"] fur cat in cats: meow(cat) nap`},
		{
			"break inside if inside for",
			`set cats = ["garfield", "sphinx"] fur cat in cats: if cat == "sphinx" || cat == "garfield": break else: meow(cat) nap nap`,
		},
		{"while with modulus", "set max = 10 set i = 0 whisker i < max: if i % 2 == 0: meow(i) nap pounce i++ nap"},
		{"recursion", "kitty gcd(x: int, y: int) -> int: purr y == 0 ? x : gcd(y, x % y) nap meow(gcd(12, 18))"},
		{"int widens to float", "set f = 1.5 reset f = 2"},
		{
			"mutual recursion",
			`kitty isEven(n: int) -> boolean: purr n == 0 ? true : isOdd(n - 1) nap
			 kitty isOdd(n: int) -> boolean: purr n == 0 ? false : isEven(n - 1) nap
			 meow(isEven(10))`,
		},
		{"call before declaration", `greet("Tom") kitty greet(n: string): meow(n) nap`},
		{"struct", `breed Cat: name: string, age: int nap set c = Cat("Tom", 3) meow(c.name) reset c = Cat("Kis", 1)`},
		{"recursive struct", "breed Node: value: int, next: Node? nap set n = Node(1, no Node) meow(n.value)"},
		{"optional", "set x = some 5 meow(x ?? 0) reset x = no int"},
		{"math import", "import math meow(sin(pi) + hypot(3.0, 4))"},
		{"array builtins", "set a = [1, 2, 3] meow(length(a)) meow(random(a) + 1)"},
		{"typed empty array", "set a = [] of string fur s in a: meow(s) nap"},
		{
			"function values",
			"kitty apply(f: (int) -> int, x: int) -> int: purr f(x) nap kitty twice(x: int) -> int: purr x * 2 nap meow(apply(twice, 5))",
		},
		{"void call statement", `kitty greet(n: string): meow(n) purr nap greet("Tom")`},
		{"string ordering", `meow("a" < "b")`},
		{"else if chain", "set x = 2 if x == 1: meow(1) else if x == 2: meow(2) else: meow(3) nap"},
		{"subscript", "set a = [[1], [2]] meow(a[1][0])"},
		{"mixed numeric comparison", "meow(1 == 1.0)"},
		{"parameter shadows global", "set x = 1 kitty f(x: string): meow(x) nap"},
		{"call after the variable it reads", "kitty a() -> int: purr b() nap set y = 5 kitty b() -> int: purr y nap meow(a())"},
		{"body calls a function reading a later variable", "kitty a() -> int: purr b() nap set y = 5 kitty b() -> int: purr y nap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(tt.src)
			assert.NoError(t, err)
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
		want string
	}{
		{"undeclared in print", "meow(x)", ResolutionError, "Line 1, col 6: Identifier x not declared"},
		{"assignment to undeclared", "reset x = 10", ResolutionError, "Line 1, col 7: Identifier x not declared"},
		{"increment a string", `set x = "hello" pounce x++`, TypeError, "Line 1, col 24: Expected an integer"},
		{"redeclaration", "set x = 1 set x = 2", DeclarationError, "Line 1, col 15: Identifier x already declared"},
		{"string to int", `set x = 1 reset x = "s"`, TypeError, "Line 1, col 21: Cannot assign string to int"},
		{"float to int", "set x = 1 reset x = 1.5", TypeError, "Line 1, col 21: Cannot assign float to int"},
		{"immutable", "stay x = 1 reset x = 2", TypeError, "Line 1, col 18: Cannot assign to immutable variable x"},
		{"immutable loop variable", "fur c in [1]: pounce c++ nap", TypeError, "Line 1, col 22: Cannot assign to immutable variable c"},
		{"break outside loop", "break", ControlFlowError, "Line 1, col 1: Break can only appear in a loop"},
		{"break in function in loop", "whisker true: kitty f(): break nap nap", ControlFlowError, "Line 1, col 26: Break can only appear in a loop"},
		{"return outside function", "purr 1", ControlFlowError, "Line 1, col 1: Return can only appear in a function"},
		{"value from void", "kitty f(): purr 1 nap", ControlFlowError, "Line 1, col 12: Cannot return a value from this function"},
		{"missing value", "kitty f() -> int: purr nap", ControlFlowError, "Line 1, col 19: Something should be returned"},
		{"wrong return type", `kitty f() -> int: purr "s" nap`, TypeError, "Line 1, col 24: Cannot assign string to int"},
		{"non-boolean test", "if 1: meow(1) nap", TypeError, "Line 1, col 4: Expected a boolean"},
		{"non-array collection", "fur x in 5: nap", TypeError, "Line 1, col 10: Expected an array"},
		{"adding string to int", `meow(1 + "a")`, TypeError, "Line 1, col 8: Expected two numbers or two strings"},
		{"not on int", "meow(!1)", TypeError, "Line 1, col 7: Expected a boolean"},
		{"negate string", `meow(-"a")`, TypeError, "Line 1, col 7: Expected a number"},
		{"ternary branches", `meow(true ? 1 : "a")`, TypeError, "Line 1, col 11: Mismatched types in ternary branches"},
		{"ternary string and int", `meow(false ? "a" : 1)`, TypeError, "Line 1, col 12: Mismatched types in ternary branches"},
		{"arity", "kitty f(a: int) -> int: purr a nap meow(f(1, 2))", TypeError, "Line 1, col 42: Expected 1 argument(s) but 2 passed"},
		{"argument type", `kitty f(a: int) -> int: purr a nap meow(f("a"))`, TypeError, "Line 1, col 43: Cannot assign string to int"},
		{"call a variable", "set x = 1 x()", TypeError, "Line 1, col 11: Expected a function"},
		{"mixed array", `meow([1, "a"])`, TypeError, "Line 1, col 10: Not all elements have the same type"},
		{"unknown field", `breed Cat: name: string nap set c = Cat("a") meow(c.age)`, ResolutionError, "Line 1, col 53: No such field age"},
		{"unknown module", "import dog", ResolutionError, "Line 1, col 8: Module dog not found"},
		{"duplicate parameter", "kitty f(a: int, a: int): nap", DeclarationError, "Line 1, col 17: Identifier a already declared"},
		{"duplicate field", "breed Cat: a: int, a: int nap", DeclarationError, "Line 1, col 20: Field a already declared"},
		{"void value", "kitty f(): nap set y = f()", TypeError, "Line 1, col 25: Expected a value but the function returns nothing"},
		{"block scope ends", "if true: set y = 1 nap meow(y)", ResolutionError, "Line 1, col 29: Identifier y not declared"},
		{"compare int to string", `meow(1 == "a")`, TypeError, "Line 1, col 8: Cannot compare int to string"},
		{"coalesce non-optional", "set x = 5 meow(x ?? 1)", TypeError, "Line 1, col 16: Expected an optional"},
		{"string index", `set a = [1] meow(a["x"])`, TypeError, "Line 1, col 20: Expected an integer"},
		{"struct as value", "breed Cat: a: int nap meow(Cat)", TypeError, "Line 1, col 28: Expected a value but found Cat"},
		{"unknown type", "kitty f(a: Dog): nap", ResolutionError, "Line 1, col 12: Identifier Dog not declared"},
		{"variable as type", "set Dog = 1 if true: kitty f(a: Dog): nap nap", TypeError, "Line 1, col 33: Type expected but found Dog"},
		{"signatures bind before statements", "set Dog = 1 kitty f(a: Dog): nap", ResolutionError, "Line 1, col 24: Identifier Dog not declared"},
		{"double import", "import math import math", DeclarationError, "Line 1, col 20: Identifier pi already declared"},
		{"length of int", "meow(length(3))", TypeError, "Line 1, col 13: Expected an array"},
		{"construction as statement", "breed Cat: a: int nap Cat(1)", TypeError, "Line 1, col 26: Expected a function call"},
		{"reset pi", "import math reset pi = 3.0", TypeError, "Line 1, col 19: Cannot assign to immutable variable pi"},
		{"call reaches a later variable", "kitty a() -> int: purr b() nap meow(a()) set y = 5 kitty b() -> int: purr y nap", ResolutionError, "Line 1, col 37: Function a uses y before its declaration"},
		{"nested call reaches a later variable", "if true: b() nap set y = 5 kitty b(): meow(y) nap", ResolutionError, "Line 1, col 10: Function b uses y before its declaration"},
		{"initializer reaches a later variable", "set x = f() set y = 2 kitty f() -> int: purr y nap", ResolutionError, "Line 1, col 9: Function f uses y before its declaration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(tt.src)
			require.Error(t, err)
			var aerr *Error
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, tt.kind, aerr.Kind(), "kind")
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestAnalyzeTrivialProgram(t *testing.T) {
	s := mustAnalyze(t, "set x = 5 + 3 meow(x)")
	require.Len(t, s.Statements, 2)

	decl := s.Statements[0].(*ast.VariableDeclaration)
	assert.Equal(t, "x", decl.Variable.Name)
	assert.True(t, decl.Variable.Mutable)
	assert.Same(t, ast.IntType, decl.Variable.Type)
	assert.Equal(t, &ast.BinaryExpression{Op: "+", Left: ast.IntLit(5), Right: ast.IntLit(3), Type: ast.IntType}, decl.Initializer)

	out := s.Statements[1].(*ast.PrintStatement)
	assert.Same(t, decl.Variable, out.Expression, "a reference is the declared entity itself")
	assert.Equal(t, 1, s.Entities.Len())
}

func TestAnalyzeShadowingKeepsOuterBinding(t *testing.T) {
	s := mustAnalyze(t, `set x = 1 if true: set x = "s" meow(x) nap meow(x)`)
	outer := s.Statements[0].(*ast.VariableDeclaration).Variable
	inner := s.Statements[1].(*ast.ShortIfStatement).Consequent[0].(*ast.VariableDeclaration).Variable
	assert.NotSame(t, outer, inner)
	assert.Same(t, ast.StringType, inner.Type)
	assert.Same(t, outer, s.Statements[2].(*ast.PrintStatement).Expression)
}

func TestAnalyzeExpressionTypes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2", "int"},
		{"1 + 2.0", "float"},
		{"6 / 3", "float"},
		{"2 ** 3", "int"},
		{`"a" + "b"`, "string"},
		{"1 < 2", "boolean"},
		{"[1, 2.5]", "[float]"},
		{"[] of [int]", "[[int]]"},
		{"some 1", "int?"},
		{"no string", "string?"},
		{"(some 1) ?? 2", "int"},
		{"-1.5", "float"},
		{"length([true])", "int"},
		{`random(["a"])`, "string"},
		{"true ? 1 : 2", "int"},
		{"true ? 1 : 1.5", "float"},
		{"false ? 2.5 : 1", "float"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s := mustAnalyze(t, "meow("+tt.src+")")
			e := s.Statements[0].(*ast.PrintStatement).Expression
			assert.Equal(t, tt.want, ast.TypeOf(e).String())
		})
	}
}

func TestAnalyzeIfAlternates(t *testing.T) {
	s := mustAnalyze(t, "set x = 1 if x == 1: meow(1) else if x == 2: meow(2) else: meow(3) nap")
	outer := s.Statements[1].(*ast.IfStatement)
	inner, ok := outer.Alternate.(*ast.IfStatement)
	require.True(t, ok, "else if is a chained IfStatement")
	assert.IsType(t, ast.ElseBlock{}, inner.Alternate)

	s = mustAnalyze(t, "set x = 1 if x == 1: meow(1) else if x == 2: meow(2) nap")
	alt, ok := s.Statements[1].(*ast.IfStatement).Alternate.(ast.ElseBlock)
	require.True(t, ok, "a trailing else if without else becomes an else block")
	assert.IsType(t, &ast.ShortIfStatement{}, alt[0])
}

func TestAnalyzeForIterator(t *testing.T) {
	s := mustAnalyze(t, "fur c in [1.5]: meow(c) nap")
	loop := s.Statements[0].(*ast.ForStatement)
	assert.False(t, loop.Iterator.Mutable)
	assert.Same(t, ast.FloatType, loop.Iterator.Type)
	assert.Same(t, loop.Iterator, loop.Body[0].(*ast.PrintStatement).Expression)
}

func TestAnalyzeFunctionEntities(t *testing.T) {
	s := mustAnalyze(t, "kitty f(a: int) -> int: purr f(a) nap")
	decl := s.Statements[0].(*ast.FunctionDeclaration)
	assert.Equal(t, "(int) -> int", decl.Fun.Type.String())
	ret := decl.Body[0].(*ast.ReturnStatement)
	call := ret.Expression.(*ast.FunctionCall)
	assert.Same(t, decl.Fun, call.Callee)
	assert.Same(t, decl.Params[0], call.Args[0])
}

func TestAnalyzeImportProducesNoStatement(t *testing.T) {
	s := mustAnalyze(t, "import math meow(pi)")
	require.Len(t, s.Statements, 1)
	assert.Same(t, ast.Pi, s.Statements[0].(*ast.PrintStatement).Expression)
}

func TestAnalyzeBreakInsideWhile(t *testing.T) {
	s := mustAnalyze(t, "whisker true: break nap")
	loop := s.Statements[0].(*ast.WhileStatement)
	assert.IsType(t, &ast.BreakStatement{}, loop.Body[0])
}
