package generator

import (
	"regexp"
	"strings"
	"testing"

	"github.com/kis-lang/kis/analyzer"
	"github.com/kis-lang/kis/ast"
	"github.com/kis-lang/kis/optimizer"
	"github.com/kis-lang/kis/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	m, err := parser.Parse("test.kis", []byte(src))
	require.NoError(t, err)
	s, err := analyzer.Analyze(m)
	require.NoError(t, err)
	js, err := Generate(optimizer.Optimize(s))
	require.NoError(t, err)
	return js
}

// dedent strips the indentation shared by test fixtures and leading blank
// lines, keeping the relative indentation of generated code.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	prefix := len(lines[0]) - len(strings.TrimLeft(lines[0], "\t"))
	for i, l := range lines {
		if len(l) >= prefix {
			lines[i] = l[prefix:]
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestGenerateFixtures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "small",
			src: `
				set x = 3 * 7
				pounce x++
				pounce x--
				set y = true
				reset y = 5 ** -x / -100 > -x || false
				meow((y && y) || false || (x * 2) != 5)`,
			want: `
				let x_1 = 21;
				x_1++;
				x_1--;
				let y_2 = true;
				y_2 = (((5 ** -(x_1)) / -100) > -(x_1));
				console.log(((y_2 && y_2) || ((x_1 * 2) !== 5)));`,
		},
		{
			name: "if",
			src: `
				set x = 0
				if x == 0: meow("1") nap
				if x == 0: meow(1) else: meow(2) nap
				if x == 0: meow(1) else if x == 2: meow(3) nap
				if x == 0: meow(1) else if x == 2: meow(3) else: meow(4) nap`,
			want: `
				let x_1 = 0;
				if ((x_1 === 0)) {
				  console.log("1");
				}
				if ((x_1 === 0)) {
				  console.log(1);
				} else {
				  console.log(2);
				}
				if ((x_1 === 0)) {
				  console.log(1);
				} else {
				  if ((x_1 === 2)) {
				    console.log(3);
				  }
				}
				if ((x_1 === 0)) {
				  console.log(1);
				} else
				  if ((x_1 === 2)) {
				    console.log(3);
				  } else {
				    console.log(4);
				  }`,
		},
		{
			name: "while",
			src: `
				set x = 0
				whisker x < 5:
				  set y = 0
				  whisker y < x:
				    reset y = y + 1
				    break
				  nap
				  pounce x++
				nap
				whisker false: meow(x) nap`,
			want: `
				let x_1 = 0;
				while ((x_1 < 5)) {
				  let y_2 = 0;
				  while ((y_2 < x_1)) {
				    y_2 = (y_2 + 1);
				    break;
				  }
				  x_1++;
				}`,
		},
		{
			name: "functions",
			src: `
				import math
				set z = 0.5
				kitty f(x: float, y: boolean):
				  meow(sin(x) > pi)
				  purr
				nap
				kitty g() -> boolean:
				  purr false
				nap
				f(z, g())`,
			want: `
				let z_1 = 0.5;
				function f_2(x_3, y_4) {
				  console.log((Math.sin(x_3) > Math.PI));
				  return;
				}
				function g_5() {
				  return false;
				}
				f_2(z_1, g_5());`,
		},
		{
			name: "arrays",
			src: `
				set cats = ["a", "b"]
				fur c in cats: meow(c) nap
				fur n in [] of int: meow(n) nap
				meow(length(cats))
				meow(random(cats))
				stay k = cats[0]`,
			want: `
				let cats_1 = ["a", "b"];
				for (const c_2 of cats_1) {
				  console.log(c_2);
				}
				console.log(cats_1.length);
				console.log(((a) => a[Math.floor(Math.random() * a.length)])(cats_1));
				const k_3 = cats_1[0];`,
		},
		{
			name: "structs",
			src: `
				set c = Cat("Tom", some 3)
				breed Cat: name: string, age: int? nap
				meow(c.name)
				meow(c.age ?? 0)
				reset c = Cat("Kis", no int)`,
			want: `
				class Cat_1 {
				  constructor(name_2, age_3) {
				    this.name_2 = name_2;
				    this.age_3 = age_3;
				  }
				}
				let c_4 = new Cat_1("Tom", 3);
				console.log(c_4.name_2);
				console.log((c_4.age_3 ?? 0));
				c_4 = new Cat_1("Kis", undefined);`,
		},
		{
			name: "shadowing",
			src: `
				set x = 1
				if x == 1:
				  set x = 2
				  meow(x)
				nap
				meow(x)`,
			want: `
				let x_1 = 1;
				if ((x_1 === 1)) {
				  let x_2 = 2;
				  console.log(x_2);
				}
				console.log(x_1);`,
		},
		{
			name: "folded declaration",
			src:  "set x = 5 + 3 meow(x)",
			want: `
				let x_1 = 8;
				console.log(x_1);`,
		},
		{
			name: "power base",
			src:  "set x = 2 meow((-x) ** 2) meow(-2 ** 2) meow(2 ** -x)",
			want: `
				let x_1 = 2;
				console.log(((-(x_1)) ** 2));
				console.log(-4);
				console.log((2 ** -(x_1)));`,
		},
		{
			name: "strings",
			src:  `meow("say \"hi\"\n" + "<b>")`,
			want: `
				console.log("say \"hi\"\n<b>");`,
		},
		{
			name: "function values",
			src:  "kitty twice(x: int) -> int: purr x * 2 nap set h = twice meow(h(2))",
			want: `
				function twice_1(x_2) {
				  return (x_2 * 2);
				}
				let h_3 = twice_1;
				console.log(h_3(2));`,
		},
		{
			name: "ternary and not",
			src:  "set b = true meow(!b ? 1.5 : 2.0)",
			want: `
				let b_1 = true;
				console.log((!(b_1) ? 1.5 : 2));`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, dedent(tt.want), compile(t, dedent(tt.src)))
		})
	}
}

var declared = regexp.MustCompile(`(?:let|const|function|class) (\w+)`)

func TestRenamingIsUniqueAndStable(t *testing.T) {
	src := `
set x = 1
kitty x2(x: int) -> int:
  fur x in [x, x]:
    set y = x
    meow(y)
  nap
  purr x
nap
whisker x < 3:
  set x = "inner"
  meow(x)
  break
nap
meow(x2(x))`
	js := compile(t, src)
	seen := map[string]bool{}
	for _, m := range declared.FindAllStringSubmatch(js, -1) {
		assert.False(t, seen[m[1]], "%s declared twice in\n%s", m[1], js)
		seen[m[1]] = true
	}
	assert.Contains(t, js, "console.log(x2_2(x_1));", "a reference prints the declaration's name")
	assert.Equal(t, js, compile(t, src), "generation is deterministic")
}

func TestGenerateSameTreeTwice(t *testing.T) {
	m, err := parser.Parse("test.kis", []byte("set a = 1 set b = a meow(b)"))
	require.NoError(t, err)
	s, err := analyzer.Analyze(m)
	require.NoError(t, err)
	first, err := Generate(s)
	require.NoError(t, err)
	second, err := Generate(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateInternalErrors(t *testing.T) {
	foreign := ast.NewArena().Variable("x", true, ast.IntType)
	_, err := Generate(&ast.Script{
		Statements: []ast.Statement{&ast.PrintStatement{Expression: foreign}},
		Entities:   ast.NewArena(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal error")

	_, err = Generate(&ast.Script{
		Statements: []ast.Statement{&ast.IfStatement{Test: ast.BoolLit(true)}},
		Entities:   ast.NewArena(),
	})
	require.Error(t, err)
	assert.Equal(t, "internal error: unexpected if alternate <nil>", err.Error())
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"plain":      `"plain"`,
		"tab\there":  `"tab\there"`,
		`back\slash`: `"back\\slash"`,
		"a<b>&c":     `"a<b>&c"`,
		"\u2028":     `"\u2028"`,
	}
	for in, want := range tests {
		got, err := quote(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestBuiltinValues(t *testing.T) {
	arena := ast.NewArena()
	f := ast.NewFactory(arena)
	s := f.Script([]ast.Statement{
		f.Print(ast.Length),
		f.Print(ast.Pi),
		f.Print(f.Call(ast.Ln, ast.FloatLit(1))),
		f.Print(f.Call(ast.Hypot, ast.FloatLit(3), ast.FloatLit(4))),
	})
	js, err := Generate(s)
	require.NoError(t, err)
	assert.Equal(t, "console.log(((a) => a.length));\n"+
		"console.log(Math.PI);\n"+
		"console.log(Math.log(1));\n"+
		"console.log(Math.hypot(3, 4));\n", js)
}
