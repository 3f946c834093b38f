package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, src string) []Token {
	t.Helper()
	b := []byte(src)
	toks, err := Tokenize(NewFile("test.kis", b), b)
	require.NoError(t, err)
	return toks
}

func texts(toks []Token) []string {
	var out []string
	for _, tok := range toks {
		if tok.Kind != EOF {
			out = append(out, tok.Text)
		}
	}
	return out
}

func TestScanStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"declaration", `set x = 5 + 3`, []string{"set", "x", "=", "5", "+", "3"}},
		{"power beats times", `a ** b * c`, []string{"a", "**", "b", "*", "c"}},
		{"increment", `pounce x++`, []string{"pounce", "x", "++"}},
		{"arrow type", `kitty f(a: int) -> int:`, []string{"kitty", "f", "(", "a", ":", "int", ")", "->", "int", ":"}},
		{"optional ops", `a ?? no int?`, []string{"a", "??", "no", "int", "?"}},
		{"comparison", `x<=y!=z`, []string{"x", "<=", "y", "!=", "z"}},
		{"comment", "meow(1) // hello\nbreak", []string{"meow", "(", "1", ")", "break"}},
		{"member and subscript", `c.ages[0]`, []string{"c", ".", "ages", "[", "0", "]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(scan(t, tt.src)))
		})
	}
}

func TestScanKinds(t *testing.T) {
	toks := scan(t, `whisker count 12 3.5 1e3 "hi"`)
	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []Kind{Keyword, Ident, Int, Float, Float, String, EOF}, kinds)
}

func TestScanStringEscapes(t *testing.T) {
	toks := scan(t, `"a\n\t\"b\\"`)
	assert.Equal(t, "a\n\t\"b\\", toks[0].Text)
}

func TestScanNewlineBefore(t *testing.T) {
	toks := scan(t, "purr\nx purr y")
	require.Len(t, toks, 5)
	assert.False(t, toks[0].NewlineBefore)
	assert.True(t, toks[1].NewlineBefore)
	assert.False(t, toks[3].NewlineBefore)
}

func TestScanPositions(t *testing.T) {
	src := []byte("set x = 1\n  meow(x)")
	file := NewFile("test.kis", src)
	toks, err := Tokenize(file, src)
	require.NoError(t, err)
	meow := toks[4]
	assert.Equal(t, "meow", meow.Text)
	pos := file.Position(meow.Pos)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 3, pos.Column)
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		col  int
	}{
		{"unterminated", `meow("abc`, "Unterminated string", 6},
		{"newline in string", "\"ab\ncd\"", "Unterminated string", 1},
		{"bad escape", `"a\qb"`, `Unknown escape sequence \q`, 3},
		{"stray character", `set x = 1 @ 2`, `Unexpected character '@'`, 11},
		{"malformed number", `12abc`, "Malformed number", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := []byte(tt.src)
			file := NewFile("test.kis", src)
			_, err := Tokenize(file, src)
			require.Error(t, err)
			var serr *Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.msg, serr.Msg)
			assert.Equal(t, tt.col, file.Position(serr.Pos).Column)
		})
	}
}
