package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := New("test")
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(context.Background(), append([]string{"kis"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEmit(t *testing.T) {
	file := writeFile(t, "main.kis", "set x = 5 + 3\nmeow(x)\n")

	out, err := run(t, "emit", file)
	require.NoError(t, err)
	assert.Equal(t, "let x_1 = 8;\nconsole.log(x_1);\n", out)

	out, err = run(t, file)
	require.NoError(t, err)
	assert.Equal(t, "let x_1 = 8;\nconsole.log(x_1);\n", out, "bare file argument emits")
}

func TestEmitNoOptimize(t *testing.T) {
	file := writeFile(t, "main.kis", "meow(5 + 3)\n")

	out, err := run(t, "--no-optimize", "emit", file)
	require.NoError(t, err)
	assert.Equal(t, "console.log((5 + 3));\n", out)
}

func TestNoOptimizeFromEnv(t *testing.T) {
	t.Setenv("KIS_NO_OPTIMIZE", "1")
	file := writeFile(t, "main.kis", "meow(5 + 3)\n")

	out, err := run(t, "emit", file)
	require.NoError(t, err)
	assert.Equal(t, "console.log((5 + 3));\n", out)
}

func TestCompileWritesJS(t *testing.T) {
	file := writeFile(t, "hello.kis", `meow("hello")`)

	_, err := run(t, "compile", file)
	require.NoError(t, err)
	js, err := os.ReadFile(filepath.Join(filepath.Dir(file), "hello.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log(\"hello\");\n", string(js))

	out := filepath.Join(t.TempDir(), "out.js")
	_, err = run(t, "compile", "-o", out, file)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestCheck(t *testing.T) {
	ok := writeFile(t, "ok.kis", "meow(1)")
	out, err := run(t, "check", ok)
	require.NoError(t, err)
	assert.Empty(t, out)

	bad := writeFile(t, "bad.kis", "meow(1)\nmeow(y)")
	_, err = run(t, "check", bad)
	require.Error(t, err)

	var buf bytes.Buffer
	printError(&buf, err, false)
	assert.Equal(t, "error: Line 2, col 6: Identifier y not declared\n", buf.String())

	buf.Reset()
	printError(&buf, err, true)
	assert.Equal(t, "\033[31merror:\033[0m Line 2, col 6: Identifier y not declared\n", buf.String())
}

func TestTree(t *testing.T) {
	file := writeFile(t, "main.kis", "set x = 5 + 3\nmeow(x)\n")

	out, err := run(t, "tree", file)
	require.NoError(t, err)
	assert.Equal(t, "Script\n"+
		"  VariableDeclaration set x#0: int\n"+
		"    IntLit 8\n"+
		"  PrintStatement\n"+
		"    Variable x#0: int\n", out)
}

func TestUsageErrors(t *testing.T) {
	_, err := run(t, "emit")
	assert.EqualError(t, err, "usage: kis emit <file.kis>")

	_, err = run(t, "emit", filepath.Join(t.TempDir(), "missing.kis"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

const passing = "## Test: sum\n\n```kis\nmeow(1 + 2)\n```\n\n```js\nconsole.log(3);\n```\n\n" +
	"## Test: undeclared\n\n```kis\nmeow(y)\n```\n\n```error\nLine 1, col 6: Identifier y not declared\n```\n"

const failing = "## Test: wrong\n\n```kis\nmeow(1)\n```\n\n```js\nconsole.log(2);\n```\n"

func TestFixtures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte(passing), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	out, err := run(t, "test", "--jobs", "2", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   sum\n")
	assert.Contains(t, out, "ok   undeclared\n")
	assert.Contains(t, out, "1 files, 2 tests, 2 passed, 0 failed")

	out, err = run(t, "test", "-f", "sum", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 files, 1 tests, 1 passed, 0 failed")
}

func TestFixturesFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte(passing), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte(failing), 0o644))

	out, err := run(t, "test", dir)
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 3 fixtures failed")
	assert.Contains(t, out, "FAIL wrong (line 1)\n  want:\n    console.log(2);\n  got:\n    console.log(1);\n")
	assert.Contains(t, out, "2 files, 3 tests, 2 passed, 1 failed")
}

func TestFixturesNoFiles(t *testing.T) {
	_, err := run(t, "test", t.TempDir())
	assert.EqualError(t, err, "no .md fixture files found")
}

func TestDoc(t *testing.T) {
	file := writeFile(t, "cats.kis", "// Cats.\n\n// Doubles.\nkitty twice(x: int) -> int: purr x * 2 nap\n")

	out, err := run(t, "doc", file)
	require.NoError(t, err)
	assert.Equal(t, "Cats.\n\nkitty twice(x: int) -> int\n    Doubles.\n", out)

	out, err = run(t, "doc", file, "twice")
	require.NoError(t, err)
	assert.Equal(t, "kitty twice(x: int) -> int\n    Doubles.\n", out)

	_, err = run(t, "doc", file, "thrice")
	assert.EqualError(t, err, file+": no function or struct named thrice")

	out, err = run(t, "doc")
	require.NoError(t, err)
	assert.Contains(t, out, "import math:")
}
