package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"tlog.app/go/tlog"

	"github.com/kis-lang/kis/ast"
	"github.com/kis-lang/kis/compiler"
	"github.com/kis-lang/kis/doc"
)

// Execute runs the Kis CLI with the given version string.
func Execute(version string) {
	app := New(version)
	if err := app.Run(context.Background(), os.Args); err != nil {
		printError(os.Stderr, err, useColor(app, os.Stderr))
		os.Exit(1)
	}
}

// New returns the kis command tree. Output goes to the command's Writer and
// ErrWriter, which default to stdout and stderr.
func New(version string) *cli.Command {
	return &cli.Command{
		Name:                   "kis",
		Usage:                  "A small typed language that compiles to JavaScript",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "no-optimize",
				Usage:   "Skip constant folding and dead code removal",
				Sources: cli.EnvVars("KIS_NO_OPTIMIZE"),
			},
			&cli.BoolFlag{
				Name:    "trace",
				Usage:   "Trace compiler stages to stderr",
				Sources: cli.EnvVars("KIS_TRACE"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Aliases: []string{"C"},
				Usage:   "Disable ANSI color output (also NO_COLOR)",
			},
		},
		// Allow `kis file.kis` as shorthand for `kis emit file.kis`
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() > 0 && strings.HasSuffix(cmd.Args().First(), ".kis") {
				return emitAction(ctx, cmd)
			}
			return cli.DefaultShowRootCommandHelp(cmd)
		},
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "Compile a .kis file to a .js file",
				ArgsUsage: "<file.kis>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default: the input with a .js extension)",
					},
				},
				Action: compileAction,
			},
			{
				Name:      "emit",
				Usage:     "Print the generated JavaScript",
				ArgsUsage: "<file.kis>",
				Action:    emitAction,
			},
			{
				Name:      "check",
				Usage:     "Report syntax and semantic errors without generating code",
				ArgsUsage: "<file.kis>",
				Action:    checkAction,
			},
			{
				Name:      "tree",
				Usage:     "Print the program tree the generator sees",
				ArgsUsage: "<file.kis>",
				Action:    treeAction,
			},
			{
				Name:      "doc",
				Usage:     "Show documentation for a file, one of its symbols, or the standard library",
				ArgsUsage: "[file.kis [symbol]]",
				Action:    docAction,
			},
			{
				Name:      "test",
				Usage:     "Run Markdown compiler fixtures",
				ArgsUsage: "[file.md | directory]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Run only tests matching this substring",
					},
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Parallel fixture files",
						Value:   1,
					},
				},
				Action: testAction,
			},
		},
	}
}

func newCompiler(cmd *cli.Command) *compiler.Compiler {
	return &compiler.Compiler{NoOptimize: cmd.Bool("no-optimize")}
}

// traceContext enables stage tracing on the default logger when asked to.
func traceContext(ctx context.Context, cmd *cli.Command) context.Context {
	if cmd.Bool("trace") {
		return tlog.ContextWithSpan(ctx, tlog.Root())
	}
	return ctx
}

func fileArg(cmd *cli.Command) (string, error) {
	if cmd.NArg() != 1 {
		return "", fmt.Errorf("usage: kis %s <file.kis>", cmd.Name)
	}
	return cmd.Args().First(), nil
}

func compileFile(ctx context.Context, cmd *cli.Command) (*compiler.Result, error) {
	file, err := fileArg(cmd)
	if err != nil {
		return nil, err
	}
	return newCompiler(cmd).Compile(traceContext(ctx, cmd), file)
}

func compileAction(ctx context.Context, cmd *cli.Command) error {
	res, err := compileFile(ctx, cmd)
	if err != nil {
		return err
	}
	output := cmd.String("output")
	if output == "" {
		output = strings.TrimSuffix(res.SourceFile, filepath.Ext(res.SourceFile)) + ".js"
	}
	if err := os.WriteFile(output, []byte(res.JS), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

func emitAction(ctx context.Context, cmd *cli.Command) error {
	res, err := compileFile(ctx, cmd)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.Root().Writer, res.JS)
	return err
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	file, err := fileArg(cmd)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}
	_, err = newCompiler(cmd).Check(traceContext(ctx, cmd), file, src)
	return err
}

func treeAction(ctx context.Context, cmd *cli.Command) error {
	res, err := compileFile(ctx, cmd)
	if err != nil {
		return err
	}
	return ast.Fprint(cmd.Root().Writer, res.Script)
}

func docAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer
	if cmd.NArg() == 0 {
		_, err := io.WriteString(w, doc.FormatStdlib())
		return err
	}
	fd, err := doc.ExtractFile(cmd.Args().First())
	if err != nil {
		return err
	}
	if cmd.NArg() == 1 {
		_, err = io.WriteString(w, doc.FormatFile(fd))
		return err
	}
	name := cmd.Args().Get(1)
	docStr, sig, found := doc.LookupSymbol(fd, name)
	if !found {
		return fmt.Errorf("%s: no function or struct named %s", fd.Path, name)
	}
	_, err = io.WriteString(w, doc.FormatSymbol(docStr, sig))
	return err
}

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// useColor reports whether diagnostics written to w may carry ANSI codes.
func useColor(cmd *cli.Command, w io.Writer) bool {
	if cmd.Bool("no-color") || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printError writes err as a one-line diagnostic. Compile errors lose their
// pipeline stage prefix.
func printError(w io.Writer, err error, color bool) {
	msg := err.Error()
	if d, ok := compiler.Diagnostic(err); ok {
		msg = d
	}
	if color {
		fmt.Fprintf(w, "%serror:%s %s\n", colorRed, colorReset, msg)
		return
	}
	fmt.Fprintf(w, "error: %s\n", msg)
}
