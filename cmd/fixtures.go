package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/kis-lang/kis/compiler"
	"github.com/kis-lang/kis/golden"
)

type fileResult struct {
	out                   bytes.Buffer
	tests, passed, failed int
}

func testAction(ctx context.Context, cmd *cli.Command) error {
	targets := cmd.Args().Slice()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	// Collect .md fixture files
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", target, err)
		}
		if !info.IsDir() {
			files = append(files, target)
			continue
		}
		entries, err := os.ReadDir(target)
		if err != nil {
			return fmt.Errorf("reading directory %s: %w", target, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
				files = append(files, filepath.Join(target, e.Name()))
			}
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no .md fixture files found")
	}

	jobs := int(cmd.Int("jobs"))
	if jobs < 1 {
		jobs = 1
	}

	comp := newCompiler(cmd)
	filter := cmd.String("filter")
	ctx = traceContext(ctx, cmd)

	// Workers fill results; output is printed in file order.
	results := make([]fileResult, len(files))
	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				runFixtures(ctx, comp, files[i], filter, &results[i])
			}
		}()
	}
	wg.Wait()

	w := cmd.Root().Writer
	tests, passed, failed := 0, 0, 0
	for i := range results {
		if _, err := w.Write(results[i].out.Bytes()); err != nil {
			return err
		}
		tests += results[i].tests
		passed += results[i].passed
		failed += results[i].failed
	}

	colorOK, colorFail, reset := colorGreen, colorRed, colorReset
	if !useColor(cmd, w) {
		colorOK, colorFail, reset = "", "", ""
	}
	if failed > 0 {
		fmt.Fprintf(w, "\n%d files, %d tests, %d passed, %s%d failed%s\n",
			len(files), tests, passed, colorFail, failed, reset)
		return fmt.Errorf("%d of %d fixtures failed", failed, tests)
	}
	fmt.Fprintf(w, "\n%d files, %d tests, %s%d passed%s, 0 failed\n",
		len(files), tests, colorOK, passed, reset)
	return nil
}

// runFixtures verifies every case of one fixture file. An unreadable or
// malformed file counts as a single failure.
func runFixtures(ctx context.Context, comp *compiler.Compiler, file, filter string, r *fileResult) {
	fmt.Fprintf(&r.out, "=== %s ===\n", file)

	cases, err := golden.ReadFile(file)
	if err != nil {
		r.tests++
		r.failed++
		fmt.Fprintf(&r.out, "FAIL %v\n", err)
		return
	}

	for _, tc := range cases {
		if filter != "" && !strings.Contains(tc.Name, filter) {
			continue
		}
		r.tests++
		err := comp.Verify(ctx, tc)
		if err == nil {
			r.passed++
			fmt.Fprintf(&r.out, "ok   %s\n", tc.Name)
			continue
		}
		r.failed++
		var m *compiler.Mismatch
		if errors.As(err, &m) {
			fmt.Fprintf(&r.out, "FAIL %s (line %d)\n", tc.Name, tc.Line)
			writeIndented(&r.out, "want", m.Case.Want)
			writeIndented(&r.out, "got", m.Got)
			continue
		}
		fmt.Fprintf(&r.out, "FAIL %s (line %d): %v\n", tc.Name, tc.Line, err)
	}
}

func writeIndented(w io.Writer, label, text string) {
	fmt.Fprintf(w, "  %s:\n", label)
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}
