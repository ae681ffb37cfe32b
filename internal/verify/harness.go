// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify runs black-box functional cases against a staged converter
// binary. A failing case is reported and the suite moves on; only the
// aggregate decides the exit status.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/markitdown-dist/internal/ui"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

// DefaultTimeout bounds each case when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const (
	previewShort = 100
	previewLong  = 200
	waitDelay    = 2 * time.Second
)

// Harness runs test cases against a binary.
type Harness struct {
	// Timeout bounds each invocation.
	Timeout time.Duration

	// TempDir holds fixture and output files; empty means os.TempDir().
	TempDir string

	out *ui.Printer
	log *slog.Logger
}

// NewHarness returns a harness that narrates to w.
func NewHarness(timeout time.Duration, w io.Writer, log *slog.Logger) *Harness {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{Timeout: timeout, out: ui.New(w), log: log}
}

// RunSuite runs every case in order against binary. A case failure never
// stops the suite.
func (h *Harness) RunSuite(ctx context.Context, binary string, cases []types.TestCase) types.TestReport {
	report := types.TestReport{Binary: binary}
	for _, tc := range cases {
		h.out.Printf("Testing %s...\n", tc.Name)
		res := h.RunCase(ctx, binary, tc)
		if res.Passed {
			h.out.Pass()
		} else {
			h.out.Fail("%s", res.Detail)
		}
		h.log.Debug("case finished", "case", tc.Name, "passed", res.Passed, "duration", res.Duration)
		report.Add(res)
		h.out.Println()
	}
	return report
}

// PrintSummary prints the aggregate totals.
func (h *Harness) PrintSummary(r types.TestReport) {
	h.out.Header("Test Summary")
	h.out.Printf("Total tests: %d\n", r.Total())
	h.out.Printf("Passed: %d\n", r.Passed)
	h.out.Printf("Failed: %d\n", r.Failed)
	h.out.Println()
	if r.Failed > 0 {
		h.out.Println("Some tests failed. Please review the output above.")
		return
	}
	h.out.Println("All tests passed!")
}

// RunCase runs one case. Its temporary files are removed on every path.
func (h *Harness) RunCase(ctx context.Context, binary string, tc types.TestCase) types.CaseResult {
	start := time.Now()
	res := h.runCase(ctx, binary, tc)
	res.Name = tc.Name
	res.Duration = time.Since(start)
	return res
}

func (h *Harness) runCase(ctx context.Context, binary string, tc types.TestCase) types.CaseResult {
	var (
		args    []string
		stdin   io.Reader
		outPath string
	)

	switch tc.Mode {
	case types.ModeArgument:
		in, err := writeTemp(h.TempDir, "markitdown-test-*"+tc.FixtureExt, tc.Fixture)
		if err != nil {
			return failed(-1, "creating fixture: %v", err)
		}
		defer os.Remove(in)
		args = []string{in}
		outPath = strings.TrimSuffix(in, filepath.Ext(in)) + ".md"
	case types.ModeStdin:
		stdin = strings.NewReader(tc.Fixture)
	default:
		return failed(-1, "unknown invocation mode %q", tc.Mode)
	}

	if outPath == "" {
		p, err := writeTemp(h.TempDir, "markitdown-test-*.md", "")
		if err != nil {
			return failed(-1, "creating output file: %v", err)
		}
		outPath = p
	}
	defer os.Remove(outPath)

	res := h.invoke(ctx, binary, args, stdin, outPath)
	if !res.Passed {
		return res
	}

	output, err := readOutput(outPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failed(0, "output file was not created at %s", outPath)
		}
		return failed(0, "reading output: %v", err)
	}
	if strings.TrimSpace(output) == "" {
		return failed(0, "output file is empty")
	}

	for _, a := range tc.Assertions {
		if !containsAny(output, a.AnyOf) {
			return failed(0, "output doesn't contain expected %s\n  Output: %s", a.Label, preview(output, previewLong))
		}
	}

	h.out.Printf("  Output preview: %s\n", preview(output, previewShort))
	return types.CaseResult{Passed: true}
}

// invoke runs binary with stdout redirected to outPath under the harness
// timeout. The returned result has Passed set when the process exited 0.
func (h *Harness) invoke(ctx context.Context, binary string, args []string, stdin io.Reader, outPath string) types.CaseResult {
	out, err := os.Create(outPath)
	if err != nil {
		return failed(-1, "creating output file: %v", err)
	}
	defer out.Close()

	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = stdin
	cmd.Stdout = out
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	h.log.Debug("running case", "binary", binary, "args", args, "output", outPath)
	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res := failed(-1, "command timed out after %s", h.Timeout)
		res.TimedOut = true
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return failed(exitErr.ExitCode(), "conversion returned non-zero exit code %d\n  stderr: %s",
			exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}
	if err != nil {
		return failed(-1, "error running command: %v", err)
	}
	return types.CaseResult{Passed: true}
}

func failed(code int, format string, args ...any) types.CaseResult {
	return types.CaseResult{ExitCode: code, Detail: fmt.Sprintf(format, args...)}
}

func writeTemp(dir, pattern, content string) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// readOutput decodes the output file as text. A UTF-8 or UTF-16 byte order
// mark is honoured and stripped; otherwise the content is read as UTF-8.
func readOutput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return string(data), nil
	}
	return strings.ReplaceAll(string(decoded), "\r\n", "\n"), nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
