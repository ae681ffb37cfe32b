// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/markitdown-dist/pkg/types"
)

// fakeConverterEnv switches the test binary into a fake converter so the
// harness can run real subprocesses. The value selects the behaviour.
const fakeConverterEnv = "MARKITDOWN_DIST_FAKE_CONVERTER"

// stallInput makes the fake converter hang regardless of mode.
const stallInput = "stall forever"

func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeConverterEnv); mode != "" {
		os.Exit(fakeConverter(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

var htmlToMarkdown = strings.NewReplacer(
	"<html>", "", "</html>", "", "<body>", "", "</body>", "",
	"<h1>", "# ", "</h1>", "\n\n",
	"<p>", "", "</p>", "\n\n",
	"<strong>", "**", "</strong>", "**",
	"<ul>", "", "</ul>", "\n",
	"<li>", "* ", "</li>", "\n",
)

// fakeConverter mimics the converter's process contract: read the file
// argument or stdin, write text to stdout, exit 0.
func fakeConverter(mode string, args []string) int {
	switch mode {
	case "fail":
		fmt.Fprintln(os.Stderr, "UnsupportedFormatException: cannot convert")
		return 3
	case "empty":
		return 0
	case "hang":
		time.Sleep(time.Minute)
		return 0
	case "garbage":
		fmt.Println("nothing useful here")
		return 0
	case "bom":
		os.Stdout.Write([]byte("\xef\xbb\xbf"))
	}

	var data []byte
	var err error
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if strings.TrimSpace(string(data)) == stallInput {
		time.Sleep(time.Minute)
	}
	fmt.Print(htmlToMarkdown.Replace(string(data)))
	return 0
}

func newTestHarness(t *testing.T, timeout time.Duration) (*Harness, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	h := NewHarness(timeout, &out, nil)
	h.TempDir = t.TempDir()
	return h, &out
}

func testBinary(t *testing.T) string {
	t.Helper()
	bin, err := os.Executable()
	require.NoError(t, err)
	return bin
}

func TestRunSuite_AllPass(t *testing.T) {
	t.Setenv(fakeConverterEnv, "convert")
	h, out := newTestHarness(t, 20*time.Second)

	report := h.RunSuite(context.Background(), testBinary(t), DefaultCases())

	assert.Equal(t, 3, report.Passed, out.String())
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.ExitCode())
	assert.Contains(t, out.String(), "Testing HTML file conversion...")
	assert.Contains(t, out.String(), "Output preview: # Hello, World!")
	assert.Equal(t, 3, strings.Count(out.String(), "PASSED"))
}

func TestRunSuite_CleansTempFiles(t *testing.T) {
	t.Setenv(fakeConverterEnv, "convert")
	h, _ := newTestHarness(t, 20*time.Second)
	h.RunSuite(context.Background(), testBinary(t), DefaultCases())

	t.Setenv(fakeConverterEnv, "fail")
	h.RunSuite(context.Background(), testBinary(t), DefaultCases())

	entries, err := os.ReadDir(h.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "every case must remove its fixture and output files")
}

func TestRunSuite_NonZeroExit(t *testing.T) {
	t.Setenv(fakeConverterEnv, "fail")
	h, out := newTestHarness(t, 20*time.Second)

	report := h.RunSuite(context.Background(), testBinary(t), DefaultCases())

	assert.Equal(t, 0, report.Passed)
	assert.Equal(t, 3, report.Failed, "a failing case must not stop later cases")
	assert.Equal(t, 1, report.ExitCode())
	for _, r := range report.Results {
		assert.Equal(t, 3, r.ExitCode)
		assert.Contains(t, r.Detail, "non-zero exit code 3")
		assert.Contains(t, r.Detail, "UnsupportedFormatException")
	}
	assert.Contains(t, out.String(), "FAILED:")
}

func TestRunSuite_EmptyOutput(t *testing.T) {
	t.Setenv(fakeConverterEnv, "empty")
	h, _ := newTestHarness(t, 20*time.Second)

	report := h.RunSuite(context.Background(), testBinary(t), DefaultCases())

	require.Len(t, report.Results, 3)
	for _, r := range report.Results {
		assert.False(t, r.Passed)
		assert.Contains(t, r.Detail, "empty")
	}
}

func TestRunSuite_AssertionMismatch(t *testing.T) {
	t.Setenv(fakeConverterEnv, "garbage")
	h, _ := newTestHarness(t, 20*time.Second)

	report := h.RunSuite(context.Background(), testBinary(t), DefaultCases())

	require.Len(t, report.Results, 3)
	assert.Contains(t, report.Results[0].Detail, "expected heading")
	assert.Contains(t, report.Results[0].Detail, "nothing useful here")
	assert.Equal(t, 3, report.Failed)
}

func TestRunSuite_TimeoutIsCaseFailure(t *testing.T) {
	t.Setenv(fakeConverterEnv, "hang")
	h, _ := newTestHarness(t, 300*time.Millisecond)

	cases := DefaultCases()
	start := time.Now()
	report := h.RunSuite(context.Background(), testBinary(t), cases)

	require.Len(t, report.Results, len(cases), "cases after a timeout must still run")
	for _, r := range report.Results {
		assert.False(t, r.Passed)
		assert.True(t, r.TimedOut)
		assert.Contains(t, r.Detail, "timed out")
	}
	assert.Less(t, time.Since(start), 30*time.Second)
}

func TestRunSuite_CaseAfterTimeoutPasses(t *testing.T) {
	t.Setenv(fakeConverterEnv, "convert")
	h, out := newTestHarness(t, 2*time.Second)

	cases := []types.TestCase{
		{Name: "Stalled conversion", Fixture: stallInput, Mode: types.ModeStdin,
			Assertions: []types.Assertion{{Label: "text", AnyOf: []string{"stall"}}}},
		DefaultCases()[2],
	}
	report := h.RunSuite(context.Background(), testBinary(t), cases)

	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].TimedOut)
	assert.False(t, report.Results[0].Passed)
	assert.True(t, report.Results[1].Passed, report.Results[1].Detail)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.ExitCode())
	assert.Contains(t, out.String(), "Output preview: Test content from stdin")
}

func TestRunCase_ByteOrderMark(t *testing.T) {
	t.Setenv(fakeConverterEnv, "bom")
	h, _ := newTestHarness(t, 20*time.Second)

	res := h.RunCase(context.Background(), testBinary(t), DefaultCases()[1])
	assert.True(t, res.Passed, res.Detail)
}

func TestRunCase_MissingBinary(t *testing.T) {
	h, _ := newTestHarness(t, time.Second)

	res := h.RunCase(context.Background(), filepath.Join(t.TempDir(), "markitdown"), DefaultCases()[2])
	assert.False(t, res.Passed)
	assert.Contains(t, res.Detail, "error running command")
}

func TestRunCase_UnknownMode(t *testing.T) {
	h, _ := newTestHarness(t, time.Second)

	res := h.RunCase(context.Background(), "markitdown", types.TestCase{Name: "bogus", Mode: "socket"})
	assert.False(t, res.Passed)
	assert.Contains(t, res.Detail, "unknown invocation mode")
	assert.Equal(t, "bogus", res.Name)
}

func TestPrintSummary(t *testing.T) {
	tests := []struct {
		name   string
		report types.TestReport
		want   string
	}{
		{
			name:   "all passed",
			report: types.TestReport{Passed: 3},
			want:   "All tests passed!",
		},
		{
			name:   "some failed",
			report: types.TestReport{Passed: 2, Failed: 1},
			want:   "Some tests failed.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, out := newTestHarness(t, time.Second)
			h.PrintSummary(tt.report)
			assert.Contains(t, out.String(), "=== Test Summary ===")
			assert.Contains(t, out.String(), fmt.Sprintf("Total tests: %d", tt.report.Total()))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases()
	require.Len(t, cases, 3)
	assert.Equal(t, types.ModeArgument, cases[0].Mode)
	assert.Equal(t, ".html", cases[0].FixtureExt)
	assert.Equal(t, types.ModeArgument, cases[1].Mode)
	assert.Equal(t, types.ModeStdin, cases[2].Mode)

	cases[0].Assertions[0].AnyOf[0] = "mutated"
	assert.Equal(t, "# Hello, World!", DefaultCases()[0].Assertions[0].AnyOf[0])
}
