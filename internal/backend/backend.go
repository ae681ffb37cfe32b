// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend drives the native compilation backends. PyInstaller and
// Nuitka share one contract: plan a build for a platform, invoke the backend
// as an external process, then locate the artifact it produced.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/markitdown-dist/pkg/types"
)

const (
	buildDir = "build"
	specsDir = "specs"
)

var (
	// ErrEntryNotFound means the backend's input file is missing.
	ErrEntryNotFound = errors.New("entry artifact not found")

	// ErrArtifactNotFound means the backend reported success but no artifact
	// could be discovered.
	ErrArtifactNotFound = errors.New("built binary not found")
)

// Backend is one native compilation strategy.
type Backend interface {
	// ID returns the backend identifier.
	ID() types.BackendID

	// Plan builds the invocation for the given platform from the fixed
	// repository layout under cfg.Root.
	Plan(cfg types.PipelineConfig, p types.PlatformID) (types.BuildPlan, error)

	// Locate finds the artifact produced by a successful invocation of plan.
	Locate(plan types.BuildPlan, log io.Writer) (types.BuiltArtifact, error)
}

// New returns the backend for id.
func New(id types.BackendID) (Backend, error) {
	switch id {
	case types.BackendPyInstaller:
		return PyInstaller{}, nil
	case types.BackendNuitka:
		return Nuitka{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", id, types.BackendPyInstaller, types.BackendNuitka)
	}
}

// ExitError reports a backend process that exited non-zero.
type ExitError struct {
	Backend  types.BackendID
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d", e.Backend, e.ExitCode)
}

// ArtifactError reports a missing artifact together with a listing of the
// directory it was expected in.
type ArtifactError struct {
	Path    string
	Dir     string
	Listing []string
}

func (e *ArtifactError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "built binary not found at %s\nContents of %s:", e.Path, e.Dir)
	if len(e.Listing) == 0 {
		b.WriteString(" (empty or missing)")
	}
	for _, item := range e.Listing {
		fmt.Fprintf(&b, "\n  - %s", item)
	}
	return b.String()
}

func (e *ArtifactError) Unwrap() error { return ErrArtifactNotFound }

func newArtifactError(path, dir string) *ArtifactError {
	e := &ArtifactError{Path: path, Dir: dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return e
	}
	for _, entry := range entries {
		e.Listing = append(e.Listing, filepath.Join(dir, entry.Name()))
	}
	return e
}

// Invoker runs backend processes, streaming their output to the operator.
type Invoker struct {
	exec   Executor
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
}

// NewInvoker returns an invoker that runs backends through exec and streams
// their output to stdout and stderr. Production callers pass OSExecutor().
func NewInvoker(exec Executor, stdout, stderr io.Writer, log *slog.Logger) *Invoker {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Invoker{exec: exec, stdout: stdout, stderr: stderr, log: log}
}

// Clean removes every scratch directory of plan and recreates its output
// directory empty. It is idempotent.
func Clean(plan types.BuildPlan) error {
	for _, dir := range plan.ScratchDirs {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(plan.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", plan.OutputDir, err)
	}
	return nil
}

// CheckEntry reports ErrEntryNotFound when the plan's entry artifact is missing.
func CheckEntry(plan types.BuildPlan) error {
	if _, err := os.Stat(plan.Entry); err != nil {
		return fmt.Errorf("%w at %s", ErrEntryNotFound, plan.Entry)
	}
	return nil
}

// Invoke checks the plan's entry artifact, cleans prior scratch state, and
// runs the backend. A non-zero exit is returned as *ExitError.
func (iv *Invoker) Invoke(ctx context.Context, plan types.BuildPlan) error {
	if err := CheckEntry(plan); err != nil {
		return err
	}

	iv.log.Debug("cleaning scratch directories", "backend", plan.Backend, "dirs", plan.ScratchDirs)
	if err := Clean(plan); err != nil {
		return err
	}

	cmd := plan.Command()
	if _, err := iv.exec.LookPath(cmd[0]); err != nil {
		return fmt.Errorf("backend interpreter %s not found: %w", cmd[0], err)
	}

	code, err := iv.exec.Run(ctx, Command{
		Name:   cmd[0],
		Args:   cmd[1:],
		Dir:    plan.WorkDir,
		Env:    plan.Env,
		Stdout: iv.stdout,
		Stderr: iv.stderr,
	})
	if err != nil {
		return fmt.Errorf("running %s: %w", plan.Backend, err)
	}
	if code != 0 {
		return &ExitError{Backend: plan.Backend, ExitCode: code}
	}
	return nil
}

func statArtifact(path, expected string) (types.BuiltArtifact, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return types.BuiltArtifact{}, false
	}
	return types.BuiltArtifact{Path: path, ExpectedName: expected, Size: info.Size()}, true
}

func specsPath(root, name string) string {
	return filepath.Join(root, buildDir, specsDir, name)
}
