// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline composes the build and verify stages. Each run is linear:
// resolve the platform, invoke one backend, locate and stage its artifact,
// or run the verification suite against a staged binary.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/markitdown-dist/internal/backend"
	"github.com/pdiddy/markitdown-dist/internal/envdir"
	"github.com/pdiddy/markitdown-dist/internal/history"
	"github.com/pdiddy/markitdown-dist/internal/platform"
	"github.com/pdiddy/markitdown-dist/internal/stage"
	"github.com/pdiddy/markitdown-dist/internal/ui"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

var backendTitles = map[types.BackendID]string{
	types.BackendPyInstaller: "PyInstaller",
	types.BackendNuitka:      "Nuitka",
}

var entryLabels = map[types.BackendID]string{
	types.BackendPyInstaller: "Spec file",
	types.BackendNuitka:      "Entry point",
}

// Runner executes pipelines for one configuration.
type Runner struct {
	cfg     types.PipelineConfig
	out     *ui.Printer
	errw    io.Writer
	log     *slog.Logger
	invoker *backend.Invoker

	resolvePlatform func() (types.PlatformID, error)
}

// New returns a Runner. Narrative goes to out; backend diagnostics and
// warnings go to errw. cfg must already be normalized.
func New(cfg types.PipelineConfig, out, errw io.Writer, log *slog.Logger) *Runner {
	return newRunner(cfg, backend.OSExecutor(), out, errw, log)
}

func newRunner(cfg types.PipelineConfig, exec backend.Executor, out, errw io.Writer, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		cfg:             cfg,
		out:             ui.New(out),
		errw:            errw,
		log:             log,
		invoker:         backend.NewInvoker(exec, out, errw, log),
		resolvePlatform: platform.Resolve,
	}
}

// Build runs one backend end to end and returns the staged binary. Every
// failure before staging completes is fatal; nothing falls back to the other
// backend.
func (r *Runner) Build(ctx context.Context, id types.BackendID) (sb types.StagedBinary, err error) {
	started := time.Now()
	platformKey := "unknown"
	defer func() {
		detail := sb.Path
		if err != nil {
			detail = err.Error()
		}
		r.record(ctx, history.KindBuild, platformKey, id, err == nil, detail, started)
	}()

	p, err := r.resolvePlatform()
	if err != nil {
		return sb, err
	}
	platformKey = platform.Key(p, id)

	b, err := backend.New(id)
	if err != nil {
		return sb, err
	}
	plan, err := b.Plan(r.cfg, p)
	if err != nil {
		return sb, err
	}

	vars, err := envdir.Load(r.cfg.EnvDir, r.errw)
	if err != nil {
		return sb, err
	}
	plan.Env = envdir.Environ(vars)
	if len(vars) > 0 {
		r.log.Debug("loaded backend environment", "dir", r.cfg.EnvDir, "count", len(vars))
	}

	title := backendTitles[id]
	if id == types.BackendPyInstaller {
		r.out.Header("Building markitdown binary for %s", p)
	} else {
		r.out.Header("Building markitdown binary with %s for %s", title, p)
	}
	r.out.Field("Root directory", r.cfg.Root)
	r.out.Field(entryLabels[id], plan.Entry)
	r.out.Field("Platform", p)
	r.out.Field("Binary name", plan.BinaryName)
	r.out.Println()

	if err := backend.CheckEntry(plan); err != nil {
		return sb, err
	}
	r.out.Println("Cleaning previous build artifacts...")
	r.out.Printf("Running %s...\n", title)
	r.out.Printf("Command: %s\n\n", strings.Join(plan.Command(), " "))

	if err := r.invoker.Invoke(ctx, plan); err != nil {
		return sb, err
	}
	r.out.Println()
	r.out.Printf("%s completed successfully\n\n", title)

	artifact, err := b.Locate(plan, r.out.Writer())
	if err != nil {
		return sb, err
	}
	r.log.Debug("located artifact", "path", artifact.Path, "size", artifact.Size)

	dst, err := stage.Path(OutputRoot(r.cfg), p, id)
	if err != nil {
		return sb, err
	}
	r.out.Printf("Copying binary to %s...\n", dst)
	sb, err = stage.Stage(artifact, OutputRoot(r.cfg), p, id)
	if err != nil {
		return sb, err
	}

	if path, err := stage.WriteRecord(BuildDir(r.cfg), sb); err != nil {
		fmt.Fprintf(r.errw, "warning: %v\n", err)
	} else {
		r.log.Debug("wrote build record", "path", path)
	}

	r.out.Println()
	r.out.Header("Build complete")
	r.out.Field("Binary location", sb.Path)
	r.out.Field("Binary size", stage.SizeMB(sb.Size))
	r.out.Field("BLAKE3", sb.Digest)
	r.out.Println()
	r.out.Println("You can now test the binary with:")
	if id == types.BackendPyInstaller {
		r.out.Println("  markitdown-dist verify")
	} else {
		r.out.Printf("  markitdown-dist verify --backend %s\n", id)
	}
	r.out.Println()
	r.out.Println("Or run it directly:")
	r.out.Printf("  %s --help\n", sb.Path)
	return sb, nil
}

// record writes a ledger entry. Ledger problems are warnings only.
func (r *Runner) record(ctx context.Context, kind history.Kind, platformKey string, id types.BackendID, ok bool, detail string, started time.Time) {
	if !r.cfg.History.Enabled {
		return
	}
	store, err := history.Open(r.cfg.History.Path)
	if err != nil {
		fmt.Fprintf(r.errw, "warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	status := history.StatusSucceeded
	if !ok {
		status = history.StatusFailed
	}
	run, err := store.Record(ctx, history.Run{
		Kind:        kind,
		PlatformKey: platformKey,
		Backend:     string(id),
		Status:      status,
		Detail:      detail,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	})
	if err != nil {
		fmt.Fprintf(r.errw, "warning: %v\n", err)
		return
	}
	r.log.Debug("recorded run", "id", run.ID, "kind", kind, "status", status)
}
