//go:build mage

// Package main contains Mage build targets for markitdown-dist developer tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/markitdown-dist/internal/pipeline"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

// Default target builds the primary binary.
var Default = Build

// projectDirs lists the directories the pipeline expects.
var projectDirs = []string{
	"build/specs",
	"bin",
	".buildenv",
}

// scratchDirs are the backend work areas Clean removes.
var scratchDirs = []string{
	"build/dist",
	"build/build",
	"build/nuitka_build",
}

const (
	toolsDir = "build/tools"
	cliName  = "markitdown-dist"
	cmdPkg   = "./cmd/markitdown-dist"
)

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles markitdown with PyInstaller into bin/<platform>/.
func Build(ctx context.Context) error {
	return runBuild(ctx, types.BackendPyInstaller)
}

// BuildAlternate compiles markitdown with Nuitka into bin/<platform>-nuitka/.
func BuildAlternate(ctx context.Context) error {
	return runBuild(ctx, types.BackendNuitka)
}

// Verify runs the functional suite against bin/<platform>/.
func Verify(ctx context.Context) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	report, err := r.Verify(ctx, pipeline.VerifyOptions{})
	if err != nil {
		return err
	}
	if report.ExitCode() != 0 {
		return mg.Fatalf(1, "%d verification case(s) failed", report.Failed)
	}
	return nil
}

// All builds the primary binary and verifies it.
func All(ctx context.Context) {
	mg.SerialCtxDeps(ctx, Build, Verify)
}

// Install compiles the markitdown-dist CLI into build/tools/.
func Install() error {
	if err := os.MkdirAll(toolsDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", toolsDir, err)
	}
	out := filepath.Join(toolsDir, cliName)
	ldflags := fmt.Sprintf("-X main.version=%s", gitVersion())
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Clean removes backend scratch directories. Staged binaries are kept.
func Clean() error {
	for _, dir := range scratchDirs {
		if err := sh.Rm(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		fmt.Println("  removed", dir)
	}
	return nil
}

func runBuild(ctx context.Context, id types.BackendID) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	start := time.Now()
	if _, err := r.Build(ctx, id); err != nil {
		return err
	}
	if mg.Verbose() {
		fmt.Printf("%s build took %s\n", id, time.Since(start).Round(time.Second))
	}
	return nil
}

func newRunner() (*pipeline.Runner, error) {
	cfg, err := pipeline.Normalize(types.PipelineConfig{
		Python:  os.Getenv("MARKITDOWN_DIST_PYTHON"),
		History: types.HistoryConfig{Enabled: true},
	})
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, os.Stdout, os.Stderr, nil), nil
}

func gitVersion() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		return "dev"
	}
	return out
}
