// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/pdiddy/markitdown-dist/internal/verify"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

const (
	binDir        = "bin"
	buildDir      = "build"
	defaultEnvDir = ".buildenv"
	historyFile   = "history.db"
)

// DefaultPython returns the interpreter name used on goos.
func DefaultPython(goos string) string {
	if goos == "windows" {
		return "python"
	}
	return "python3"
}

// Normalize resolves Root to an absolute path and fills every unset field
// with its default. Relative EnvDir and History.Path resolve under Root.
func Normalize(cfg types.PipelineConfig) (types.PipelineConfig, error) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return cfg, fmt.Errorf("resolving root %s: %w", cfg.Root, err)
	}
	cfg.Root = root

	if cfg.Python == "" {
		cfg.Python = DefaultPython(runtime.GOOS)
	}
	if cfg.EnvDir == "" {
		cfg.EnvDir = defaultEnvDir
	}
	if !filepath.IsAbs(cfg.EnvDir) {
		cfg.EnvDir = filepath.Join(root, cfg.EnvDir)
	}
	if cfg.Verify.Timeout <= 0 {
		cfg.Verify.Timeout = verify.DefaultTimeout
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(root, buildDir, historyFile)
	} else if !filepath.IsAbs(cfg.History.Path) {
		cfg.History.Path = filepath.Join(root, cfg.History.Path)
	}
	return cfg, nil
}

// OutputRoot returns the directory staged binaries live under.
func OutputRoot(cfg types.PipelineConfig) string {
	return filepath.Join(cfg.Root, binDir)
}

// BuildDir returns the directory for build scratch space and records.
func BuildDir(cfg types.PipelineConfig) string {
	return filepath.Join(cfg.Root, buildDir)
}
