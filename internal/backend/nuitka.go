// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pdiddy/markitdown-dist/internal/platform"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

const (
	nuitkaEntry     = "entry_point.py"
	nuitkaOutputDir = "nuitka_build"
)

// nuitkaPackages must be named individually: Nuitka does not discover the
// converter's dynamic imports on its own.
var nuitkaPackages = []string{
	"--include-package=markitdown",
	"--include-package=magika",
	"--include-package=onnxruntime",
	"--include-package-data=magika",
	"--include-package-data=onnxruntime",
	"--include-package=bs4",
	"--include-package=requests",
	"--include-package=markdownify",
	"--include-package=charset_normalizer",
	"--include-package=defusedxml",
}

// nuitkaPlatformFlags are appended after the entry point.
var nuitkaPlatformFlags = map[types.PlatformID][]string{
	types.PlatformDarwin: {"--macos-create-app-bundle"},
}

// scratchSuffixes mark Nuitka's intermediate outputs. A match whose own
// extension is one of these is never the final binary.
var scratchSuffixes = []string{".build", ".dist", ".onefile-build"}

// Nuitka compiles the entry-point script into one standalone file named after
// the script stem rather than the product.
type Nuitka struct{}

func (Nuitka) ID() types.BackendID { return types.BackendNuitka }

// Plan runs "python -m nuitka --standalone --onefile ... <entry>" from the
// build directory.
func (Nuitka) Plan(cfg types.PipelineConfig, p types.PlatformID) (types.BuildPlan, error) {
	name, err := platform.BinaryName(p, types.BackendNuitka)
	if err != nil {
		return types.BuildPlan{}, err
	}

	entry := specsPath(cfg.Root, nuitkaEntry)
	out := filepath.Join(cfg.Root, buildDir, nuitkaOutputDir)

	args := []string{
		"-m", "nuitka",
		"--standalone",
		"--onefile",
		"--follow-imports",
	}
	args = append(args, nuitkaPackages...)
	args = append(args,
		"--nofollow-import-to=*.tests",
		"--nofollow-import-to=*.test",
		"--output-dir="+out,
		"--lto=yes",
		entry,
	)
	args = append(args, nuitkaPlatformFlags[p]...)

	return types.BuildPlan{
		Backend:     types.BackendNuitka,
		Platform:    p,
		Entry:       entry,
		OutputDir:   out,
		ScratchDirs: []string{out},
		WorkDir:     filepath.Join(cfg.Root, buildDir),
		Python:      cfg.Python,
		Args:        args,
		BinaryName:  name,
	}, nil
}

// Locate probes <stem>.bin (or <stem>.exe on win32), then the bare stem, then
// falls back to a walk of the output directory for the first file whose name
// starts with the stem. Files carrying a scratch extension are never selected.
func (Nuitka) Locate(plan types.BuildPlan, log io.Writer) (types.BuiltArtifact, error) {
	stem := strings.TrimSuffix(filepath.Base(plan.Entry), filepath.Ext(plan.Entry))
	suffix := ".bin"
	if plan.Platform == types.PlatformWin32 {
		suffix = ".exe"
	}

	expected := filepath.Join(plan.OutputDir, stem+suffix)
	for _, candidate := range []string{expected, filepath.Join(plan.OutputDir, stem)} {
		if a, ok := statArtifact(candidate, plan.BinaryName); ok {
			return a, nil
		}
	}

	fmt.Fprintf(log, "Searching for built binary in %s...\n", plan.OutputDir)
	found, err := searchArtifact(plan.OutputDir, stem)
	if err != nil {
		return types.BuiltArtifact{}, err
	}
	if found != "" {
		if a, ok := statArtifact(found, plan.BinaryName); ok {
			fmt.Fprintf(log, "Found binary at: %s\n", found)
			return a, nil
		}
	}
	return types.BuiltArtifact{}, newArtifactError(expected, plan.OutputDir)
}

var errFound = errors.New("found")

// searchArtifact walks root in lexical order and returns the first regular
// file whose name starts with stem, or "" when none matches.
func searchArtifact(root, stem string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if strings.HasPrefix(d.Name(), stem) && !isScratch(d.Name()) {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("searching %s: %w", root, err)
	}
	return found, nil
}

func isScratch(name string) bool {
	ext := filepath.Ext(name)
	for _, s := range scratchSuffixes {
		if ext == s {
			return true
		}
	}
	return false
}
