// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"io"
	"path/filepath"

	"github.com/pdiddy/markitdown-dist/internal/platform"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

const (
	pyinstallerSpec = "markitdown.spec"
	pyinstallerDist = "dist"
	pyinstallerWork = "build"
)

// PyInstaller bundles the converter ahead of time from a declarative .spec
// file. Its output name is known before the build runs.
type PyInstaller struct{}

func (PyInstaller) ID() types.BackendID { return types.BackendPyInstaller }

// Plan runs "python -m PyInstaller --clean --distpath <dist> --workpath <work>
// <spec>" from the repository root.
func (PyInstaller) Plan(cfg types.PipelineConfig, p types.PlatformID) (types.BuildPlan, error) {
	name, err := platform.BinaryName(p, types.BackendPyInstaller)
	if err != nil {
		return types.BuildPlan{}, err
	}

	spec := specsPath(cfg.Root, pyinstallerSpec)
	dist := filepath.Join(cfg.Root, buildDir, pyinstallerDist)
	work := filepath.Join(cfg.Root, buildDir, pyinstallerWork)

	return types.BuildPlan{
		Backend:     types.BackendPyInstaller,
		Platform:    p,
		Entry:       spec,
		OutputDir:   dist,
		ScratchDirs: []string{dist, work},
		WorkDir:     cfg.Root,
		Python:      cfg.Python,
		Args: []string{
			"-m", "PyInstaller",
			"--clean",
			"--distpath", dist,
			"--workpath", work,
			spec,
		},
		BinaryName: name,
	}, nil
}

// Locate expects the binary at <dist>/<binaryName>. Anything else after a
// successful run is an inconsistency.
func (PyInstaller) Locate(plan types.BuildPlan, _ io.Writer) (types.BuiltArtifact, error) {
	path := filepath.Join(plan.OutputDir, plan.BinaryName)
	if a, ok := statArtifact(path, plan.BinaryName); ok {
		return a, nil
	}
	return types.BuiltArtifact{}, newArtifactError(path, plan.OutputDir)
}
