// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PlatformID is the canonical identifier for a supported host platform.
type PlatformID string

const (
	PlatformWin32  PlatformID = "win32"
	PlatformDarwin PlatformID = "darwin"
	PlatformLinux  PlatformID = "linux"
)

// Platforms lists every supported platform in a stable order.
var Platforms = []PlatformID{PlatformWin32, PlatformDarwin, PlatformLinux}

// IsPOSIX reports whether the platform uses POSIX permission bits.
func (p PlatformID) IsPOSIX() bool {
	return p == PlatformDarwin || p == PlatformLinux
}

// BackendID identifies a native compilation backend.
type BackendID string

const (
	// BackendPyInstaller is the primary, ahead-of-time bundler backend.
	BackendPyInstaller BackendID = "pyinstaller"
	// BackendNuitka is the alternate, whole-program compiler backend.
	BackendNuitka BackendID = "nuitka"
)

// Backends lists every backend, primary first.
var Backends = []BackendID{BackendPyInstaller, BackendNuitka}

// BuildPlan describes one backend invocation. It is built from the host
// platform and the fixed repository layout and consumed once.
type BuildPlan struct {
	Backend  BackendID  `json:"backend" yaml:"backend"`
	Platform PlatformID `json:"platform" yaml:"platform"`

	// Entry is the backend's primary input: the build specification file for
	// PyInstaller, the entry-point script for Nuitka.
	Entry string `json:"entry" yaml:"entry"`

	// OutputDir is where the backend writes its final artifact.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ScratchDirs are removed before every invocation.
	ScratchDirs []string `json:"scratch_dirs" yaml:"scratch_dirs"`

	// WorkDir is the working directory of the backend process.
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// Python is the interpreter that hosts the backend module.
	Python string `json:"python" yaml:"python"`

	// Args are the backend arguments following the interpreter.
	Args []string `json:"args" yaml:"args"`

	// Env holds extra KEY=VALUE entries for the backend process.
	Env []string `json:"env,omitempty" yaml:"env,omitempty"`

	// BinaryName is the canonical name of the staged executable.
	BinaryName string `json:"binary_name" yaml:"binary_name"`
}

// Command returns the full command line, interpreter first.
func (p BuildPlan) Command() []string {
	cmd := make([]string, 0, len(p.Args)+1)
	cmd = append(cmd, p.Python)
	return append(cmd, p.Args...)
}

// BuiltArtifact is the backend output discovered after a successful build.
type BuiltArtifact struct {
	Path         string `json:"path" yaml:"path"`
	ExpectedName string `json:"expected_name" yaml:"expected_name"`
	Size         int64  `json:"size" yaml:"size"`
}

// StagedBinary is a built artifact copied into the canonical output layout.
type StagedBinary struct {
	Path        string     `json:"path" yaml:"path"`
	PlatformKey string     `json:"platform_key" yaml:"platform_key"`
	Platform    PlatformID `json:"platform" yaml:"platform"`
	Backend     BackendID  `json:"backend" yaml:"backend"`
	Size        int64      `json:"size" yaml:"size"`
	Mode        string     `json:"mode" yaml:"mode"`

	// Digest is the hex BLAKE3 digest of the staged file.
	Digest  string    `json:"digest" yaml:"digest"`
	BuiltAt time.Time `json:"built_at" yaml:"built_at"`
}
