// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/markitdown-dist/pkg/types"
)

// setupArtifact writes a fake built binary and returns it as a BuiltArtifact.
func setupArtifact(t *testing.T, name, content string, mode os.FileMode) types.BuiltArtifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return types.BuiltArtifact{Path: path, ExpectedName: name, Size: int64(len(content))}
}

func TestPath(t *testing.T) {
	root := filepath.FromSlash("/repo/bin")
	tests := []struct {
		platform types.PlatformID
		backend  types.BackendID
		want     string
	}{
		{types.PlatformLinux, types.BackendPyInstaller, "linux/markitdown"},
		{types.PlatformDarwin, types.BackendPyInstaller, "darwin/markitdown"},
		{types.PlatformWin32, types.BackendPyInstaller, "win32/markitdown.exe"},
		{types.PlatformLinux, types.BackendNuitka, "linux-nuitka/markitdown.bin"},
		{types.PlatformDarwin, types.BackendNuitka, "darwin-nuitka/markitdown.bin"},
		{types.PlatformWin32, types.BackendNuitka, "win32-nuitka/markitdown.exe"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := Path(root, tt.platform, tt.backend)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
		})
	}
}

func TestStage(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}
	artifact := setupArtifact(t, "entry_point.bin", "native binary", 0o644)
	mtime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(artifact.Path, mtime, mtime))

	outRoot := filepath.Join(t.TempDir(), "bin")
	sb, err := Stage(artifact, outRoot, types.PlatformLinux, types.BackendNuitka)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outRoot, "linux-nuitka", "markitdown.bin"), sb.Path)
	assert.Equal(t, "linux-nuitka", sb.PlatformKey)
	assert.Equal(t, int64(len("native binary")), sb.Size)
	assert.Len(t, sb.Digest, 64)

	data, err := os.ReadFile(sb.Path)
	require.NoError(t, err)
	assert.Equal(t, "native binary", string(data))

	info, err := os.Stat(sb.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime), "modification time should be preserved")

	digest, err := Digest(sb.Path)
	require.NoError(t, err)
	assert.Equal(t, sb.Digest, digest)
}

func TestStage_BackendsDoNotCollide(t *testing.T) {
	outRoot := filepath.Join(t.TempDir(), "bin")

	a, err := Stage(setupArtifact(t, "markitdown", "pyinstaller", 0o755), outRoot, types.PlatformLinux, types.BackendPyInstaller)
	require.NoError(t, err)
	b, err := Stage(setupArtifact(t, "entry_point.bin", "nuitka", 0o755), outRoot, types.PlatformLinux, types.BackendNuitka)
	require.NoError(t, err)

	assert.NotEqual(t, filepath.Dir(a.Path), filepath.Dir(b.Path))
	got, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Equal(t, "pyinstaller", string(got))
}

func TestStage_OverwritesAndStaysExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}
	outRoot := filepath.Join(t.TempDir(), "bin")

	_, err := Stage(setupArtifact(t, "markitdown", "first", 0o755), outRoot, types.PlatformDarwin, types.BackendPyInstaller)
	require.NoError(t, err)
	sb, err := Stage(setupArtifact(t, "markitdown", "second build", 0o600), outRoot, types.PlatformDarwin, types.BackendPyInstaller)
	require.NoError(t, err)

	data, err := os.ReadFile(sb.Path)
	require.NoError(t, err)
	assert.Equal(t, "second build", string(data))
	assert.Equal(t, "-rwxr-xr-x", sb.Mode)
}

func TestStage_MissingArtifact(t *testing.T) {
	artifact := types.BuiltArtifact{Path: filepath.Join(t.TempDir(), "gone")}
	_, err := Stage(artifact, t.TempDir(), types.PlatformLinux, types.BackendPyInstaller)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone")
}

func TestWriteRecord(t *testing.T) {
	buildDir := t.TempDir()
	sb := types.StagedBinary{
		Path:        "/repo/bin/linux/markitdown",
		PlatformKey: "linux",
		Platform:    types.PlatformLinux,
		Backend:     types.BackendPyInstaller,
		Size:        4096,
		Mode:        "-rwxr-xr-x",
		Digest:      "abc123",
		BuiltAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	path, err := WriteRecord(buildDir, sb)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(buildDir, "records", "linux.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "platform_key: linux")
	assert.Contains(t, string(data), "digest: abc123")

	got, err := ReadRecord(path)
	require.NoError(t, err)
	assert.True(t, sb.BuiltAt.Equal(got.BuiltAt))
	got.BuiltAt = sb.BuiltAt
	assert.Equal(t, sb, got)
}

func TestSizeMB(t *testing.T) {
	assert.Equal(t, "0.00 MB", SizeMB(0))
	assert.Equal(t, "1.50 MB", SizeMB(1572864))
}
