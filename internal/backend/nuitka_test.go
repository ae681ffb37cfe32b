// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/markitdown-dist/pkg/types"
)

func TestNuitkaPlan(t *testing.T) {
	root := filepath.FromSlash("/repo")
	cfg := types.PipelineConfig{Root: root, Python: "python3"}
	out := filepath.Join(root, "build", "nuitka_build")
	entry := filepath.Join(root, "build", "specs", "entry_point.py")

	tests := []struct {
		platform types.PlatformID
		wantName string
		wantApp  bool
	}{
		{types.PlatformLinux, "markitdown.bin", false},
		{types.PlatformDarwin, "markitdown.bin", true},
		{types.PlatformWin32, "markitdown.exe", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			plan, err := Nuitka{}.Plan(cfg, tt.platform)
			require.NoError(t, err)

			assert.Equal(t, []string{"python3", "-m", "nuitka", "--standalone", "--onefile", "--follow-imports"}, plan.Command()[:6])
			assert.Contains(t, plan.Args, "--include-package=markitdown")
			assert.Contains(t, plan.Args, "--include-package-data=magika")
			assert.Contains(t, plan.Args, "--include-package=defusedxml")
			assert.Contains(t, plan.Args, "--nofollow-import-to=*.tests")
			assert.Contains(t, plan.Args, "--nofollow-import-to=*.test")
			assert.Contains(t, plan.Args, "--output-dir="+out)
			assert.Contains(t, plan.Args, "--lto=yes")
			assert.Contains(t, plan.Args, entry)
			assert.Equal(t, tt.wantApp, contains(plan.Args, "--macos-create-app-bundle"))

			assert.Equal(t, entry, plan.Entry)
			assert.Equal(t, out, plan.OutputDir)
			assert.Equal(t, []string{out}, plan.ScratchDirs)
			assert.Equal(t, filepath.Join(root, "build"), plan.WorkDir)
			assert.Equal(t, tt.wantName, plan.BinaryName)
		})
	}
}

func TestNuitkaLocate(t *testing.T) {
	tests := []struct {
		name     string
		platform types.PlatformID
		files    []string // relative to the output dir
		want     string   // relative to the output dir; "" means not found
	}{
		{
			name:     "posix .bin",
			platform: types.PlatformLinux,
			files:    []string{"entry_point.bin"},
			want:     "entry_point.bin",
		},
		{
			name:     "windows .exe",
			platform: types.PlatformWin32,
			files:    []string{"entry_point.exe", "entry_point.bin"},
			want:     "entry_point.exe",
		},
		{
			name:     "bare stem",
			platform: types.PlatformLinux,
			files:    []string{"entry_point"},
			want:     "entry_point",
		},
		{
			name:     "expected name preferred over bare stem",
			platform: types.PlatformLinux,
			files:    []string{"entry_point", "entry_point.bin"},
			want:     "entry_point.bin",
		},
		{
			name:     "search finds nested app bundle binary",
			platform: types.PlatformDarwin,
			files:    []string{"entry_point.app/Contents/MacOS/entry_point"},
			want:     "entry_point.app/Contents/MacOS/entry_point",
		},
		{
			name:     "search descends into standalone dist directory",
			platform: types.PlatformLinux,
			files:    []string{"entry_point.dist/entry_point.bin"},
			want:     "entry_point.dist/entry_point.bin",
		},
		{
			name:     "search takes first lexical match",
			platform: types.PlatformLinux,
			files: []string{
				"entry_point.build/entry_point.o",
				"entry_point.dist/entry_point.bin",
				"out/entry_point-x86_64",
			},
			want: "entry_point.build/entry_point.o",
		},
		{
			name:     "search skips scratch-suffixed files",
			platform: types.PlatformLinux,
			files:    []string{"a/entry_point.build", "b/entry_point.run"},
			want:     "b/entry_point.run",
		},
		{
			name:     "only scratch-suffixed matches is not found",
			platform: types.PlatformLinux,
			files: []string{
				"a/entry_point.build",
				"b/entry_point.dist",
				"c/entry_point.onefile-build",
			},
		},
		{
			name:     "nothing produced",
			platform: types.PlatformLinux,
			files:    []string{"compilation-report.xml"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setupRoot(t)
			plan, err := Nuitka{}.Plan(cfg, tt.platform)
			require.NoError(t, err)
			require.NoError(t, Clean(plan))

			for _, f := range tt.files {
				writeFile(t, filepath.Join(plan.OutputDir, filepath.FromSlash(f)), "payload")
			}

			var log bytes.Buffer
			a, err := Nuitka{}.Locate(plan, &log)
			if tt.want == "" {
				require.ErrorIs(t, err, ErrArtifactNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(plan.OutputDir, filepath.FromSlash(tt.want)), a.Path)
			assert.Equal(t, plan.BinaryName, a.ExpectedName)
			assert.Equal(t, int64(len("payload")), a.Size)
		})
	}
}

func TestNuitkaLocate_MissingOutputDir(t *testing.T) {
	cfg := setupRoot(t)
	plan, err := Nuitka{}.Plan(cfg, types.PlatformLinux)
	require.NoError(t, err)

	_, err = Nuitka{}.Locate(plan, io.Discard)
	var artErr *ArtifactError
	require.ErrorAs(t, err, &artErr)
	assert.Empty(t, artErr.Listing)
	assert.Contains(t, err.Error(), "empty or missing")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
