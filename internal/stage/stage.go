// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stage copies a built artifact into the canonical output layout,
// <outputRoot>/<platformKey>/<binaryName>, and records what was staged.
package stage

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/pdiddy/markitdown-dist/internal/platform"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

const executableMode os.FileMode = 0o755

// Path returns the canonical staged binary path for a platform and backend.
func Path(outputRoot string, p types.PlatformID, b types.BackendID) (string, error) {
	name, err := platform.BinaryName(p, b)
	if err != nil {
		return "", err
	}
	return filepath.Join(outputRoot, platform.Key(p, b), name), nil
}

// Stage copies artifact to its canonical path under outputRoot, preserving
// its permission bits and modification time, then sets the executable bit on
// POSIX platforms. Any I/O failure is returned with no retry.
func Stage(artifact types.BuiltArtifact, outputRoot string, p types.PlatformID, b types.BackendID) (types.StagedBinary, error) {
	dst, err := Path(outputRoot, p, b)
	if err != nil {
		return types.StagedBinary{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return types.StagedBinary{}, fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	digest, err := copyFile(artifact.Path, dst)
	if err != nil {
		return types.StagedBinary{}, err
	}

	if p.IsPOSIX() {
		if err := os.Chmod(dst, executableMode); err != nil {
			return types.StagedBinary{}, fmt.Errorf("chmod %s: %w", dst, err)
		}
	}

	info, err := os.Stat(dst)
	if err != nil {
		return types.StagedBinary{}, fmt.Errorf("stat %s: %w", dst, err)
	}

	return types.StagedBinary{
		Path:        dst,
		PlatformKey: platform.Key(p, b),
		Platform:    p,
		Backend:     b,
		Size:        info.Size(),
		Mode:        info.Mode().Perm().String(),
		Digest:      digest,
		BuiltAt:     time.Now().UTC(),
	}, nil
}

// copyFile copies src to dst like cp -p and returns the BLAKE3 digest of the
// copied bytes.
func copyFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}

	h := blake3.New()
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		out.Close()
		return "", fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("setting times on %s: %w", dst, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// SizeMB formats a byte count the way the build narrative reports it.
func SizeMB(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}

// Digest returns the hex BLAKE3 digest of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
