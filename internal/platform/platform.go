// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package platform maps the host operating system to a canonical platform
// identifier and to the executable name each backend produces for it.
package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/pdiddy/markitdown-dist/pkg/types"
)

// ErrUnsupportedPlatform is returned for any host OS outside the supported set.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

const productName = "markitdown"

// osNames maps lower-cased OS names to platform identifiers.
var osNames = map[string]types.PlatformID{
	"windows": types.PlatformWin32,
	"darwin":  types.PlatformDarwin,
	"linux":   types.PlatformLinux,
}

// binarySuffixes is indexed by backend then platform. Every backend row must
// cover every platform.
var binarySuffixes = map[types.BackendID]map[types.PlatformID]string{
	types.BackendPyInstaller: {
		types.PlatformWin32:  ".exe",
		types.PlatformDarwin: "",
		types.PlatformLinux:  "",
	},
	types.BackendNuitka: {
		types.PlatformWin32:  ".exe",
		types.PlatformDarwin: ".bin",
		types.PlatformLinux:  ".bin",
	},
}

// Resolve returns the platform of the running host.
func Resolve() (types.PlatformID, error) {
	return ResolveOS(runtime.GOOS)
}

// ResolveOS maps an OS name to its platform identifier, ignoring case.
func ResolveOS(name string) (types.PlatformID, error) {
	p, ok := osNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, name)
	}
	return p, nil
}

// BinaryName returns the staged executable name for a platform and backend.
func BinaryName(p types.PlatformID, b types.BackendID) (string, error) {
	row, ok := binarySuffixes[b]
	if !ok {
		return "", fmt.Errorf("unknown backend %q", b)
	}
	suffix, ok := row[p]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
	return productName + suffix, nil
}

// Key returns the staging directory key: the bare platform for the primary
// backend, and platform-backend for the alternate so outputs never collide.
func Key(p types.PlatformID, b types.BackendID) string {
	if b == types.BackendPyInstaller {
		return string(p)
	}
	return string(p) + "-" + string(b)
}
