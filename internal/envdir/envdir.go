// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package envdir loads extra environment variables for backend processes from
// a directory of plain-text files. Each file is one variable: the filename is
// the variable name and the trimmed file contents are the value.
//
// Typical entries: PYINSTALLER_CONFIG_DIR, NUITKA_CACHE_DIR, CC.
package envdir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on warn but do not abort.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env directory %s: %w", dir, err)
	}

	vars := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.Contains(name, "=") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read env file %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			vars[name] = value
		}
	}

	return vars, nil
}

// Environ renders vars as sorted KEY=VALUE entries suitable for exec.Cmd.Env.
func Environ(vars map[string]string) []string {
	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
