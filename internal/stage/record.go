// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/markitdown-dist/pkg/types"
)

const recordsDir = "records"

// RecordPath returns where the record for platformKey lives under buildDir.
func RecordPath(buildDir, platformKey string) string {
	return filepath.Join(buildDir, recordsDir, platformKey+".yaml")
}

// WriteRecord writes a YAML description of the staged binary to
// <buildDir>/records/<platformKey>.yaml and returns its path.
func WriteRecord(buildDir string, sb types.StagedBinary) (string, error) {
	dir := filepath.Join(buildDir, recordsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := yaml.Marshal(sb)
	if err != nil {
		return "", fmt.Errorf("marshaling build record: %w", err)
	}

	path := RecordPath(buildDir, sb.PlatformKey)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ReadRecord loads a build record written by WriteRecord.
func ReadRecord(path string) (types.StagedBinary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.StagedBinary{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var sb types.StagedBinary
	if err := yaml.Unmarshal(data, &sb); err != nil {
		return types.StagedBinary{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return sb, nil
}
