package types

import "time"

// VerifyConfig holds settings for the verification harness.
type VerifyConfig struct {
	// Timeout bounds each test case invocation (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// HistoryConfig holds settings for the run ledger.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded (default true).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file (default <root>/build/history.db).
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig is the configuration threaded through every stage.
type PipelineConfig struct {
	// Root is the repository root; every fixed path resolves beneath it.
	Root string `json:"root" yaml:"root"`

	// Python is the interpreter used to run the backends
	// (default python on Windows, python3 elsewhere).
	Python string `json:"python" yaml:"python"`

	// EnvDir is a directory of extra backend environment variables,
	// one file per variable (default .buildenv under Root).
	EnvDir string `json:"env_dir" yaml:"env_dir"`

	Verify  VerifyConfig  `json:"verify" yaml:"verify"`
	History HistoryConfig `json:"history" yaml:"history"`
}
