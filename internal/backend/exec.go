// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Command is one external process to run.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string // appended to the inherited environment
	Stdout io.Writer
	Stderr io.Writer
}

// Executor runs external commands. It returns the process exit code; the
// error is reserved for failures to start or wait on the process.
type Executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, c Command) (int, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, c Command) (int, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// OSExecutor returns the executor that spawns real processes.
func OSExecutor() Executor { return osExecutor{} }
