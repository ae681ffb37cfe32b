// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/markitdown-dist/internal/history"
	"github.com/pdiddy/markitdown-dist/internal/platform"
	"github.com/pdiddy/markitdown-dist/internal/stage"
	"github.com/pdiddy/markitdown-dist/internal/verify"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

// ErrBinaryNotFound means there is no staged binary to verify.
var ErrBinaryNotFound = errors.New("binary not found")

// VerifyOptions selects what to verify. The zero value verifies the primary
// backend's staged binary for the host platform.
type VerifyOptions struct {
	// Backend selects whose staged binary to test (default pyinstaller).
	Backend types.BackendID

	// Binary overrides the staged binary path.
	Binary string

	// Report, when set, receives the TestReport as YAML.
	Report string

	// Cases overrides the default suite.
	Cases []types.TestCase
}

// Verify runs the verification suite against a staged binary. The returned
// error is reserved for problems that prevent the suite from running; case
// failures are reported through the TestReport.
func (r *Runner) Verify(ctx context.Context, opts VerifyOptions) (report types.TestReport, err error) {
	if opts.Backend == "" {
		opts.Backend = types.BackendPyInstaller
	}
	if opts.Cases == nil {
		opts.Cases = verify.DefaultCases()
	}

	started := time.Now()
	platformKey := "unknown"
	defer func() {
		detail := fmt.Sprintf("%d passed, %d failed", report.Passed, report.Failed)
		if err != nil {
			detail = err.Error()
		}
		r.record(ctx, history.KindVerify, platformKey, opts.Backend, err == nil && report.Failed == 0, detail, started)
	}()

	p, err := r.resolvePlatform()
	if err != nil {
		return report, err
	}
	platformKey = platform.Key(p, opts.Backend)

	binary := opts.Binary
	if binary == "" {
		binary, err = stage.Path(OutputRoot(r.cfg), p, opts.Backend)
		if err != nil {
			return report, err
		}
	}

	r.out.Header("Testing markitdown binary for %s", p)
	r.out.Field("Binary path", binary)
	r.out.Println()

	info, err := os.Stat(binary)
	if err != nil {
		return report, fmt.Errorf("%w at %s: run 'markitdown-dist %s' first", ErrBinaryNotFound, binary, buildCommand(opts.Backend))
	}
	if p.IsPOSIX() && info.Mode().Perm()&0o111 == 0 {
		r.out.Warn("Binary is not executable, attempting to fix...")
		if err := os.Chmod(binary, 0o755); err != nil {
			return report, fmt.Errorf("chmod %s: %w", binary, err)
		}
	}
	if opts.Binary == "" {
		r.checkRecord(platform.Key(p, opts.Backend), binary)
	}

	h := verify.NewHarness(r.cfg.Verify.Timeout, r.out.Writer(), r.log)
	report = h.RunSuite(ctx, binary, opts.Cases)
	h.PrintSummary(report)

	if opts.Report != "" {
		if err := writeReport(opts.Report, report); err != nil {
			return report, err
		}
		r.log.Debug("wrote test report", "path", opts.Report)
	}
	return report, nil
}

// checkRecord warns when the staged binary no longer matches the digest
// recorded when it was built.
func (r *Runner) checkRecord(platformKey, binary string) {
	rec, err := stage.ReadRecord(stage.RecordPath(BuildDir(r.cfg), platformKey))
	if err != nil {
		r.log.Debug("no build record", "platform_key", platformKey, "err", err)
		return
	}
	digest, err := stage.Digest(binary)
	if err != nil {
		fmt.Fprintf(r.errw, "warning: %v\n", err)
		return
	}
	if digest != rec.Digest {
		r.out.Warn("binary differs from the one recorded at %s", rec.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	}
}

func writeReport(path string, report types.TestReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling test report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func buildCommand(id types.BackendID) string {
	if id == types.BackendPyInstaller {
		return "build"
	}
	return "build-alternate"
}
