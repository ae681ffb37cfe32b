package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/markitdown-dist/internal/pipeline"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the functional test suite against a staged binary",
	Long: `Verify converts an HTML file, a text file, and standard input with the
staged binary and checks the Markdown it writes. A failing case does not stop
the suite; the command exits non-zero if any case failed.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	backendName, _ := cmd.Flags().GetString("backend")
	binary, _ := cmd.Flags().GetString("binary")
	report, _ := cmd.Flags().GetString("report")

	id := types.BackendID(backendName)
	if id != types.BackendPyInstaller && id != types.BackendNuitka {
		return fmt.Errorf("unknown backend %q (want %s or %s)", backendName, types.BackendPyInstaller, types.BackendNuitka)
	}

	r, err := newRunner(cmd)
	if err != nil {
		return err
	}

	result, err := r.Verify(cmd.Context(), pipeline.VerifyOptions{
		Backend: id,
		Binary:  binary,
		Report:  report,
	})
	if err != nil {
		return err
	}
	if result.ExitCode() != 0 {
		return fmt.Errorf("%d of %d verification case(s) failed", result.Failed, result.Total())
	}
	return nil
}

func init() {
	verifyCmd.Flags().String("backend", string(types.BackendPyInstaller), "whose staged binary to test: pyinstaller or nuitka")
	verifyCmd.Flags().String("binary", "", "test this binary instead of the staged one")
	verifyCmd.Flags().Duration("timeout", 30*time.Second, "per-case timeout")
	verifyCmd.Flags().String("report", "", "write the test report as YAML to this file")

	_ = viper.BindPFlag("verify.timeout", verifyCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(verifyCmd)
}
