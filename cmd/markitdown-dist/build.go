package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/markitdown-dist/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the markitdown binary with PyInstaller",
	Long: `Build runs PyInstaller against build/specs/markitdown.spec, then stages
the binary at bin/<platform>/markitdown (markitdown.exe on Windows).
Previous build/dist and build/build directories are removed first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, types.BackendPyInstaller)
	},
}

var buildAlternateCmd = &cobra.Command{
	Use:   "build-alternate",
	Short: "Build the markitdown binary with Nuitka",
	Long: `Build-alternate compiles build/specs/entry_point.py with Nuitka, then stages
the binary at bin/<platform>-nuitka/markitdown.bin (markitdown.exe on Windows).
The build/nuitka_build directory is recreated first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, types.BackendNuitka)
	},
}

func runBuild(cmd *cobra.Command, id types.BackendID) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	_, err = r.Build(cmd.Context(), id)
	return err
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(buildAlternateCmd)
}
