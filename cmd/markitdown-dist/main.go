// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the markitdown-dist CLI, which builds
// the markitdown converter into a native executable for the host platform and
// verifies the result.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/markitdown-dist/internal/pipeline"
	"github.com/pdiddy/markitdown-dist/internal/ui"
	"github.com/pdiddy/markitdown-dist/internal/verify"
	"github.com/pdiddy/markitdown-dist/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the markitdown-dist CLI.
var rootCmd = &cobra.Command{
	Use:   "markitdown-dist",
	Short: "Build and verify native markitdown executables",
	Long: `markitdown-dist packages the markitdown converter into a single native
executable for the host platform and checks that the executable converts
documents correctly.

  build            compile with PyInstaller into bin/<platform>/
  build-alternate  compile with Nuitka into bin/<platform>-nuitka/
  verify           run the functional test suite against a staged binary

No flags are required: the platform is detected and every path is fixed
relative to the repository root.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./markitdown-dist.yaml or ~/.config/markitdown-dist/config.yaml)")
	rootCmd.PersistentFlags().String("root", ".", "repository root")
	rootCmd.PersistentFlags().Bool("verbose", false, "log diagnostic detail to stderr")

	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))

	viper.SetDefault("root", ".")
	viper.SetDefault("python", pipeline.DefaultPython(runtime.GOOS))
	viper.SetDefault("env_dir", ".buildenv")
	viper.SetDefault("verify.timeout", verify.DefaultTimeout)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", "")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("markitdown-dist")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "markitdown-dist"))
		}
	}

	viper.SetEnvPrefix("MARKITDOWN_DIST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the pipeline configuration from viper and normalizes it.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		Root:   viper.GetString("root"),
		Python: viper.GetString("python"),
		EnvDir: viper.GetString("env_dir"),
		Verify: types.VerifyConfig{
			Timeout: viper.GetDuration("verify.timeout"),
		},
		History: types.HistoryConfig{
			Enabled: viper.GetBool("history.enabled"),
			Path:    viper.GetString("history.path"),
		},
	}
	return pipeline.Normalize(cfg)
}

// newLogger returns the diagnostic logger: debug level on stderr with
// --verbose, warnings only otherwise.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newRunner wires a pipeline runner to the process streams.
func newRunner(cmd *cobra.Command) (*pipeline.Runner, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd)
	log.Debug("configuration", "root", cfg.Root, "python", cfg.Python, "env_dir", cfg.EnvDir, "history", cfg.History.Path)
	return pipeline.New(cfg, os.Stdout, os.Stderr, log), nil
}

// reportError prints a fatal stage error in the narrative's style.
func reportError(w io.Writer, err error) {
	ui.New(w).Error("%v", err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}
