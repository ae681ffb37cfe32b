package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markitdown-dist/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent build and verification runs",
	Long: `History lists runs recorded in build/history.db, newest first. Use
--platform to restrict the list to one staging key (e.g. linux-nuitka).`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	platformKey, _ := cmd.Flags().GetString("platform")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.History.Path); err != nil {
		fmt.Println("No runs recorded.")
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), platformKey, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-6s  %-14s  %-11s  %-9s  %-8s  %s\n",
		"Started", "Kind", "Platform", "Backend", "Status", "Duration", "Detail")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range runs {
		detail := r.Detail
		if len(detail) > 40 {
			detail = detail[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-6s  %-14s  %-11s  %-9s  %-8s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Kind, r.PlatformKey, r.Backend, r.Status,
			r.Duration().Round(100*time.Millisecond), strings.ReplaceAll(detail, "\n", " "))
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().String("platform", "", "only list runs for this platform key")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}
