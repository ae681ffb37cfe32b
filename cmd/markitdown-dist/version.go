package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of markitdown-dist",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("markitdown-dist %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
