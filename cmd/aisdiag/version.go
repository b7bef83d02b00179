package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aisdiag/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "aisdiag "+version.Build)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
