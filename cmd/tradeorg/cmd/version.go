package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tradeorg CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tradeorg version %s\n", version)
		fmt.Fprintln(out, "Hierarchical trading organization simulator")
		fmt.Fprintln(out, "https://github.com/rustyeddy/tradeorg")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
