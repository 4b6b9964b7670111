// Command pld generates the sprint PLD report of a GitHub milestone.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pld",
		Short: "PLD sprint report generator",
		Long: `pld reads the issues of a GitHub milestone and its project boards
and builds the sprint report of the PLD document.

Commands:
  generate  Build the report and write it as JSON or YAML
  check     Validate a settings file`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("settings", "s", "", "settings file (default $SETTINGS_FILE or settings.yaml)")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pld %s (commit: %s)\n", version, commit)
		},
	}
}
