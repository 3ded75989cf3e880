package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/velumweb/velum/internal/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "velum %s (%s)\n", version.Get(), version.Platform())
		fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", version.GitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "go: %s\n", version.GoVersion())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show the version number only")
}
