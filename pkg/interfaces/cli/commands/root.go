// Package commands wires the cutplan CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCmd builds the cutplan command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cutplan",
		Short: "Cutting plan optimizer for paper roll slitting",
		Long:  "cutplan turns customer roll orders into jumbo cutting plans, tracking trim waste and the pending backlog across planning cycles.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newPatternsCmd())
	cmd.AddCommand(newCompareCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cutplan %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}
