package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/evomut/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List source files and mutation counts",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.List(cmd.Context(), domain.ListArgs{Paths: parsePaths(args)})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
