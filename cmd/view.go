package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/evomut/internal/domain"
	m "gooze.dev/pkg/evomut/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View the latest evolution report",
		Long:  "View the most recent evolution report from a reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportsPath := m.Path(viper.GetString(outputFlagName))
			return workflow.View(cmd.Context(), domain.ViewArgs{Reports: reportsPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
