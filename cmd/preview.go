package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/evomut/internal/domain"
	m "gooze.dev/pkg/evomut/internal/model"
)

var previewLimitFlag int

// previewCmd represents the preview command.
var previewCmd = newPreviewCmd()

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show the mutants of one source file as diffs",
		Long: `Generate the mutants of FILE and print each one as a unified diff against
the original, highest priority first. Use - to read the source from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := cmd.Flags().GetInt(limitFlagName)
			if err != nil {
				return err
			}

			return workflow.Preview(cmd.Context(), domain.PreviewArgs{
				Path:  m.Path(args[0]),
				Input: cmd.InOrStdin(),
				Limit: limit,
			})
		},
	}

	cmd.Flags().IntVarP(&previewLimitFlag, limitFlagName, "l", 0, "show at most this many mutants (0 shows all)")

	return cmd
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
