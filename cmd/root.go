// Package cmd provides the root command and CLI setup for evomut.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/evomut/internal/adapter"
	"gooze.dev/pkg/evomut/internal/controller"
	"gooze.dev/pkg/evomut/internal/domain"
	m "gooze.dev/pkg/evomut/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var testAdapter adapter.TestRunnerAdapter
var reportStore adapter.ReportStore
var mutator domain.Mutator
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	testAdapter = adapter.NewLocalTestRunnerAdapter()
	reportStore = adapter.NewJSONReportStore()
	mutator = domain.NewMutator(fsAdapter)
	workflow = domain.NewWorkflow(
		fsAdapter,
		testAdapter,
		reportStore,
		ui,
		mutator,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./pkg/...      recursively scan pkg directory
  - ./cmd ./pkg    scan multiple directories
  - ./calc.go      a single source file`

const rootLongDescription = `Evomut is an evolutionary mutation testing tool. It plants small faults
(mutants) in your source files, runs your test suite against each one and
evolves combinations of mutants towards the ones your tests detect best,
reporting the mutants that survive.

` + pathPatternsHelp

const runLongDescription = `Evolve mutant populations for the given paths (default: current module)
and report killed and surviving mutants.

Target files are mutated in place, one at a time, and restored after every
test run.

` + pathPatternsHelp

const listLongDescription = `List source files and the number of applicable mutations.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evomut",
		Short: "Evolutionary mutation testing tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

// newRootCmd returns a fresh root command with its persistent flags, without
// subcommands.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for evolution reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the run context; the current generation finishes and a
// partial report is written.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
