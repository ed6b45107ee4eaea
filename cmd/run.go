package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/evomut/internal/domain"
	m "gooze.dev/pkg/evomut/internal/model"
)

var (
	runConfigFileFlag    string
	runGenerationsFlag   int
	runPopulationFlag    int
	runMutationRateFlag  float64
	runCrossoverRateFlag float64
	runSeedFlag          int64
	runTimeoutFlag       int
	runWorkdirFlag       string
	runCommandFlag       string
	runFormatFlag        string
	runMetricsFileFlag   string
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run evolutionary mutation testing",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := runConfig(cmd)
			if err != nil {
				return err
			}

			paths := parsePaths(args)
			if len(paths) == 0 && len(config.TargetFiles) == 0 {
				paths = []m.Path{"./..."}
			}

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Config:      config,
				Paths:       paths,
				Seed:        viper.GetInt64(seedConfigKey),
				WorkDir:     m.Path(viper.GetString(workdirConfigKey)),
				Command:     testCommand(),
				Format:      viper.GetString(formatConfigKey),
				Reports:     m.Path(viper.GetString(outputFlagName)),
				MetricsFile: m.Path(viper.GetString(metricsFileConfigKey)),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&runConfigFileFlag, configFlagName, "", "replay a saved run configuration (YAML); explicit flags override it")

	flags.IntVarP(&runGenerationsFlag, generationsFlagName, "g", viper.GetInt(generationsConfigKey), "number of generations to evolve")
	bindFlagToConfig(flags.Lookup(generationsFlagName), generationsConfigKey)

	flags.IntVarP(&runPopulationFlag, populationFlagName, "n", viper.GetInt(populationConfigKey), "individuals per generation")
	bindFlagToConfig(flags.Lookup(populationFlagName), populationConfigKey)

	flags.Float64Var(&runMutationRateFlag, mutationRateFlagName, viper.GetFloat64(mutationRateConfigKey), "probability of adding or removing a mutation when breeding")
	bindFlagToConfig(flags.Lookup(mutationRateFlagName), mutationRateConfigKey)

	flags.Float64Var(&runCrossoverRateFlag, crossoverRateFlagName, viper.GetFloat64(crossoverRateConfigKey), "probability of breeding by crossover")
	bindFlagToConfig(flags.Lookup(crossoverRateFlagName), crossoverRateConfigKey)

	flags.Int64Var(&runSeedFlag, seedFlagName, viper.GetInt64(seedConfigKey), "random seed (0 picks one from the clock)")
	bindFlagToConfig(flags.Lookup(seedFlagName), seedConfigKey)

	flags.IntVarP(&runTimeoutFlag, timeoutFlagName, "t", viper.GetInt(timeoutConfigKey), "test command timeout per mutant, in seconds")
	bindFlagToConfig(flags.Lookup(timeoutFlagName), timeoutConfigKey)

	flags.StringVarP(&runWorkdirFlag, workdirFlagName, "C", viper.GetString(workdirConfigKey), "directory the test command runs in")
	bindFlagToConfig(flags.Lookup(workdirFlagName), workdirConfigKey)

	flags.StringVar(&runCommandFlag, commandFlagName, strings.Join(testCommand(), " "), "test command, split on whitespace")
	bindFlagToConfig(flags.Lookup(commandFlagName), commandConfigKey)

	flags.StringVar(&runFormatFlag, formatFlagName, viper.GetString(formatConfigKey), "test output format: gotest or libtest")
	bindFlagToConfig(flags.Lookup(formatFlagName), formatConfigKey)

	flags.StringVar(&runMetricsFileFlag, metricsFileFlagName, viper.GetString(metricsFileConfigKey), "write Prometheus metrics of the run to this file")
	bindFlagToConfig(flags.Lookup(metricsFileFlagName), metricsFileConfigKey)
}

// runConfig returns the evolution parameters of a run: the --config file when
// given, with explicitly set flags applied on top, or the settings otherwise.
func runConfig(cmd *cobra.Command) (m.MutationConfig, error) {
	path, err := cmd.Flags().GetString(configFlagName)
	if err != nil {
		return m.MutationConfig{}, err
	}

	if path == "" {
		return evolutionConfig(), nil
	}

	config, err := m.LoadConfigFile(m.Path(path))
	if err != nil {
		return m.MutationConfig{}, fmt.Errorf("load run configuration: %w", err)
	}

	flags := cmd.Flags()
	settings := evolutionConfig()

	if flags.Changed(generationsFlagName) {
		config.MaxGenerations = settings.MaxGenerations
	}

	if flags.Changed(populationFlagName) {
		config.PopulationSize = settings.PopulationSize
	}

	if flags.Changed(mutationRateFlagName) {
		config.MutationRate = settings.MutationRate
	}

	if flags.Changed(crossoverRateFlagName) {
		config.CrossoverRate = settings.CrossoverRate
	}

	if flags.Changed(timeoutFlagName) {
		config.TestTimeout = settings.TestTimeout
	}

	return config, nil
}
