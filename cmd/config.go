package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	m "gooze.dev/pkg/evomut/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "evomut"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName  = "output"
	verboseFlagName = "verbose"
	logFileFlagName = "log-file"

	configFlagName        = "config"
	generationsFlagName   = "generations"
	populationFlagName    = "population"
	mutationRateFlagName  = "mutation-rate"
	crossoverRateFlagName = "crossover-rate"
	seedFlagName          = "seed"
	timeoutFlagName       = "timeout"
	workdirFlagName       = "workdir"
	commandFlagName       = "command"
	formatFlagName        = "format"
	metricsFileFlagName   = "metrics-file"
	limitFlagName         = "limit"

	generationsConfigKey   = "evolution.generations"
	populationConfigKey    = "evolution.population"
	mutationRateConfigKey  = "evolution.mutation_rate"
	crossoverRateConfigKey = "evolution.crossover_rate"
	seedConfigKey          = "evolution.seed"
	timeoutConfigKey       = "run.timeout"
	workdirConfigKey       = "run.workdir"
	commandConfigKey       = "run.command"
	formatConfigKey        = "run.format"
	metricsFileConfigKey   = "metrics.file"

	defaultReportsDir = ".evomut-reports"
	defaultWorkdir    = "."
	defaultFormat     = "gotest"

	envPrefix = "EVOMUT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".evomut.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var defaultTestCommand = []string{"go", "test", "-v", "./..."}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)

	viper.SetDefault(generationsConfigKey, m.DefaultMaxGenerations)
	viper.SetDefault(populationConfigKey, m.DefaultPopulationSize)
	viper.SetDefault(mutationRateConfigKey, m.DefaultMutationRate)
	viper.SetDefault(crossoverRateConfigKey, m.DefaultCrossoverRate)
	viper.SetDefault(seedConfigKey, int64(0))
	viper.SetDefault(timeoutConfigKey, m.DefaultTestTimeout)
	viper.SetDefault(workdirConfigKey, defaultWorkdir)
	viper.SetDefault(commandConfigKey, defaultTestCommand)
	viper.SetDefault(formatConfigKey, defaultFormat)
	viper.SetDefault(metricsFileConfigKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// evolutionConfig builds a MutationConfig from the evolution and run settings.
func evolutionConfig() m.MutationConfig {
	return m.MutationConfig{
		TargetFiles:    []m.Path{},
		MaxGenerations: viper.GetInt(generationsConfigKey),
		PopulationSize: viper.GetInt(populationConfigKey),
		MutationRate:   viper.GetFloat64(mutationRateConfigKey),
		CrossoverRate:  viper.GetFloat64(crossoverRateConfigKey),
		TestTimeout:    viper.GetInt(timeoutConfigKey),
	}
}

// testCommand returns run.command as an argument list. A plain string is split
// on whitespace.
func testCommand() []string {
	command := viper.GetStringSlice(commandConfigKey)
	if len(command) == 1 {
		command = strings.Fields(command[0])
	}

	if len(command) == 0 {
		return append([]string(nil), defaultTestCommand...)
	}

	return command
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (-4 is debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
