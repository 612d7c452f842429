package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	stateDir string
	logLevel string
	quiet    bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "ayaka",
	Short: "Ayaka visual novel runtime",
	Long: `Ayaka runs visual-novel-style games described by a YAML game config and
a set of WebAssembly plugins: it walks the paragraph graph, evaluates
script text, cooks actions through the plugin pipeline, and persists
save records.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the game's YAML config (default: game.yaml in the current directory)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "settings-manager root directory (default: $HOME/.ayaka)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all log output, errors included")
}

// initConfig wires viper to AYAKA_-prefixed environment variables and an
// optional $HOME/.ayaka/cli.yaml, which supplies defaults for --config and
// --state-dir when the flags are left unset.
func initConfig() {
	viper.SetEnvPrefix("ayaka")
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		slog.Error("failed to find home directory", "error", err)
		os.Exit(1)
	}
	defaultStateDir := filepath.Join(home, ".ayaka")

	viper.AddConfigPath(defaultStateDir)
	viper.SetConfigType("yaml")
	viper.SetConfigName("cli")
	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using cli config file", "file", viper.ConfigFileUsed())
	}

	if cfgFile == "" {
		if v := viper.GetString("config"); v != "" {
			cfgFile = v
		} else {
			cfgFile = "game.yaml"
		}
	}
	if stateDir == "" {
		if v := viper.GetString("state_dir"); v != "" {
			stateDir = v
		} else {
			stateDir = defaultStateDir
		}
	}
}

func setupLogging() {
	level := parseLogLevel(logLevel)
	if quiet {
		level = slog.LevelError + 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
