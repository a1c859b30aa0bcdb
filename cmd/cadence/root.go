package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cliConfig is the resolved configuration shared by all commands.
type cliConfig struct {
	FPS           int
	ReducedMotion bool
	Rate          float64
	LogLevel      string
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:   "cadence",
		Short: "Inspect and simulate animation sequences",
		Long: `Inspect and simulate declarative animation sequence files.

Settings are read from cadence.yaml in the current directory (or --config),
then CADENCE_* environment variables, then flags.

Examples:
  cadence timeline intro.yaml
  cadence simulate intro.yaml --fps 30
  CADENCE_REDUCED_MOTION=true cadence simulate intro.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfig(v, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./cadence.yaml)")
	flags.Int("fps", 60, "simulation frame rate")
	flags.Bool("reduced-motion", false, "apply reduced-motion alternatives")
	flags.Float64("rate", 1, "playback rate")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	for _, name := range []string{"fps", "reduced-motion", "rate", "log-level"} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
	v.SetDefault("fps", 60)
	v.SetDefault("rate", 1.0)
	v.SetDefault("log_level", "info")
	v.SetEnvPrefix("CADENCE")
	v.AutomaticEnv()

	root.AddCommand(newTimelineCmd(v), newSimulateCmd(v))
	return root
}

func readConfig(v *viper.Viper, explicit string) error {
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("cadence")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func loadCLIConfig(v *viper.Viper) (cliConfig, error) {
	cfg := cliConfig{
		FPS:           v.GetInt("fps"),
		ReducedMotion: v.GetBool("reduced_motion"),
		Rate:          v.GetFloat64("rate"),
		LogLevel:      v.GetString("log_level"),
	}
	if cfg.FPS <= 0 {
		return cfg, fmt.Errorf("fps must be positive, got %d", cfg.FPS)
	}
	if cfg.Rate <= 0 {
		return cfg, fmt.Errorf("rate must be positive, got %v", cfg.Rate)
	}
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
