package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/tradeorg/config"
	"github.com/rustyeddy/tradeorg/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// settings holds flag and environment overrides. Keys are dotted config
// paths, so TRADEORG_LOG_LEVEL overrides log.level.
var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:   "tradeorg",
	Short: "Hierarchical trading organization simulator",
	Long: `Tradeorg models a trading organization as an account, its funds,
their portfolios and the strategies that trade inside them.

It provides tools for:
  - Building an organization and its capital allocations from a config file
  - Enforcing fund and portfolio compliance rules on every trade
  - Replaying orders through simulated, immediately filled execution
  - Inspecting per-node trade ledgers and strategy positions

Configuration comes from --config, with TRADEORG_* environment variables
and flags layered on top.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default: built-in sample organization)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = settings.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = settings.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = settings.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	settings.SetEnvPrefix("TRADEORG")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	settings.AutomaticEnv()
}

// loadConfig reads the configured file, or the sample organization when no
// file is given, and applies flag and environment overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if path := settings.GetString("config"); path != "" {
		c, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}

	if lvl := settings.GetString("log.level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if f := settings.GetString("log.format"); f != "" {
		cfg.Log.Format = f
	}
	if addr := settings.GetString("metrics.addr"); addr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: w,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}
