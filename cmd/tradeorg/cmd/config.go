package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradeorg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage organization configuration files.

Subcommands:
  init     - Generate the sample organization configuration
  validate - Validate an existing configuration file

Examples:
  tradeorg config init -o org.yaml
  tradeorg config validate -f org.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a configuration file describing the sample organization: one
account, one fund with two portfolios, three strategies and a handful of
orders. The format follows the file extension (.json, .yaml or .yml).

Example:
  tradeorg config init -o org.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  tradeorg config validate -f org.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "org.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  tradeorg run --config %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var portfolios, strategies int
	for _, f := range cfg.Funds {
		portfolios += len(f.Portfolios)
		for _, p := range f.Portfolios {
			strategies += len(p.Strategies)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Account: %s (%s, $%s)\n", cfg.Account.ID, cfg.Account.Name, cfg.Account.Balance.StringFixed(2))
	fmt.Fprintf(out, "  Funds: %d  Portfolios: %d  Strategies: %d\n", len(cfg.Funds), portfolios, strategies)
	fmt.Fprintf(out, "  Orders: %d\n", len(cfg.Orders))
	fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)
	return nil
}
