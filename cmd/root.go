// =============================================================================
// Bank Statement to Tally - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (tally)
//   ├── convertCmd  (tally convert)
//   ├── processCmd  (tally process)
//   ├── verifyCmd   (tally verify)
//   ├── templateCmd (tally template)
//   └── versionCmd  (tally version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading config.yaml before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/config"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the configuration loaded by the root command.
var appConfig *config.MainConfig

// logger is shared by all subcommands.
var logger *logrus.Logger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Bank Statement to Tally - Convert bank statements to Tally voucher XML",
	Long: `Bank Statement to Tally converts bank statement spreadsheets into a
Tally import file. Every statement row becomes a Payment or Receipt voucher
with two balanced ledger entries, one for the party and one for the bank.

Key Features:
  - Reads .xlsx workbooks and .csv exports
  - Understands typed dates (25-12-2023), date cells and date serials
  - Optional clean-up rules for ledger names and narrations
  - Batch processing of an input directory with archiving
  - Verification of generated files

Example Usage:
  tally convert -i statement.xlsx      # Write TallyData.xml
  tally process                        # Convert every statement in input_dir
  tally verify TallyData.xml           # Check that every voucher balances`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig loads the configuration and builds the logger.
func initConfig(cmd *cobra.Command) error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	appConfig = cfg
	logger = logging.NewWithWriter(cmd.ErrOrStderr(), level, cfg.LogFormat)
	logger.WithField("config", cfgFile).Debug("Configuration loaded")
	return nil
}
