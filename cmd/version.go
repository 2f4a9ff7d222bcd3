// =============================================================================
// Bank Statement to Tally - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   tally version
//
// OUTPUT:
//   Bank Statement to Tally
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.22.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/bank-statement-to-tally/cmd.Version=1.0.0' \
//     -X 'github.com/ginjaninja78/bank-statement-to-tally/cmd.BuildDate=2024-01-01'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "1.0.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, and Go runtime version.`,

	// The version needs no configuration file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Bank Statement to Tally")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
