// =============================================================================
// Bank Statement to Tally - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Bank Statement to Tally CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   tally convert -i FILE   - Convert one statement to TallyData.xml
//   tally process           - Convert every statement in the input directory
//   tally verify FILE       - Check that every voucher in a Tally file balances
//   tally template [FILE]   - Write an empty statement workbook
//   tally version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Statement reading, date normalization, voucher building,
//                      XML generation and verification
//   - pkg/           : File discovery, archiving and run summaries
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bank-statement-to-tally/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
