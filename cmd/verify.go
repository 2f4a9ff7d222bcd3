// =============================================================================
// Bank Statement to Tally - Verify Command
// =============================================================================
//
// This file defines the 'verify' command, which reads a Tally import file
// back and checks that every voucher is a balanced double entry.
//
// COMMAND USAGE:
//   tally verify FILE [FILE...]
//
// EXIT STATUS:
//   Non-zero when a file cannot be read or a voucher is unbalanced.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/verify"
)

// =============================================================================
// VERIFY COMMAND DEFINITION
// =============================================================================

var verifyCmd = &cobra.Command{
	Use:   "verify FILE [FILE...]",
	Short: "Check that every voucher in a Tally XML file balances",
	Long: `The verify command reads generated Tally import files and checks each
VOUCHER: it must have exactly two ledger entries whose amounts sum to zero.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// runVerify verifies each file and prints one line per voucher.
func runVerify(out io.Writer, files []string) error {
	var failed int

	for _, file := range files {
		report, err := verify.File(file)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", file, err)
			failed++
			continue
		}

		fmt.Fprintf(out, "%s (%s, company %q)\n", file, report.TallyRequest, report.Company)
		for _, v := range report.Vouchers {
			if v.Balanced {
				fmt.Fprintf(out, "  ✓ #%s %-8s %s %s\n", v.Number, v.Type, v.Date, v.Party)
			} else {
				fmt.Fprintf(out, "  ✗ #%s %-8s %s %s: %s\n", v.Number, v.Type, v.Date, v.Party, v.Problem)
			}
		}

		unbalanced := len(report.Unbalanced())
		fmt.Fprintf(out, "  %d voucher(s), %d unbalanced\n", len(report.Vouchers), unbalanced)
		if unbalanced > 0 {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed verification", failed, len(files))
	}
	return nil
}
