// =============================================================================
// Bank Statement to Tally - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which converts one statement into
// one Tally import file.
//
// COMMAND USAGE:
//   tally convert --input statement.xlsx [flags]
//
// FLAGS:
//   --input, -i  : Statement to convert (.xlsx or .csv)
//   --output, -o : XML file to write (default: output_file_name, TallyData.xml)
//   --sheet      : Worksheet to read (default: the first sheet)
//   --company    : Company name written to SVCURRENTCOMPANY
//   --strict     : Refuse rows with both or neither amount populated
//   --dry-run    : Print the XML instead of writing it
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/converter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	convertInput   string
	convertOutput  string
	convertSheet   string
	convertCompany string
	convertStrict  bool
	convertDryRun  bool
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a single bank statement to Tally XML",
	Long: `The convert command reads one bank statement and writes a Tally voucher
import file.

The statement needs a header row with the columns Date, Ledger Name, Bank Name,
Particulars, Withdrawals and Deposits (or the names configured under columns).
Rows with a Withdrawals amount become Payment vouchers, all other rows become
Receipt vouchers.

If any row has a date that cannot be read, nothing is written. A statement
without rows produces no file.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Statement file to convert (.xlsx or .csv)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "XML file to write (default from output_file_name)")
	convertCmd.Flags().StringVar(&convertSheet, "sheet", "", "Worksheet to read (default: first sheet)")
	convertCmd.Flags().StringVar(&convertCompany, "company", "", "Company name for SVCURRENTCOMPANY")
	convertCmd.Flags().BoolVar(&convertStrict, "strict", false, "Fail on rows with both or neither amount populated")
	convertCmd.Flags().BoolVar(&convertDryRun, "dry-run", false, "Print the XML instead of writing it")

	convertCmd.MarkFlagRequired("input")
}

// =============================================================================
// MAIN CONVERT FUNCTION
// =============================================================================

func runConvert(cmd *cobra.Command) error {
	cfg := *appConfig
	if convertSheet != "" {
		cfg.SheetName = convertSheet
	}
	if convertCompany != "" {
		cfg.CompanyName = convertCompany
	}
	if convertStrict {
		cfg.StrictAmounts = true
	}

	output := convertOutput
	if output == "" {
		output = cfg.OutputFileName
	}

	result := converter.New(convertInput, &cfg, logger, converter.Options{
		OutputPath: output,
		DryRun:     convertDryRun,
	}).Run()
	if result.Error != nil {
		return result.Error
	}

	out := cmd.OutOrStdout()

	if convertDryRun {
		_, err := out.Write(result.XML)
		return err
	}

	if result.Skipped {
		fmt.Fprintf(out, "%s has no rows, nothing written\n", convertInput)
		return nil
	}

	stats := result.Stats
	fmt.Fprintf(out, "Wrote %s\n", result.OutputFile)
	fmt.Fprintf(out, "  Vouchers:  %d\n", stats.Vouchers)
	fmt.Fprintf(out, "  Payments:  %d (%s)\n", stats.Payments, stats.PaymentTotal.StringFixed(2))
	fmt.Fprintf(out, "  Receipts:  %d (%s)\n", stats.Receipts, stats.ReceiptTotal.StringFixed(2))
	if stats.ValidationIssues > 0 {
		fmt.Fprintf(out, "  Warnings:  %d\n", stats.ValidationIssues)
	}
	return nil
}
