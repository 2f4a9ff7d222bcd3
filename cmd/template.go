// =============================================================================
// Bank Statement to Tally - Template Command
// =============================================================================
//
// This file defines the 'template' command, which writes an empty statement
// workbook with the configured column headers. Bank exports can be pasted
// into it before running 'convert' or 'process'.
//
// COMMAND USAGE:
//   tally template [FILE]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/xlsxparser"
)

// defaultTemplateFile is written when no FILE argument is given.
const defaultTemplateFile = "statement_template.xlsx"

var templateCmd = &cobra.Command{
	Use:   "template [FILE]",
	Short: "Write an empty statement workbook with the expected headers",
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultTemplateFile
		if len(args) == 1 {
			path = args[0]
		}

		if err := xlsxparser.WriteTemplate(path, appConfig.VoucherColumns().All()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
}
