// =============================================================================
// Bank Statement to Tally - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every statement in
// the input directory. It orchestrates the batch pipeline.
//
// COMMAND USAGE:
//   tally process [flags]
//
// FLAGS:
//   --dry-run : Simulate processing without writing or archiving anything
//   --file    : Process only this statement instead of the whole input_dir
//
// PROCESSING PIPELINE:
//   1. Create the working directories
//   2. Discover .xlsx and .csv statements in the input directory
//   3. For each statement (concurrently, at most max_concurrency at a time):
//      a. Read the rows
//      b. Apply transformation rules
//      c. Validate the rows
//      d. Build the vouchers
//      e. Write the XML to the output directory
//      f. Archive the statement and the XML
//   4. Write the processing summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/config"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/converter"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/logging"
	"github.com/ginjaninja78/bank-statement-to-tally/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processDryRun simulates processing without writing output files.
var processDryRun bool

// processFile limits the run to a single statement.
var processFile string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every statement in the input directory",
	Long: `The process command scans the input directory for .xlsx and .csv bank
statements and converts each of them into its own Tally import file.

Statements are processed concurrently. A failure in one statement does not
affect the others.

On successful processing:
  - The generated XML is placed in the output directory
  - The statement is moved to the input archive
  - A copy of the XML is placed in the output archive

On error:
  - Validation problems are written to <statement>_errors.txt
  - The statement remains in the input directory
  - Processing continues for other statements

A processing summary is written to the output directory after every run.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&processDryRun,
		"dry-run",
		false,
		"Simulate processing without writing or archiving files",
	)

	processCmd.Flags().StringVar(
		&processFile,
		"file",
		"",
		"Process only this statement",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess is the main function that orchestrates the batch pipeline.
func runProcess(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	cfg := appConfig

	summary := utils.ProcessingSummary{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	log := logger.WithField(logging.FieldRunID, summary.RunID)

	fmt.Fprintln(out, "=== Bank Statement to Tally ===")

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES
	// =========================================================================

	if !processDryRun {
		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}
	}

	fm := newFileManager(cfg)

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := statementsToProcess(fm)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No statements found in the input directory.")
		return nil
	}

	summary.TotalFiles = len(inputFiles)
	fmt.Fprintf(out, "Found %d statement(s) to process\n", len(inputFiles))
	log.WithField("files", len(inputFiles)).Info("Processing started")

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// A buffered channel acts as a semaphore so that at most max_concurrency
	// statements are open at the same time.

	var wg sync.WaitGroup
	results := make(chan converter.Result, len(inputFiles))
	slots := make(chan struct{}, cfg.MaxConcurrency)

	for _, file := range inputFiles {
		wg.Add(1)

		go func(filePath string) {
			defer wg.Done()

			slots <- struct{}{}
			defer func() { <-slots }()

			conv := converter.New(filePath, cfg, logger, converter.Options{
				DryRun:      processDryRun,
				Files:       fm,
				ErrorLogDir: cfg.OutputDir,
				RunID:       summary.RunID,
			})
			results <- conv.Run()
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	for result := range results {
		name := filepath.Base(result.FilePath)

		if !result.Success {
			summary.AddFailed(result.FilePath, result.Error)
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			continue
		}

		stats := result.Stats
		summary.AddProcessed(utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			OutputFile:  result.OutputFile,
			ArchivePath: result.ArchivePath,
			Rows:        stats.RowsProcessed,
			Vouchers:    stats.Vouchers,
			Payments:    stats.Payments,
			Receipts:    stats.Receipts,
			ProcessTime: stats.ProcessingTime,
		}, stats.PaymentTotal, stats.ReceiptTotal)
		summary.ValidationIssues += stats.ValidationIssues

		switch {
		case result.Skipped:
			fmt.Fprintf(out, "  - %s: no rows\n", name)
		case processDryRun:
			fmt.Fprintf(out, "  ✓ %s: %d voucher(s) (dry run)\n", name, stats.Vouchers)
		default:
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, result.OutputFile)
		}
	}

	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 5: PRINT AND WRITE SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Vouchers:        %d\n", summary.TotalVouchers)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if !processDryRun {
		path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
		if err != nil {
			log.WithError(err).Warn("Failed to write processing summary")
		} else {
			fmt.Fprintf(out, "Summary:         %s\n", path)
		}
	}

	log.WithFields(logrus.Fields{
		"successful": summary.SuccessfulFiles,
		"failed":     summary.FailedFiles,
	}).Info("Processing finished")

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d statement(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newFileManager builds the file manager for the configured directories.
func newFileManager(cfg *config.MainConfig) *utils.FileManager {
	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.ArchiveOnSuccess = cfg.Archive()
	return fm
}

// statementsToProcess returns the statements selected for this run.
//
// RETURNS:
//   - The --file statement when it is set.
//   - Otherwise every statement in the input directory.
func statementsToProcess(fm *utils.FileManager) ([]string, error) {
	if processFile == "" {
		return fm.DiscoverStatements()
	}

	if !utils.FileExists(processFile) {
		return nil, fmt.Errorf("file %s does not exist", processFile)
	}
	return []string{processFile}, nil
}
