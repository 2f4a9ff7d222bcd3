// =============================================================================
// Bank Statement to Tally - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline for a single statement file,
// from reading the rows to writing the Tally XML.
//
// CONVERSION PIPELINE:
//   1. Read the statement (xlsx or csv)
//   2. Apply transformation rules to text cells
//   3. Validate the rows (fatal only in strict mode)
//   4. Build the voucher document
//   5. Serialize the XML
//   6. Write the output file (skipped for empty statements and dry runs)
//   7. Archive the processed files
//
// CONCURRENCY:
//   A Converter handles one file and shares no state with other converters,
//   so the process command runs one per goroutine.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/config"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/csvparser"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/logging"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/validation"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/voucher"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/xlsxparser"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/xmlwriter"
	"github.com/ginjaninja78/bank-statement-to-tally/pkg/utils"
)

// ErrUnsupportedFileType is returned for inputs that are neither xlsx nor csv.
var ErrUnsupportedFileType = errors.New("unsupported statement file type")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated XML file.
	// This is empty if processing failed, the statement had no rows, or the
	// run was a dry run.
	OutputFile string

	// ArchivePath is where the input file was moved, if archiving ran.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Skipped is true when the statement had no rows and nothing was written.
	Skipped bool

	// Error contains the error if processing failed.
	Error error

	// XML is the serialized document, kept for dry runs.
	XML []byte

	// Issues are the validation findings for the statement.
	Issues []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of statement rows read.
	RowsProcessed int

	// Vouchers is the number of vouchers in the XML.
	Vouchers int

	// Payments and Receipts split Vouchers by type.
	Payments int
	Receipts int

	// PaymentTotal and ReceiptTotal sum the voucher amounts.
	PaymentTotal decimal.Decimal
	ReceiptTotal decimal.Decimal

	// Unbalanced counts vouchers whose amounts are not plain decimals
	// summing to zero.
	Unbalanced int

	// ValidationIssues is the number of validation findings.
	ValidationIssues int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options controls where a Converter writes.
type Options struct {
	// OutputPath is the file to write. When empty the name is built from
	// OutputDir and OutputNameFormat of the configuration.
	OutputPath string

	// DryRun converts without writing or archiving anything.
	DryRun bool

	// Files archives the input and output after a successful conversion.
	// Nil disables archiving.
	Files *utils.FileManager

	// ErrorLogDir receives a <statement>_errors.txt file when validation
	// reports issues. Empty disables the log.
	ErrorLogDir string

	// RunID tags every log entry. A UUID is generated when empty.
	RunID string
}

// Converter handles the conversion of a single statement file.
type Converter struct {
	inputPath string
	cfg       *config.MainConfig
	opts      Options
	logger    logrus.FieldLogger
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the statement file.
//   - cfg: The application configuration.
//   - logger: Destination for progress and validation messages; nil discards.
//   - opts: Output and archive settings.
func New(inputPath string, cfg *config.MainConfig, logger logrus.FieldLogger, opts Options) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	return &Converter{
		inputPath: inputPath,
		cfg:       cfg,
		opts:      opts,
		logger: logger.WithFields(logrus.Fields{
			logging.FieldFile:  filepath.Base(inputPath),
			logging.FieldRunID: opts.RunID,
		}),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result.FilePath = c.inputPath
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	c.logger.Info("Processing statement")

	// =========================================================================
	// STEP 1: READ STATEMENT
	// =========================================================================

	rows, err := c.readStatement()
	if err != nil {
		result.Error = fmt.Errorf("failed to read statement: %w", err)
		return result
	}

	result.Stats.RowsProcessed = len(rows)
	c.logger.WithField(logging.FieldRows, len(rows)).Debug("Read statement rows")

	// =========================================================================
	// STEP 2: APPLY TRANSFORMATION RULES
	// =========================================================================

	rows, err = NewTransformer(c.cfg.TransformationRules).TransformRows(rows)
	if err != nil {
		result.Error = fmt.Errorf("failed to apply transformations: %w", err)
		return result
	}

	// =========================================================================
	// STEP 3: VALIDATE ROWS
	// =========================================================================

	validator := validation.NewValidatorWithOptions(c.cfg.VoucherColumns(), validation.ValidationOptions{
		Strict: c.cfg.StrictAmounts,
	})
	report := validator.ValidateAll(rows)
	result.Issues = report.Errors
	result.Stats.ValidationIssues = len(report.Errors)

	for _, issue := range report.Errors {
		entry := c.logger.WithFields(logrus.Fields{
			logging.FieldRow:  issue.Row,
			logging.FieldRule: issue.Rule,
		})
		if issue.Severity == validation.SeverityError {
			entry.Error(issue.Message)
		} else {
			entry.Warn(issue.Message)
		}
	}

	c.writeErrorLog(report.Errors)

	if fatal := report.Fatal(); fatal != nil {
		result.Error = fmt.Errorf("validation failed with %d error(s): %w", report.ErrorCount, fatal)
		return result
	}

	// =========================================================================
	// STEP 4: BUILD VOUCHERS
	// =========================================================================

	doc, err := voucher.New(c.cfg.VoucherOptions()).Build(rows)
	if err != nil {
		result.Error = fmt.Errorf("failed to build vouchers: %w", err)
		return result
	}

	summary := voucher.Summarize(doc)
	result.Stats.Vouchers = summary.Vouchers
	result.Stats.Payments = summary.Payments
	result.Stats.Receipts = summary.Receipts
	result.Stats.PaymentTotal = summary.PaymentTotal
	result.Stats.ReceiptTotal = summary.ReceiptTotal
	result.Stats.Unbalanced = summary.Unbalanced

	if summary.Unbalanced > 0 {
		c.logger.Warnf("%d voucher(s) have amounts that do not sum to zero", summary.Unbalanced)
	}

	// =========================================================================
	// STEP 5: GENERATE XML DOCUMENT
	// =========================================================================

	xmlDoc, err := xmlwriter.GenerateWithOptions(doc, c.generateOptions())
	if err != nil {
		result.Error = fmt.Errorf("failed to generate XML: %w", err)
		return result
	}
	result.XML = xmlDoc

	// =========================================================================
	// STEP 6: WRITE OUTPUT FILE
	// =========================================================================

	if len(rows) == 0 {
		c.logger.Info("Statement has no rows, nothing written")
		result.Success = true
		result.Skipped = true
		return result
	}

	if c.opts.DryRun {
		c.logger.WithField(logging.FieldVouchers, summary.Vouchers).Info("Dry run, output not written")
		result.Success = true
		return result
	}

	outputPath, err := c.writeOutput(xmlDoc)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	result.OutputFile = outputPath
	c.logger.WithFields(logrus.Fields{
		logging.FieldOutput:   outputPath,
		logging.FieldVouchers: summary.Vouchers,
	}).Info("Wrote Tally XML")

	// =========================================================================
	// STEP 7: ARCHIVE FILES
	// =========================================================================

	if c.opts.Files != nil {
		// Archiving problems do not fail a conversion. The statement may
		// already have moved even when the XML copy failed.
		archivePath, err := c.archiveFiles(outputPath)
		result.ArchivePath = archivePath
		if err != nil {
			c.logger.WithError(err).Warn("Failed to archive files")
		}
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readStatement reads rows according to the file extension.
func (c *Converter) readStatement() ([]statement.Row, error) {
	switch strings.ToLower(filepath.Ext(c.inputPath)) {
	case ".xlsx":
		sheet, err := xlsxparser.Read(c.inputPath, xlsxparser.ReadOptions{SheetName: c.cfg.SheetName})
		if err != nil {
			return nil, err
		}
		return sheet.Rows, nil
	case ".csv":
		data, err := csvparser.Parse(c.inputPath, c.cfg.CSVSettings)
		if err != nil {
			return nil, err
		}
		return data.Rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Base(c.inputPath))
	}
}

// generateOptions maps the XML settings onto writer options.
func (c *Converter) generateOptions() xmlwriter.GenerateOptions {
	opts := xmlwriter.DefaultGenerateOptions()
	if c.cfg.XML.Indent != nil {
		opts.Indent = *c.cfg.XML.Indent
	}
	if c.cfg.XML.IncludeDeclaration != nil {
		opts.IncludeXMLDeclaration = *c.cfg.XML.IncludeDeclaration
	}
	return opts
}

// OutputPath returns the file the converter writes to.
func (c *Converter) OutputPath() string {
	if c.opts.OutputPath != "" {
		return c.opts.OutputPath
	}
	name := utils.GenerateOutputFileName(c.cfg.OutputNameFormat, map[string]string{
		"original": utils.OriginalName(c.inputPath),
	})
	return filepath.Join(c.cfg.OutputDir, name)
}

// writeOutput writes the XML document.
func (c *Converter) writeOutput(xmlDoc []byte) (string, error) {
	outputPath := c.OutputPath()

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// An explicit output path is replaced; generated names never overwrite
	// another statement's output.
	if c.opts.OutputPath != "" {
		if err := os.WriteFile(outputPath, xmlDoc, 0644); err != nil {
			return "", fmt.Errorf("failed to write file: %w", err)
		}
		return outputPath, nil
	}

	f, err := utils.CreateUnique(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := f.Write(xmlDoc); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return f.Name(), nil
}

// archiveFiles moves the statement to the input archive and copies the XML
// to the output archive.
func (c *Converter) archiveFiles(outputPath string) (string, error) {
	archivePath, err := c.opts.Files.ArchiveInputFile(c.inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to archive input file: %w", err)
	}

	if _, err := c.opts.Files.ArchiveOutputFile(outputPath); err != nil {
		return archivePath, fmt.Errorf("failed to archive output file: %w", err)
	}

	return archivePath, nil
}

// writeErrorLog writes validation findings next to the outputs.
func (c *Converter) writeErrorLog(issues []*validation.ValidationError) {
	if c.opts.ErrorLogDir == "" || c.opts.DryRun || len(issues) == 0 {
		return
	}

	path := filepath.Join(c.opts.ErrorLogDir, utils.OriginalName(c.inputPath)+"_errors.txt")
	if err := validation.WriteErrorLog(issues, c.inputPath, path); err != nil {
		c.logger.WithError(err).Warn("Failed to write validation log")
		return
	}
	c.logger.WithField(logging.FieldOutput, path).Debug("Wrote validation log")
}
