// =============================================================================
// Bank Statement to Tally - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the process command:
//   - Statement discovery in the input directory
//   - File archival (moving processed statements)
//   - Output file naming
//   - Processing summary generation
//
// ARCHIVAL STRATEGY:
//   - Statements are moved to input_archive after a successful conversion
//   - Generated XML is copied to output_archive for long-term storage
//   - Failed statements remain in the input directory
//   - An existing archive entry is never overwritten; a numeric suffix is
//     added instead
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementExtensions are the file types the converter reads.
var StatementExtensions = []string{".xlsx", ".csv"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the process command.
type FileManager struct {
	// InputDir is the directory where statements are placed.
	InputDir string

	// OutputDir is the directory where XML files are written.
	OutputDir string

	// InputArchiveDir is the directory for archived statements.
	InputArchiveDir string

	// OutputArchiveDir is the directory for archived XML files.
	OutputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: input_archive/2024/01/15/statement.xlsx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether to archive files after successful processing.
	ArchiveOnSuccess bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverStatements lists the statements in the input directory, sorted by
// name. Spreadsheet lock files (~$name.xlsx) and hidden files are skipped.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverStatements() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if IsStatement(name) {
			result = append(result, filepath.Join(fm.InputDir, name))
		}
	}

	sort.Strings(result)
	return result, nil
}

// IsStatement reports whether a file name has a supported statement
// extension.
func IsStatement(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range StatementExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a statement to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath, err := fm.prepareArchivePath(fm.InputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	// Move the file.
	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies an XML file to the archive directory. The file
// stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath, err := fm.prepareArchivePath(fm.OutputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// prepareArchivePath creates the archive directory and returns a path in it
// that does not exist yet.
func (fm *FileManager) prepareArchivePath(archiveDir, filePath string) (string, error) {
	dir := archiveDir
	if fm.UseTimestampSubdirs {
		now := fm.clock()
		dir = filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	fileName := filepath.Base(filePath)
	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)

	candidate := filepath.Join(dir, fileName)
	for i := 1; FileExists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	return candidate, nil
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {original}  - Statement file name (without extension)
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//   - params: A map of extra placeholder values.
//
// RETURNS:
//   - The generated file name, always ending in .xml.
//
// EXAMPLE:
//   format: "{original}_{date}.xml"
//   params: {"original": "hdfc_march"}
//   output: "hdfc_march_20240401.xml"
func GenerateOutputFileName(format string, params map[string]string) string {
	return generateOutputFileName(format, params, time.Now())
}

func generateOutputFileName(format string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	// Only draw a UUID when the format asks for one.
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Ensure .xml extension.
	if !strings.HasSuffix(strings.ToLower(result), ".xml") {
		result += ".xml"
	}

	return result
}

// OriginalName returns a file name without directory and extension, for the
// {original} placeholder.
func OriginalName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID            string
	StartTime        time.Time
	EndTime          time.Time
	TotalFiles       int
	SuccessfulFiles  int
	FailedFiles      int
	TotalRows        int
	TotalVouchers    int
	PaymentTotal     decimal.Decimal
	ReceiptTotal     decimal.Decimal
	ValidationIssues int
	ProcessedFiles   []ProcessedFileInfo
	FailedFilesList  []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	ArchivePath string
	Rows        int
	Vouchers    int
	Payments    int
	Receipts    int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// AddProcessed records a converted statement.
func (s *ProcessingSummary) AddProcessed(info ProcessedFileInfo, payments, receipts decimal.Decimal) {
	s.SuccessfulFiles++
	s.TotalRows += info.Rows
	s.TotalVouchers += info.Vouchers
	s.PaymentTotal = s.PaymentTotal.Add(payments)
	s.ReceiptTotal = s.ReceiptTotal.Add(receipts)
	s.ProcessedFiles = append(s.ProcessedFiles, info)
}

// AddFailed records a statement that could not be converted.
func (s *ProcessingSummary) AddFailed(inputFile string, err error) {
	s.FailedFiles++
	s.FailedFilesList = append(s.FailedFilesList, FailedFileInfo{
		InputFile:    inputFile,
		ErrorMessage: err.Error(),
	})
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryFileName := fmt.Sprintf("processing_summary_%s.txt", timestamp)
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := writeSummary(writer, summary); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func writeSummary(w io.Writer, summary ProcessingSummary) error {
	duration := summary.EndTime.Sub(summary.StartTime)
	_, err := fmt.Fprintf(w, "Bank Statement to Tally - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Total Rows:         %d\n"+
		"  Total Vouchers:     %d\n"+
		"  Payments Total:     %s\n"+
		"  Receipts Total:     %s\n"+
		"  Validation Issues:  %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRows,
		summary.TotalVouchers,
		summary.PaymentTotal.StringFixed(2),
		summary.ReceiptTotal.StringFixed(2),
		summary.ValidationIssues)
	if err != nil {
		return err
	}

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprintln(w, "Successful Files:")
		fmt.Fprintln(w, "--------------------------------------------------------------------------------")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(w, "  Output:       %s\n", pf.OutputFile)
			fmt.Fprintf(w, "  Rows:         %d\n", pf.Rows)
			fmt.Fprintf(w, "  Vouchers:     %d (%d payments, %d receipts)\n", pf.Vouchers, pf.Payments, pf.Receipts)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		fmt.Fprintln(w, "Failed Files:")
		fmt.Fprintln(w, "--------------------------------------------------------------------------------")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	_, err = fmt.Fprint(w, "================================================================================\n"+
		"End of Summary\n")
	return err
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// CreateUnique creates a new file at path for writing. When the name is
// taken, a _1, _2, ... suffix is added before the extension. The name is
// claimed with O_EXCL, so concurrent callers never receive the same file.
//
// RETURNS:
//   - The open file; its Name() is the path that was created.
//   - An error if the file cannot be created.
func CreateUnique(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	candidate := path
	for i := 1; ; i++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
