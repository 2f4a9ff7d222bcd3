// =============================================================================
// Bank Statement to Tally - CSV Statement Reader
// =============================================================================
//
// This module reads bank statements exported as CSV. Many Indian banks offer
// a CSV download next to the Excel one, often in a Windows code page rather
// than UTF-8. It handles:
//   - Different delimiters (comma, semicolon, tab, ...)
//   - UTF-8 (with or without BOM), ISO-8859-1 and Windows-1252 input
//   - Quoted fields with embedded delimiters and newlines
//
// Every value is read as text. Blank values are left out of the row, the same
// way blank workbook cells are, so a missing amount and an empty one look
// identical to the voucher builder.
//
// =============================================================================

package csvparser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/config"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
)

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents the parsed CSV file.
type CSVData struct {
	// Headers contains the column headers in file order, trimmed.
	Headers []string

	// Rows contains the data rows keyed by header.
	Rows []statement.Row

	// SourceFile is the path to the source CSV file.
	SourceFile string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - A pointer to the CSVData struct.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// readerMu guards the process-wide gocsv reader factory.
var readerMu sync.Mutex

// ParseReader reads CSV data from r.
func ParseReader(r io.Reader, settings config.CSVSettings) (*CSVData, error) {
	dec, err := decoder(settings.Encoding)
	if err != nil {
		return nil, err
	}

	delimiter, err := delimiterRune(settings.Delimiter)
	if err != nil {
		return nil, err
	}

	var recorder *headerRecorder

	readerMu.Lock()
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		recorder = newHeaderRecorder(in, delimiter)
		return recorder
	})
	records, err := gocsv.CSVToMaps(dec.Reader(r))
	gocsv.SetCSVReader(gocsv.DefaultCSVReader)
	readerMu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	data := &CSVData{}
	if recorder != nil {
		data.Headers = cleanHeaders(recorder.header)
	}

	for _, record := range records {
		row := make(statement.Row, len(record))
		for header, value := range record {
			if value == "" {
				continue
			}
			row[strings.TrimSpace(header)] = statement.Text(value)
		}
		if len(row) > 0 {
			data.Rows = append(data.Rows, row)
		}
	}

	return data, nil
}

// =============================================================================
// READER CONFIGURATION
// =============================================================================

// headerRecorder is a gocsv.CSVReader that remembers the first record, which
// CSVToMaps consumes as the header row.
type headerRecorder struct {
	*csv.Reader
	header []string
}

func newHeaderRecorder(in io.Reader, delimiter rune) *headerRecorder {
	reader := csv.NewReader(in)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	return &headerRecorder{Reader: reader}
}

func (h *headerRecorder) Read() ([]string, error) {
	record, err := h.Reader.Read()
	if err == nil && h.header == nil {
		h.header = append([]string(nil), record...)
	}
	return record, err
}

// decoder returns the decoder for a configured encoding name.
func decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "ISO-8859-1", "LATIN1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported CSV encoding: %s", name)
	}
}

// delimiterRune converts the configured delimiter. "\t" may be written
// literally in YAML.
func delimiterRune(delimiter string) (rune, error) {
	switch delimiter {
	case "":
		return ',', nil
	case `\t`:
		return '\t', nil
	}
	runes := []rune(delimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("CSV delimiter must be a single character, got %q", delimiter)
	}
	return runes[0], nil
}

// cleanHeaders trims whitespace around each header.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}
