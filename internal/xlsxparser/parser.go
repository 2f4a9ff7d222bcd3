// =============================================================================
// Bank Statement to Tally - XLSX Statement Reader
// =============================================================================
//
// This module reads a bank statement workbook into statement rows. The first
// row of the sheet holds the column headers; every following non-blank row
// becomes one statement.Row keyed by those headers.
//
// STATEMENT LAYOUT (Expected Columns):
//
//   | Date       | Ledger Name  | Bank Name | Particulars | Withdrawals | Deposits |
//   |------------|--------------|-----------|-------------|-------------|----------|
//   | 25-12-2023 | Office Rent  | HDFC Bank | Rent        | 25000       |          |
//   | 45000      | Acme Traders | HDFC Bank | NEFT        |             | 1200.50  |
//
// CELL TYPES:
//   Workbook cells keep their stored type so the date normalizer can tell a
//   typed-in "25-12-2023" from a date serial:
//   - Shared/inline strings and formula results -> Text
//   - Numbers (including dates stored as serials) -> Numeric
//   - ISO date cells                               -> Calendar
//   - Booleans                                     -> Bool
//   Blank cells are left out of the row.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
)

// =============================================================================
// STATEMENT STRUCTURE
// =============================================================================

// Sheet is a statement read from one worksheet.
type Sheet struct {
	// File is the path to the source workbook, empty for readers.
	File string

	// Name is the worksheet the rows were read from.
	Name string

	// Headers are the column headers in sheet order. Blank headers are named
	// __EMPTY, __EMPTY_1, ... and repeated headers get a _1, _2, ... suffix.
	Headers []string

	// Rows are the data rows in sheet order, blank rows skipped.
	Rows []statement.Row
}

// =============================================================================
// READ OPTIONS
// =============================================================================

// ReadOptions selects the worksheet and header row.
type ReadOptions struct {
	// SheetName is the worksheet to read.
	// Default: "" (the first sheet)
	SheetName string

	// HeaderRow is the row containing the column headers (0-based).
	// Data begins on the row after it.
	// Default: 0 (the first non-blank row)
	HeaderRow int
}

// DefaultReadOptions returns the default read options.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{}
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// Read opens a workbook and reads the statement rows.
//
// PARAMETERS:
//   - path: The path to the XLSX statement.
//   - opts: Worksheet selection.
//
// RETURNS:
//   - The sheet with its headers and rows.
//   - An error if the file cannot be opened or the sheet does not exist.
func Read(path string, opts ReadOptions) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement file: %w", err)
	}
	defer f.Close()

	sheet, err := readSheet(f, opts)
	if err != nil {
		return nil, err
	}
	sheet.File = path
	return sheet, nil
}

// ReadFrom reads a workbook from r.
func ReadFrom(r io.Reader, opts ReadOptions) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement: %w", err)
	}
	defer f.Close()

	return readSheet(f, opts)
}

// SheetNames lists the worksheets of a workbook.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement file: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// readSheet reads rows from an open workbook.
func readSheet(f *excelize.File, opts ReadOptions) (*Sheet, error) {
	sheetName := opts.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("statement file has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet '%s' not found", sheetName)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	sheet := &Sheet{Name: sheetName}
	headerRow := findHeaderRow(rows, opts.HeaderRow)
	if headerRow >= len(rows) {
		return sheet, nil
	}

	sheet.Headers = headerNames(rows[headerRow])

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		out := make(statement.Row, len(row))
		for col, raw := range row {
			if col >= len(sheet.Headers) || raw == "" {
				continue
			}

			cellName, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return nil, fmt.Errorf("error reading row %d: %w", i+1, err)
			}
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, fmt.Errorf("error reading cell %s: %w", cellName, err)
			}

			out[sheet.Headers[col]] = cellValue(cellType, raw)
		}

		if len(out) > 0 {
			sheet.Rows = append(sheet.Rows, out)
		}
	}

	return sheet, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cellValue converts a raw cell value to a statement cell.
func cellValue(cellType excelize.CellType, raw string) statement.Cell {
	switch cellType {
	case excelize.CellTypeBool:
		return statement.Bool(raw == "1" || strings.EqualFold(raw, "true"))

	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return statement.Calendar(t)
		}
		return statement.Text(raw)

	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return statement.Numeric(v)
		}
		return statement.Text(raw)

	default:
		return statement.Text(raw)
	}
}

// isoDateLayouts are the layouts spreadsheet writers use for 'd' cells.
var isoDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102T150405Z",
	"20060102T150405.999",
}

func parseISODate(raw string) (time.Time, bool) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// headerNames names every header cell, filling blanks and de-duplicating
// repeated names.
func headerNames(row []string) []string {
	headers := make([]string, len(row))
	seen := make(map[string]int, len(row))
	for i, raw := range row {
		name := raw
		if strings.TrimSpace(name) == "" {
			name = "__EMPTY"
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
		}
		headers[i] = name
	}
	return headers
}

// findHeaderRow returns the index of the header row. An explicit HeaderRow is
// used as is; the default skips blank rows above the table.
func findHeaderRow(rows [][]string, headerRow int) int {
	if headerRow > 0 {
		return headerRow
	}
	for i, row := range rows {
		if !isRowEmpty(row) {
			return i
		}
	}
	return len(rows)
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
