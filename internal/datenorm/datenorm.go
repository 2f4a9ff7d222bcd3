// =============================================================================
// Bank Statement to Tally - Date Normalizer
// =============================================================================
//
// This module converts statement date cells into the YYYYMMDD form expected
// by Tally.
//
// ACCEPTED SHAPES:
//   - Text "DD-MM-YYYY"
//   - Calendar dates read from the workbook
//   - Spreadsheet serial numbers (days since 1899-12-30)
//
// Every other cell fails with UnsupportedDateFormatError.
//
// =============================================================================

// Package datenorm converts statement date cells into the YYYYMMDD form
// expected by Tally.
package datenorm

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
)

// SerialEpochOffset is the number of days between the spreadsheet serial
// epoch (1899-12-30) and the Unix epoch. The 1900 leap-year quirk is kept.
const SerialEpochOffset = 25569

const (
	secondsPerDay = 86400
	msPerSecond   = 1000

	// maxSerialMillis is the widest offset from the Unix epoch a spreadsheet
	// date may have: 100,000,000 days either way.
	maxSerialMillis = 8.64e15
)

// ErrUnsupportedDateFormat is matched by every UnsupportedDateFormatError.
var ErrUnsupportedDateFormat = errors.New("unsupported date format")

// UnsupportedDateFormatError carries the offending cell.
type UnsupportedDateFormatError struct {
	Value statement.Cell
}

func (e *UnsupportedDateFormatError) Error() string {
	return fmt.Sprintf("unexpected date format: %s %q", e.Value.Kind(), e.Value.String())
}

// Is lets errors.Is match the sentinel.
func (e *UnsupportedDateFormatError) Is(target error) bool {
	return target == ErrUnsupportedDateFormat
}

// Normalizer turns date cells into YYYYMMDD strings. Numeric serials are
// converted to a calendar date in Location.
type Normalizer struct {
	Location *time.Location
}

// New returns a Normalizer for the given location. A nil location means
// time.Local.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{Location: loc}
}

// Normalize converts a date cell.
//
// Accepted shapes:
//   - text "DD-MM-YYYY", reassembled without range checks
//   - a calendar date, read in its own location
//   - a spreadsheet serial number
func (n *Normalizer) Normalize(value statement.Cell) (string, error) {
	switch value.Kind() {
	case statement.KindText:
		s, _ := value.TextValue()
		return normalizeText(s, value)
	case statement.KindCalendar:
		t, _ := value.CalendarValue()
		return FormatDate(t), nil
	case statement.KindNumeric:
		v, _ := value.NumericValue()
		if !ValidSerial(v) {
			return "", &UnsupportedDateFormatError{Value: value}
		}
		return FormatDate(SerialToTime(v, n.location())), nil
	case statement.KindEmpty, statement.KindBool:
		return "", &UnsupportedDateFormatError{Value: value}
	default:
		return "", &UnsupportedDateFormatError{Value: value}
	}
}

func (n *Normalizer) location() *time.Location {
	if n == nil || n.Location == nil {
		return time.Local
	}
	return n.Location
}

// normalizeText splits "DD-MM-YYYY" into its parts. The digits are not
// validated, so "31-02-2023" becomes "20230231".
func normalizeText(s string, raw statement.Cell) (string, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return "", &UnsupportedDateFormatError{Value: raw}
	}
	day, month, year := parts[0], parts[1], parts[2]
	return year + month + day, nil
}

// FormatDate formats t as YYYYMMDD using t's own location. The year is not
// padded.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d%02d%02d", t.Year(), int(t.Month()), t.Day())
}

// ValidSerial reports whether serial maps to an instant within
// maxSerialMillis of the Unix epoch.
func ValidSerial(serial float64) bool {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return false
	}
	return math.Abs(serialMillis(serial)) <= maxSerialMillis
}

func serialMillis(serial float64) float64 {
	return math.Trunc((serial - SerialEpochOffset) * secondsPerDay * msPerSecond)
}

// SerialToTime converts a spreadsheet serial day count to an instant in loc.
// Fractions of a millisecond are truncated toward zero. Callers should check
// ValidSerial first; out of range serials are clamped to the nearest limit.
func SerialToTime(serial float64, loc *time.Location) time.Time {
	ms := math.Max(-maxSerialMillis, math.Min(maxSerialMillis, serialMillis(serial)))
	return time.UnixMilli(int64(ms)).In(loc)
}
