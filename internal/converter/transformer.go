// =============================================================================
// Bank Statement to Tally - Transformation Engine
// =============================================================================
//
// This module cleans up statement text before vouchers are built. Bank exports
// often carry padded ledger names, inconsistent casing, or narration prefixes
// that should map to a ledger; rules in config.yaml fix those per column.
//
// TRANSFORMATION TYPES:
//   - String manipulations (trim, case conversion, prepend, append)
//   - Substring and regular expression replacements
//   - Lookup table replacements
//
// Only Text cells are transformed. Dates, amounts and booleans read from a
// workbook pass through unchanged so the date normalizer and the sign
// conventions still see the original values.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/config"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles cell value transformations.
type Transformer struct {
	rules map[string][]config.TransformationAction
	// order keeps rule application deterministic for a row.
	order []string
}

// NewTransformer creates a new Transformer with the given rules. Rules for the
// same field are applied in the order they appear.
func NewTransformer(rules []config.TransformationRule) *Transformer {
	t := &Transformer{
		rules: make(map[string][]config.TransformationAction),
	}
	for _, rule := range rules {
		if _, seen := t.rules[rule.Field]; !seen {
			t.order = append(t.order, rule.Field)
		}
		t.rules[rule.Field] = append(t.rules[rule.Field], rule.Actions...)
	}
	return t
}

// Empty reports whether the transformer has no rules.
func (t *Transformer) Empty() bool {
	return len(t.order) == 0
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform applies all rules for a field to a value.
//
// PARAMETERS:
//   - fieldName: The statement header of the cell being transformed.
//   - value: The current text of the cell.
//
// RETURNS:
//   - The transformed value.
//   - An error if any transformation fails.
func (t *Transformer) Transform(fieldName, value string) (string, error) {
	result := value
	for _, action := range t.rules[fieldName] {
		var err error
		result, err = ApplyTransformation(result, action)
		if err != nil {
			return "", fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
		}
	}
	return result, nil
}

// TransformRow returns a transformed copy of the row. The input row is not
// modified.
func (t *Transformer) TransformRow(row statement.Row) (statement.Row, error) {
	out := row.Clone()
	for _, field := range t.order {
		cell, ok := out[field]
		if !ok {
			continue
		}
		text, isText := cell.TextValue()
		if !isText {
			continue
		}

		transformed, err := t.Transform(field, text)
		if err != nil {
			return nil, fmt.Errorf("error transforming field '%s': %w", field, err)
		}
		out[field] = statement.Text(transformed)
	}
	return out, nil
}

// TransformRows applies TransformRow to every row.
func (t *Transformer) TransformRows(rows []statement.Row) ([]statement.Row, error) {
	if t.Empty() {
		return rows, nil
	}

	out := make([]statement.Row, 0, len(rows))
	for i, row := range rows {
		transformed, err := t.TransformRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, transformed)
	}
	return out, nil
}

// ApplyTransformation applies a single transformation action.
//
// SUPPORTED TRANSFORMATIONS:
//   See the switch statement below for all supported transformation types.
func ApplyTransformation(value string, action config.TransformationAction) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "trim":
		return strings.TrimSpace(value), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "prepend_string":
		// EXAMPLE:
		//   Input: "Rent"
		//   Action: prepend_string with value "Office "
		//   Output: "Office Rent"
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "normalize_whitespace":
		// Collapse runs of whitespace, common in wrapped narration cells.
		return strings.Join(strings.Fields(value), " "), nil

	// =========================================================================
	// REPLACEMENTS
	// =========================================================================

	case "replace":
		// EXAMPLE:
		//   Input: "NEFT-ACME TRADERS"
		//   Action: replace with find "NEFT-" and value ""
		//   Output: "ACME TRADERS"
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		// EXAMPLE:
		//   Input: "UPI/123456789/ACME"
		//   Action: regex_replace with find "^UPI/\d+/" and value ""
		//   Output: "ACME"
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		// Values missing from the table are kept.
		//
		// USE CASE: Mapping bank counterparty codes to ledger names.
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}
