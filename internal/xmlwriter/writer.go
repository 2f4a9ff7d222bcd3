// =============================================================================
// Bank Statement to Tally - XML Writer Module
// =============================================================================
//
// This module serializes a voucher document to the bytes written into
// TallyData.xml. Element names and nesting come from the voucher.Document
// struct tags; this module only controls the declaration and indentation.
//
// OUTPUT:
//   <?xml version="1.0" encoding="UTF-8"?>
//   <ENVELOPE>
//     <HEADER>...</HEADER>
//     <BODY>...</BODY>
//   </ENVELOPE>
//
// Serialization is deterministic: the same document always produces the same
// bytes.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/voucher"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultFileName is the name Tally users expect for a single import file.
const DefaultFileName = "TallyData.xml"

// ContentType is the MIME type of the generated document.
const ContentType = "application/xml"

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// An empty string writes the whole document on one line.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate serializes the document with the default options.
func Generate(doc *voucher.Document) ([]byte, error) {
	return GenerateWithOptions(doc, DefaultGenerateOptions())
}

// GenerateWithOptions serializes the document.
//
// PARAMETERS:
//   - doc: The voucher document built from the statement rows.
//   - options: Declaration and indentation settings.
//
// RETURNS:
//   - The XML document as a byte slice, ending with a newline.
//   - An error if the document is nil or cannot be marshaled.
func GenerateWithOptions(doc *voucher.Document, options GenerateOptions) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("failed to marshal XML: nil document")
	}

	if options.XMLVersion == "" {
		options.XMLVersion = "1.0"
	}
	if options.Encoding == "" {
		options.Encoding = "UTF-8"
	}

	var buffer bytes.Buffer

	// Write XML declaration if requested.
	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	encoder := xml.NewEncoder(&buffer)
	if options.Indent != "" {
		encoder.Indent("", options.Indent)
	}

	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush XML: %w", err)
	}

	buffer.WriteString("\n")

	return buffer.Bytes(), nil
}
