// =============================================================================
// Bank Statement to Tally - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration (config.yaml).
//
// CONFIGURATION FILE:
//   input_dir: ./input
//   output_dir: ./output
//   company_name: Ganesh Traders
//   timezone: Asia/Kolkata
//   strict_amounts: false
//   columns:
//     ledger_name: Party
//   transformation_rules:
//     - field: Ledger Name
//       actions:
//         - type: trim
//
// A missing file at the default path is not an error: the defaults below are
// used instead, so `convert` works without any configuration.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/voucher"
)

// DefaultConfigPath is the path used when --config is not given.
const DefaultConfigPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command for statements.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated XML files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives statements after a successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated XML file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ArchiveOnSuccess moves processed statements to the archive.
	// Default: true
	ArchiveOnSuccess *bool `yaml:"archive_on_success"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFileName is the file written by the convert command when no
	// --output is given.
	// Default: "TallyData.xml"
	OutputFileName string `yaml:"output_file_name"`

	// OutputNameFormat names the files written by the process command.
	// Placeholders:
	//   {original}  - Statement file name without extension
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "{original}_TallyData.xml"
	OutputNameFormat string `yaml:"output_name_format"`

	// XML controls serialization.
	XML XMLSettings `yaml:"xml"`

	// =========================================================================
	// VOUCHER SETTINGS
	// =========================================================================

	// CompanyName fills SVCURRENTCOMPANY.
	// Default: "Your Company Name"
	CompanyName string `yaml:"company_name"`

	// SheetName selects the worksheet of an xlsx statement.
	// Default: "" (the first sheet)
	SheetName string `yaml:"sheet_name"`

	// Timezone is used to turn serial dates into calendar dates.
	// Default: "Local"
	Timezone string `yaml:"timezone"`

	// StrictAmounts fails a statement whose rows have both or neither of
	// Withdrawals and Deposits populated. When false those rows are only
	// reported and Withdrawals decides the voucher type.
	// Default: false
	StrictAmounts bool `yaml:"strict_amounts"`

	// Columns remaps the statement headers.
	Columns ColumnSettings `yaml:"columns"`

	// TransformationRules clean up text cells before vouchers are built.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// CSVSettings contains settings for parsing CSV statements.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of statements processed at once.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// location is resolved from Timezone by validateMainConfig.
	location *time.Location
}

// ColumnSettings maps the builder's columns to statement headers.
type ColumnSettings struct {
	Date        string `yaml:"date"`
	LedgerName  string `yaml:"ledger_name"`
	BankName    string `yaml:"bank_name"`
	Particulars string `yaml:"particulars"`
	Withdrawals string `yaml:"withdrawals"`
	Deposits    string `yaml:"deposits"`
}

// XMLSettings controls the XML writer.
type XMLSettings struct {
	// Indent is the indentation string; "" writes a single line.
	// Default: "  "
	Indent *string `yaml:"indent"`

	// IncludeDeclaration writes the <?xml ...?> line.
	// Default: true
	IncludeDeclaration *bool `yaml:"include_declaration"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the CSV file.
	// Supported values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines a transformation to apply to a specific column.
type TransformationRule struct {
	// Field is the statement header of the column to transform.
	Field string `yaml:"field"`

	// Actions is a list of transformations applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is the type of transformation to apply.
	// Supported types:
	//   - "trim"           : Remove leading and trailing whitespace
	//   - "uppercase"      : Convert to uppercase
	//   - "lowercase"      : Convert to lowercase
	//   - "prepend_string" : Add Value to the beginning
	//   - "append_string"  : Add Value to the end
	//   - "replace"        : Replace Find with Value
	//   - "regex_replace"  : Replace the Find pattern with Value
	//   - "lookup"         : Replace the whole value using LookupTable
	Type string `yaml:"type"`

	// Value is the parameter for the transformation.
	Value string `yaml:"value"`

	// Find is used for "replace" and "regex_replace".
	Find string `yaml:"find,omitempty"`

	// LookupTable maps input values to output values for "lookup".
	// Example: map bank narration prefixes to ledger names.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	// The default timezone always resolves.
	_ = validateMainConfig(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed. A missing file at
//     DefaultConfigPath yields the defaults.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && configPath == DefaultConfigPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML document into a validated MainConfig.
func Parse(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ArchiveOnSuccess == nil {
		archive := true
		config.ArchiveOnSuccess = &archive
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.OutputFileName == "" {
		config.OutputFileName = "TallyData.xml"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_TallyData.xml"
	}
	if config.XML.Indent == nil {
		indent := "  "
		config.XML.Indent = &indent
	}
	if config.XML.IncludeDeclaration == nil {
		declaration := true
		config.XML.IncludeDeclaration = &declaration
	}
	if config.CompanyName == "" {
		config.CompanyName = voucher.DefaultCompanyName
	}
	if config.Timezone == "" {
		config.Timezone = "Local"
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}

	defaults := voucher.DefaultColumns()
	if config.Columns.Date == "" {
		config.Columns.Date = defaults.Date
	}
	if config.Columns.LedgerName == "" {
		config.Columns.LedgerName = defaults.LedgerName
	}
	if config.Columns.BankName == "" {
		config.Columns.BankName = defaults.BankName
	}
	if config.Columns.Particulars == "" {
		config.Columns.Particulars = defaults.Particulars
	}
	if config.Columns.Withdrawals == "" {
		config.Columns.Withdrawals = defaults.Withdrawals
	}
	if config.Columns.Deposits == "" {
		config.Columns.Deposits = defaults.Deposits
	}
}

// validateMainConfig validates the main configuration and resolves the
// timezone.
func validateMainConfig(config *MainConfig) error {
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", config.Timezone, err)
	}
	config.location = loc

	if d := config.CSVSettings.Delimiter; d != `\t` && len([]rune(d)) != 1 {
		return fmt.Errorf("csv delimiter must be a single character, got %q", config.CSVSettings.Delimiter)
	}

	switch strings.ToUpper(config.CSVSettings.Encoding) {
	case "UTF-8", "UTF8", "ISO-8859-1", "LATIN1", "WINDOWS-1252", "CP1252":
	default:
		return fmt.Errorf("unsupported csv encoding %q", config.CSVSettings.Encoding)
	}

	for i, rule := range config.TransformationRules {
		if rule.Field == "" {
			return fmt.Errorf("transformation rule %d has no field", i+1)
		}
	}

	return nil
}

// EnsureDirectories creates the directories used by the process command.
func (c *MainConfig) EnsureDirectories() error {
	dirs := []string{
		c.InputDir,
		c.OutputDir,
		c.InputArchiveDir,
		c.OutputArchiveDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// Location returns the resolved timezone.
func (c *MainConfig) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// VoucherColumns converts the column settings for the builder.
func (c *MainConfig) VoucherColumns() voucher.Columns {
	return voucher.Columns{
		Date:        c.Columns.Date,
		LedgerName:  c.Columns.LedgerName,
		BankName:    c.Columns.BankName,
		Particulars: c.Columns.Particulars,
		Withdrawals: c.Columns.Withdrawals,
		Deposits:    c.Columns.Deposits,
	}
}

// VoucherOptions returns the builder options for this configuration.
func (c *MainConfig) VoucherOptions() voucher.Options {
	return voucher.Options{
		CompanyName: c.CompanyName,
		Columns:     c.VoucherColumns(),
		Location:    c.Location(),
	}
}

// Archive reports whether processed statements are archived.
func (c *MainConfig) Archive() bool {
	return c.ArchiveOnSuccess == nil || *c.ArchiveOnSuccess
}
