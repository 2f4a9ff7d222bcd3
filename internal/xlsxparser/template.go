package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateSheetName is the worksheet name of a generated statement template.
const TemplateSheetName = "Statement"

// WriteTemplate writes an empty statement workbook whose first row holds the
// given headers. Users fill it in and hand it back to the convert command.
func WriteTemplate(path string, headers []string) error {
	if len(headers) == 0 {
		return fmt.Errorf("template needs at least one header")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), TemplateSheetName); err != nil {
		return fmt.Errorf("failed to name template sheet: %w", err)
	}

	if err := f.SetSheetRow(TemplateSheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write template headers: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCell, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(TemplateSheetName, "A1", lastCell, bold); err != nil {
		return fmt.Errorf("failed to style template headers: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(TemplateSheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size template columns: %w", err)
	}

	if err := f.SetPanes(TemplateSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze template header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}
