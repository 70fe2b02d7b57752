package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Statements"

// WriteXLSX renders the product report as a workbook, one row per
// product/statement pair so spreadsheet users can filter without parsing
// joined cells.
func WriteXLSX(w io.Writer, mapping *ProductMapping) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := []interface{}{"EAN", "ReferenceNumber", "VerificationNumber", "RegistryIdentifier", "Status"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	row := 2
	for _, code := range mapping.Codes {
		for _, st := range mapping.ByCode[code] {
			cells := []interface{}{code, st.ReferenceNumber, st.VerificationNumber, st.RemoteIdentifier, st.Status}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
