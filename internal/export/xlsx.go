package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoiceai/internal/domain"
)

const sheetName = "Invoices"

// WriteXLSX writes the invoice batch as an Excel workbook.
func WriteXLSX(w io.Writer, invoices []domain.Invoice) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range invoices {
		cells := invoiceRow(&invoices[i])
		row := make([]interface{}, len(cells))
		for j, cell := range cells {
			row[j] = cell
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell address: %w", err)
		}
		if err := f.SetSheetRow(sheetName, addr, &row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
