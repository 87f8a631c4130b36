package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fakturo/internal/csvexport"
	"fakturo/internal/domain"
)

const sheetName = "Invoices"

// WriteInvoices renders the invoice export as an XLSX workbook and writes it
// to w. Columns mirror the CSV export.
func WriteInvoices(w io.Writer, invoices []domain.Invoice) error {
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

	header := make([]interface{}, 0, len(csvexport.Columns()))
	for _, c := range csvexport.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i := range invoices {
		cells := csvexport.InvoiceRow(&invoices[i])
		row := make([]interface{}, 0, len(cells))
		for _, c := range cells {
			row = append(row, c)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolving cell for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
