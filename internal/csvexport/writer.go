package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"fakturo/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (14 columns).
var columns = []string{
	"Invoice Number",
	"Status",
	"Issued On",
	"Due On",
	"Payment Terms",
	"Currency",
	"Subtotal",
	"Discount %",
	"Discount Amount",
	"Tax Amount",
	"Total",
	"Line Item Count",
	"Payment Code Kind",
	"Created At",
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(InvoiceRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Columns returns the export header row.
func Columns() []string {
	return columns
}

// InvoiceRow converts a single invoice to its export row.
func InvoiceRow(inv *domain.Invoice) []string {
	return []string{
		inv.Number,
		string(inv.Status),
		inv.IssuedOn.Format("2006-01-02"),
		inv.DueOn.Format("2006-01-02"),
		inv.PaymentTerms,
		inv.Currency,
		inv.Subtotal.StringFixed(2),
		inv.DiscountPercent.String(),
		inv.DiscountAmount.StringFixed(2),
		inv.TaxAmount.StringFixed(2),
		inv.Total.StringFixed(2),
		strconv.Itoa(len(inv.Items)),
		inv.PaymentCodeKind,
		inv.CreatedAt.Format(time.RFC3339),
	}
}
