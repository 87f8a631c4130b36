package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 14)
	assert.Equal(t, "Invoice Number", row[0])
	assert.Equal(t, "Status", row[1])
	assert.Equal(t, "Created At", row[13])
}

func TestWriteInvoices(t *testing.T) {
	createdAt := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	inv := domain.Invoice{
		ID:              uuid.New(),
		Number:          "F-1001",
		Status:          domain.InvoiceStatusOpen,
		Currency:        "CHF",
		Items:           domain.LineItems{{Description: "A"}, {Description: "B"}},
		DiscountPercent: decimal.RequireFromString("10"),
		Subtotal:        decimal.RequireFromString("200"),
		DiscountAmount:  decimal.RequireFromString("20"),
		TaxAmount:       decimal.RequireFromString("14.58"),
		Total:           decimal.RequireFromString("194.58"),
		PaymentTerms:    "30 days",
		IssuedOn:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DueOn:           time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		PaymentCodeKind: "qr",
		CreatedAt:       createdAt,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteInvoices([]domain.Invoice{inv}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "F-1001", row[0])
	assert.Equal(t, "open", row[1])
	assert.Equal(t, "2025-03-01", row[2])
	assert.Equal(t, "2025-03-31", row[3])
	assert.Equal(t, "30 days", row[4])
	assert.Equal(t, "CHF", row[5])
	assert.Equal(t, "200.00", row[6])
	assert.Equal(t, "10", row[7])
	assert.Equal(t, "20.00", row[8])
	assert.Equal(t, "14.58", row[9])
	assert.Equal(t, "194.58", row[10])
	assert.Equal(t, "2", row[11])
	assert.Equal(t, "qr", row[12])
	assert.Equal(t, createdAt.Format(time.RFC3339), row[13])
}

func TestWriteInvoices_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteInvoices(nil))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
