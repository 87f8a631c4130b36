// Package billing implements the invoice financial engine: per-item amounts,
// multi-rate tax aggregation with proportional discount allocation, and
// payment-terms parsing.
package billing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fakturo/internal/domain"
)

// StandardRates are the legal Swiss VAT rates. Items may carry other rates;
// they are bucketed as-is rather than rejected.
var StandardRates = []decimal.Decimal{
	decimal.NewFromFloat(8.1),
	decimal.NewFromFloat(3.8),
	decimal.NewFromFloat(2.6),
	decimal.Zero,
}

var hundred = decimal.NewFromInt(100)

// parseAmount coerces a free-text numeric field to a decimal. Anything that is
// not a number (including the empty string of a half-filled form) becomes
// zero. This permissiveness is the documented calculator contract: a form
// that is still being edited must price live without raising errors.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LineAmount returns the net amount of a single item: quantity times unit
// price. The unit label is free text and never acts as a multiplier.
func LineAmount(item domain.LineItem) decimal.Decimal {
	return parseAmount(item.Quantity).Mul(parseAmount(item.UnitPrice))
}

// Calculate produces the financial snapshot for an ordered item list and a
// discount percentage. Extra-range discounts are passed through unclamped.
// Deterministic, side-effect free, never fails.
//
// The discount is applied proportionally across all tax buckets rather than
// to a single bucket, so mixed-rate invoices keep their relative tax
// weighting.
func Calculate(items []domain.LineItem, discountPercent decimal.Decimal) domain.Snapshot {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineAmount(item))
	}

	discountAmount := subtotal.Mul(discountPercent).Div(hundred)

	// Group by tax rate, preserving a stable bucket order.
	byRate := map[string]*domain.TaxBucket{}
	var order []string
	for _, item := range items {
		key := item.TaxRate.String()
		b, ok := byRate[key]
		if !ok {
			b = &domain.TaxBucket{Rate: item.TaxRate}
			byRate[key] = b
			order = append(order, key)
		}
		b.Net = b.Net.Add(LineAmount(item))
	}

	totalTax := decimal.Zero
	buckets := make([]domain.TaxBucket, 0, len(order))
	sort.SliceStable(order, func(i, j int) bool {
		return byRate[order[i]].Rate.GreaterThan(byRate[order[j]].Rate)
	})
	for _, key := range order {
		b := byRate[key]
		b.Tax = b.Net.Mul(b.Rate).Div(hundred)
		totalTax = totalTax.Add(b.Tax)
		buckets = append(buckets, *b)
	}

	// Discount ratio guards the zero-subtotal case.
	discountRatio := decimal.Zero
	if !subtotal.IsZero() {
		discountRatio = discountAmount.Div(subtotal)
	}

	taxAfterDiscount := totalTax.Mul(decimal.NewFromInt(1).Sub(discountRatio))
	grandTotal := subtotal.Sub(discountAmount).Add(taxAfterDiscount)

	return domain.Snapshot{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAfterDiscount,
		GrandTotal:     grandTotal,
		Buckets:        buckets,
	}
}
