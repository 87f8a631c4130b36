package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fakturo/internal/domain"
)

// Kind discriminates which payload variant was produced.
type Kind string

const (
	KindQR       Kind = "qr"
	KindFallback Kind = "fallback"
	KindNone     Kind = "none"
)

// Payload markers and fixed positions of the SPC (Swiss payment code) format.
// External banking-app scanners parse this payload by line position, not by
// label, so the line count and order are wire-exact.
const (
	spcTypeMarker    = "SPC"
	spcVersion       = "0200"
	spcCoding        = "1"
	spcAddressFormat = "K"
	spcTrailer       = "EPD"

	// placeholder keeps missing creditor sub-fields from shifting line positions.
	placeholder = "N/A"
)

// AcceptedCurrencies are the only currency codes the SPC format carries.
var AcceptedCurrencies = map[string]bool{
	"CHF": true,
	"EUR": true,
}

// Party is a postal identity on the payment code.
type Party struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

// CodeInput carries everything needed to build a payment code for one invoice.
type CodeInput struct {
	Creditor      Party
	Debtor        *Party
	IBAN          string
	Currency      string
	Amount        decimal.Decimal
	InvoiceNumber string
	Message       string
	DueOn         *time.Time
}

// Code is the assembled payload plus its kind.
type Code struct {
	Kind    Kind
	Payload string
}

// BuildCode constructs the scannable payment payload for an invoice. A valid
// IBAN together with an accepted currency yields the positional SPC payload;
// anything else falls back to a human-readable block so that a code is shown
// whenever any information exists at all. Only when neither variant can carry
// a single field is KindNone returned.
func BuildCode(in CodeInput) Code {
	if ValidateIBAN(in.IBAN) && AcceptedCurrencies[in.Currency] {
		return Code{Kind: KindQR, Payload: buildSPC(in)}
	}
	if payload, ok := buildFallback(in); ok {
		return Code{Kind: KindFallback, Payload: payload}
	}
	return Code{Kind: KindNone}
}

// buildSPC emits the fixed 26-line payload. Every line is positional; blank
// lines are required placeholders for the optional ultimate-creditor and
// ultimate-debtor field sets. A supplied debtor identity is not placed here,
// the format keeps those slots empty.
func buildSPC(in CodeInput) string {
	iban := domain.NormalizeIBAN(in.IBAN)
	lines := []string{
		spcTypeMarker,
		spcVersion,
		spcCoding,
		iban,
		spcAddressFormat,
		orPlaceholder(in.Creditor.Name),
		orPlaceholder(in.Creditor.Street),
		orPlaceholder(in.Creditor.PostalCode) + " " + orPlaceholder(in.Creditor.City),
		"",
		"",
		iban[:2],
		"", "", "", "", "",
		in.Amount.StringFixed(2),
		in.Currency,
		"", "", "", "", "",
		"",
		in.Message,
		spcTrailer,
	}
	return strings.Join(lines, "\n")
}

// buildFallback emits the newline-joined human-readable block: invoice
// number, amount with currency, identifier if present, due date if present.
func buildFallback(in CodeInput) (string, bool) {
	var lines []string
	if in.InvoiceNumber != "" {
		lines = append(lines, "Invoice "+in.InvoiceNumber)
	}
	if in.Amount.IsPositive() {
		currency := in.Currency
		if currency == "" {
			currency = "CHF"
		}
		lines = append(lines, in.Amount.StringFixed(2)+" "+currency)
	}
	if iban := domain.NormalizeIBAN(in.IBAN); iban != "" {
		lines = append(lines, iban)
	}
	if in.DueOn != nil {
		lines = append(lines, "Due "+in.DueOn.Format("02.01.2006"))
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
