// Package payment implements bank identifier validation and the construction
// of the scannable payment payload attached to invoices.
package payment

import "fakturo/internal/domain"

const ibanLength = 21

// allowedCountries are the country prefixes accepted for payment codes.
var allowedCountries = map[string]bool{
	"CH": true,
	"LI": true,
}

// ValidateIBAN reports whether s is a well-formed Swiss or Liechtenstein IBAN.
// The input is normalized (whitespace stripped, uppercased) before the length,
// prefix, character-set, and ISO 7064 mod-97 checks. Never returns an error;
// an invalid identifier is simply false.
func ValidateIBAN(s string) bool {
	iban := domain.NormalizeIBAN(s)
	if len(iban) != ibanLength {
		return false
	}
	if !allowedCountries[iban[:2]] {
		return false
	}
	for _, r := range iban[2:] {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return mod97(iban) == 1
}

// mod97 runs the standard check: move the first four characters to the end,
// expand letters to two-digit numbers (A=10 .. Z=35), and reduce the digit
// string modulo 97 with digit-by-digit accumulation to avoid big integers.
func mod97(iban string) int {
	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			n := int(r) - 55
			remainder = (remainder*100 + n) % 97
		default:
			return 0
		}
	}
	return remainder
}

// IsQRIBAN reports whether the identifier carries a QR-IID, the institution
// segment at positions 5-9 reserved for QR-IBANs (30000-31999). Such
// identifiers require a structured payment reference instead of free text.
func IsQRIBAN(s string) bool {
	iban := domain.NormalizeIBAN(s)
	if len(iban) != ibanLength {
		return false
	}
	iid := 0
	for _, r := range iban[4:9] {
		if r < '0' || r > '9' {
			return false
		}
		iid = iid*10 + int(r-'0')
	}
	return iid >= 30000 && iid <= 31999
}
