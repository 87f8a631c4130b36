package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DefaultTermsDays is used when a payment-terms string carries no parsable
// day count.
const DefaultTermsDays = 30

var termsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:days?|tage|jours?|giorni)`)

// ParseTermsDays extracts the day count from a free-text payment-terms string
// ("payable within 30 days"). Strings without a match fall back to
// DefaultTermsDays.
func ParseTermsDays(terms string) int {
	m := termsPattern.FindStringSubmatch(terms)
	if m == nil {
		return DefaultTermsDays
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultTermsDays
	}
	return n
}

// TermsFromSpan derives a payment-terms string from the span between issue
// and due dates. Used by migration, which only has the two dates.
func TermsFromSpan(issued, due time.Time) string {
	days := int(due.Sub(issued).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return fmt.Sprintf("%d days", days)
}
