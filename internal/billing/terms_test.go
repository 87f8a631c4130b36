package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTermsDays(t *testing.T) {
	tests := []struct {
		terms string
		want  int
	}{
		{"30 days", 30},
		{"payable within 14 days", 14},
		{"Zahlbar innert 20 Tagen", 20},
		{"10 jours net", 10},
		{"1 day", 1},
		{"net 60 DAYS", 60},
		{"", DefaultTermsDays},
		{"on receipt", DefaultTermsDays},
		{"days", DefaultTermsDays},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTermsDays(tt.terms), "terms=%q", tt.terms)
	}
}

func TestTermsFromSpan(t *testing.T) {
	issued := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "30 days", TermsFromSpan(issued, issued.AddDate(0, 0, 30)))
	assert.Equal(t, "0 days", TermsFromSpan(issued, issued))
	// Due before issue clamps to zero
	assert.Equal(t, "0 days", TermsFromSpan(issued, issued.AddDate(0, 0, -5)))
}

func TestTermsRoundTrip(t *testing.T) {
	issued := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	due := issued.AddDate(0, 0, 45)

	assert.Equal(t, 45, ParseTermsDays(TermsFromSpan(issued, due)))
}
