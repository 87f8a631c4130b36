package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Identity is a postal identity block for a creditor or debtor.
type Identity struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

// LineItem is a single invoice position. Quantity and UnitPrice are kept as
// free text because they arrive straight from a live-editing form; the billing
// calculator coerces anything non-numeric to zero instead of rejecting it.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    string          `json:"quantity"`
	UnitPrice   string          `json:"unit_price"`
	Unit        string          `json:"unit"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// LineItems is a JSONB-persisted list of line items.
type LineItems []LineItem

// Value implements driver.Valuer for JSONB storage.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSONB storage.
func (l *LineItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported type %T for LineItems", src)
	}
}

// TaxBucket accumulates net and tax amounts for all line items sharing one tax rate.
type TaxBucket struct {
	Rate decimal.Decimal `json:"rate"`
	Net  decimal.Decimal `json:"net"`
	Tax  decimal.Decimal `json:"tax"`
}

// Snapshot is the immutable result of one totals calculation. It is produced
// once per invoice action and never mutated; an edit produces a new Snapshot.
type Snapshot struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Buckets        []TaxBucket     `json:"buckets"`
}

// Client represents a counterparty (the invoice recipient) owned by a user.
type Client struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OwnerID    uuid.UUID `db:"owner_id" json:"owner_id"`
	Name       string    `db:"name" json:"name"`
	Street     string    `db:"street" json:"street"`
	PostalCode string    `db:"postal_code" json:"postal_code"`
	City       string    `db:"city" json:"city"`
	Email      string    `db:"email" json:"email"`
	DedupKey   string    `db:"dedup_key" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ClientDedupKey builds the normalized key used to recognize the same
// real-world counterparty across migration runs: name + street + postal code,
// lowercased and trimmed.
func ClientDedupKey(name, street, postalCode string) string {
	join := strings.TrimSpace(name) + "|" + strings.TrimSpace(street) + "|" + strings.TrimSpace(postalCode)
	return strings.ToLower(join)
}

// BankAccount represents a durable payment identifier record owned by a user.
type BankAccount struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Label     string    `db:"label" json:"label"`
	IBAN      string    `db:"iban" json:"iban"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NormalizeIBAN strips all whitespace and uppercases a bank identifier. This is
// also the dedup key for bank accounts during migration.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.Join(strings.Fields(iban), ""))
}

// Profile holds the owner's own creditor identity used on outgoing invoices.
type Profile struct {
	OwnerID    uuid.UUID `db:"owner_id" json:"owner_id"`
	Name       string    `db:"name" json:"name"`
	Street     string    `db:"street" json:"street"`
	PostalCode string    `db:"postal_code" json:"postal_code"`
	City       string    `db:"city" json:"city"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Invoice is a persisted invoice with its computed financial snapshot flattened
// into columns. The payment code is cached on the record and regenerated
// whenever the inputs change.
type Invoice struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	OwnerID         uuid.UUID       `db:"owner_id" json:"owner_id"`
	ClientID        *uuid.UUID      `db:"client_id" json:"client_id"`
	BankAccountID   *uuid.UUID      `db:"bank_account_id" json:"bank_account_id"`
	Number          string          `db:"number" json:"number"`
	Status          InvoiceStatus   `db:"status" json:"status"`
	Currency        string          `db:"currency" json:"currency"`
	Items           LineItems       `db:"items" json:"items"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PaymentTerms    string          `db:"payment_terms" json:"payment_terms"`
	IssuedOn        time.Time       `db:"issued_on" json:"issued_on"`
	DueOn           time.Time       `db:"due_on" json:"due_on"`
	PaymentCode     string          `db:"payment_code" json:"payment_code"`
	PaymentCodeKind string          `db:"payment_code_kind" json:"payment_code_kind"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// RecurringTemplate is a saved invoice blueprint that produces new invoices on
// a schedule. The schedule engine mutates only next-run/last-run/run-count and
// deactivates instead of deleting.
type RecurringTemplate struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	OwnerID         uuid.UUID       `db:"owner_id" json:"owner_id"`
	ClientID        *uuid.UUID      `db:"client_id" json:"client_id"`
	BankAccountID   *uuid.UUID      `db:"bank_account_id" json:"bank_account_id"`
	Name            string          `db:"name" json:"name"`
	Currency        string          `db:"currency" json:"currency"`
	Items           LineItems       `db:"items" json:"items"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PaymentTerms    string          `db:"payment_terms" json:"payment_terms"`
	Frequency       Frequency       `db:"frequency" json:"frequency"`
	NextRunOn       time.Time       `db:"next_run_on" json:"next_run_on"`
	LastRunOn       *time.Time      `db:"last_run_on" json:"last_run_on"`
	EndOn           *time.Time      `db:"end_on" json:"end_on"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	AutoSend        bool            `db:"auto_send" json:"auto_send"`
	RunCount        int             `db:"run_count" json:"run_count"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// GuestDraft is one locally-held, pre-signup invoice handed to the migration
// engine. It is never persisted in this shape.
type GuestDraft struct {
	Number          string          `json:"number"`
	Currency        string          `json:"currency"`
	Creditor        Identity        `json:"creditor"`
	Debtor          Identity        `json:"debtor"`
	DebtorEmail     string          `json:"debtor_email"`
	IBAN            string          `json:"iban"`
	Items           LineItems       `json:"items"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Total           decimal.Decimal `json:"total"`
	IssuedOn        time.Time       `json:"issued_on"`
	DueOn           time.Time       `json:"due_on"`
}

// MigrationResult reports aggregate counts for one guest migration run.
type MigrationResult struct {
	Invoices     int `json:"invoices"`
	Clients      int `json:"clients"`
	BankAccounts int `json:"bank_accounts"`
	Skipped      int `json:"skipped"`
}
