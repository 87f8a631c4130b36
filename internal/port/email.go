package port

import "context"

// InvoiceEmail carries everything the delivery collaborator needs to send one
// invoice notification.
type InvoiceEmail struct {
	ToEmail       string
	ToName        string
	InvoiceNumber string
	Amount        string
	Currency      string
	DueDate       string
	PaymentCode   string
}

// EmailSender defines the contract for the external delivery collaborator.
// Only the trigger point is part of the core; failures must never roll back
// the invoice or the advanced schedule.
type EmailSender interface {
	SendInvoice(ctx context.Context, email *InvoiceEmail) error
}
