package noop

import (
	"context"
	"log"

	"fakturo/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs deliveries to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendInvoice(_ context.Context, email *port.InvoiceEmail) error {
	log.Printf("[NOOP EMAIL] Invoice %s for %s (%s): %s %s due %s",
		email.InvoiceNumber, email.ToName, email.ToEmail, email.Amount, email.Currency, email.DueDate)
	return nil
}
