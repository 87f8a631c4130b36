package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"fakturo/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendInvoice(ctx context.Context, email *port.InvoiceEmail) error {
	subject := fmt.Sprintf("Invoice %s - %s %s due %s", email.InvoiceNumber, email.Amount, email.Currency, email.DueDate)
	htmlBody := buildInvoiceHTML(email)
	textBody := fmt.Sprintf("Hi %s,\n\nInvoice %s for %s %s is due on %s.\n\nPayment details:\n%s\n\nThank you.",
		email.ToName, email.InvoiceNumber, email.Amount, email.Currency, email.DueDate, email.PaymentCode)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{email.ToEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildInvoiceHTML(email *port.InvoiceEmail) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoice %s</h2>
  <p>Hi %s,</p>
  <p>A new invoice is ready for you:</p>
  <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;">Amount</td><td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;"><strong>%s %s</strong></td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;">Due date</td><td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td></tr>
  </table>
  <p>Payment details:</p>
  <pre style="background: #f5f5f5; padding: 12px; border-radius: 6px; font-size: 12px; white-space: pre-wrap;">%s</pre>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Fakturo - Invoicing</p>
</body>
</html>`,
		html.EscapeString(email.InvoiceNumber),
		html.EscapeString(email.ToName),
		html.EscapeString(email.Amount),
		html.EscapeString(email.Currency),
		html.EscapeString(email.DueDate),
		html.EscapeString(email.PaymentCode))
}
