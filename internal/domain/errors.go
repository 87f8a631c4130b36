package domain

import "errors"

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrTemplateNotFound    = errors.New("recurring template not found")
	ErrTemplateInactive    = errors.New("recurring template is inactive")
	ErrTemplateNotDue      = errors.New("recurring template is not due")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrInvalidFrequency    = errors.New("invalid recurring frequency")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrMissingOwner        = errors.New("missing owner id")
)
