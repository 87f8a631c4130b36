package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fakturo/internal/domain"
	"fakturo/internal/payment"
)

// PaymentHandler handles payment identifier and payment code endpoints.
type PaymentHandler struct{}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{}
}

// ValidateIBAN handles POST /api/v1/payment/validate-iban
func (h *PaymentHandler) ValidateIBAN(c *gin.Context) {
	var req struct {
		IBAN string `json:"iban" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "iban is required")
		return
	}

	normalized := domain.NormalizeIBAN(req.IBAN)
	valid := payment.ValidateIBAN(req.IBAN)

	RespondOK(c, gin.H{
		"iban":               normalized,
		"valid":              valid,
		"reference_required": valid && payment.IsQRIBAN(req.IBAN),
	})
}

// BuildCode handles POST /api/v1/payment/code
func (h *PaymentHandler) BuildCode(c *gin.Context) {
	var req struct {
		Creditor      payment.Party   `json:"creditor"`
		Debtor        *payment.Party  `json:"debtor"`
		IBAN          string          `json:"iban"`
		Currency      string          `json:"currency"`
		Amount        decimal.Decimal `json:"amount"`
		InvoiceNumber string          `json:"invoice_number"`
		Message       string          `json:"message"`
		DueOn         *time.Time      `json:"due_on"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
		return
	}

	code := payment.BuildCode(payment.CodeInput{
		Creditor:      req.Creditor,
		Debtor:        req.Debtor,
		IBAN:          req.IBAN,
		Currency:      req.Currency,
		Amount:        req.Amount,
		InvoiceNumber: req.InvoiceNumber,
		Message:       req.Message,
		DueOn:         req.DueOn,
	})

	RespondOK(c, gin.H{
		"kind":    code.Kind,
		"payload": code.Payload,
	})
}
