package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fakturo/internal/csvexport"
	"fakturo/internal/domain"
	"fakturo/internal/middleware"
	"fakturo/internal/service"
	"fakturo/internal/xlsxexport"
)

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

type invoiceItemsRequest struct {
	Items           domain.LineItems `json:"items"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

// Preview handles POST /api/v1/invoices/preview. It computes totals for a
// live-editing form without persisting anything.
func (h *InvoiceHandler) Preview(c *gin.Context) {
	var req invoiceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
		return
	}

	snapshot := h.invoiceService.Preview(req.Items, req.DiscountPercent)
	RespondOK(c, snapshot)
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	var req struct {
		ClientID        *uuid.UUID       `json:"client_id"`
		BankAccountID   *uuid.UUID       `json:"bank_account_id"`
		Number          string           `json:"number" binding:"required"`
		Currency        string           `json:"currency"`
		Items           domain.LineItems `json:"items"`
		DiscountPercent decimal.Decimal  `json:"discount_percent"`
		PaymentTerms    string           `json:"payment_terms"`
		IssuedOn        *time.Time       `json:"issued_on"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "number is required")
		return
	}

	input := &service.CreateInvoiceInput{
		OwnerID:         ownerID,
		ClientID:        req.ClientID,
		BankAccountID:   req.BankAccountID,
		Number:          req.Number,
		Currency:        req.Currency,
		Items:           req.Items,
		DiscountPercent: req.DiscountPercent,
		PaymentTerms:    req.PaymentTerms,
	}
	if req.IssuedOn != nil {
		input.IssuedOn = *req.IssuedOn
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), ownerID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	offset, limit := parsePagination(c)

	invoices, total, err := h.invoiceService.ListByOwner(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Delete handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), ownerID, invoiceID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": invoiceID})
}

// exportPageSize caps a single export sweep.
const exportPageSize = 100

// Export handles GET /api/v1/invoices/export?format=csv|xlsx
func (h *InvoiceHandler) Export(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	var all []domain.Invoice
	for offset := 0; ; offset += exportPageSize {
		page, total, err := h.invoiceService.ListByOwner(c.Request.Context(), ownerID, offset, exportPageSize)
		if err != nil {
			HandleError(c, err)
			return
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			break
		}
	}

	filename := fmt.Sprintf("invoices_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "xlsx" {
		var buf bytes.Buffer
		if err := xlsxexport.WriteInvoices(&buf, all); err != nil {
			HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
		return
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteInvoices(all); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
