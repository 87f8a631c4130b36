package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fakturo/internal/domain"
	"fakturo/internal/middleware"
	"fakturo/internal/service"
)

// RecurringHandler handles recurring template endpoints.
type RecurringHandler struct {
	recurringService service.RecurringService
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService service.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

type templateRequest struct {
	ClientID        *uuid.UUID       `json:"client_id"`
	BankAccountID   *uuid.UUID       `json:"bank_account_id"`
	Name            string           `json:"name" binding:"required"`
	Currency        string           `json:"currency"`
	Items           domain.LineItems `json:"items"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	PaymentTerms    string           `json:"payment_terms"`
	Frequency       domain.Frequency `json:"frequency" binding:"required"`
	StartOn         *time.Time       `json:"start_on"`
	EndOn           *time.Time       `json:"end_on"`
	AutoSend        bool             `json:"auto_send"`
}

func (r *templateRequest) toInput(ownerID uuid.UUID) *service.CreateTemplateInput {
	input := &service.CreateTemplateInput{
		OwnerID:         ownerID,
		ClientID:        r.ClientID,
		BankAccountID:   r.BankAccountID,
		Name:            r.Name,
		Currency:        r.Currency,
		Items:           r.Items,
		DiscountPercent: r.DiscountPercent,
		PaymentTerms:    r.PaymentTerms,
		Frequency:       r.Frequency,
		EndOn:           r.EndOn,
		AutoSend:        r.AutoSend,
	}
	if r.StartOn != nil {
		input.StartOn = *r.StartOn
	}
	return input
}

// Create handles POST /api/v1/recurring
func (h *RecurringHandler) Create(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name and frequency are required")
		return
	}

	tpl, err := h.recurringService.Create(c.Request.Context(), req.toInput(ownerID))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, tpl)
}

// Update handles PUT /api/v1/recurring/:id
func (h *RecurringHandler) Update(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name and frequency are required")
		return
	}

	tpl, err := h.recurringService.Update(c.Request.Context(), ownerID, templateID, req.toInput(ownerID))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tpl)
}

// GetByID handles GET /api/v1/recurring/:id
func (h *RecurringHandler) GetByID(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	tpl, err := h.recurringService.GetByID(c.Request.Context(), ownerID, templateID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tpl)
}

// List handles GET /api/v1/recurring
func (h *RecurringHandler) List(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	offset, limit := parsePagination(c)

	templates, total, err := h.recurringService.ListByOwner(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, templates, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// CheckDue handles GET /api/v1/recurring/:id/due
func (h *RecurringHandler) CheckDue(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	due, err := h.recurringService.CheckDue(c.Request.Context(), ownerID, templateID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"due": due})
}

// Fire handles POST /api/v1/recurring/:id/fire
func (h *RecurringHandler) Fire(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	inv, err := h.recurringService.Fire(c.Request.Context(), ownerID, templateID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// Deactivate handles POST /api/v1/recurring/:id/deactivate
func (h *RecurringHandler) Deactivate(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid template ID")
		return
	}

	if err := h.recurringService.Deactivate(c.Request.Context(), ownerID, templateID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deactivated": templateID})
}
