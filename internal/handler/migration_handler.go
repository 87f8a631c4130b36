package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fakturo/internal/domain"
	"fakturo/internal/middleware"
	"fakturo/internal/service"
)

// MigrationHandler handles the guest draft migration endpoint.
type MigrationHandler struct {
	migrationService service.MigrationService
}

// NewMigrationHandler creates a new MigrationHandler.
func NewMigrationHandler(migrationService service.MigrationService) *MigrationHandler {
	return &MigrationHandler{migrationService: migrationService}
}

// Migrate handles POST /api/v1/migration
func (h *MigrationHandler) Migrate(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "MISSING_OWNER", "missing owner context")
		return
	}

	var req struct {
		Drafts []domain.GuestDraft `json:"drafts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
		return
	}

	result, err := h.migrationService.Migrate(c.Request.Context(), ownerID, req.Drafts)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}
