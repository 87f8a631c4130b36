package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fakturo/internal/domain"
)

const (
	// OwnerHeader carries the caller's owner identity. Authentication happens
	// upstream; this service trusts the header.
	OwnerHeader = "X-Owner-ID"

	ContextKeyOwnerID = "owner_id"
)

// Identity returns Gin middleware that extracts the owner ID header and
// injects it into the request context.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(OwnerHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "MISSING_OWNER", "message": "missing " + OwnerHeader + " header"},
			})
			return
		}
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_OWNER", "message": "malformed " + OwnerHeader + " header"},
			})
			return
		}
		c.Set(ContextKeyOwnerID, ownerID)
		c.Next()
	}
}

// GetOwnerID extracts the owner ID from the Gin context.
func GetOwnerID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyOwnerID)
	if !exists {
		return uuid.Nil, domain.ErrMissingOwner
	}
	return val.(uuid.UUID), nil
}
