package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fakturo/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func identityRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Identity())
	r.GET("/test", func(c *gin.Context) {
		ownerID, _ := middleware.GetOwnerID(c)
		c.JSON(http.StatusOK, gin.H{"owner_id": ownerID})
	})
	return r
}

func TestIdentity_ValidHeader(t *testing.T) {
	ownerID := uuid.New()
	r := identityRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("X-Owner-ID", ownerID.String())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, ownerID.String(), resp["owner_id"])
}

func TestIdentity_MissingHeader(t *testing.T) {
	r := identityRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_OWNER")
}

func TestIdentity_MalformedHeader(t *testing.T) {
	r := identityRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("X-Owner-ID", "not-a-uuid")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_OWNER")
}
