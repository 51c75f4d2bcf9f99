package middleware

import (
	"net/http"

	"github.com/fooderp/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantIDHeader is the header carrying the caller's organization
const TenantIDHeader = "X-Tenant-ID"

// tenantIDKey is the gin context key where the parsed tenant ID is stored
const tenantIDKey = "tenant_id"

// defaultDevTenantID is used when no header is present outside production
var defaultDevTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// TenantResolver returns a middleware that resolves the tenant from the
// X-Tenant-ID header and stores it in the request context. When requireHeader
// is false a missing header falls back to the development tenant.
func TenantResolver(requireHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantIDHeader)
		if raw == "" {
			if requireHeader {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					dto.NewErrorResponse("MISSING_TENANT", "X-Tenant-ID header is required"))
				return
			}
			c.Set(tenantIDKey, defaultDevTenantID.String())
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid X-Tenant-ID header"))
			return
		}

		c.Set(tenantIDKey, tenantID.String())
		c.Next()
	}
}

// GetTenantID returns the tenant resolved for the request. The second return
// is false when the resolver middleware did not run.
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(tenantIDKey)
	if raw == "" {
		return uuid.Nil, false
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return tenantID, true
}
