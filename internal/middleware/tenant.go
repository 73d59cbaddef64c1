package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoiceai/internal/config"
)

const contextKeyResolvedTenant = "resolved_tenant_id"

// TenantResolver lets the host application supply its own tenant lookup,
// taking precedence over auth claims and the static override.
type TenantResolver func(c *gin.Context) *uuid.UUID

// ResolveTenant returns middleware that resolves the tenant for the request
// and stores it in the context. Resolution order: resolver hook, then the
// authenticated caller's tenant claim, then the configured static override,
// then none (unscoped). With multi-tenancy disabled no tenant is resolved.
func ResolveTenant(cfg *config.MultiTenancyConfig, resolver TenantResolver) gin.HandlerFunc {
	var override *uuid.UUID
	if cfg.TenantOverride != "" {
		if id, err := uuid.Parse(cfg.TenantOverride); err == nil {
			override = &id
		}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		var tenantID *uuid.UUID
		if resolver != nil {
			tenantID = resolver(c)
		}
		if tenantID == nil {
			if v, exists := c.Get(ContextKeyTenantID); exists {
				if id, ok := v.(uuid.UUID); ok {
					tenantID = &id
				}
			}
		}
		if tenantID == nil {
			tenantID = override
		}

		if tenantID != nil {
			c.Set(contextKeyResolvedTenant, *tenantID)
		}
		c.Next()
	}
}

// GetTenantID returns the resolved tenant for the request, or nil when the
// request is unscoped.
func GetTenantID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get(contextKeyResolvedTenant)
	if !exists {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
