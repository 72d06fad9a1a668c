package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/configuration"
	"github.com/workstream-hr/workstream/pkg/httpapi"
)

// RequireTenant resolves the tenant scope from the configured header and
// rejects requests without a valid tenant id.
func RequireTenant() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(configuration.Use().TenantIDHeader)
			if header == "" {
				header = "X-Tenant-ID"
			}
			raw := strings.TrimSpace(r.Header.Get(header))
			if raw == "" {
				_ = httpapi.WriteError(w, http.StatusBadRequest, "TENANT_MISSING", "missing tenant id header", nil)
				return
			}
			tenantID, err := uuid.Parse(raw)
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusBadRequest, "TENANT_INVALID", "invalid tenant id", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), tenantID)))
		})
	}
}
