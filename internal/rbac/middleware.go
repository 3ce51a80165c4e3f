package rbac

import (
	"context"
	"encoding/json"
	"net/http"
)

type ctxKey struct{}

var ctxKeyRole = ctxKey{}

func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

// RoleFromContext returns the authenticated role, or ok=false when the
// request is anonymous.
func RoleFromContext(ctx context.Context) (Role, bool) {
	if v := ctx.Value(ctxKeyRole); v != nil {
		if r, ok := v.(Role); ok {
			return r, true
		}
	}
	return "", false
}

// respondForbidden writes the API's error envelope so permission failures
// match handler errors on the wire.
func respondForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "forbidden"})
}

// Require enforces a single permission.
func Require(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !role.Has(perm) {
				respondForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny enforces that the role has at least one of the permissions.
func RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				respondForbidden(w)
				return
			}
			for _, p := range perms {
				if role.Has(p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondForbidden(w)
		})
	}
}
