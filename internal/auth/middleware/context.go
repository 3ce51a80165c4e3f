package auth

import (
	"context"

	"github.com/mathia-edu/mathia/internal/rbac"
)

// Identity is the authenticated caller. Code that serves both anonymous and
// authenticated requests takes *Identity, nil meaning anonymous.
type Identity struct {
	UserID string
	Role   rbac.Role
}

type ctxKey struct{}

var ctxKeyIdentity = ctxKey{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}
