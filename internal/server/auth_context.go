package server

import (
	"context"

	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

type authContextKey struct{}

// authPrincipal is the caller behind a request. User is nil for the shared
// API token and for open mode.
type authPrincipal struct {
	AuthType string
	User     *store.AuthUser
}

// canWrite reports whether the principal may change blogs.
func (p authPrincipal) canWrite() bool {
	if p.User == nil {
		return true
	}
	return p.User.Profile.Access == models.AccessAdmin
}

func contextWithAuthPrincipal(ctx context.Context, principal authPrincipal) context.Context {
	return context.WithValue(ctx, authContextKey{}, principal)
}

func authPrincipalFromContext(ctx context.Context) (authPrincipal, bool) {
	if ctx == nil {
		return authPrincipal{}, false
	}
	principal, ok := ctx.Value(authContextKey{}).(authPrincipal)
	return principal, ok
}
