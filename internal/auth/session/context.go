package session

import (
	"context"

	userdomain "github.com/AlibekovAA/album-catalog/internal/user/domain"
)

type Principal struct {
	ID       userdomain.ID
	Username string
}

// AuthContext is the request-scoped view of who is logged in.
type AuthContext interface {
	User() (Principal, bool)
	IsAuthenticated() bool
}

type authContext struct {
	principal     Principal
	authenticated bool
}

func (a authContext) User() (Principal, bool) {
	return a.principal, a.authenticated
}

func (a authContext) IsAuthenticated() bool {
	return a.authenticated
}

func Anonymous() AuthContext {
	return authContext{}
}

func Authenticated(p Principal) AuthContext {
	return authContext{principal: p, authenticated: true}
}

type contextKey string

const authContextKey contextKey = "auth_context"

func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// FromContext never returns nil; requests that skipped the middleware are anonymous.
func FromContext(ctx context.Context) AuthContext {
	if ac, ok := ctx.Value(authContextKey).(AuthContext); ok && ac != nil {
		return ac
	}
	return Anonymous()
}
