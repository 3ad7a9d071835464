package http

import (
	"context"

	"github.com/wkwkland69/piketeisd/internal/roster"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal returns a derived context containing the authenticated
// roster member.
func ContextWithPrincipal(ctx context.Context, member roster.Member) context.Context {
	return context.WithValue(ctx, principalContextKey, member)
}

// PrincipalFromContext extracts the authenticated roster member from context
// if available.
func PrincipalFromContext(ctx context.Context) (roster.Member, bool) {
	member, ok := ctx.Value(principalContextKey).(roster.Member)
	return member, ok
}
