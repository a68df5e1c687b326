package middleware

import (
	"context"

	"github.com/maisonnoor/boutique-backend/internal/auth"
)

type contextKey string

const (
	ctxPrincipal contextKey = "principal"
	ctxOwnerID   contextKey = "owner_id"
	ctxLanguage  contextKey = "language"
)

// PrincipalFromContext returns the signed-in principal, nil for anonymous
// visitors.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Value(ctxPrincipal).(*auth.Principal); ok {
		return p
	}
	return nil
}

// OwnerIDFromContext returns the cart/wishlist owner identity: the user id
// for signed-in principals, the guest id otherwise. Empty when neither is
// known.
func OwnerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOwnerID).(string); ok {
		return v
	}
	return ""
}

// LanguageFromContext returns the request language tag, empty when the
// request did not state one.
func LanguageFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxLanguage).(string); ok {
		return v
	}
	return ""
}

// WithPrincipal injects the resolved principal for downstream handlers.
func WithPrincipal(ctx context.Context, principal *auth.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, principal)
}

// WithOwnerID injects the storefront owner identity.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOwnerID, ownerID)
}
