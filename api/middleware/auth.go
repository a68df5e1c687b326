package middleware

import (
	"net/http"
	"strings"

	"github.com/maisonnoor/boutique-backend/api/responses"
	"github.com/maisonnoor/boutique-backend/internal/auth"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

// Auth resolves the principal for every request through the route-class
// check. Public routes pass through as anonymous; protected routes answer
// with the sign-in redirect target when the principal falls short.
func Auth(authService auth.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := bearerToken(r)

			principal, err := authService.CheckAuth(ctx, token, r.URL.Path, false)
			if err != nil {
				writeDenied(w, r, logg, err)
				return
			}

			if principal != nil {
				ctx = WithPrincipal(ctx, principal)
				if logg != nil {
					ctx = logg.WithUserID(ctx, principal.UserID.String())
					ctx = logg.WithSessionID(ctx, principal.SessionID)
					ctx = logg.WithActorRole(ctx, string(principal.Role))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolvePrincipal forces principal resolution on public routes that want to
// greet signed-in customers. Resolution failures degrade to anonymous.
func ResolvePrincipal(authService auth.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if PrincipalFromContext(ctx) == nil {
				if token := bearerToken(r); token != "" {
					principal, err := authService.CheckAuth(ctx, token, r.URL.Path, true)
					if err == nil && principal != nil {
						ctx = WithPrincipal(ctx, principal)
						if logg != nil {
							ctx = logg.WithUserID(ctx, principal.UserID.String())
						}
					}
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Ownership assigns the cart/wishlist owner identity: the signed-in user id
// wins; guests carry a client-generated id in a header.
func Ownership() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ownerID := ""
			if principal := PrincipalFromContext(ctx); principal != nil {
				ownerID = principal.UserID.String()
			} else if guest := strings.TrimSpace(r.Header.Get("X-Guest-Id")); guest != "" {
				ownerID = guest
			}
			if ownerID != "" {
				ctx = WithOwnerID(ctx, ownerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole is a defense-in-depth gate for route groups whose class the
// path-based check already covers.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}
			if principal.Role != role && !(role == enums.RoleAdmin && principal.Role == enums.RoleSuperAdmin) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient privileges"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// writeDenied emits the error payload plus the sign-in redirect target so the
// client can route the visitor and bring them back afterwards.
func writeDenied(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	reason := auth.ReasonAuthRequired
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeForbidden {
		reason = auth.ReasonInsufficientRole
	}
	class := auth.Classify(r.URL.Path)
	w.Header().Set("X-Redirect-To", auth.RedirectTarget(class, reason, r.URL.Path))
	responses.WriteError(r.Context(), logg, w, err)
}
