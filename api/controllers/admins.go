package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/api/middleware"
	"github.com/maisonnoor/boutique-backend/api/responses"
	"github.com/maisonnoor/boutique-backend/api/validators"
	authsvc "github.com/maisonnoor/boutique-backend/internal/auth"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

// AdminsList returns the admin roster. Super-admin only.
func AdminsList(directory *authsvc.Directory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := directory.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"admins": entries,
			"count":  len(entries),
		})
	}
}

type grantAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// AdminsGrant promotes an existing account to admin or super-admin.
func AdminsGrant(directory *authsvc.Directory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}

		var payload grantAdminRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseRole(payload.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		entry, err := directory.Grant(r.Context(), payload.Email, role, principal.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// AdminsRevoke removes an admin grant. Revoking yourself is refused.
func AdminsRevoke(directory *authsvc.Directory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}

		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		if err := directory.Revoke(r.Context(), userID, principal.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"revoked": true})
	}
}
