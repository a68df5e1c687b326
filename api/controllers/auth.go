package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/api/middleware"
	"github.com/maisonnoor/boutique-backend/api/responses"
	"github.com/maisonnoor/boutique-backend/api/validators"
	authsvc "github.com/maisonnoor/boutique-backend/internal/auth"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type principalView struct {
	UserID      uuid.UUID  `json:"user_id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        enums.Role `json:"role"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Principal principalView `json:"principal"`
}

func toLoginResponse(result *authsvc.LoginResult) loginResponse {
	return loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Principal: toPrincipalView(result.Principal),
	}
}

func toPrincipalView(p authsvc.Principal) principalView {
	return principalView{
		UserID:      p.UserID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        p.Role,
	}
}

// AuthLogin signs a customer in. Accounts with an admin grant are refused
// here and directed to the admin portal.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CustomerLogin(r.Context(), authsvc.CustomerLoginRequest{
			Email:    payload.Email,
			Password: payload.Password,
			Remember: payload.Remember,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toLoginResponse(result))
	}
}

// AdminAuthLogin signs an admin in. The session role is taken from the admin
// roster, not the credential.
func AdminAuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminLogin(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toLoginResponse(result))
	}
}

// AuthLogout revokes the caller's session. Logging out an already-dead
// session succeeds quietly.
func AuthLogout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteSuccess(w, map[string]bool{"logged_out": true})
			return
		}

		if err := svc.Logout(r.Context(), principal.SessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}

// AuthSession reports who the caller is. Anonymous callers get a null
// principal, not an error, so the storefront can render its guest chrome.
func AuthSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteSuccess(w, map[string]any{"principal": nil})
			return
		}

		responses.WriteSuccess(w, map[string]any{"principal": toPrincipalView(*principal)})
	}
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// AuthResetPassword replaces the credential for a known email. Unknown emails
// succeed quietly so the endpoint cannot be used to probe for accounts.
func AuthResetPassword(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload resetPasswordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ResetPassword(r.Context(), payload.Email, payload.NewPassword); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"reset": true})
	}
}

// ProfileFetch returns the signed-in customer's preferences.
func ProfileFetch(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}

		profile, err := svc.Profile(r.Context(), principal.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

type profileUpdateRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Language    *string `json:"language,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Newsletter  *bool   `json:"newsletter,omitempty"`
}

// ProfileUpdate applies a partial edit to the customer's preferences. Absent
// fields are left untouched.
func ProfileUpdate(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}

		var payload profileUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := authsvc.ProfileUpdate{
			DisplayName: payload.DisplayName,
			Currency:    payload.Currency,
			Newsletter:  payload.Newsletter,
		}
		if payload.Language != nil {
			lang, err := enums.ParseLanguage(*payload.Language)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid language"))
				return
			}
			update.Language = &lang
		}

		if err := svc.UpdateProfile(r.Context(), principal.UserID, update); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Profile(r.Context(), principal.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
