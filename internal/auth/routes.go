package auth

import (
	"net/url"
	"strings"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// RedirectReason tells the client why access was refused. It travels in the
// redirect query string next to the originally requested path.
type RedirectReason string

const (
	ReasonAuthRequired     RedirectReason = "auth_required"
	ReasonSessionExpired   RedirectReason = "session_expired"
	ReasonInsufficientRole RedirectReason = "insufficient_role"
)

const (
	adminPathPrefix      = "/api/admin/v1"
	superAdminPathPrefix = "/api/admin/v1/admins"

	adminSignInPath = "/admin/login"
	storeSignInPath = "/login"
)

// Classify assigns a path to exactly one access tier. Admin management is the
// super-admin-only subset of the console; the rest of the console is admin;
// everything else, the storefront included, is public.
func Classify(path string) enums.RouteClass {
	path = normalizePath(path)
	switch {
	case path == superAdminPathPrefix || strings.HasPrefix(path, superAdminPathPrefix+"/"):
		return enums.RouteClassSuperAdmin
	case path == adminPathPrefix || strings.HasPrefix(path, adminPathPrefix+"/"):
		return enums.RouteClassAdmin
	default:
		return enums.RouteClassPublic
	}
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// RedirectTarget builds the sign-in URL carrying the reason and the path the
// principal originally asked for, so the client can return there afterwards.
func RedirectTarget(class enums.RouteClass, reason RedirectReason, requestedPath string) string {
	base := storeSignInPath
	if class == enums.RouteClassAdmin || class == enums.RouteClassSuperAdmin {
		base = adminSignInPath
	}
	query := url.Values{}
	query.Set("reason", string(reason))
	query.Set("next", normalizePath(requestedPath))
	return base + "?" + query.Encode()
}
