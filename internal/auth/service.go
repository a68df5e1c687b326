package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/maisonnoor/boutique-backend/pkg/auth"
	"github.com/maisonnoor/boutique-backend/pkg/auth/session"
	"github.com/maisonnoor/boutique-backend/pkg/config"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/security"
)

type repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetAdminRecord(ctx context.Context, userID uuid.UUID) (*models.AdminRecord, error)
	GetCustomerProfile(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error)
	EnsureCustomerProfile(ctx context.Context, profile *models.CustomerProfile) error
	UpdateCustomerProfile(ctx context.Context, profile *models.CustomerProfile) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) error
}

type sessions interface {
	Persist(ctx context.Context, snapshot session.Snapshot) error
	Get(ctx context.Context, sessionID string) (*session.Snapshot, error)
	Revoke(ctx context.Context, sessionID string) error
}

// Principal is the resolved identity attached to a request. A nil principal
// is the anonymous visitor.
type Principal struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Role        enums.Role
	SessionID   string
}

// LoginResult carries the minted token alongside the resolved principal.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

// CustomerLoginRequest is the storefront sign-in payload.
type CustomerLoginRequest struct {
	Email    string
	Password string
	Remember bool
}

// ProfileUpdate carries the optional customer preference edits. Nil fields
// are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Language    *enums.Language
	Currency    *string
	Newsletter  *bool
}

// Service is the authentication and authorization surface.
type Service interface {
	AdminLogin(ctx context.Context, email, password string) (*LoginResult, error)
	CustomerLogin(ctx context.Context, req CustomerLoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	CheckAuth(ctx context.Context, token, routePath string, force bool) (*Principal, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) error
	Profile(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error)
}

type service struct {
	repo     repository
	sessions sessions
	jwt      config.JWTConfig
	session  config.SessionConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Repo     repository
	Sessions sessions
	JWT      config.JWTConfig
	Session  config.SessionConfig
	Password config.PasswordConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if params.Session.AdminTTL <= 0 || params.Session.CustomerTTL <= 0 || params.Session.RememberTTL <= 0 {
		return nil, fmt.Errorf("session lifetimes must be positive")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		jwt:      params.JWT,
		session:  params.Session,
		password: params.Password,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

// invalidCredentials is the single error class every sign-in failure maps to.
// The real cause is logged server-side only.
func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

// AdminLogin verifies credentials, then requires an active authorization
// record. When the record is missing the freshly persisted session is revoked
// before the caller hears anything.
func (s *service) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	result, err := s.openSession(ctx, user, enums.RoleAdmin, s.session.AdminTTL, false)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetAdminRecord(ctx, user.ID)
	if err != nil || record == nil || !record.IsActive {
		if revokeErr := s.sessions.Revoke(ctx, result.Principal.SessionID); revokeErr != nil {
			s.warn(ctx, "revoking unauthorized session failed", revokeErr)
		}
		if err != nil {
			s.warn(ctx, "admin record lookup failed", err)
		} else {
			s.warn(ctx, "admin sign-in without active authorization record", nil)
		}
		return nil, invalidCredentials()
	}

	// The record, not the login form, decides admin vs super-admin.
	if record.Role != result.Principal.Role {
		result, err = s.reopenSession(ctx, result, user, record.Role, s.session.AdminTTL, false)
		if err != nil {
			return nil, err
		}
	}

	s.touch(ctx, user.ID)
	return result, nil
}

// CustomerLogin verifies credentials and opens a storefront session. Accounts
// with an admin record are turned away towards the admin portal.
func (s *service) CustomerLogin(ctx context.Context, req CustomerLoginRequest) (*LoginResult, error) {
	user, err := s.verifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetAdminRecord(ctx, user.ID)
	if err != nil {
		s.warn(ctx, "admin record lookup failed", err)
		return nil, invalidCredentials()
	}
	if record != nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this account signs in through the admin portal")
	}

	if err := s.repo.EnsureCustomerProfile(ctx, &models.CustomerProfile{
		UserID:          user.ID,
		DefaultLanguage: enums.LanguageEnglish,
		DefaultCurrency: "USD",
	}); err != nil {
		s.warn(ctx, "provisioning customer profile failed", err)
		return nil, invalidCredentials()
	}

	ttl := s.session.CustomerTTL
	if req.Remember {
		ttl = s.session.RememberTTL
	}
	result, err := s.openSession(ctx, user, enums.RoleCustomer, ttl, req.Remember)
	if err != nil {
		return nil, err
	}

	s.touch(ctx, user.ID)
	return result, nil
}

// Logout revokes the persisted session.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, sessionID)
}

// CheckAuth resolves the principal for a request and enforces the route
// class. Public routes short-circuit to anonymous without touching the
// session store unless forced.
func (s *service) CheckAuth(ctx context.Context, token, routePath string, force bool) (*Principal, error) {
	class := Classify(routePath)

	if class == enums.RouteClassPublic && !force {
		return nil, nil
	}

	principal, err := s.resolvePrincipal(ctx, token)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		if class == enums.RouteClassPublic {
			return nil, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}

	if !class.Permits(principal.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient privileges")
	}
	return principal, nil
}

// resolvePrincipal tries the persisted session first; only when the snapshot
// is missing or expired does it fall back to the full database round-trip.
func (s *service) resolvePrincipal(ctx context.Context, token string) (*Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	claims, err := pkgauth.ParseAccessToken(s.jwt, token)
	if err != nil {
		return nil, nil
	}
	sessionID := claims.ID

	snapshot, err := s.sessions.Get(ctx, sessionID)
	if err == nil && snapshot != nil && !snapshot.Expired(s.now()) {
		return &Principal{
			UserID:      snapshot.UserID,
			Email:       snapshot.Email,
			DisplayName: snapshot.DisplayName,
			Role:        snapshot.Role,
			SessionID:   snapshot.SessionID,
		}, nil
	}
	if err != nil && err != session.ErrSessionNotFound {
		s.warn(ctx, "session lookup failed", err)
	}

	return s.rebuildPrincipal(ctx, claims, sessionID)
}

// rebuildPrincipal re-derives the role from the database, admin record before
// customer, and re-persists the snapshot so later checks stay cheap.
func (s *service) rebuildPrincipal(ctx context.Context, claims *pkgauth.AccessTokenClaims, sessionID string) (*Principal, error) {
	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load principal")
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}

	role := enums.RoleCustomer
	record, err := s.repo.GetAdminRecord(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load authorization record")
	}
	if record != nil && record.IsActive {
		role = record.Role
	}

	expiresAt := claims.ExpiresAt.Time
	if !expiresAt.After(s.now()) {
		return nil, nil
	}

	snapshot := session.Snapshot{
		SessionID:   sessionID,
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        role,
		ExpiresAt:   expiresAt,
	}
	if err := s.sessions.Persist(ctx, snapshot); err != nil {
		s.warn(ctx, "re-persisting session snapshot failed", err)
	}

	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        role,
		SessionID:   sessionID,
	}, nil
}

// ResetPassword replaces the stored credential. Unknown emails return
// silently so the endpoint cannot be used to enumerate accounts.
func (s *service) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if user == nil {
		s.warn(ctx, "password reset for unknown email", nil)
		return nil
	}
	hash, err := security.HashPassword(newPassword, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store password")
	}
	return nil
}

// UpdateProfile applies the non-nil preference edits.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) error {
	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be blank")
		}
		if err := s.repo.UpdateDisplayName(ctx, userID, name); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update display name")
		}
	}

	if update.Language == nil && update.Currency == nil && update.Newsletter == nil {
		return nil
	}

	profile, err := s.repo.GetCustomerProfile(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	if update.Language != nil {
		if !update.Language.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown language %q", *update.Language))
		}
		profile.DefaultLanguage = *update.Language
	}
	if update.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*update.Currency))
		if len(code) != 3 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency code %q", *update.Currency))
		}
		profile.DefaultCurrency = code
	}
	if update.Newsletter != nil {
		profile.Newsletter = *update.Newsletter
	}

	if err := s.repo.UpdateCustomerProfile(ctx, profile); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return nil
}

// Profile loads the storefront preferences for a signed-in customer.
func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error) {
	profile, err := s.repo.GetCustomerProfile(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return profile, nil
}

func (s *service) verifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.warn(ctx, "account lookup failed", err)
		return nil, invalidCredentials()
	}
	if user == nil || !user.IsActive {
		s.warn(ctx, "sign-in for unknown or disabled account", nil)
		return nil, invalidCredentials()
	}
	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.warn(ctx, "stored credential is malformed", err)
		return nil, invalidCredentials()
	}
	if !ok {
		s.warn(ctx, "password mismatch", nil)
		return nil, invalidCredentials()
	}
	return user, nil
}

func (s *service) openSession(ctx context.Context, user *models.User, role enums.Role, ttl time.Duration, remember bool) (*LoginResult, error) {
	sessionID := session.NewSessionID()
	now := s.now()
	expiresAt := now.Add(ttl)

	token, err := pkgauth.MintAccessToken(s.jwt, now, ttl, pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Role:     role,
		Remember: remember,
		JTI:      sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	if err := s.sessions.Persist(ctx, session.Snapshot{
		SessionID:   sessionID,
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        role,
		ExpiresAt:   expiresAt,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session")
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: Principal{
			UserID:      user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        role,
			SessionID:   sessionID,
		},
	}, nil
}

// reopenSession swaps the session for one carrying the corrected role.
func (s *service) reopenSession(ctx context.Context, prior *LoginResult, user *models.User, role enums.Role, ttl time.Duration, remember bool) (*LoginResult, error) {
	if err := s.sessions.Revoke(ctx, prior.Principal.SessionID); err != nil {
		s.warn(ctx, "revoking superseded session failed", err)
	}
	return s.openSession(ctx, user, role, ttl, remember)
}

func (s *service) touch(ctx context.Context, userID uuid.UUID) {
	if err := s.repo.TouchLastLogin(ctx, userID); err != nil {
		s.warn(ctx, "stamping last login failed", err)
	}
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	if err != nil {
		s.logg.Error(ctx, msg, err)
		return
	}
	s.logg.Warn(ctx, msg)
}
