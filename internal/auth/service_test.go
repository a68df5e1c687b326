package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/pkg/auth/session"
	"github.com/maisonnoor/boutique-backend/pkg/config"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/security"
)

type fakeAuthRepo struct {
	users    map[string]*models.User
	admins   map[uuid.UUID]*models.AdminRecord
	profiles map[uuid.UUID]*models.CustomerProfile

	adminLookupErr error
	userLookups    int
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:    map[string]*models.User{},
		admins:   map[uuid.UUID]*models.AdminRecord{},
		profiles: map[uuid.UUID]*models.CustomerProfile{},
	}
}

func (r *fakeAuthRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := r.users[email]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeAuthRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.userLookups++
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAuthRepo) GetAdminRecord(_ context.Context, userID uuid.UUID) (*models.AdminRecord, error) {
	if r.adminLookupErr != nil {
		return nil, r.adminLookupErr
	}
	if record, ok := r.admins[userID]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeAuthRepo) GetCustomerProfile(_ context.Context, userID uuid.UUID) (*models.CustomerProfile, error) {
	if profile, ok := r.profiles[userID]; ok {
		clone := *profile
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeAuthRepo) EnsureCustomerProfile(_ context.Context, profile *models.CustomerProfile) error {
	if _, ok := r.profiles[profile.UserID]; !ok {
		clone := *profile
		r.profiles[profile.UserID] = &clone
	}
	return nil
}

func (r *fakeAuthRepo) UpdateCustomerProfile(_ context.Context, profile *models.CustomerProfile) error {
	clone := *profile
	r.profiles[profile.UserID] = &clone
	return nil
}

func (r *fakeAuthRepo) TouchLastLogin(_ context.Context, userID uuid.UUID) error {
	for _, user := range r.users {
		if user.ID == userID {
			now := time.Now()
			user.LastLoginAt = &now
		}
	}
	return nil
}

func (r *fakeAuthRepo) UpdatePasswordHash(_ context.Context, userID uuid.UUID, hash string) error {
	for _, user := range r.users {
		if user.ID == userID {
			user.PasswordHash = hash
		}
	}
	return nil
}

func (r *fakeAuthRepo) UpdateDisplayName(_ context.Context, userID uuid.UUID, displayName string) error {
	for _, user := range r.users {
		if user.ID == userID {
			user.DisplayName = displayName
		}
	}
	return nil
}

type fakeSessions struct {
	snapshots map[string]session.Snapshot
	persists  int
	revokes   int
	gets      int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{snapshots: map[string]session.Snapshot{}}
}

func (s *fakeSessions) Persist(_ context.Context, snapshot session.Snapshot) error {
	s.persists++
	s.snapshots[snapshot.SessionID] = snapshot
	return nil
}

func (s *fakeSessions) Get(_ context.Context, sessionID string) (*session.Snapshot, error) {
	s.gets++
	snapshot, ok := s.snapshots[sessionID]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return &snapshot, nil
}

func (s *fakeSessions) Revoke(_ context.Context, sessionID string) error {
	s.revokes++
	delete(s.snapshots, sessionID)
	return nil
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

var testJWTConfig = config.JWTConfig{Secret: "test-secret", Issuer: "boutique-test"}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		AdminTTL:    24 * time.Hour,
		CustomerTTL: 24 * time.Hour,
		RememberTTL: 720 * time.Hour,
	}
}

func seedUser(t *testing.T, repo *fakeAuthRepo, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Test User",
		IsActive:     true,
	}
	repo.users[email] = user
	return user
}

func newAuthService(t *testing.T, repo *fakeAuthRepo, sessions *fakeSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Sessions: sessions,
		JWT:      testJWTConfig,
		Session:  testSessionConfig(),
		Password: testPasswordConfig,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
	return coded
}

func TestAdminLoginWithActiveRecord(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	user := seedUser(t, repo, "admin@maisonnoor.com", "correct horse")
	repo.admins[user.ID] = &models.AdminRecord{UserID: user.ID, Role: enums.RoleAdmin, IsActive: true}
	svc := newAuthService(t, repo, sessions)

	result, err := svc.AdminLogin(context.Background(), "admin@maisonnoor.com", "correct horse")
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if result.Principal.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role, got %s", result.Principal.Role)
	}
	if result.Token == "" {
		t.Fatal("expected a minted token")
	}
	if _, ok := sessions.snapshots[result.Principal.SessionID]; !ok {
		t.Fatal("expected persisted session snapshot")
	}
}

func TestAdminLoginPromotesSuperAdminFromRecord(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	user := seedUser(t, repo, "root@maisonnoor.com", "correct horse")
	repo.admins[user.ID] = &models.AdminRecord{UserID: user.ID, Role: enums.RoleSuperAdmin, IsActive: true}
	svc := newAuthService(t, repo, sessions)

	result, err := svc.AdminLogin(context.Background(), "root@maisonnoor.com", "correct horse")
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if result.Principal.Role != enums.RoleSuperAdmin {
		t.Fatalf("expected super_admin role, got %s", result.Principal.Role)
	}
	snapshot := sessions.snapshots[result.Principal.SessionID]
	if snapshot.Role != enums.RoleSuperAdmin {
		t.Fatalf("persisted snapshot carries %s", snapshot.Role)
	}
}

func TestAdminLoginWithoutRecordRevokesSession(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "customer@example.com", "correct horse")
	svc := newAuthService(t, repo, sessions)

	_, err := svc.AdminLogin(context.Background(), "customer@example.com", "correct horse")
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	if sessions.revokes != 1 {
		t.Fatalf("expected one compensating revoke, got %d", sessions.revokes)
	}
	if len(sessions.snapshots) != 0 {
		t.Fatal("no session may survive a denied admin sign-in")
	}
}

func TestSignInFailuresShareOneErrorClass(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "customer@example.com", "correct horse")
	svc := newAuthService(t, repo, sessions)
	ctx := context.Background()

	_, badPassword := svc.AdminLogin(ctx, "customer@example.com", "wrong")
	_, unknownEmail := svc.AdminLogin(ctx, "nobody@example.com", "correct horse")
	_, missingRecord := svc.AdminLogin(ctx, "customer@example.com", "correct horse")

	repo.adminLookupErr = context.DeadlineExceeded
	_, lookupFailure := svc.AdminLogin(ctx, "customer@example.com", "correct horse")

	for name, err := range map[string]error{
		"bad password":   badPassword,
		"unknown email":  unknownEmail,
		"missing record": missingRecord,
		"lookup failure": lookupFailure,
	} {
		coded := assertCode(t, err, pkgerrors.CodeUnauthorized)
		if coded.Message() != "invalid credentials" {
			t.Fatalf("%s: failure cause leaks: %q", name, coded.Message())
		}
	}
}

func TestCustomerLoginRejectsAdminAccount(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	user := seedUser(t, repo, "admin@maisonnoor.com", "correct horse")
	repo.admins[user.ID] = &models.AdminRecord{UserID: user.ID, Role: enums.RoleAdmin, IsActive: true}
	svc := newAuthService(t, repo, sessions)

	_, err := svc.CustomerLogin(context.Background(), CustomerLoginRequest{
		Email:    "admin@maisonnoor.com",
		Password: "correct horse",
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
	if len(sessions.snapshots) != 0 {
		t.Fatal("no storefront session may open for an admin account")
	}
}

func TestCustomerLoginProvisionsProfileOnce(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	user := seedUser(t, repo, "layla@example.com", "correct horse")
	svc := newAuthService(t, repo, sessions)
	ctx := context.Background()

	req := CustomerLoginRequest{Email: "layla@example.com", Password: "correct horse"}
	if _, err := svc.CustomerLogin(ctx, req); err != nil {
		t.Fatalf("first CustomerLogin: %v", err)
	}

	profile := repo.profiles[user.ID]
	if profile == nil {
		t.Fatal("expected auto-provisioned profile")
	}
	if profile.DefaultLanguage != enums.LanguageEnglish || profile.DefaultCurrency != "USD" {
		t.Fatalf("unexpected profile defaults: %s/%s", profile.DefaultLanguage, profile.DefaultCurrency)
	}

	profile.DefaultCurrency = "AED"
	if _, err := svc.CustomerLogin(ctx, req); err != nil {
		t.Fatalf("second CustomerLogin: %v", err)
	}
	if repo.profiles[user.ID].DefaultCurrency != "AED" {
		t.Fatal("repeat sign-in must not reset profile preferences")
	}
}

func TestCustomerLoginRememberStretchesExpiry(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "layla@example.com", "correct horse")
	svc := newAuthService(t, repo, sessions)
	ctx := context.Background()

	short, err := svc.CustomerLogin(ctx, CustomerLoginRequest{Email: "layla@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("CustomerLogin: %v", err)
	}
	long, err := svc.CustomerLogin(ctx, CustomerLoginRequest{Email: "layla@example.com", Password: "correct horse", Remember: true})
	if err != nil {
		t.Fatalf("CustomerLogin remember: %v", err)
	}

	if gap := long.ExpiresAt.Sub(short.ExpiresAt); gap < 29*24*time.Hour {
		t.Fatalf("remember flag barely stretched the session: %s", gap)
	}
}

func TestCheckAuthPublicRouteSkipsSessionStore(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	svc := newAuthService(t, repo, sessions)

	principal, err := svc.CheckAuth(context.Background(), "", "/products/oud-royal", false)
	if err != nil {
		t.Fatalf("CheckAuth: %v", err)
	}
	if principal != nil {
		t.Fatal("expected anonymous principal on a public route")
	}
	if sessions.gets != 0 {
		t.Fatalf("public route must not touch the session store, saw %d reads", sessions.gets)
	}
}

func TestCheckAuthForcedResolvesOnPublicRoute(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "layla@example.com", "correct horse")
	svc := newAuthService(t, repo, sessions)
	ctx := context.Background()

	result, err := svc.CustomerLogin(ctx, CustomerLoginRequest{Email: "layla@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("CustomerLogin: %v", err)
	}

	principal, err := svc.CheckAuth(ctx, result.Token, "/products", true)
	if err != nil {
		t.Fatalf("forced CheckAuth: %v", err)
	}
	if principal == nil || principal.Role != enums.RoleCustomer {
		t.Fatalf("expected customer principal, got %+v", principal)
	}
}

func TestCheckAuthEnforcesRouteClass(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	admin := seedUser(t, repo, "admin@maisonnoor.com", "correct horse")
	repo.admins[admin.ID] = &models.AdminRecord{UserID: admin.ID, Role: enums.RoleAdmin, IsActive: true}
	seedUser(t, repo, "layla@example.com", "correct horse")
	svc := newAuthService(t, repo, sessions)
	ctx := context.Background()

	customer, err := svc.CustomerLogin(ctx, CustomerLoginRequest{Email: "layla@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("CustomerLogin: %v", err)
	}
	adminResult, err := svc.AdminLogin(ctx, "admin@maisonnoor.com", "correct horse")
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}

	if _, err := svc.CheckAuth(ctx, "", "/api/admin/v1/products", false); err == nil {
		t.Fatal("anonymous visitor must not enter admin routes")
	} else {
		assertCode(t, err, pkgerrors.CodeUnauthorized)
	}

	_, err = svc.CheckAuth(ctx, customer.Token, "/api/admin/v1/products", false)
	assertCode(t, err, pkgerrors.CodeForbidden)

	if _, err := svc.CheckAuth(ctx, adminResult.Token, "/api/admin/v1/products", false); err != nil {
		t.Fatalf("admin must enter admin routes: %v", err)
	}

	_, err = svc.CheckAuth(ctx, adminResult.Token, "/api/admin/v1/admins", false)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCheckAuthRebuildsAfterSessionLoss(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "layla@example.com", "correct horse")
	svc := newAuthService(t, repo, sessions)
	ctx := context.Background()

	result, err := svc.CustomerLogin(ctx, CustomerLoginRequest{Email: "layla@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("CustomerLogin: %v", err)
	}

	// Redis flush: the snapshot is gone but the JWT is still valid.
	sessions.snapshots = map[string]session.Snapshot{}
	repo.userLookups = 0

	principal, err := svc.CheckAuth(ctx, result.Token, "/products", true)
	if err != nil {
		t.Fatalf("CheckAuth after flush: %v", err)
	}
	if principal == nil || principal.Role != enums.RoleCustomer {
		t.Fatalf("expected rebuilt customer principal, got %+v", principal)
	}
	if repo.userLookups != 1 {
		t.Fatalf("expected one database round-trip, got %d", repo.userLookups)
	}
	if len(sessions.snapshots) != 1 {
		t.Fatal("rebuilt snapshot must be re-persisted")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]enums.RouteClass{
		"/":                          enums.RouteClassPublic,
		"/products":                  enums.RouteClassPublic,
		"/api/cart":                  enums.RouteClassPublic,
		"/api/admin/v1":              enums.RouteClassAdmin,
		"/api/admin/v1/products":     enums.RouteClassAdmin,
		"/api/admin/v1/products/":    enums.RouteClassAdmin,
		"/api/admin/v1/admins":       enums.RouteClassSuperAdmin,
		"/api/admin/v1/admins/abc":   enums.RouteClassSuperAdmin,
		"/api/admin/v1/adminsannex":  enums.RouteClassAdmin,
	}
	for path, want := range cases {
		if got := Classify(path); got != want {
			t.Fatalf("Classify(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestRedirectTargetCarriesReasonAndPath(t *testing.T) {
	target := RedirectTarget(enums.RouteClassAdmin, ReasonInsufficientRole, "/api/admin/v1/products")
	if target != "/admin/login?next=%2Fapi%2Fadmin%2Fv1%2Fproducts&reason=insufficient_role" {
		t.Fatalf("unexpected redirect target %s", target)
	}

	target = RedirectTarget(enums.RouteClassPublic, ReasonAuthRequired, "/account")
	if target != "/login?next=%2Faccount&reason=auth_required" {
		t.Fatalf("unexpected redirect target %s", target)
	}
}

func TestResetPasswordUnknownEmailIsSilent(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newAuthService(t, repo, newFakeSessions())

	if err := svc.ResetPassword(context.Background(), "nobody@example.com", "a new password"); err != nil {
		t.Fatalf("reset for unknown email must not leak: %v", err)
	}
}

func TestResetPasswordReplacesCredential(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "layla@example.com", "old password")
	svc := newAuthService(t, repo, sessions)
	ctx := context.Background()

	if err := svc.ResetPassword(ctx, "layla@example.com", "new password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	_, err := svc.CustomerLogin(ctx, CustomerLoginRequest{Email: "layla@example.com", Password: "old password"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	if _, err := svc.CustomerLogin(ctx, CustomerLoginRequest{Email: "layla@example.com", Password: "new password"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateProfilePreferences(t *testing.T) {
	repo := newFakeAuthRepo()
	sessions := newFakeSessions()
	user := seedUser(t, repo, "layla@example.com", "correct horse")
	svc := newAuthService(t, repo, sessions)
	ctx := context.Background()

	if _, err := svc.CustomerLogin(ctx, CustomerLoginRequest{Email: "layla@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("CustomerLogin: %v", err)
	}

	lang := enums.LanguageArabic
	currency := "aed"
	newsletter := true
	err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Language:   &lang,
		Currency:   &currency,
		Newsletter: &newsletter,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	profile := repo.profiles[user.ID]
	if profile.DefaultLanguage != enums.LanguageArabic {
		t.Fatalf("expected Arabic default, got %s", profile.DefaultLanguage)
	}
	if profile.DefaultCurrency != "AED" {
		t.Fatalf("expected normalized AED, got %s", profile.DefaultCurrency)
	}
	if !profile.Newsletter {
		t.Fatal("expected newsletter opt-in")
	}

	badCurrency := "dirhams"
	err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Currency: &badCurrency})
	assertCode(t, err, pkgerrors.CodeValidation)
}
