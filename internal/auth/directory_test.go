package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
)

func (r *fakeAuthRepo) ListAdmins(context.Context) ([]models.AdminRecord, error) {
	out := []models.AdminRecord{}
	for _, record := range r.admins {
		out = append(out, *record)
	}
	return out, nil
}

func (r *fakeAuthRepo) SaveAdminRecord(_ context.Context, record *models.AdminRecord) error {
	clone := *record
	r.admins[record.UserID] = &clone
	return nil
}

func (r *fakeAuthRepo) DeleteAdminRecord(_ context.Context, userID uuid.UUID) error {
	delete(r.admins, userID)
	return nil
}

func newDirectory(t *testing.T, repo *fakeAuthRepo) *Directory {
	t.Helper()
	dir, err := NewDirectory(repo, nil)
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	return dir
}

func TestDirectoryGrantAndList(t *testing.T) {
	repo := newFakeAuthRepo()
	user := seedUser(t, repo, "new-admin@maisonnoor.com", "correct horse")
	actor := uuid.New()
	dir := newDirectory(t, repo)
	ctx := context.Background()

	entry, err := dir.Grant(ctx, "new-admin@maisonnoor.com", enums.RoleAdmin, actor)
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if entry.UserID != user.ID || entry.Role != enums.RoleAdmin {
		t.Fatalf("unexpected entry %+v", entry)
	}

	entries, err := dir.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Email != "new-admin@maisonnoor.com" {
		t.Fatalf("unexpected roster %+v", entries)
	}
}

func TestDirectoryGrantRejectsCustomerRole(t *testing.T) {
	repo := newFakeAuthRepo()
	seedUser(t, repo, "layla@example.com", "correct horse")
	dir := newDirectory(t, repo)

	_, err := dir.Grant(context.Background(), "layla@example.com", enums.RoleCustomer, uuid.New())
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDirectoryRevokeGuards(t *testing.T) {
	repo := newFakeAuthRepo()
	admin := seedUser(t, repo, "admin@maisonnoor.com", "correct horse")
	repo.admins[admin.ID] = &models.AdminRecord{UserID: admin.ID, Role: enums.RoleSuperAdmin, IsActive: true}
	dir := newDirectory(t, repo)
	ctx := context.Background()

	var coded *pkgerrors.Error

	err := dir.Revoke(ctx, admin.ID, admin.ID)
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("self-revocation must be refused, got %v", err)
	}

	err = dir.Revoke(ctx, uuid.New(), admin.ID)
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}

	other := seedUser(t, repo, "second@maisonnoor.com", "correct horse")
	repo.admins[other.ID] = &models.AdminRecord{UserID: other.ID, Role: enums.RoleAdmin, IsActive: true}
	if err := dir.Revoke(ctx, other.ID, admin.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, ok := repo.admins[other.ID]; ok {
		t.Fatal("record must be gone after revoke")
	}
}
