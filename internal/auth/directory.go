package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

type directoryRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetAdminRecord(ctx context.Context, userID uuid.UUID) (*models.AdminRecord, error)
	ListAdmins(ctx context.Context) ([]models.AdminRecord, error)
	SaveAdminRecord(ctx context.Context, record *models.AdminRecord) error
	DeleteAdminRecord(ctx context.Context, userID uuid.UUID) error
}

// AdminEntry is one row of the console's admin roster.
type AdminEntry struct {
	UserID      uuid.UUID  `json:"user_id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        enums.Role `json:"role"`
	IsActive    bool       `json:"is_active"`
	GrantedBy   *uuid.UUID `json:"granted_by,omitempty"`
	GrantedAt   time.Time  `json:"granted_at"`
}

// Directory manages the admin roster. Only super-admin routes reach it.
type Directory struct {
	repo directoryRepo
	logg *logger.Logger
}

func NewDirectory(repo directoryRepo, logg *logger.Logger) (*Directory, error) {
	if repo == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	return &Directory{repo: repo, logg: logg}, nil
}

// List returns every authorization record with its identity attached.
func (d *Directory) List(ctx context.Context) ([]AdminEntry, error) {
	records, err := d.repo.ListAdmins(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admins")
	}

	entries := make([]AdminEntry, 0, len(records))
	for _, record := range records {
		entry := AdminEntry{
			UserID:    record.UserID,
			Role:      record.Role,
			IsActive:  record.IsActive,
			GrantedBy: record.GrantedBy,
			GrantedAt: record.CreatedAt,
		}
		user, err := d.repo.GetUserByID(ctx, record.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin identity")
		}
		if user != nil {
			entry.Email = user.Email
			entry.DisplayName = user.DisplayName
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Grant gives an existing account an admin or super-admin role.
func (d *Directory) Grant(ctx context.Context, email string, role enums.Role, grantedBy uuid.UUID) (*AdminEntry, error) {
	if role != enums.RoleAdmin && role != enums.RoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("role %q cannot be granted", role))
	}
	user, err := d.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account with that email")
	}

	record := &models.AdminRecord{
		UserID:    user.ID,
		Role:      role,
		IsActive:  true,
		GrantedBy: &grantedBy,
	}
	if err := d.repo.SaveAdminRecord(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save admin record")
	}

	return &AdminEntry{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        role,
		IsActive:    true,
		GrantedBy:   &grantedBy,
	}, nil
}

// Revoke removes a user's admin authorization. A super-admin cannot revoke
// their own record; the roster must never lock itself out.
func (d *Directory) Revoke(ctx context.Context, userID, actorID uuid.UUID) error {
	if userID == actorID {
		return pkgerrors.New(pkgerrors.CodeValidation, "you cannot revoke your own access")
	}
	record, err := d.repo.GetAdminRecord(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin record")
	}
	if record == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no admin record for that user")
	}
	if err := d.repo.DeleteAdminRecord(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete admin record")
	}
	return nil
}
