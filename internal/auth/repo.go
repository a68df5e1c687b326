package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maisonnoor/boutique-backend/pkg/db/models"
)

// Repository reads and writes identity rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByEmail loads a user by normalized email, nil when absent.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID loads a user by id, nil when absent.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAdminRecord loads the authorization record for a user, nil when absent.
func (r *Repository) GetAdminRecord(ctx context.Context, userID uuid.UUID) (*models.AdminRecord, error) {
	var record models.AdminRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetCustomerProfile loads the storefront profile for a user, nil when absent.
func (r *Repository) GetCustomerProfile(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// EnsureCustomerProfile provisions the default profile once per user. The
// conflict clause makes repeated sign-ins idempotent.
func (r *Repository) EnsureCustomerProfile(ctx context.Context, profile *models.CustomerProfile) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO customer_profiles (user_id, default_language, default_currency, newsletter)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`, profile.UserID, profile.DefaultLanguage, profile.DefaultCurrency, profile.Newsletter).Error
}

// UpdateCustomerProfile rewrites the mutable preference columns.
func (r *Repository) UpdateCustomerProfile(ctx context.Context, profile *models.CustomerProfile) error {
	return r.db.WithContext(ctx).Model(&models.CustomerProfile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]any{
			"default_language": profile.DefaultLanguage,
			"default_currency": profile.DefaultCurrency,
			"newsletter":       profile.Newsletter,
		}).Error
}

// TouchLastLogin stamps the sign-in time.
func (r *Repository) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", gorm.Expr("NOW()")).Error
}

// UpdatePasswordHash replaces the stored credential.
func (r *Repository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error
}

// UpdateDisplayName rewrites the public name.
func (r *Repository) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("display_name", displayName).Error
}

// CreateUser inserts a new identity row.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// ListAdmins returns every authorization record joined with its user.
func (r *Repository) ListAdmins(ctx context.Context) ([]models.AdminRecord, error) {
	var records []models.AdminRecord
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error
	return records, err
}

// SaveAdminRecord grants or updates an authorization record.
func (r *Repository) SaveAdminRecord(ctx context.Context, record *models.AdminRecord) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO admin_records (user_id, role, is_active, granted_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			role = EXCLUDED.role,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`, record.UserID, record.Role, record.IsActive, record.GrantedBy).Error
}

// DeleteAdminRecord revokes authorization for a user.
func (r *Repository) DeleteAdminRecord(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AdminRecord{}).Error
}
