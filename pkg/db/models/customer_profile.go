package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// CustomerProfile holds storefront preferences. It is auto-provisioned with
// defaults the first time a customer signs in.
type CustomerProfile struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	DefaultLanguage enums.Language `gorm:"column:default_language;not null;default:'en'"`
	DefaultCurrency string         `gorm:"column:default_currency;not null;default:'USD'"`
	Newsletter      bool           `gorm:"column:newsletter;not null;default:false"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
