package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

// Offer is a standalone promotional entry. NewPrice above OldPrice is allowed;
// the storefront treats markup as an editorial capability, not an error.
type Offer struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Slug        string          `gorm:"column:slug;not null;uniqueIndex"`
	Title       i18n.Text       `gorm:"column:title;type:jsonb;not null"`
	Subtitle    i18n.Text       `gorm:"column:subtitle;type:jsonb"`
	Description i18n.Text       `gorm:"column:description;type:jsonb"`
	Image       string          `gorm:"column:image"`
	OldPrice    decimal.Decimal `gorm:"column:old_price;type:numeric(12,2);not null"`
	NewPrice    decimal.Decimal `gorm:"column:new_price;type:numeric(12,2);not null"`
	StartsAt    *time.Time      `gorm:"column:starts_at"`
	EndsAt      *time.Time      `gorm:"column:ends_at"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// CurrentlyActive reports whether the offer should display at the given time.
func (o Offer) CurrentlyActive(now time.Time) bool {
	if !o.IsActive {
		return false
	}
	if o.StartsAt != nil && now.Before(*o.StartsAt) {
		return false
	}
	if o.EndsAt != nil && now.After(*o.EndsAt) {
		return false
	}
	return true
}
