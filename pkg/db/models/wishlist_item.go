package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

// WishlistItem snapshots a product at add time. OwnerID is either a customer
// user id or an anonymous session id; uniqueness is per owner-product pair.
type WishlistItem struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     string            `gorm:"column:owner_id;not null;uniqueIndex:idx_wishlist_owner_product,priority:1"`
	ProductID   uuid.UUID         `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_wishlist_owner_product,priority:2"`
	Slug        string            `gorm:"column:slug;not null"`
	Name        i18n.Text         `gorm:"column:name;type:jsonb;not null"`
	Brand       string            `gorm:"column:brand;not null"`
	Price       decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Image       string            `gorm:"column:image"`
	TopNotes    pq.StringArray    `gorm:"column:top_notes;type:text[];not null;default:ARRAY[]::text[]"`
	HeartNotes  pq.StringArray    `gorm:"column:heart_notes;type:text[];not null;default:ARRAY[]::text[]"`
	BaseNotes   pq.StringArray    `gorm:"column:base_notes;type:text[];not null;default:ARRAY[]::text[]"`
	StockStatus enums.StockStatus `gorm:"column:stock_status;not null;default:'in_stock'"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
