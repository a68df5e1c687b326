package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

// Product is the canonical catalog listing. Slug is unique storefront-wide;
// price is in base-currency units and never negative.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug          string              `gorm:"column:slug;not null;uniqueIndex"`
	Name          i18n.Text           `gorm:"column:name;type:jsonb;not null"`
	Description   i18n.Text           `gorm:"column:description;type:jsonb;not null"`
	Brand         string              `gorm:"column:brand;not null"`
	Category      string              `gorm:"column:category;not null"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Size          string              `gorm:"column:size;not null"`
	Concentration enums.Concentration `gorm:"column:concentration;not null"`
	TopNotes      pq.StringArray      `gorm:"column:top_notes;type:text[];not null;default:ARRAY[]::text[]"`
	HeartNotes    pq.StringArray      `gorm:"column:heart_notes;type:text[];not null;default:ARRAY[]::text[]"`
	BaseNotes     pq.StringArray      `gorm:"column:base_notes;type:text[];not null;default:ARRAY[]::text[]"`
	Images        pq.StringArray      `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	IsBestseller  bool                `gorm:"column:is_bestseller;not null;default:false"`
	IsFeatured    bool                `gorm:"column:is_featured;not null;default:false"`
	InStock       bool                `gorm:"column:in_stock;not null;default:true"`
	StockQuantity int                 `gorm:"column:stock_quantity;not null;default:0"`
	Rating        float64             `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	ReviewCount   int                 `gorm:"column:review_count;not null;default:0"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
