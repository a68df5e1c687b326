package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

// HomepageContentID is the fixed primary key of the singleton content row.
const HomepageContentID = 1

// HeroBanner is the headline section of the storefront landing page.
type HeroBanner struct {
	Title    i18n.Text `json:"title"`
	Subtitle i18n.Text `json:"subtitle"`
	Image    string    `json:"image"`
	CTALabel i18n.Text `json:"cta_label"`
	CTALink  string    `json:"cta_link"`
}

func (b HeroBanner) Value() (driver.Value, error) { return jsonbValue(b) }
func (b *HeroBanner) Scan(src any) error          { return jsonbScan(src, b) }

// BrandTile is one entry in the ordered featured-brand grid.
type BrandTile struct {
	Name  i18n.Text `json:"name"`
	Image string    `json:"image"`
	Link  string    `json:"link"`
}

// BrandTiles is the JSONB-backed ordered list.
type BrandTiles []BrandTile

func (t BrandTiles) Value() (driver.Value, error) { return jsonbValue(t) }
func (t *BrandTiles) Scan(src any) error          { return jsonbScan(src, t) }

// EmbeddedOffer is an editorially curated offer held inside the homepage
// document. These take precedence over the standalone offers collection.
type EmbeddedOffer struct {
	Slug     string          `json:"slug"`
	Title    i18n.Text       `json:"title"`
	Subtitle i18n.Text       `json:"subtitle"`
	Image    string          `json:"image"`
	OldPrice decimal.Decimal `json:"old_price"`
	NewPrice decimal.Decimal `json:"new_price"`
}

// EmbeddedOffers is the JSONB-backed ordered list.
type EmbeddedOffers []EmbeddedOffer

func (o EmbeddedOffers) Value() (driver.Value, error) { return jsonbValue(o) }
func (o *EmbeddedOffers) Scan(src any) error          { return jsonbScan(src, o) }

// MarqueeBrand is one logo in the scrolling brand strip.
type MarqueeBrand struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// MarqueeBrands is the JSONB-backed ordered list.
type MarqueeBrands []MarqueeBrand

func (m MarqueeBrands) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *MarqueeBrands) Scan(src any) error          { return jsonbScan(src, m) }

// ContentSettings is the sitewide settings sub-object.
type ContentSettings struct {
	DarkMode        bool           `json:"dark_mode"`
	DefaultLanguage enums.Language `json:"default_language"`
}

func (s ContentSettings) Value() (driver.Value, error) { return jsonbValue(s) }
func (s *ContentSettings) Scan(src any) error          { return jsonbScan(src, s) }

// HomepageContent is the singleton marketing document. It is lazily created
// with bundled defaults on first read.
type HomepageContent struct {
	ID             int             `gorm:"column:id;primaryKey"`
	Hero           HeroBanner      `gorm:"column:hero;type:jsonb;not null"`
	FeaturedBrands BrandTiles      `gorm:"column:featured_brands;type:jsonb;not null"`
	Offers         EmbeddedOffers  `gorm:"column:offers;type:jsonb;not null"`
	MarqueeBrands  MarqueeBrands   `gorm:"column:marquee_brands;type:jsonb;not null"`
	Settings       ContentSettings `gorm:"column:settings;type:jsonb;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the singleton table name.
func (HomepageContent) TableName() string {
	return "homepage_content"
}
