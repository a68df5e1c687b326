package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// Repository reads and writes the homepage document and the standalone
// offers collection.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetContent loads the singleton homepage row, nil when it has never been
// seeded.
func (r *Repository) GetContent(ctx context.Context) (*models.HomepageContent, error) {
	var content models.HomepageContent
	err := r.db.WithContext(ctx).Where("id = ?", models.HomepageContentID).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// SeedContent inserts the default document unless a concurrent reader beat us
// to it. The conflict clause makes the read-through-create race-free.
func (r *Repository) SeedContent(ctx context.Context, content *models.HomepageContent) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO homepage_content (id, hero, featured_brands, offers, marquee_brands, settings)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, content.ID, content.Hero, content.FeaturedBrands, content.Offers, content.MarqueeBrands, content.Settings).Error
}

// UpdateSection rewrites a single column of the singleton row.
func (r *Repository) UpdateSection(ctx context.Context, section enums.ContentSection, value any) error {
	column, ok := sectionColumns[section]
	if !ok {
		return errors.New("unknown content section")
	}
	return r.db.WithContext(ctx).Model(&models.HomepageContent{}).
		Where("id = ?", models.HomepageContentID).
		Update(column, value).Error
}

var sectionColumns = map[enums.ContentSection]string{
	enums.ContentSectionHeroBanner:     "hero",
	enums.ContentSectionFeaturedBrands: "featured_brands",
	enums.ContentSectionOffers:         "offers",
	enums.ContentSectionMarqueeBrands:  "marquee_brands",
	enums.ContentSectionSettings:       "settings",
}

// ListOffers returns the standalone offers collection, newest first.
func (r *Repository) ListOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&offers).Error
	return offers, err
}

// GetOffer loads one offer by id, nil when absent.
func (r *Repository) GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// OfferSlugTaken reports whether another offer already claims the slug.
func (r *Repository) OfferSlugTaken(ctx context.Context, slug string, excluding uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("slug = ? AND id <> ?", slug, excluding).
		Count(&count).Error
	return count > 0, err
}

// CreateOffer inserts a standalone offer.
func (r *Repository) CreateOffer(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

// UpdateOffer rewrites a standalone offer.
func (r *Repository) UpdateOffer(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

// DeleteOffer removes a standalone offer.
func (r *Repository) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Offer{}).Error
}
