package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListItems returns the owner's wishlist in insertion order.
func (r *Repository) ListItems(ctx context.Context, ownerID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&items).
		Error
	return items, err
}

// InsertItem adds a snapshot and reports whether a row was actually written.
// Duplicates are swallowed by the conflict clause.
func (r *Repository) InsertItem(ctx context.Context, item *models.WishlistItem) (bool, error) {
	result := r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items
  (owner_id, product_id, slug, name, brand, price, image, top_notes, heart_notes, base_notes, stock_status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (owner_id, product_id) DO NOTHING`,
			item.OwnerID, item.ProductID, item.Slug, item.Name, item.Brand,
			item.Price, item.Image, item.TopNotes, item.HeartNotes, item.BaseNotes,
			item.StockStatus)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveItem deletes the owner-product pair if it exists.
func (r *Repository) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		Delete(&models.WishlistItem{}).
		Error
}

// RemoveAll empties the owner's wishlist.
func (r *Repository) RemoveAll(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.WishlistItem{}).
		Error
}

// UpdateStockStatus rewrites the derived status for one owner-product pair.
func (r *Repository) UpdateStockStatus(ctx context.Context, ownerID string, productID uuid.UUID, status enums.StockStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		Update("stock_status", status).
		Error
}

// GetShare returns the owner's share row, nil when none exists yet.
func (r *Repository) GetShare(ctx context.Context, ownerID string) (*models.WishlistShare, error) {
	var share models.WishlistShare
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&share).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// GetShareByToken resolves a share token, nil when unknown.
func (r *Repository) GetShareByToken(ctx context.Context, token uuid.UUID) (*models.WishlistShare, error) {
	var share models.WishlistShare
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&share).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// SaveShare inserts or updates the owner's share row.
func (r *Repository) SaveShare(ctx context.Context, share *models.WishlistShare) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_shares (owner_id, token, privacy)
VALUES (?, ?, ?)
ON CONFLICT (owner_id) DO UPDATE SET privacy = EXCLUDED.privacy, updated_at = NOW()`,
			share.OwnerID, share.Token, share.Privacy).
		Error
}
