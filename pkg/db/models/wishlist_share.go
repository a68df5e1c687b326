package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// WishlistShare binds an opaque share token to a wishlist owner. A row exists
// once the owner leaves the private state for the first time.
type WishlistShare struct {
	ID        uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   string                `gorm:"column:owner_id;not null;uniqueIndex"`
	Token     uuid.UUID             `gorm:"column:token;type:uuid;not null;uniqueIndex"`
	Privacy   enums.WishlistPrivacy `gorm:"column:privacy;not null;default:'private'"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
