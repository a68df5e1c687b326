package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// AdminRecord is the authorization record consulted after credential
// verification. Its absence for a signed-in principal means access denied, no
// matter what the credentials said.
type AdminRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Role      enums.Role `gorm:"column:role;not null"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	GrantedBy *uuid.UUID `gorm:"column:granted_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
