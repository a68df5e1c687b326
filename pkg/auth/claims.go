package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.Role
	Remember bool
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to signed-in principals.
type AccessTokenClaims struct {
	UserID   uuid.UUID  `json:"user_id"`
	Role     enums.Role `json:"role"`
	Remember bool       `json:"remember,omitempty"`
	jwt.RegisteredClaims
}
