package enums

import "fmt"

// WishlistPrivacy controls who can resolve a wishlist share token.
type WishlistPrivacy string

const (
	WishlistPrivacyPrivate WishlistPrivacy = "private"
	WishlistPrivacyShared  WishlistPrivacy = "shared"
	WishlistPrivacyPublic  WishlistPrivacy = "public"
)

var validWishlistPrivacies = []WishlistPrivacy{
	WishlistPrivacyPrivate,
	WishlistPrivacyShared,
	WishlistPrivacyPublic,
}

// String implements fmt.Stringer.
func (p WishlistPrivacy) String() string {
	return string(p)
}

// IsValid reports whether the value is a known WishlistPrivacy.
func (p WishlistPrivacy) IsValid() bool {
	for _, candidate := range validWishlistPrivacies {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresShareToken reports whether the privacy level needs a share token.
func (p WishlistPrivacy) RequiresShareToken() bool {
	return p == WishlistPrivacyShared || p == WishlistPrivacyPublic
}

// ParseWishlistPrivacy converts raw input into a WishlistPrivacy.
func ParseWishlistPrivacy(value string) (WishlistPrivacy, error) {
	for _, candidate := range validWishlistPrivacies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wishlist privacy %q", value)
}
