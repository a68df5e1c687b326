package enums

import "fmt"

// ContentSection names a top-level section of the homepage document. Section
// updates touch exactly one of these.
type ContentSection string

const (
	ContentSectionHeroBanner     ContentSection = "hero_banner"
	ContentSectionFeaturedBrands ContentSection = "featured_brands"
	ContentSectionOffers         ContentSection = "offers"
	ContentSectionMarqueeBrands  ContentSection = "marquee_brands"
	ContentSectionSettings       ContentSection = "settings"
)

var validContentSections = []ContentSection{
	ContentSectionHeroBanner,
	ContentSectionFeaturedBrands,
	ContentSectionOffers,
	ContentSectionMarqueeBrands,
	ContentSectionSettings,
}

// String implements fmt.Stringer.
func (s ContentSection) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ContentSection.
func (s ContentSection) IsValid() bool {
	for _, candidate := range validContentSections {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseContentSection converts raw input into a ContentSection.
func ParseContentSection(value string) (ContentSection, error) {
	for _, candidate := range validContentSections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid content section %q", value)
}
