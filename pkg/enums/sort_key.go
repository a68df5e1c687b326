package enums

import "fmt"

// SortKey selects the catalog ordering. Newest-first is the storefront default.
type SortKey string

const (
	SortKeyPriceAsc        SortKey = "price_asc"
	SortKeyPriceDesc       SortKey = "price_desc"
	SortKeyRatingDesc      SortKey = "rating_desc"
	SortKeyBestsellerFirst SortKey = "bestseller_first"
	SortKeyNewestFirst     SortKey = "newest_first"
	SortKeyNameAsc         SortKey = "name_asc"
	SortKeyNameDesc        SortKey = "name_desc"
)

var validSortKeys = []SortKey{
	SortKeyPriceAsc,
	SortKeyPriceDesc,
	SortKeyRatingDesc,
	SortKeyBestsellerFirst,
	SortKeyNewestFirst,
	SortKeyNameAsc,
	SortKeyNameDesc,
}

// String implements fmt.Stringer.
func (k SortKey) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SortKey.
func (k SortKey) IsValid() bool {
	for _, candidate := range validSortKeys {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSortKey converts raw input into a SortKey.
func ParseSortKey(value string) (SortKey, error) {
	for _, candidate := range validSortKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}
