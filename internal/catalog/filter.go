package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// FilterOptions describes the storefront grid predicates. Nil pointer fields
// mean "no constraint".
type FilterOptions struct {
	Category      string
	Brand         string
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	Concentration enums.Concentration
	MinRating     *float64
	Bestseller    bool
	NewArrivals   bool
	Sort          enums.SortKey
	Language      enums.Language
}

// Filter evaluates the predicates over the list and applies the requested
// sort. The sort is stable: ties keep catalog order.
func Filter(products []models.Product, opts FilterOptions, now time.Time, newArrivalWindow time.Duration) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		if opts.Brand != "" && p.Brand != opts.Brand {
			continue
		}
		if opts.PriceMin != nil && p.Price.LessThan(*opts.PriceMin) {
			continue
		}
		if opts.PriceMax != nil && p.Price.GreaterThan(*opts.PriceMax) {
			continue
		}
		if opts.Concentration != "" && p.Concentration != opts.Concentration {
			continue
		}
		if opts.MinRating != nil && p.Rating < *opts.MinRating {
			continue
		}
		if opts.Bestseller && !p.IsBestseller {
			continue
		}
		if opts.NewArrivals && now.Sub(p.CreatedAt) > newArrivalWindow {
			continue
		}
		out = append(out, p)
	}

	applySort(out, opts.Sort, opts.Language)
	return out
}

func applySort(products []models.Product, key enums.SortKey, lang enums.Language) {
	if key == "" {
		key = enums.SortKeyNewestFirst
	}
	switch key {
	case enums.SortKeyPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case enums.SortKeyPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	case enums.SortKeyRatingDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case enums.SortKeyBestsellerFirst:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].IsBestseller && !products[j].IsBestseller
		})
	case enums.SortKeyNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Name.Resolve(lang) < products[j].Name.Resolve(lang)
		})
	case enums.SortKeyNameDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Name.Resolve(lang) > products[j].Name.Resolve(lang)
		})
	default: // newest first
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}

// Search matches the term case-insensitively against bilingual name and
// description, brand, concentration, and all three note lists. A blank term
// yields an empty result, never the full catalog.
func Search(products []models.Product, term string) []models.Product {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return []models.Product{}
	}

	out := []models.Product{}
	for _, p := range products {
		if matchesTerm(&p, needle) {
			out = append(out, p)
		}
	}
	return out
}

func matchesTerm(p *models.Product, needle string) bool {
	haystacks := []string{
		p.Name.En, p.Name.Ar,
		p.Description.En, p.Description.Ar,
		p.Brand,
		string(p.Concentration),
	}
	haystacks = append(haystacks, p.TopNotes...)
	haystacks = append(haystacks, p.HeartNotes...)
	haystacks = append(haystacks, p.BaseNotes...)

	for _, haystack := range haystacks {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

// RelatedTo returns up to limit products sharing the category or brand,
// excluding the product itself, in catalog order.
func RelatedTo(products []models.Product, product *models.Product, limit int) []models.Product {
	if product == nil || limit <= 0 {
		return []models.Product{}
	}

	out := []models.Product{}
	for _, p := range products {
		if p.ID == product.ID {
			continue
		}
		if p.Category != product.Category && p.Brand != product.Brand {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}
