package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/api/responses"
	"github.com/maisonnoor/boutique-backend/api/validators"
	catalogsvc "github.com/maisonnoor/boutique-backend/internal/catalog"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

// productView is the storefront shape of a product: bilingual fields resolved
// to the request language.
type productView struct {
	ID            uuid.UUID           `json:"id"`
	Slug          string              `json:"slug"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Brand         string              `json:"brand"`
	Category      string              `json:"category"`
	Price         decimal.Decimal     `json:"price"`
	Size          string              `json:"size"`
	Concentration enums.Concentration `json:"concentration"`
	TopNotes      []string            `json:"top_notes"`
	HeartNotes    []string            `json:"heart_notes"`
	BaseNotes     []string            `json:"base_notes"`
	Images        []string            `json:"images"`
	IsBestseller  bool                `json:"is_bestseller"`
	IsFeatured    bool                `json:"is_featured"`
	InStock       bool                `json:"in_stock"`
	StockQuantity int                 `json:"stock_quantity"`
	Rating        float64             `json:"rating"`
	ReviewCount   int                 `json:"review_count"`
}

func toProductView(p models.Product, lang enums.Language) productView {
	return productView{
		ID:            p.ID,
		Slug:          p.Slug,
		Name:          p.Name.Resolve(lang),
		Description:   p.Description.Resolve(lang),
		Brand:         p.Brand,
		Category:      p.Category,
		Price:         p.Price,
		Size:          p.Size,
		Concentration: p.Concentration,
		TopNotes:      p.TopNotes,
		HeartNotes:    p.HeartNotes,
		BaseNotes:     p.BaseNotes,
		Images:        p.Images,
		IsBestseller:  p.IsBestseller,
		IsFeatured:    p.IsFeatured,
		InStock:       p.InStock,
		StockQuantity: p.StockQuantity,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
	}
}

func toProductViews(products []models.Product, lang enums.Language) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p, lang))
	}
	return views
}

func parseFilterOptions(r *http.Request, lang enums.Language) (catalogsvc.FilterOptions, error) {
	opts := catalogsvc.FilterOptions{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Brand:    strings.TrimSpace(r.URL.Query().Get("brand")),
		Language: lang,
	}

	var err error
	if opts.PriceMin, err = validators.ParseQueryDecimal(r, "price_min"); err != nil {
		return opts, err
	}
	if opts.PriceMax, err = validators.ParseQueryDecimal(r, "price_max"); err != nil {
		return opts, err
	}
	if raw := r.URL.Query().Get("concentration"); raw != "" {
		conc, err := enums.ParseConcentration(raw)
		if err != nil {
			return opts, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid concentration filter")
		}
		opts.Concentration = conc
	}
	if raw := r.URL.Query().Get("min_rating"); raw != "" {
		rating, err := decimal.NewFromString(raw)
		if err != nil {
			return opts, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid min_rating filter")
		}
		value, _ := rating.Float64()
		opts.MinRating = &value
	}
	if opts.Bestseller, err = validators.ParseQueryBool(r, "bestseller"); err != nil {
		return opts, err
	}
	if opts.NewArrivals, err = validators.ParseQueryBool(r, "new_arrivals"); err != nil {
		return opts, err
	}
	if raw := r.URL.Query().Get("sort"); raw != "" {
		sort, err := enums.ParseSortKey(raw)
		if err != nil {
			return opts, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort key")
		}
		opts.Sort = sort
	}
	return opts, nil
}

// CatalogList serves the filtered storefront grid. Responses carry a staleness
// warning when the catalog is being served from the snapshot mirror.
func CatalogList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := validators.RequestLanguage(r)

		opts, err := parseFilterOptions(r, lang)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, stale, err := svc.Filter(r.Context(), opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteRead(w, map[string]any{
			"products":  toProductViews(products, lang),
			"directive": i18n.DirectiveFor(lang),
		}, stale)
	}
}

// CatalogSearch matches the query against names, brands, and notes in both
// languages.
func CatalogSearch(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := validators.RequestLanguage(r)
		term := r.URL.Query().Get("q")

		products, stale, err := svc.Search(r.Context(), term)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteRead(w, map[string]any{
			"products":  toProductViews(products, lang),
			"directive": i18n.DirectiveFor(lang),
		}, stale)
	}
}

// CatalogProduct serves a single product page by slug, with its related
// fragrances.
func CatalogProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := validators.RequestLanguage(r)
		slug := chi.URLParam(r, "slug")

		product, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		related, err := svc.RelatedTo(r.Context(), product.ID, 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"product":   toProductView(*product, lang),
			"related":   toProductViews(related, lang),
			"directive": i18n.DirectiveFor(lang),
		})
	}
}
