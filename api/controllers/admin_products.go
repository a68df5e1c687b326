package controllers

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/api/responses"
	"github.com/maisonnoor/boutique-backend/api/validators"
	catalogsvc "github.com/maisonnoor/boutique-backend/internal/catalog"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/pagination"
)

// AdminListProducts returns a cursor-paged slice of the catalog in its
// bilingual storage shape, newest first, forcing a fresh read so the console
// never edits against a stale grid.
func AdminListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		products, stale, err := svc.FetchAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, next := pageProducts(products, cursor, limit)

		responses.WriteRead(w, map[string]any{
			"products":    page,
			"count":       len(page),
			"next_cursor": next,
		}, stale)
	}
}

// pageProducts orders the catalog newest-first and cuts the page after the
// cursor position. Ties on created_at break on id so the walk is total.
func pageProducts(products []models.Product, cursor *pagination.Cursor, limit int) ([]models.Product, string) {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	start := 0
	if cursor != nil {
		for i, p := range sorted {
			if p.CreatedAt.Equal(cursor.CreatedAt) && p.ID == cursor.ID {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end >= len(sorted) {
		return sorted[start:], ""
	}
	page := sorted[start:end]
	last := page[len(page)-1]
	return page, pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
}

// AdminCreateProduct adds a product to the catalog.
func AdminCreateProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload catalogsvc.ProductInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct replaces a product's fields.
func AdminUpdateProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload catalogsvc.ProductInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product from the catalog.
func AdminDeleteProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type uploadURLRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// AdminProductUploadURL mints a signed PUT URL for a product image. The
// client uploads straight to the bucket; the object path comes back so it can
// be attached to the product.
func AdminProductUploadURL(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload uploadURLRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.ImageUploadURL(r.Context(), payload.Filename, payload.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"upload_url": url})
	}
}
