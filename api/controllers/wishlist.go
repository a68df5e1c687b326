package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/api/responses"
	"github.com/maisonnoor/boutique-backend/api/validators"
	catalogsvc "github.com/maisonnoor/boutique-backend/internal/catalog"
	wishlistsvc "github.com/maisonnoor/boutique-backend/internal/wishlist"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

// WishlistFetch lists the owner's saved fragrances, re-deriving each stock
// status against the current catalog first. A catalog outage falls back to
// the statuses stored at add time.
func WishlistFetch(svc wishlistsvc.Service, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if products, _, err := catalog.Products(r.Context()); err == nil {
			if err := svc.RecomputeStockStatus(r.Context(), ownerID, products); err != nil && logg != nil {
				logg.Warn(r.Context(), "wishlist stock recompute failed")
			}
		} else if logg != nil {
			logg.Warn(r.Context(), "catalog unavailable, serving stored stock statuses")
		}

		items, err := svc.List(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"items": items,
			"count": len(items),
		})
	}
}

type wishlistItemRequest struct {
	Slug string `json:"slug" validate:"required"`
}

// WishlistAdd saves a product; re-adding an existing item is a no-op.
func WishlistAdd(svc wishlistsvc.Service, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload wishlistItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalog.GetBySlug(r.Context(), payload.Slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		added, err := svc.Add(r.Context(), ownerID, product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"added": added})
	}
}

// WishlistToggle flips membership and reports the resulting state.
func WishlistToggle(svc wishlistsvc.Service, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload wishlistItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalog.GetBySlug(r.Context(), payload.Slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.Toggle(r.Context(), ownerID, product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"saved": saved})
	}
}

// WishlistRemove drops a saved product by id.
func WishlistRemove(svc wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), ownerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"removed": true})
	}
}

// WishlistClear empties the wishlist after the confirmer agrees.
func WishlistClear(svc wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := requireConfirm(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cleared, err := svc.Clear(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"cleared": cleared})
	}
}

type wishlistPrivacyRequest struct {
	Privacy string `json:"privacy" validate:"required"`
}

// WishlistSetPrivacy switches the list between private and shared. Moving to
// shared mints (or returns) the share token.
func WishlistSetPrivacy(svc wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload wishlistPrivacyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		privacy, err := enums.ParseWishlistPrivacy(payload.Privacy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid privacy value"))
			return
		}

		share, err := svc.SetPrivacy(r.Context(), ownerID, privacy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, share)
	}
}

// WishlistShared resolves a public share token to its item list. Private
// lists come back as not found; the token does not reveal the owner.
func WishlistShared(svc wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := uuid.Parse(chi.URLParam(r, "token"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid share token"))
			return
		}

		items, err := svc.ResolveShare(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"items": items,
			"count": len(items),
		})
	}
}
