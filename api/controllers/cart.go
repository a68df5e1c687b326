package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/api/middleware"
	"github.com/maisonnoor/boutique-backend/api/responses"
	"github.com/maisonnoor/boutique-backend/api/validators"
	cartsvc "github.com/maisonnoor/boutique-backend/internal/cart"
	catalogsvc "github.com/maisonnoor/boutique-backend/internal/catalog"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

func cartOwner(r *http.Request) (string, error) {
	ownerID := middleware.OwnerIDFromContext(r.Context())
	if ownerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart owner missing; sign in or send X-Guest-Id")
	}
	return ownerID, nil
}

func pathProductID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}

// CartFetch returns the owner's cart with computed totals.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, totals, err := svc.Get(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"cart":       cart,
			"totals":     totals,
			"item_count": cart.ItemCount(),
		})
	}
}

type cartAddRequest struct {
	Slug     string `json:"slug" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

// CartAdd resolves the product by slug and merges it into the cart. A zero
// quantity defaults to one.
func CartAdd(svc cartsvc.Service, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		product, err := catalog.GetBySlug(r.Context(), payload.Slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), ownerID, product, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"cart":       cart,
			"totals":     svc.ComputeTotals(cart),
			"item_count": cart.ItemCount(),
		})
	}
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartSetQuantity replaces a line quantity, clamped to the configured bounds.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetQuantity(r.Context(), ownerID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"cart":       cart,
			"totals":     svc.ComputeTotals(cart),
			"item_count": cart.ItemCount(),
		})
	}
}

// CartRemoveItem drops a single line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		cart, err := svc.RemoveItem(r.Context(), ownerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"cart":       cart,
			"totals":     svc.ComputeTotals(cart),
			"item_count": cart.ItemCount(),
		})
	}
}

// requireConfirm gates destructive bulk operations behind an explicit
// confirm=true query flag.
func requireConfirm(r *http.Request) error {
	confirmed, err := validators.ParseQueryBool(r, "confirm")
	if err != nil {
		return err
	}
	if !confirmed {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmation required: pass confirm=true")
	}
	return nil
}

// CartClear empties the cart. The response reports whether anything was
// removed so the client can decide on its toast.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
