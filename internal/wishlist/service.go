package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/internal/notifications"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/redis"
)

type repository interface {
	ListItems(ctx context.Context, ownerID string) ([]models.WishlistItem, error)
	InsertItem(ctx context.Context, item *models.WishlistItem) (bool, error)
	RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) error
	RemoveAll(ctx context.Context, ownerID string) error
	UpdateStockStatus(ctx context.Context, ownerID string, productID uuid.UUID, status enums.StockStatus) error
	GetShare(ctx context.Context, ownerID string) (*models.WishlistShare, error)
	GetShareByToken(ctx context.Context, token uuid.UUID) (*models.WishlistShare, error)
	SaveShare(ctx context.Context, share *models.WishlistShare) error
}

type wishlistKeyer interface {
	WishlistKey(ownerID string) string
}

// Service exposes the per-owner wishlist operations.
type Service interface {
	List(ctx context.Context, ownerID string) ([]models.WishlistItem, error)
	Add(ctx context.Context, ownerID string, product *models.Product) (bool, error)
	Remove(ctx context.Context, ownerID string, productID uuid.UUID) error
	Toggle(ctx context.Context, ownerID string, product *models.Product) (bool, error)
	Clear(ctx context.Context, ownerID string) (bool, error)
	RecomputeStockStatus(ctx context.Context, ownerID string, catalog []models.Product) error
	SetPrivacy(ctx context.Context, ownerID string, privacy enums.WishlistPrivacy) (*models.WishlistShare, error)
	ResolveShare(ctx context.Context, token uuid.UUID) ([]models.WishlistItem, error)
}

type service struct {
	repo              repository
	mirror            redis.Mirror
	keyer             wishlistKeyer
	notifier          notifications.Notifier
	confirmer         notifications.Confirmer
	lowStockThreshold int
	logg              *logger.Logger
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Repo              repository
	Mirror            redis.Mirror
	Keyer             wishlistKeyer
	Notifier          notifications.Notifier
	Confirmer         notifications.Confirmer
	LowStockThreshold int
	Logger            *logger.Logger
}

// NewService builds the wishlist service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if params.Mirror == nil {
		return nil, fmt.Errorf("redis mirror required")
	}
	if params.Keyer == nil {
		return nil, fmt.Errorf("wishlist keyer required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Confirmer == nil {
		return nil, fmt.Errorf("confirmer required")
	}
	if params.LowStockThreshold <= 0 {
		params.LowStockThreshold = 10
	}
	return &service{
		repo:              params.Repo,
		mirror:            params.Mirror,
		keyer:             params.Keyer,
		notifier:          params.Notifier,
		confirmer:         params.Confirmer,
		lowStockThreshold: params.LowStockThreshold,
		logg:              params.Logger,
	}, nil
}

// List returns the owner's wishlist in insertion order. On a database
// failure the Redis mirror serves the last written copy; only with neither
// does the call fail.
func (s *service) List(ctx context.Context, ownerID string) ([]models.WishlistItem, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, ownerID)
	if err != nil {
		if mirrored, ok := s.loadMirror(ctx, ownerID); ok {
			if s.logg != nil {
				s.logg.Warn(ctx, "wishlist list failed, serving mirrored copy")
			}
			return mirrored, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return items, nil
}

// Add stores a snapshot with the derived stock status. A product already
// present is rejected: false return plus a notification, not an error.
func (s *service) Add(ctx context.Context, ownerID string, product *models.Product) (bool, error) {
	if err := validateOwner(ownerID); err != nil {
		return false, err
	}
	if product == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}

	item := s.snapshot(ownerID, product)
	inserted, err := s.repo.InsertItem(ctx, item)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	if !inserted {
		s.notifier.Notify(ctx, notifications.SeverityInfo, "Already in your wishlist")
		return false, nil
	}

	s.refreshMirror(ctx, ownerID)
	return true, nil
}

// Remove deletes the pair; absent pairs are a no-op.
func (s *service) Remove(ctx context.Context, ownerID string, productID uuid.UUID) error {
	if err := validateOwner(ownerID); err != nil {
		return err
	}
	if err := s.repo.RemoveItem(ctx, ownerID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	s.refreshMirror(ctx, ownerID)
	return nil
}

// Toggle adds when absent and removes when present. Returns whether the
// product ended up in the wishlist.
func (s *service) Toggle(ctx context.Context, ownerID string, product *models.Product) (bool, error) {
	if err := validateOwner(ownerID); err != nil {
		return false, err
	}
	if product == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}

	item := s.snapshot(ownerID, product)
	inserted, err := s.repo.InsertItem(ctx, item)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle wishlist item")
	}
	if inserted {
		s.refreshMirror(ctx, ownerID)
		return true, nil
	}

	if err := s.repo.RemoveItem(ctx, ownerID, product.ID); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle wishlist item")
	}
	s.refreshMirror(ctx, ownerID)
	return false, nil
}

// Clear empties the wishlist only when the confirmer agrees.
func (s *service) Clear(ctx context.Context, ownerID string) (bool, error) {
	if err := validateOwner(ownerID); err != nil {
		return false, err
	}
	if !s.confirmer.Confirm(ctx, "Clear all items from your wishlist?") {
		return false, nil
	}
	if err := s.repo.RemoveAll(ctx, ownerID); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear wishlist")
	}
	s.refreshMirror(ctx, ownerID)
	return true, nil
}

// RecomputeStockStatus re-derives each item's status from current catalog
// data. Products missing from the catalog count as no longer purchasable.
func (s *service) RecomputeStockStatus(ctx context.Context, ownerID string, catalog []models.Product) error {
	if err := validateOwner(ownerID); err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*models.Product, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	items, err := s.repo.ListItems(ctx, ownerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}

	for _, item := range items {
		status := enums.StockStatusOutOfStock
		if product, ok := byID[item.ProductID]; ok {
			status = s.deriveStatus(product)
		}
		if status == item.StockStatus {
			continue
		}
		if err := s.repo.UpdateStockStatus(ctx, ownerID, item.ProductID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock status")
		}
	}

	s.refreshMirror(ctx, ownerID)
	return nil
}

// SetPrivacy updates the share privacy. Leaving the private state
// auto-provisions an opaque token when none exists yet.
func (s *service) SetPrivacy(ctx context.Context, ownerID string, privacy enums.WishlistPrivacy) (*models.WishlistShare, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	if !privacy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown privacy %q", privacy))
	}

	share, err := s.repo.GetShare(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist share")
	}
	if share == nil {
		share = &models.WishlistShare{
			OwnerID: ownerID,
			Token:   uuid.New(),
			Privacy: privacy,
		}
	} else {
		share.Privacy = privacy
	}

	if err := s.repo.SaveShare(ctx, share); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist share")
	}
	return share, nil
}

// ResolveShare returns the shared wishlist. Private shares and unknown
// tokens are indistinguishable to the caller.
func (s *service) ResolveShare(ctx context.Context, token uuid.UUID) ([]models.WishlistItem, error) {
	share, err := s.repo.GetShareByToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve wishlist share")
	}
	if share == nil || share.Privacy == enums.WishlistPrivacyPrivate {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wishlist not found")
	}

	items, err := s.repo.ListItems(ctx, share.OwnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shared wishlist")
	}
	return items, nil
}

func (s *service) snapshot(ownerID string, product *models.Product) *models.WishlistItem {
	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}
	return &models.WishlistItem{
		OwnerID:     ownerID,
		ProductID:   product.ID,
		Slug:        product.Slug,
		Name:        product.Name,
		Brand:       product.Brand,
		Price:       product.Price,
		Image:       image,
		TopNotes:    product.TopNotes,
		HeartNotes:  product.HeartNotes,
		BaseNotes:   product.BaseNotes,
		StockStatus: s.deriveStatus(product),
	}
}

func (s *service) deriveStatus(product *models.Product) enums.StockStatus {
	switch {
	case !product.InStock:
		return enums.StockStatusOutOfStock
	case product.StockQuantity < s.lowStockThreshold:
		return enums.StockStatusLowStock
	default:
		return enums.StockStatusInStock
	}
}

func (s *service) loadMirror(ctx context.Context, ownerID string) ([]models.WishlistItem, bool) {
	raw, err := s.mirror.Get(ctx, s.keyer.WishlistKey(ownerID))
	if err != nil {
		if !redis.IsMiss(err) && s.logg != nil {
			s.logg.Warn(ctx, "loading wishlist mirror failed")
		}
		return nil, false
	}
	var items []models.WishlistItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "wishlist mirror is corrupt, discarding")
		}
		return nil, false
	}
	return items, true
}

// refreshMirror rewrites the owner's durable copy after a mutation. Mirror
// trouble is logged, never bubbled: Postgres already holds the truth.
func (s *service) refreshMirror(ctx context.Context, ownerID string) {
	items, err := s.repo.ListItems(ctx, ownerID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "refreshing wishlist mirror: list failed")
		}
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "refreshing wishlist mirror: encode failed")
		}
		return
	}
	if err := s.mirror.Set(ctx, s.keyer.WishlistKey(ownerID), payload, 0); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "refreshing wishlist mirror: write failed")
	}
}

func validateOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "wishlist owner id is required")
	}
	return nil
}
