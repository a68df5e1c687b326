package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/internal/notifications"
	"github.com/maisonnoor/boutique-backend/pkg/config"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/redis"
)

type cartKeyer interface {
	CartKey(ownerID string) string
}

// Service exposes the per-owner cart operations.
type Service interface {
	Get(ctx context.Context, ownerID string) (*Cart, Totals, error)
	AddItem(ctx context.Context, ownerID string, product *models.Product, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (*Cart, error)
	SetQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (*Cart, error)
	Clear(ctx context.Context, ownerID string) (bool, error)
	ComputeTotals(cart *Cart) Totals
}

type service struct {
	mu    sync.Mutex
	carts map[string]*Cart

	mirror    redis.Mirror
	keyer     cartKeyer
	confirmer notifications.Confirmer
	commerce  config.CommerceConfig
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Mirror    redis.Mirror
	Keyer     cartKeyer
	Confirmer notifications.Confirmer
	Commerce  config.CommerceConfig
	Logger    *logger.Logger
	Now       func() time.Time
}

// NewService builds the cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Mirror == nil {
		return nil, fmt.Errorf("redis mirror required")
	}
	if params.Keyer == nil {
		return nil, fmt.Errorf("cart keyer required")
	}
	if params.Confirmer == nil {
		return nil, fmt.Errorf("confirmer required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		carts:     map[string]*Cart{},
		mirror:    params.Mirror,
		keyer:     params.Keyer,
		confirmer: params.Confirmer,
		commerce:  params.Commerce,
		logg:      params.Logger,
		now:       params.Now,
	}, nil
}

// Get returns the cart with its derived totals.
func (s *service) Get(ctx context.Context, ownerID string) (*Cart, Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, Totals{}, err
	}
	return cart, s.ComputeTotals(cart), nil
}

// AddItem increments an existing line or snapshots a new one. It has no
// failure path for well-formed input.
func (s *service) AddItem(ctx context.Context, ownerID string, product *models.Product, quantity int) (*Cart, error) {
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if i := cart.lineIndex(product.ID); i >= 0 {
		// Unbounded here; SetQuantity clamps on explicit edits.
		cart.Lines[i].Quantity += quantity
	} else {
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		cart.Lines = append(cart.Lines, Line{
			ProductID: product.ID,
			Slug:      product.Slug,
			Name:      product.Name,
			Brand:     product.Brand,
			Size:      product.Size,
			Image:     image,
			Price:     product.Price,
			Quantity:  quantity,
			AddedAt:   s.now(),
		})
	}

	s.persist(ctx, cart)
	return cart, nil
}

// RemoveItem drops the matching line; absent lines are a no-op.
func (s *service) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	i := cart.lineIndex(productID)
	if i < 0 {
		return cart, nil
	}
	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)

	s.persist(ctx, cart)
	return cart, nil
}

// SetQuantity clamps the requested quantity to the configured bounds before
// assignment; absent lines are a silent no-op.
func (s *service) SetQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	i := cart.lineIndex(productID)
	if i < 0 {
		return cart, nil
	}

	cart.Lines[i].Quantity = s.clamp(quantity)
	s.persist(ctx, cart)
	return cart, nil
}

// Clear empties the cart only when the confirmer agrees. Declining leaves
// state untouched and reports false.
func (s *service) Clear(ctx context.Context, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, ownerID)
	if err != nil {
		return false, err
	}

	if !s.confirmer.Confirm(ctx, "Clear all items from your cart?") {
		return false, nil
	}

	cart.Lines = nil
	s.persist(ctx, cart)
	return true, nil
}

// ComputeTotals derives subtotal, shipping, tax, and total from the lines.
func (s *service) ComputeTotals(cart *Cart) Totals {
	subtotal := decimal.Zero
	for _, line := range cart.Lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := s.commerce.ShippingFlatRateDecimal()
	if subtotal.GreaterThan(s.commerce.FreeShippingThresholdDecimal()) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(s.commerce.TaxRateDecimal()).Round(2)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

func (s *service) clamp(quantity int) int {
	min := s.commerce.MinLineQuantity
	max := s.commerce.MaxLineQuantity
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	if quantity < min {
		return min
	}
	if quantity > max {
		return max
	}
	return quantity
}

// load returns the in-memory cart, rehydrating from the mirror on first
// access for this owner.
func (s *service) load(ctx context.Context, ownerID string) (*Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner id is required")
	}

	if cart, ok := s.carts[ownerID]; ok {
		return cart, nil
	}

	cart := &Cart{OwnerID: ownerID}
	raw, err := s.mirror.Get(ctx, s.keyer.CartKey(ownerID))
	switch {
	case err == nil:
		if unmarshalErr := json.Unmarshal([]byte(raw), cart); unmarshalErr != nil {
			if s.logg != nil {
				s.logg.Warn(ctx, "cart mirror is corrupt, starting empty")
			}
			cart = &Cart{OwnerID: ownerID}
		}
	case redis.IsMiss(err):
		// first visit
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	s.carts[ownerID] = cart
	return cart, nil
}

// persist mirrors the whole cart on every mutation. The mirror is the sole
// persistence path, so a failed write is logged loudly.
func (s *service) persist(ctx context.Context, cart *Cart) {
	payload, err := json.Marshal(cart)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "encoding cart failed", err)
		}
		return
	}
	if err := s.mirror.Set(ctx, s.keyer.CartKey(cart.OwnerID), payload, 0); err != nil && s.logg != nil {
		s.logg.Error(ctx, "persisting cart failed", err)
	}
}
