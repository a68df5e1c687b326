package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

// Line is a product snapshot held in a cart. The snapshot is taken at add
// time so later catalog edits do not silently reprice an open cart.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Slug      string          `json:"slug"`
	Name      i18n.Text       `json:"name"`
	Brand     string          `json:"brand"`
	Size      string          `json:"size"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// Cart is one owner's aggregate. OwnerID is a customer user id or an
// anonymous session id.
type Cart struct {
	OwnerID string `json:"owner_id"`
	Lines   []Line `json:"lines"`
}

// ItemCount sums the line quantities.
func (c *Cart) ItemCount() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) lineIndex(productID uuid.UUID) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// Totals are derived on every read, never stored.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
