package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart status values. Carts start active and can only move to closed.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

var hundred = decimal.NewFromInt(100)

// Cart is the aggregate root. It owns its items by value; an item only
// carries the cart id as a foreign key, never a live back-pointer.
type Cart struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"userId"`
	Status      string          `json:"status"`
	DiscountPct decimal.Decimal `json:"discountPct"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"createdAt"`
	Items       []Item          `json:"items,omitempty"`
}

type Item struct {
	ID          string          `json:"id"`
	CartID      string          `json:"cartId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewCart returns a fully initialized active cart. The store persists
// what it is given; nothing is defaulted at save time.
func NewCart(userID int64, discountPct int64) *Cart {
	return &Cart{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      StatusActive,
		DiscountPct: decimal.NewFromInt(discountPct),
		Total:       decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}
}

// AddItem merges the quantity into an existing line for the same product
// or appends a new line, then recalculates the cart total.
func (c *Cart) AddItem(productID int64, name string, unitPrice decimal.Decimal, quantity int) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.Items[i].refreshSubtotal()
			c.Recalculate()
			return &c.Items[i]
		}
	}
	item := Item{
		ID:          uuid.NewString(),
		CartID:      c.ID,
		ProductID:   productID,
		ProductName: name,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		CreatedAt:   time.Now().UTC(),
	}
	item.refreshSubtotal()
	c.Items = append(c.Items, item)
	c.Recalculate()
	return &c.Items[len(c.Items)-1]
}

// Item returns the line with the given id, or nil.
func (c *Cart) Item(itemID string) *Item {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// SetItemQuantity replaces a line's quantity, refreshes its subtotal and
// recalculates the cart total.
func (c *Cart) SetItemQuantity(itemID string, quantity int) error {
	item := c.Item(itemID)
	if item == nil {
		return ErrNotFound
	}
	item.Quantity = quantity
	item.refreshSubtotal()
	c.Recalculate()
	return nil
}

// RemoveItem detaches the line and recalculates the cart total.
func (c *Cart) RemoveItem(itemID string) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recalculate()
			return nil
		}
	}
	return ErrNotFound
}

// Clear drops every line and zeroes the total. The cart shell remains.
func (c *Cart) Clear() {
	c.Items = nil
	c.Total = decimal.Zero
}

// Close finalizes the cart. Closed carts are kept as history.
func (c *Cart) Close() {
	c.Status = StatusClosed
}

// Subtotal sums the line subtotals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range c.Items {
		sum = sum.Add(c.Items[i].Subtotal)
	}
	return sum
}

// DiscountAmount is subtotal * discount / 100, rounded half-up to two
// decimal places.
func (c *Cart) DiscountAmount() decimal.Decimal {
	return c.Subtotal().Mul(c.DiscountPct).Div(hundred).Round(2)
}

// Recalculate rewrites the persisted total from the current lines.
func (c *Cart) Recalculate() {
	c.Total = c.Subtotal().Sub(c.DiscountAmount())
}

func (it *Item) refreshSubtotal() {
	it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
