package checkout

import (
	"rayalaseema/internal/catalog"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart keeps every line at quantity >= 1; anything lower removes the line.
type Cart struct {
	items []CartItem
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) Add(p catalog.Product, qty int) {
	if qty < 1 {
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity += qty
			return
		}
	}
	c.items = append(c.items, CartItem{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: qty})
}

func (c *Cart) SetQuantity(productID string, qty int) {
	if qty < 1 {
		c.Remove(productID)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = qty
			return
		}
	}
}

func (c *Cart) Remove(productID string) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Items() []CartItem {
	return append([]CartItem(nil), c.items...)
}

// Len is the number of distinct lines.
func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c *Cart) Clear() { c.items = nil }
