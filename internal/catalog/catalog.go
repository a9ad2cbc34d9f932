package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Weight      string          `json:"weight"`
	Price       decimal.Decimal `json:"price"`
	Tag         string          `json:"tag,omitempty"`
	Description string          `json:"description,omitempty"`
}

type Line struct {
	ProductID string
	Quantity  int
}

// Catalog is the server's price list. It is read-only after construction.
type Catalog struct {
	products map[string]Product
}

func New(products ...Product) *Catalog {
	c := &Catalog{products: make(map[string]Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *Catalog) Get(id string) (Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// List returns products ordered by id.
func (c *Catalog) List() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Total prices lines from the catalog, ignoring whatever the client claimed.
func (c *Catalog) Total(lines []Line) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range lines {
		p, ok := c.products[l.ProductID]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownProduct, l.ProductID)
		}
		if l.Quantity < 1 {
			return decimal.Zero, fmt.Errorf("%w: %q has %d", ErrInvalidQuantity, l.ProductID, l.Quantity)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total, nil
}
