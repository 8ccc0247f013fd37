package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// SaleLine is a product snapshot and the quantity sold.
type SaleLine struct {
	Product  Product
	Quantity int
}

// Subtotal is price times quantity.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.Product.Price().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Sale is an immutable snapshot of a registered sale. It owns copies of its
// customer and products; the total is always derived from the lines.
type Sale struct {
	id          int64
	customer    Customer
	lines       []SaleLine
	generatedAt time.Time
}

// NewSale copies customer and lines into a new snapshot.
func NewSale(id int64, customer Customer, lines []SaleLine, generatedAt time.Time) Sale {
	owned := make([]SaleLine, len(lines))
	for i, l := range lines {
		owned[i] = SaleLine{Product: l.Product.Clone(), Quantity: l.Quantity}
	}
	return Sale{id: id, customer: customer, lines: owned, generatedAt: generatedAt}
}

func (s Sale) ID() int64              { return s.id }
func (s Sale) Customer() Customer     { return s.customer }
func (s Sale) GeneratedAt() time.Time { return s.generatedAt }

// Lines returns a copy of the line snapshots.
func (s Sale) Lines() []SaleLine {
	return slices.Clone(s.lines)
}

// TotalAmount is the sum of price * quantity over the lines.
func (s Sale) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Units is the total quantity across lines.
func (s Sale) Units() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}
