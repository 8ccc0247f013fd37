package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"api_commerce/internal/apperror"
)

// Product is a sellable item. Prices are kept in minor currency units.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	PriceMinor  int64
	Stock       int
	Flags       []string
	ImageURL    *URL
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct carries the fields a repository needs to create a Product.
type NewProduct struct {
	SKU         string
	Name        string
	PriceMinor  int64
	Stock       int
	Flags       []string
	ImageURL    *URL
	Description *string
}

// Price returns the price as a decimal amount.
func (p Product) Price() decimal.Decimal {
	return PriceToDecimal(p.PriceMinor)
}

// Clone returns a copy that shares no mutable state with p.
func (p Product) Clone() Product {
	p.Flags = slices.Clone(p.Flags)
	if p.ImageURL != nil {
		u := *p.ImageURL
		p.ImageURL = &u
	}
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	return p
}

func (p *Product) SetName(name string) { p.Name = name }
func (p *Product) SetPriceMinor(price int64) { p.PriceMinor = price }
func (p *Product) SetFlags(flags []string) { p.Flags = NormalizeFlags(flags) }
func (p *Product) SetImageURL(u *URL) { p.ImageURL = u }
func (p *Product) SetDescription(d *string) { p.Description = d }

// SetStock rejects negative stock.
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return apperror.Validation("stock must be greater than or equal to 0")
	}
	p.Stock = stock
	return nil
}

var hundred = decimal.NewFromInt(100)

// PriceFromDecimal converts a decimal amount to minor units. Negative
// amounts and sub-cent precision are rejected.
func PriceFromDecimal(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, apperror.Validation("price must be greater than or equal to 0")
	}
	if !d.Equal(d.Round(2)) {
		return 0, apperror.Validation("price must have at most 2 decimal places")
	}
	minor := d.Mul(hundred)
	if !minor.IsInteger() || minor.GreaterThan(decimal.NewFromInt(1<<53)) {
		return 0, apperror.Validation("price is out of range")
	}
	return minor.IntPart(), nil
}

// PriceToDecimal converts minor units to a decimal amount.
func PriceToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
