package products

import (
	"time"

	"github.com/shopspring/decimal"

	"api_commerce/internal/domain"
	"api_commerce/internal/pagination"
)

// RegisterProductCommand creates a product. Stock defaults to 0.
type RegisterProductCommand struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock,omitempty"`
	Flags       []string        `json:"flags"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Description *string         `json:"description,omitempty"`
}

type RegisterProductOutput struct {
	ProductID int64 `json:"product_id"`
}

// EditProductCommand updates the fields that are set. The SKU cannot be
// changed.
type EditProductCommand struct {
	ProductID   int64            `json:"-"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Flags       *[]string        `json:"flags,omitempty"`
}

type GetProductBySKUQuery struct {
	SKU string
}

type GetProductsQuery struct {
	Pagination pagination.Pagination
}

// ProductView is the read model returned to callers.
type ProductView struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Flags       []string        `json:"flags"`
	ImageURL    *string         `json:"image_url"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewProductView(p domain.Product) ProductView {
	p = p.Clone()
	v := ProductView{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Price:       p.Price(),
		Stock:       p.Stock,
		Flags:       p.Flags,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if v.Flags == nil {
		v.Flags = []string{}
	}
	if p.ImageURL != nil {
		u := p.ImageURL.String()
		v.ImageURL = &u
	}
	return v
}
