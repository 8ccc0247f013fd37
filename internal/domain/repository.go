package domain

import (
	"context"

	"api_commerce/internal/pagination"
)

// CustomerRepository persists customers. Lookups of absent rows return an
// apperror of kind NotFound; Create returns Conflict on a duplicate tax id.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (Customer, error)
	GetByTaxID(ctx context.Context, taxID TaxID) (Customer, error)
	// GetManyByTaxIDs returns the customers found; absent ids are omitted.
	GetManyByTaxIDs(ctx context.Context, taxIDs []TaxID) ([]Customer, error)
	Create(ctx context.Context, c NewCustomer) (Customer, error)
	Save(ctx context.Context, c Customer) error
	GetPaginated(ctx context.Context, p pagination.Pagination) (pagination.Result[Customer], error)
	GetAll(ctx context.Context) ([]Customer, error)
}

// ProductRepository persists products. Create returns Conflict on a
// duplicate SKU.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (Product, error)
	GetBySKU(ctx context.Context, sku string) (Product, error)
	// GetManyBySKUs returns the products found; absent SKUs are omitted.
	GetManyBySKUs(ctx context.Context, skus []string) ([]Product, error)
	Create(ctx context.Context, p NewProduct) (Product, error)
	// Save writes every editable attribute except stock, which only moves
	// through DecrementStock and SetStock.
	Save(ctx context.Context, p Product) error
	GetPaginated(ctx context.Context, p pagination.Pagination) (pagination.Result[Product], error)
	// SetStock replaces the stock of product id with stock only while it
	// still holds expected. A changed stock is a Conflict.
	SetStock(ctx context.Context, id int64, expected, stock int) (Product, error)
	// DecrementStock atomically subtracts quantity when at least quantity
	// units are in stock, returning the updated product. Insufficient stock
	// is a Conflict and leaves the product untouched.
	DecrementStock(ctx context.Context, sku string, quantity int) (Product, error)
}

// SaleRepository persists sales as a header plus one line row per product.
type SaleRepository interface {
	GetByID(ctx context.Context, id int64) (Sale, error)
	Create(ctx context.Context, customer Customer, lines []SaleLine) (Sale, error)
	GetPaginated(ctx context.Context, p pagination.Pagination) (pagination.Result[Sale], error)
	GetAll(ctx context.Context) ([]Sale, error)
	GetAllByCustomerTaxID(ctx context.Context, taxID TaxID) ([]Sale, error)
}

// Transactor runs fn so that every repository write it performs through ctx
// commits or rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
