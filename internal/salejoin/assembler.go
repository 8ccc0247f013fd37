// Package salejoin rebuilds Sale snapshots from independently stored
// headers, line rows, customers and products.
//
// Storage adapters only fetch header and line rows; the Assembler resolves
// every distinct customer and product with one batched repository call each
// and joins them in memory. Rows that reference a missing customer or
// product are dropped and logged instead of failing the whole read.
package salejoin

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
)

// Header is a stored sale header row.
type Header struct {
	ID            int64
	CustomerTaxID string
	GeneratedAt   time.Time
}

// Line is a stored sale/product junction row. UnitPriceMinor and
// ProductName are recorded at sale time.
type Line struct {
	SaleID         int64
	SKU            string
	Quantity       int
	UnitPriceMinor int64
	ProductName    string
}

// LinesFor converts the lines of a new sale into junction rows.
func LinesFor(saleID int64, lines []domain.SaleLine) []Line {
	rows := make([]Line, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, Line{
			SaleID:         saleID,
			SKU:            l.Product.SKU,
			Quantity:       l.Quantity,
			UnitPriceMinor: l.Product.PriceMinor,
			ProductName:    l.Product.Name,
		})
	}
	return rows
}

// Assembler joins headers and lines against the customer and product stores.
type Assembler struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	logger    *zap.Logger
}

func NewAssembler(customers domain.CustomerRepository, products domain.ProductRepository, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{customers: customers, products: products, logger: logger}
}

// Assemble returns one Sale per header whose customer resolves, in header
// order. Lines whose product does not resolve are omitted from their sale.
func (a *Assembler) Assemble(ctx context.Context, headers []Header, lines []Line) ([]domain.Sale, error) {
	if len(headers) == 0 {
		return []domain.Sale{}, nil
	}

	taxIDs := a.distinctTaxIDs(headers)
	skus := distinctSKUs(lines)

	var (
		customers []domain.Customer
		products  []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = a.customers.GetManyByTaxIDs(gctx, taxIDs)
		return err
	})
	g.Go(func() error {
		if len(skus) == 0 {
			return nil
		}
		var err error
		products, err = a.products.GetManyBySKUs(gctx, skus)
		return err
	})
	if err := g.Wait(); err != nil {
		if apperror.KindOf(err) != apperror.KindInternal {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to load sale references")
	}

	customerByTaxID := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		customerByTaxID[c.TaxID.String()] = c
	}
	productBySKU := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productBySKU[p.SKU] = p
	}
	linesBySale := make(map[int64][]Line, len(headers))
	for _, l := range lines {
		linesBySale[l.SaleID] = append(linesBySale[l.SaleID], l)
	}

	sales := make([]domain.Sale, 0, len(headers))
	for _, h := range headers {
		customer, ok := customerByTaxID[h.CustomerTaxID]
		if !ok {
			a.logger.Error("customer not found for sale",
				zap.Int64("sale_id", h.ID), zap.String("tax_id", h.CustomerTaxID))
			continue
		}

		saleLines := make([]domain.SaleLine, 0, len(linesBySale[h.ID]))
		for _, l := range linesBySale[h.ID] {
			product, ok := productBySKU[l.SKU]
			if !ok {
				a.logger.Error("product not found for sale",
					zap.Int64("sale_id", h.ID), zap.String("sku", l.SKU))
				continue
			}
			snapshot := product.Clone()
			snapshot.PriceMinor = l.UnitPriceMinor
			if l.ProductName != "" {
				snapshot.Name = l.ProductName
			}
			saleLines = append(saleLines, domain.SaleLine{Product: snapshot, Quantity: l.Quantity})
		}

		sales = append(sales, domain.NewSale(h.ID, customer, saleLines, h.GeneratedAt))
	}
	return sales, nil
}

// distinctTaxIDs drops headers whose stored tax id no longer validates; the
// join then skips them as unresolved.
func (a *Assembler) distinctTaxIDs(headers []Header) []domain.TaxID {
	seen := make(map[string]struct{}, len(headers))
	ids := make([]domain.TaxID, 0, len(headers))
	for _, h := range headers {
		if _, ok := seen[h.CustomerTaxID]; ok {
			continue
		}
		seen[h.CustomerTaxID] = struct{}{}
		id, err := domain.NewTaxID(h.CustomerTaxID)
		if err != nil {
			a.logger.Error("invalid tax id stored for sale",
				zap.Int64("sale_id", h.ID), zap.String("tax_id", h.CustomerTaxID), zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func distinctSKUs(lines []Line) []string {
	seen := make(map[string]struct{}, len(lines))
	skus := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.SKU]; ok {
			continue
		}
		seen[l.SKU] = struct{}{}
		skus = append(skus, l.SKU)
	}
	return skus
}

// SaleIDs returns the ids of headers, for line lookups.
func SaleIDs(headers []Header) []int64 {
	ids := make([]int64, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ID)
	}
	return ids
}
