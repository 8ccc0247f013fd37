package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/pagination"
)

// ProductStorage implements domain.ProductRepository.
type ProductStorage struct {
	l *LocalStorage
}

func (s *ProductStorage) GetByID(_ context.Context, id int64) (domain.Product, error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	p, ok := s.l.products[id]
	if !ok {
		return domain.Product{}, apperror.NotFound("product with id %d not found", id)
	}
	return p.Clone(), nil
}

func (s *ProductStorage) GetBySKU(_ context.Context, sku string) (domain.Product, error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	if p, ok := s.findBySKU(sku); ok {
		return p.Clone(), nil
	}
	return domain.Product{}, apperror.NotFound("product with sku %s not found", sku)
}

func (s *ProductStorage) GetManyBySKUs(_ context.Context, skus []string) ([]domain.Product, error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	want := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		want[sku] = struct{}{}
	}
	out := make([]domain.Product, 0, len(want))
	for _, p := range s.sorted() {
		if _, ok := want[p.SKU]; ok {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *ProductStorage) Create(ctx context.Context, in domain.NewProduct) (domain.Product, error) {
	unlock := s.l.lockWrite(ctx)
	defer unlock()
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	if _, ok := s.findBySKU(in.SKU); ok {
		return domain.Product{}, apperror.Conflict("product with sku %s already exists", in.SKU)
	}
	now := s.l.now()
	s.l.nextProductID++
	p := domain.Product{
		ID:          s.l.nextProductID,
		SKU:         in.SKU,
		Name:        in.Name,
		PriceMinor:  in.PriceMinor,
		Stock:       in.Stock,
		Flags:       domain.NormalizeFlags(in.Flags),
		ImageURL:    in.ImageURL,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.l.products[p.ID] = p.Clone()
	return p, nil
}

func (s *ProductStorage) Save(ctx context.Context, p domain.Product) error {
	unlock := s.l.lockWrite(ctx)
	defer unlock()
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	stored, ok := s.l.products[p.ID]
	if !ok {
		return apperror.NotFound("product with id %d not found", p.ID)
	}
	p = p.Clone()
	p.SKU = stored.SKU
	p.Stock = stored.Stock
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = s.l.now()
	s.l.products[p.ID] = p
	return nil
}

func (s *ProductStorage) GetPaginated(_ context.Context, p pagination.Pagination) (pagination.Result[domain.Product], error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	all := s.sorted()
	page := pagination.Window(all, p)
	items := make([]domain.Product, 0, len(page))
	for _, prod := range page {
		items = append(items, prod.Clone())
	}
	return pagination.NewResult(p, len(all), items), nil
}

func (s *ProductStorage) DecrementStock(ctx context.Context, sku string, quantity int) (domain.Product, error) {
	unlock := s.l.lockWrite(ctx)
	defer unlock()
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	p, ok := s.findBySKU(sku)
	if !ok {
		return domain.Product{}, apperror.NotFound("product with sku %s not found", sku)
	}
	if quantity < 1 {
		return domain.Product{}, apperror.Validation("quantity must be greater than 0")
	}
	if p.Stock < quantity {
		return domain.Product{}, apperror.Conflict("insufficient stock for product %s: %d available, %d requested", sku, p.Stock, quantity)
	}
	p.Stock -= quantity
	p.UpdatedAt = s.l.now()
	s.l.products[p.ID] = p
	return p.Clone(), nil
}

func (s *ProductStorage) SetStock(ctx context.Context, id int64, expected, stock int) (domain.Product, error) {
	if stock < 0 {
		return domain.Product{}, apperror.Validation("stock must be greater than or equal to 0")
	}
	unlock := s.l.lockWrite(ctx)
	defer unlock()
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	p, ok := s.l.products[id]
	if !ok {
		return domain.Product{}, apperror.NotFound("product with id %d not found", id)
	}
	if p.Stock != expected {
		return domain.Product{}, apperror.Conflict("stock of product %s changed from %d to %d, retry the edit", p.SKU, expected, p.Stock)
	}
	p.Stock = stock
	p.UpdatedAt = s.l.now()
	s.l.products[id] = p
	return p.Clone(), nil
}

// callers hold s.l.mu
func (s *ProductStorage) findBySKU(sku string) (domain.Product, bool) {
	for _, p := range s.l.products {
		if p.SKU == sku {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *ProductStorage) sorted() []domain.Product {
	return slices.SortedFunc(maps.Values(s.l.products), func(a, b domain.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
