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

// CustomerStorage implements domain.CustomerRepository.
type CustomerStorage struct {
	l *LocalStorage
}

func (s *CustomerStorage) GetByID(_ context.Context, id int64) (domain.Customer, error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	c, ok := s.l.customers[id]
	if !ok {
		return domain.Customer{}, apperror.NotFound("customer with id %d not found", id)
	}
	return c, nil
}

func (s *CustomerStorage) GetByTaxID(_ context.Context, taxID domain.TaxID) (domain.Customer, error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	if c, ok := s.findByTaxID(taxID.String()); ok {
		return c, nil
	}
	return domain.Customer{}, apperror.NotFound("customer with tax id %s not found", taxID)
}

func (s *CustomerStorage) GetManyByTaxIDs(_ context.Context, taxIDs []domain.TaxID) ([]domain.Customer, error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	want := make(map[string]struct{}, len(taxIDs))
	for _, id := range taxIDs {
		want[id.String()] = struct{}{}
	}
	out := make([]domain.Customer, 0, len(taxIDs))
	for _, c := range s.sorted() {
		if _, ok := want[c.TaxID.String()]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CustomerStorage) Create(ctx context.Context, in domain.NewCustomer) (domain.Customer, error) {
	unlock := s.l.lockWrite(ctx)
	defer unlock()
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	if _, ok := s.findByTaxID(in.TaxID.String()); ok {
		return domain.Customer{}, apperror.Conflict("customer with tax id %s already exists", in.TaxID)
	}
	now := s.l.now()
	s.l.nextCustomerID++
	c := domain.Customer{
		ID:        s.l.nextCustomerID,
		TaxID:     in.TaxID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.l.customers[c.ID] = c
	return c, nil
}

func (s *CustomerStorage) Save(ctx context.Context, c domain.Customer) error {
	unlock := s.l.lockWrite(ctx)
	defer unlock()
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	stored, ok := s.l.customers[c.ID]
	if !ok {
		return apperror.NotFound("customer with id %d not found", c.ID)
	}
	c.TaxID = stored.TaxID
	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = s.l.now()
	s.l.customers[c.ID] = c
	return nil
}

func (s *CustomerStorage) GetPaginated(_ context.Context, p pagination.Pagination) (pagination.Result[domain.Customer], error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	all := s.sorted()
	return pagination.NewResult(p, len(all), slices.Clone(pagination.Window(all, p))), nil
}

func (s *CustomerStorage) GetAll(_ context.Context) ([]domain.Customer, error) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	return s.sorted(), nil
}

// callers hold s.l.mu
func (s *CustomerStorage) findByTaxID(taxID string) (domain.Customer, bool) {
	for _, c := range s.l.customers {
		if c.TaxID.String() == taxID {
			return c, true
		}
	}
	return domain.Customer{}, false
}

func (s *CustomerStorage) sorted() []domain.Customer {
	return slices.SortedFunc(maps.Values(s.l.customers), func(a, b domain.Customer) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
