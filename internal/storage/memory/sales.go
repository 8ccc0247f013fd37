package memory

import (
	"cmp"
	"context"
	"slices"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/pagination"
	"api_commerce/internal/salejoin"
)

// SaleStorage implements domain.SaleRepository.
type SaleStorage struct {
	l         *LocalStorage
	assembler *salejoin.Assembler
}

func (s *SaleStorage) GetByID(ctx context.Context, id int64) (domain.Sale, error) {
	headers, lines := s.rows(func(h salejoin.Header) bool { return h.ID == id })
	if len(headers) == 0 {
		return domain.Sale{}, apperror.NotFound("sale with id %d not found", id)
	}
	sales, err := s.assembler.Assemble(ctx, headers, lines)
	if err != nil {
		return domain.Sale{}, err
	}
	if len(sales) == 0 {
		return domain.Sale{}, apperror.NotFound("sale with id %d not found", id)
	}
	return sales[0], nil
}

func (s *SaleStorage) Create(ctx context.Context, customer domain.Customer, lines []domain.SaleLine) (domain.Sale, error) {
	if len(lines) == 0 {
		return domain.Sale{}, apperror.Validation("sale must have at least one line")
	}
	unlock := s.l.lockWrite(ctx)
	defer unlock()
	s.l.mu.Lock()
	defer s.l.mu.Unlock()

	s.l.nextSaleID++
	h := salejoin.Header{
		ID:            s.l.nextSaleID,
		CustomerTaxID: customer.TaxID.String(),
		GeneratedAt:   s.l.now(),
	}
	s.l.headers = append(s.l.headers, h)
	s.l.lines = append(s.l.lines, salejoin.LinesFor(h.ID, lines)...)

	return domain.NewSale(h.ID, customer, lines, h.GeneratedAt), nil
}

func (s *SaleStorage) GetPaginated(ctx context.Context, p pagination.Pagination) (pagination.Result[domain.Sale], error) {
	all, _ := s.rows(func(salejoin.Header) bool { return true })
	page := pagination.Window(all, p)
	if len(page) == 0 {
		return pagination.Empty[domain.Sale](p, len(all)), nil
	}
	_, lines := s.rows(idIn(page))
	sales, err := s.assembler.Assemble(ctx, page, lines)
	if err != nil {
		return pagination.Result[domain.Sale]{}, err
	}
	return pagination.NewResult(p, len(all), sales), nil
}

func (s *SaleStorage) GetAll(ctx context.Context) ([]domain.Sale, error) {
	headers, lines := s.rows(func(salejoin.Header) bool { return true })
	return s.assembler.Assemble(ctx, headers, lines)
}

func (s *SaleStorage) GetAllByCustomerTaxID(ctx context.Context, taxID domain.TaxID) ([]domain.Sale, error) {
	headers, lines := s.rows(func(h salejoin.Header) bool { return h.CustomerTaxID == taxID.String() })
	return s.assembler.Assemble(ctx, headers, lines)
}

// rows returns the headers matching keep, newest first, and their lines.
func (s *SaleStorage) rows(keep func(salejoin.Header) bool) ([]salejoin.Header, []salejoin.Line) {
	s.l.mu.RLock()
	defer s.l.mu.RUnlock()

	headers := make([]salejoin.Header, 0)
	ids := make(map[int64]struct{})
	for _, h := range s.l.headers {
		if keep(h) {
			headers = append(headers, h)
			ids[h.ID] = struct{}{}
		}
	}
	slices.SortFunc(headers, func(a, b salejoin.Header) int {
		if c := b.GeneratedAt.Compare(a.GeneratedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	lines := make([]salejoin.Line, 0)
	for _, l := range s.l.lines {
		if _, ok := ids[l.SaleID]; ok {
			lines = append(lines, l)
		}
	}
	return headers, lines
}

func idIn(headers []salejoin.Header) func(salejoin.Header) bool {
	ids := make(map[int64]struct{}, len(headers))
	for _, h := range headers {
		ids[h.ID] = struct{}{}
	}
	return func(h salejoin.Header) bool {
		_, ok := ids[h.ID]
		return ok
	}
}
