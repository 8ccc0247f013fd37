package sqlstore

import (
	"context"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/pagination"
	"api_commerce/internal/salejoin"
)

const (
	headerColumns = "id, customer_tax_id, generated_at"
	lineColumns   = "sale_id, sku, quantity, unit_price_minor, product_name"
)

// SaleStore implements domain.SaleRepository. It reads header and line rows
// and leaves the customer and product join to salejoin.
type SaleStore struct {
	s         *Store
	assembler *salejoin.Assembler
}

func newSaleStore(s *Store) *SaleStore {
	return &SaleStore{
		s:         s,
		assembler: salejoin.NewAssembler(s.Customers(), s.Products(), s.logger),
	}
}

func (r *SaleStore) GetByID(ctx context.Context, id int64) (domain.Sale, error) {
	headers, err := r.headers(ctx, "SELECT "+headerColumns+" FROM sales WHERE id = ?", id)
	if err != nil {
		return domain.Sale{}, err
	}
	if len(headers) == 0 {
		return domain.Sale{}, apperror.NotFound("sale with id %d not found", id)
	}
	lines, err := r.lines(ctx, "SELECT "+lineColumns+" FROM sale_product WHERE sale_id = ? ORDER BY id", id)
	if err != nil {
		return domain.Sale{}, err
	}

	sales, err := r.assembler.Assemble(ctx, headers, lines)
	if err != nil {
		return domain.Sale{}, err
	}
	if len(sales) == 0 {
		return domain.Sale{}, apperror.NotFound("sale with id %d not found", id)
	}
	return sales[0], nil
}

// Create inserts the header and its lines. Without a transaction in ctx
// it opens one of its own.
func (r *SaleStore) Create(ctx context.Context, customer domain.Customer, lines []domain.SaleLine) (domain.Sale, error) {
	if len(lines) == 0 {
		return domain.Sale{}, apperror.Validation("sale must have at least one line")
	}

	var sale domain.Sale
	err := r.s.WithinTx(ctx, func(ctx context.Context) error {
		now := nowUTC()
		var id int64
		err := r.s.queryRow(ctx,
			"INSERT INTO sales (customer_tax_id, generated_at) VALUES (?, ?) RETURNING id",
			customer.TaxID.String(), r.s.dialect.timeArg(now),
		).Scan(&id)
		if err != nil {
			return apperror.Wrap(apperror.KindInternal, err, "failed to create sale")
		}

		for _, row := range salejoin.LinesFor(id, lines) {
			_, err := r.s.exec(ctx, `
				INSERT INTO sale_product (sale_id, sku, quantity, unit_price_minor, product_name)
				VALUES (?, ?, ?, ?, ?)`,
				row.SaleID, row.SKU, row.Quantity, row.UnitPriceMinor, row.ProductName,
			)
			if r.s.dialect.isUniqueViolation(err) {
				return apperror.Validation("product %s appears more than once in the sale", row.SKU)
			}
			if err != nil {
				return apperror.Wrap(apperror.KindInternal, err, "failed to create sale line")
			}
		}

		sale = domain.NewSale(id, customer, lines, now)
		return nil
	})
	if err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

func (r *SaleStore) GetPaginated(ctx context.Context, p pagination.Pagination) (pagination.Result[domain.Sale], error) {
	var total int
	if err := r.s.queryRow(ctx, "SELECT COUNT(*) FROM sales").Scan(&total); err != nil {
		return pagination.Result[domain.Sale]{}, apperror.Wrap(apperror.KindInternal, err, "failed to count sales")
	}
	headers, err := r.headers(ctx,
		"SELECT "+headerColumns+" FROM sales ORDER BY generated_at DESC, id DESC LIMIT ? OFFSET ?",
		p.PerPage, p.Offset())
	if err != nil {
		return pagination.Result[domain.Sale]{}, err
	}
	if len(headers) == 0 {
		return pagination.Empty[domain.Sale](p, total), nil
	}

	ids := salejoin.SaleIDs(headers)
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	lines, err := r.lines(ctx,
		"SELECT "+lineColumns+" FROM sale_product WHERE sale_id IN ("+placeholders(len(args))+") ORDER BY id",
		args...)
	if err != nil {
		return pagination.Result[domain.Sale]{}, err
	}

	sales, err := r.assembler.Assemble(ctx, headers, lines)
	if err != nil {
		return pagination.Result[domain.Sale]{}, err
	}
	return pagination.NewResult(p, total, sales), nil
}

func (r *SaleStore) GetAll(ctx context.Context) ([]domain.Sale, error) {
	headers, err := r.headers(ctx, "SELECT "+headerColumns+" FROM sales ORDER BY generated_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	lines, err := r.lines(ctx, "SELECT "+lineColumns+" FROM sale_product ORDER BY id")
	if err != nil {
		return nil, err
	}
	return r.assembler.Assemble(ctx, headers, lines)
}

func (r *SaleStore) GetAllByCustomerTaxID(ctx context.Context, taxID domain.TaxID) ([]domain.Sale, error) {
	headers, err := r.headers(ctx,
		"SELECT "+headerColumns+" FROM sales WHERE customer_tax_id = ? ORDER BY generated_at DESC, id DESC",
		taxID.String())
	if err != nil {
		return nil, err
	}
	lines, err := r.lines(ctx, `
		SELECT sp.sale_id, sp.sku, sp.quantity, sp.unit_price_minor, sp.product_name
		FROM sale_product sp
		JOIN sales s ON s.id = sp.sale_id
		WHERE s.customer_tax_id = ?
		ORDER BY sp.id`,
		taxID.String())
	if err != nil {
		return nil, err
	}
	return r.assembler.Assemble(ctx, headers, lines)
}

func (r *SaleStore) headers(ctx context.Context, query string, args ...any) ([]salejoin.Header, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to list sales")
	}
	defer rows.Close()

	out := []salejoin.Header{}
	for rows.Next() {
		var h salejoin.Header
		if err := rows.Scan(&h.ID, &h.CustomerTaxID, timestamp{&h.GeneratedAt}); err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, err, "failed to scan sale")
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to list sales")
	}
	return out, nil
}

func (r *SaleStore) lines(ctx context.Context, query string, args ...any) ([]salejoin.Line, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to list sale lines")
	}
	defer rows.Close()

	out := []salejoin.Line{}
	for rows.Next() {
		var l salejoin.Line
		if err := rows.Scan(&l.SaleID, &l.SKU, &l.Quantity, &l.UnitPriceMinor, &l.ProductName); err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, err, "failed to scan sale line")
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to list sale lines")
	}
	return out, nil
}
