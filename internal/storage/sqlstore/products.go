package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/pagination"
)

const productColumns = "id, sku, name, price_minor, stock, flags, image_url, description, created_at, updated_at"

// ProductStore implements domain.ProductRepository.
type ProductStore struct {
	s *Store
}

func (r *ProductStore) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	p, err := scanProduct(r.s.queryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NotFound("product with id %d not found", id)
	}
	if err != nil {
		return domain.Product{}, apperror.Wrap(apperror.KindInternal, err, "failed to get product")
	}
	return p, nil
}

func (r *ProductStore) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	p, err := scanProduct(r.s.queryRow(ctx, "SELECT "+productColumns+" FROM products WHERE sku = ?", sku))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NotFound("product with sku %s not found", sku)
	}
	if err != nil {
		return domain.Product{}, apperror.Wrap(apperror.KindInternal, err, "failed to get product")
	}
	return p, nil
}

func (r *ProductStore) GetManyBySKUs(ctx context.Context, skus []string) ([]domain.Product, error) {
	if len(skus) == 0 {
		return []domain.Product{}, nil
	}
	args := make([]any, 0, len(skus))
	for _, sku := range skus {
		args = append(args, sku)
	}
	return r.list(ctx, "SELECT "+productColumns+" FROM products WHERE sku IN ("+placeholders(len(args))+") ORDER BY id", args...)
}

func (r *ProductStore) Create(ctx context.Context, in domain.NewProduct) (domain.Product, error) {
	now := nowUTC()
	p := domain.Product{
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
	flags, err := encodeFlags(p.Flags)
	if err != nil {
		return domain.Product{}, apperror.Wrap(apperror.KindInternal, err, "failed to encode flags")
	}
	err = r.s.queryRow(ctx, `
		INSERT INTO products (sku, name, price_minor, stock, flags, image_url, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		p.SKU, p.Name, p.PriceMinor, p.Stock, flags, urlArg(p.ImageURL), nullString(p.Description),
		r.s.dialect.timeArg(now), r.s.dialect.timeArg(now),
	).Scan(&p.ID)
	if r.s.dialect.isUniqueViolation(err) {
		return domain.Product{}, apperror.Conflict("product with sku %s already exists", in.SKU)
	}
	if err != nil {
		return domain.Product{}, apperror.Wrap(apperror.KindInternal, err, "failed to create product")
	}
	return p, nil
}

func (r *ProductStore) Save(ctx context.Context, p domain.Product) error {
	flags, err := encodeFlags(domain.NormalizeFlags(p.Flags))
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, err, "failed to encode flags")
	}
	res, err := r.s.exec(ctx, `
		UPDATE products
		SET name = ?, price_minor = ?, flags = ?, image_url = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.PriceMinor, flags, urlArg(p.ImageURL), nullString(p.Description),
		r.s.dialect.timeArg(nowUTC()), p.ID,
	)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, err, "failed to save product")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("product with id %d not found", p.ID)
	}
	return nil
}

func (r *ProductStore) GetPaginated(ctx context.Context, p pagination.Pagination) (pagination.Result[domain.Product], error) {
	var total int
	if err := r.s.queryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&total); err != nil {
		return pagination.Result[domain.Product]{}, apperror.Wrap(apperror.KindInternal, err, "failed to count products")
	}
	items, err := r.list(ctx, "SELECT "+productColumns+" FROM products ORDER BY id LIMIT ? OFFSET ?", p.PerPage, p.Offset())
	if err != nil {
		return pagination.Result[domain.Product]{}, err
	}
	return pagination.NewResult(p, total, items), nil
}

// DecrementStock subtracts in a single conditional UPDATE so concurrent
// sales can never drive stock below zero.
func (r *ProductStore) DecrementStock(ctx context.Context, sku string, quantity int) (domain.Product, error) {
	if quantity < 1 {
		return domain.Product{}, apperror.Validation("quantity must be greater than 0")
	}
	p, err := scanProduct(r.s.queryRow(ctx, `
		UPDATE products SET stock = stock - ?, updated_at = ?
		WHERE sku = ? AND stock >= ?
		RETURNING `+productColumns,
		quantity, r.s.dialect.timeArg(nowUTC()), sku, quantity,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.Wrap(apperror.KindInternal, err, "failed to update stock")
	}

	current, err := r.GetBySKU(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{}, apperror.Conflict("insufficient stock for product %s: %d available, %d requested", sku, current.Stock, quantity)
}

// SetStock is a compare-and-swap on the stock column.
func (r *ProductStore) SetStock(ctx context.Context, id int64, expected, stock int) (domain.Product, error) {
	if stock < 0 {
		return domain.Product{}, apperror.Validation("stock must be greater than or equal to 0")
	}
	p, err := scanProduct(r.s.queryRow(ctx, `
		UPDATE products SET stock = ?, updated_at = ?
		WHERE id = ? AND stock = ?
		RETURNING `+productColumns,
		stock, r.s.dialect.timeArg(nowUTC()), id, expected,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.Wrap(apperror.KindInternal, err, "failed to update stock")
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{}, apperror.Conflict("stock of product %s changed from %d to %d, retry the edit", current.SKU, expected, current.Stock)
}

func (r *ProductStore) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to list products")
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, err, "failed to scan product")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to list products")
	}
	return out, nil
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p                     domain.Product
		imageURL, description sql.NullString
	)
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceMinor, &p.Stock, flagList{&p.Flags},
		&imageURL, &description, timestamp{&p.CreatedAt}, timestamp{&p.UpdatedAt})
	if err != nil {
		return domain.Product{}, err
	}
	if imageURL.Valid {
		u, err := domain.NewURL(imageURL.String)
		if err != nil {
			return domain.Product{}, err
		}
		p.ImageURL = &u
	}
	p.Description = stringPtr(description)
	return p, nil
}

func urlArg(u *domain.URL) sql.NullString {
	if u == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: u.String(), Valid: true}
}

// nowUTC is truncated to the precision PostgreSQL keeps.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
