package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/pagination"
)

const customerColumns = "id, tax_id, name, email, phone, address, created_at, updated_at"

// CustomerStore implements domain.CustomerRepository.
type CustomerStore struct {
	s *Store
}

func (r *CustomerStore) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	row := r.s.queryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = ?", id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, apperror.NotFound("customer with id %d not found", id)
	}
	if err != nil {
		return domain.Customer{}, apperror.Wrap(apperror.KindInternal, err, "failed to get customer")
	}
	return c, nil
}

func (r *CustomerStore) GetByTaxID(ctx context.Context, taxID domain.TaxID) (domain.Customer, error) {
	row := r.s.queryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE tax_id = ?", taxID.String())
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, apperror.NotFound("customer with tax id %s not found", taxID)
	}
	if err != nil {
		return domain.Customer{}, apperror.Wrap(apperror.KindInternal, err, "failed to get customer")
	}
	return c, nil
}

func (r *CustomerStore) GetManyByTaxIDs(ctx context.Context, taxIDs []domain.TaxID) ([]domain.Customer, error) {
	if len(taxIDs) == 0 {
		return []domain.Customer{}, nil
	}
	args := make([]any, 0, len(taxIDs))
	for _, id := range taxIDs {
		args = append(args, id.String())
	}
	return r.list(ctx, "SELECT "+customerColumns+" FROM customers WHERE tax_id IN ("+placeholders(len(args))+") ORDER BY id", args...)
}

func (r *CustomerStore) Create(ctx context.Context, in domain.NewCustomer) (domain.Customer, error) {
	now := nowUTC()
	c := domain.Customer{
		TaxID:     in.TaxID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.s.queryRow(ctx, `
		INSERT INTO customers (tax_id, name, email, phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		c.TaxID.String(), c.Name, c.Email.String(), phoneArg(c.Phone), nullString(c.Address),
		r.s.dialect.timeArg(now), r.s.dialect.timeArg(now),
	).Scan(&c.ID)
	if r.s.dialect.isUniqueViolation(err) {
		return domain.Customer{}, apperror.Conflict("customer with tax id %s already exists", in.TaxID)
	}
	if err != nil {
		return domain.Customer{}, apperror.Wrap(apperror.KindInternal, err, "failed to create customer")
	}
	return c, nil
}

func (r *CustomerStore) Save(ctx context.Context, c domain.Customer) error {
	res, err := r.s.exec(ctx, `
		UPDATE customers SET name = ?, email = ?, phone = ?, address = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Email.String(), phoneArg(c.Phone), nullString(c.Address),
		r.s.dialect.timeArg(nowUTC()), c.ID,
	)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, err, "failed to save customer")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("customer with id %d not found", c.ID)
	}
	return nil
}

func (r *CustomerStore) GetPaginated(ctx context.Context, p pagination.Pagination) (pagination.Result[domain.Customer], error) {
	var total int
	if err := r.s.queryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&total); err != nil {
		return pagination.Result[domain.Customer]{}, apperror.Wrap(apperror.KindInternal, err, "failed to count customers")
	}
	items, err := r.list(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY id LIMIT ? OFFSET ?", p.PerPage, p.Offset())
	if err != nil {
		return pagination.Result[domain.Customer]{}, err
	}
	return pagination.NewResult(p, total, items), nil
}

func (r *CustomerStore) GetAll(ctx context.Context) ([]domain.Customer, error) {
	return r.list(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY id")
}

func (r *CustomerStore) list(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to list customers")
	}
	defer rows.Close()

	out := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, err, "failed to scan customer")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "failed to list customers")
	}
	return out, nil
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var (
		c              domain.Customer
		taxID, email   string
		phone, address sql.NullString
	)
	err := row.Scan(&c.ID, &taxID, &c.Name, &email, &phone, &address,
		timestamp{&c.CreatedAt}, timestamp{&c.UpdatedAt})
	if err != nil {
		return domain.Customer{}, err
	}

	if c.TaxID, err = domain.NewTaxID(taxID); err != nil {
		return domain.Customer{}, err
	}
	if c.Email, err = domain.NewEmail(email); err != nil {
		return domain.Customer{}, err
	}
	if phone.Valid {
		p, err := domain.NewPhone(phone.String)
		if err != nil {
			return domain.Customer{}, err
		}
		c.Phone = &p
	}
	c.Address = stringPtr(address)
	return c, nil
}

func phoneArg(p *domain.Phone) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.String(), Valid: true}
}
