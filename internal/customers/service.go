// Package customers holds the customer registration, edit and lookup use
// cases.
package customers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/mediator"
	"api_commerce/internal/pagination"
)

// Service provides customer operations on a CustomerRepository.
type Service struct {
	customers  domain.CustomerRepository
	logger     *zap.Logger
	maxPerPage int
}

// NewService creates a new Service.
func NewService(customers domain.CustomerRepository, logger *zap.Logger, maxPerPage int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{customers: customers, logger: logger, maxPerPage: maxPerPage}
}

// Register binds every customer request type to s.
func Register(m *mediator.Mediator, s *Service) {
	mediator.MustRegister[RegisterCustomerCommand, RegisterCustomerOutput](m, mediator.HandlerFunc[RegisterCustomerCommand, RegisterCustomerOutput](s.RegisterCustomer))
	mediator.MustRegister[EditCustomerCommand, CustomerView](m, mediator.HandlerFunc[EditCustomerCommand, CustomerView](s.EditCustomer))
	mediator.MustRegister[GetCustomerByTaxIDQuery, CustomerView](m, mediator.HandlerFunc[GetCustomerByTaxIDQuery, CustomerView](s.GetCustomerByTaxID))
	mediator.MustRegister[GetCustomersQuery, pagination.Result[CustomerView]](m, mediator.HandlerFunc[GetCustomersQuery, pagination.Result[CustomerView]](s.GetCustomers))
}

// RegisterCustomer validates cmd and creates the customer. A taken tax id
// is a Conflict.
func (s *Service) RegisterCustomer(ctx context.Context, cmd RegisterCustomerCommand) (RegisterCustomerOutput, error) {
	taxID, err := domain.NewTaxID(cmd.TaxID)
	if err != nil {
		return RegisterCustomerOutput{}, err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return RegisterCustomerOutput{}, apperror.Validation("name is required")
	}
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return RegisterCustomerOutput{}, err
	}
	var phone *domain.Phone
	if cmd.Phone != nil {
		p, err := domain.NewPhone(*cmd.Phone)
		if err != nil {
			return RegisterCustomerOutput{}, err
		}
		phone = &p
	}

	if _, err := s.customers.GetByTaxID(ctx, taxID); err == nil {
		return RegisterCustomerOutput{}, apperror.Conflict("customer with tax id %s already exists", taxID)
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return RegisterCustomerOutput{}, err
	}

	c, err := s.customers.Create(ctx, domain.NewCustomer{
		TaxID:   taxID,
		Name:    name,
		Email:   email,
		Phone:   phone,
		Address: trimmed(cmd.Address),
	})
	if err != nil {
		return RegisterCustomerOutput{}, err
	}
	s.logger.Info("customer registered", zap.Int64("customer_id", c.ID), zap.String("tax_id", taxID.String()))
	return RegisterCustomerOutput{CustomerID: c.ID}, nil
}

// EditCustomer applies the set fields of cmd. An empty phone or address
// clears it.
func (s *Service) EditCustomer(ctx context.Context, cmd EditCustomerCommand) (CustomerView, error) {
	c, err := s.customers.GetByID(ctx, cmd.CustomerID)
	if err != nil {
		return CustomerView{}, err
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return CustomerView{}, apperror.Validation("name must not be empty")
		}
		c.SetName(name)
	}
	if cmd.Email != nil {
		email, err := domain.NewEmail(*cmd.Email)
		if err != nil {
			return CustomerView{}, err
		}
		c.SetEmail(email)
	}
	if cmd.Phone != nil {
		if strings.TrimSpace(*cmd.Phone) == "" {
			c.SetPhone(nil)
		} else {
			p, err := domain.NewPhone(*cmd.Phone)
			if err != nil {
				return CustomerView{}, err
			}
			c.SetPhone(&p)
		}
	}
	if cmd.Address != nil {
		c.SetAddress(trimmed(cmd.Address))
	}

	if err := s.customers.Save(ctx, c); err != nil {
		return CustomerView{}, err
	}
	updated, err := s.customers.GetByID(ctx, c.ID)
	if err != nil {
		return CustomerView{}, err
	}
	s.logger.Info("customer updated", zap.Int64("customer_id", c.ID))
	return NewCustomerView(updated), nil
}

func (s *Service) GetCustomerByTaxID(ctx context.Context, q GetCustomerByTaxIDQuery) (CustomerView, error) {
	taxID, err := domain.NewTaxID(q.TaxID)
	if err != nil {
		return CustomerView{}, err
	}
	c, err := s.customers.GetByTaxID(ctx, taxID)
	if err != nil {
		return CustomerView{}, err
	}
	return NewCustomerView(c), nil
}

func (s *Service) GetCustomers(ctx context.Context, q GetCustomersQuery) (pagination.Result[CustomerView], error) {
	if err := q.Pagination.Validate(s.maxPerPage); err != nil {
		return pagination.Result[CustomerView]{}, err
	}
	page, err := s.customers.GetPaginated(ctx, q.Pagination)
	if err != nil {
		return pagination.Result[CustomerView]{}, err
	}
	return pagination.Map(page, NewCustomerView), nil
}

// trimmed returns nil for nil or blank input.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
