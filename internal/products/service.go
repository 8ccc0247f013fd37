// Package products holds the product catalog use cases.
package products

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/mediator"
	"api_commerce/internal/pagination"
)

// Service provides product operations on a ProductRepository.
type Service struct {
	products   domain.ProductRepository
	logger     *zap.Logger
	maxPerPage int
}

// NewService creates a new Service.
func NewService(products domain.ProductRepository, logger *zap.Logger, maxPerPage int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{products: products, logger: logger, maxPerPage: maxPerPage}
}

// Register binds every product request type to s.
func Register(m *mediator.Mediator, s *Service) {
	mediator.MustRegister[RegisterProductCommand, RegisterProductOutput](m, mediator.HandlerFunc[RegisterProductCommand, RegisterProductOutput](s.RegisterProduct))
	mediator.MustRegister[EditProductCommand, ProductView](m, mediator.HandlerFunc[EditProductCommand, ProductView](s.EditProduct))
	mediator.MustRegister[GetProductBySKUQuery, ProductView](m, mediator.HandlerFunc[GetProductBySKUQuery, ProductView](s.GetProductBySKU))
	mediator.MustRegister[GetProductsQuery, pagination.Result[ProductView]](m, mediator.HandlerFunc[GetProductsQuery, pagination.Result[ProductView]](s.GetProducts))
}

// RegisterProduct validates cmd and creates the product. A taken SKU is a
// Conflict.
func (s *Service) RegisterProduct(ctx context.Context, cmd RegisterProductCommand) (RegisterProductOutput, error) {
	sku := strings.TrimSpace(cmd.SKU)
	if err := domain.ValidateSKU(sku); err != nil {
		return RegisterProductOutput{}, err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return RegisterProductOutput{}, apperror.Validation("name is required")
	}
	price, err := domain.PriceFromDecimal(cmd.Price)
	if err != nil {
		return RegisterProductOutput{}, err
	}
	stock := 0
	if cmd.Stock != nil {
		stock = *cmd.Stock
	}
	if stock < 0 {
		return RegisterProductOutput{}, apperror.Validation("stock must be greater than or equal to 0")
	}
	imageURL, err := parseURL(cmd.ImageURL)
	if err != nil {
		return RegisterProductOutput{}, err
	}

	if _, err := s.products.GetBySKU(ctx, sku); err == nil {
		return RegisterProductOutput{}, apperror.Conflict("product with sku %s already exists", sku)
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return RegisterProductOutput{}, err
	}

	p, err := s.products.Create(ctx, domain.NewProduct{
		SKU:         sku,
		Name:        name,
		PriceMinor:  price,
		Stock:       stock,
		Flags:       domain.NormalizeFlags(cmd.Flags),
		ImageURL:    imageURL,
		Description: cmd.Description,
	})
	if err != nil {
		return RegisterProductOutput{}, err
	}
	s.logger.Info("product registered", zap.Int64("product_id", p.ID), zap.String("sku", sku))
	return RegisterProductOutput{ProductID: p.ID}, nil
}

// EditProduct applies the set fields of cmd. An empty image URL clears it.
// Stock is swapped against the value read here, so a sale committed in
// between turns the edit into a Conflict instead of being undone.
func (s *Service) EditProduct(ctx context.Context, cmd EditProductCommand) (ProductView, error) {
	p, err := s.products.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return ProductView{}, err
	}
	readStock := p.Stock

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return ProductView{}, apperror.Validation("name must not be empty")
		}
		p.SetName(name)
	}
	if cmd.Description != nil {
		p.SetDescription(cmd.Description)
	}
	if cmd.Stock != nil {
		if err := p.SetStock(*cmd.Stock); err != nil {
			return ProductView{}, err
		}
	}
	if cmd.Price != nil {
		price, err := domain.PriceFromDecimal(*cmd.Price)
		if err != nil {
			return ProductView{}, err
		}
		p.SetPriceMinor(price)
	}
	if cmd.ImageURL != nil {
		u, err := parseURL(cmd.ImageURL)
		if err != nil {
			return ProductView{}, err
		}
		p.SetImageURL(u)
	}
	if cmd.Flags != nil {
		p.SetFlags(*cmd.Flags)
	}

	if cmd.Stock != nil {
		if _, err := s.products.SetStock(ctx, p.ID, readStock, p.Stock); err != nil {
			return ProductView{}, err
		}
	}
	if err := s.products.Save(ctx, p); err != nil {
		return ProductView{}, err
	}
	updated, err := s.products.GetByID(ctx, p.ID)
	if err != nil {
		return ProductView{}, err
	}
	s.logger.Info("product updated", zap.Int64("product_id", p.ID), zap.String("sku", p.SKU))
	return NewProductView(updated), nil
}

func (s *Service) GetProductBySKU(ctx context.Context, q GetProductBySKUQuery) (ProductView, error) {
	sku := strings.TrimSpace(q.SKU)
	if err := domain.ValidateSKU(sku); err != nil {
		return ProductView{}, err
	}
	p, err := s.products.GetBySKU(ctx, sku)
	if err != nil {
		return ProductView{}, err
	}
	return NewProductView(p), nil
}

func (s *Service) GetProducts(ctx context.Context, q GetProductsQuery) (pagination.Result[ProductView], error) {
	if err := q.Pagination.Validate(s.maxPerPage); err != nil {
		return pagination.Result[ProductView]{}, err
	}
	page, err := s.products.GetPaginated(ctx, q.Pagination)
	if err != nil {
		return pagination.Result[ProductView]{}, err
	}
	return pagination.Map(page, NewProductView), nil
}

// parseURL returns nil for nil or blank input.
func parseURL(raw *string) (*domain.URL, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	u, err := domain.NewURL(*raw)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
