// Package sales holds the register-sale workflow and the sale read queries.
package sales

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/mediator"
	"api_commerce/internal/metrics"
	"api_commerce/internal/pagination"
)

// Service provides high-level sales operations over the customer, product
// and sale repositories.
type Service struct {
	customers  domain.CustomerRepository
	products   domain.ProductRepository
	sales      domain.SaleRepository
	tx         domain.Transactor
	metrics    *metrics.Metrics
	logger     *zap.Logger
	maxPerPage int
}

// Deps groups the collaborators of a Service.
type Deps struct {
	Customers  domain.CustomerRepository
	Products   domain.ProductRepository
	Sales      domain.SaleRepository
	Tx         domain.Transactor
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	MaxPerPage int
}

// NewService creates a new Service.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		customers:  d.Customers,
		products:   d.Products,
		sales:      d.Sales,
		tx:         d.Tx,
		metrics:    d.Metrics,
		logger:     d.Logger,
		maxPerPage: d.MaxPerPage,
	}
}

// Register binds every sale request type to s.
func Register(m *mediator.Mediator, s *Service) {
	mediator.MustRegister[RegisterSaleCommand, RegisterSaleOutput](m, mediator.HandlerFunc[RegisterSaleCommand, RegisterSaleOutput](s.RegisterSale))
	mediator.MustRegister[GetSaleByIDQuery, SaleView](m, mediator.HandlerFunc[GetSaleByIDQuery, SaleView](s.GetSaleByID))
	mediator.MustRegister[GetSalesQuery, pagination.Result[SaleView]](m, mediator.HandlerFunc[GetSalesQuery, pagination.Result[SaleView]](s.GetSales))
	mediator.MustRegister[GetAllSalesQuery, []SaleView](m, mediator.HandlerFunc[GetAllSalesQuery, []SaleView](s.GetAllSales))
	mediator.MustRegister[GetSalesByCustomerQuery, []SaleView](m, mediator.HandlerFunc[GetSalesByCustomerQuery, []SaleView](s.GetSalesByCustomer))
	mediator.MustRegister[GenerateSalesReportQuery, []ReportRow](m, mediator.HandlerFunc[GenerateSalesReportQuery, []ReportRow](s.GenerateSalesReport))
}

// RegisterSale validates cmd, checks that the customer and every product
// exist, then decrements stock and stores the sale in one transaction.
// Nothing is written unless every step succeeds.
func (s *Service) RegisterSale(ctx context.Context, cmd RegisterSaleCommand) (RegisterSaleOutput, error) {
	taxID, err := domain.NewTaxID(cmd.CustomerTaxID)
	if err != nil {
		return RegisterSaleOutput{}, err
	}
	items, err := normalizeItems(cmd.Items)
	if err != nil {
		return RegisterSaleOutput{}, err
	}

	customer, err := s.customers.GetByTaxID(ctx, taxID)
	if err != nil {
		return RegisterSaleOutput{}, err
	}

	skus := make([]string, 0, len(items))
	for _, item := range items {
		skus = append(skus, item.SKU)
	}
	found, err := s.products.GetManyBySKUs(ctx, skus)
	if err != nil {
		return RegisterSaleOutput{}, err
	}
	if len(found) != len(skus) {
		return RegisterSaleOutput{}, apperror.NotFound("one or more products not found")
	}
	bySKU := make(map[string]domain.Product, len(found))
	for _, p := range found {
		bySKU[p.SKU] = p
	}

	var sale domain.Sale
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		lines := make([]domain.SaleLine, 0, len(items))
		for _, item := range items {
			if _, ok := bySKU[item.SKU]; !ok {
				return apperror.NotFound("product with sku %s not found", item.SKU)
			}
			updated, err := s.products.DecrementStock(ctx, item.SKU, item.Quantity)
			if err != nil {
				return err
			}
			// The snapshot is the row as the decrement saw it, before the
			// units were taken.
			snapshot := updated.Clone()
			snapshot.Stock += item.Quantity
			lines = append(lines, domain.SaleLine{Product: snapshot, Quantity: item.Quantity})
		}

		var err error
		sale, err = s.sales.Create(ctx, customer, lines)
		return err
	})
	if err != nil {
		s.logger.Warn("sale rejected",
			zap.String("tax_id", taxID.String()),
			zap.String("kind", apperror.KindOf(err).String()),
			zap.Error(err))
		return RegisterSaleOutput{}, err
	}

	s.metrics.ObserveSale(sale.Units())
	s.logger.Info("sale registered",
		zap.Int64("sale_id", sale.ID()),
		zap.String("tax_id", taxID.String()),
		zap.String("total_amount", sale.TotalAmount().StringFixed(2)))

	return RegisterSaleOutput{SaleID: sale.ID(), TotalAmount: sale.TotalAmount()}, nil
}

// normalizeItems trims SKUs and rejects empty, non-positive or repeated
// items.
func normalizeItems(items []SaleItem) ([]SaleItem, error) {
	if len(items) == 0 {
		return nil, apperror.Validation("sale must have at least one product")
	}
	out := make([]SaleItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		sku := strings.TrimSpace(item.SKU)
		if err := domain.ValidateSKU(sku); err != nil {
			return nil, err
		}
		if item.Quantity < 1 {
			return nil, apperror.Validation("quantity for product %s must be greater than 0", sku)
		}
		if _, ok := seen[sku]; ok {
			return nil, apperror.Validation("product %s appears more than once in the sale", sku)
		}
		seen[sku] = struct{}{}
		out = append(out, SaleItem{SKU: sku, Quantity: item.Quantity})
	}
	return out, nil
}

func (s *Service) GetSaleByID(ctx context.Context, q GetSaleByIDQuery) (SaleView, error) {
	sale, err := s.sales.GetByID(ctx, q.SaleID)
	if err != nil {
		return SaleView{}, err
	}
	return NewSaleView(sale), nil
}

// GetSales returns one page of sales, newest first.
func (s *Service) GetSales(ctx context.Context, q GetSalesQuery) (pagination.Result[SaleView], error) {
	if err := q.Pagination.Validate(s.maxPerPage); err != nil {
		return pagination.Result[SaleView]{}, err
	}
	page, err := s.sales.GetPaginated(ctx, q.Pagination)
	if err != nil {
		return pagination.Result[SaleView]{}, err
	}
	return pagination.Map(page, NewSaleView), nil
}

func (s *Service) GetAllSales(ctx context.Context, _ GetAllSalesQuery) ([]SaleView, error) {
	all, err := s.sales.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return newSaleViews(all), nil
}

// GetSalesByCustomer returns the sales of an existing customer, newest
// first.
func (s *Service) GetSalesByCustomer(ctx context.Context, q GetSalesByCustomerQuery) ([]SaleView, error) {
	taxID, err := domain.NewTaxID(q.TaxID)
	if err != nil {
		return nil, err
	}
	if _, err := s.customers.GetByTaxID(ctx, taxID); err != nil {
		return nil, err
	}
	sales, err := s.sales.GetAllByCustomerTaxID(ctx, taxID)
	if err != nil {
		return nil, err
	}
	return newSaleViews(sales), nil
}

// GenerateSalesReport returns one row per sale with its SKU quantities and
// total.
func (s *Service) GenerateSalesReport(ctx context.Context, _ GenerateSalesReportQuery) ([]ReportRow, error) {
	all, err := s.sales.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]ReportRow, 0, len(all))
	for _, sale := range all {
		lines := sale.Lines()
		row := ReportRow{
			SaleID:        sale.ID(),
			GeneratedAt:   sale.GeneratedAt(),
			CustomerTaxID: sale.Customer().TaxID.String(),
			Lines:         make([]ReportLine, 0, len(lines)),
			Total:         sale.TotalAmount(),
		}
		for _, l := range lines {
			row.Lines = append(row.Lines, ReportLine{SKU: l.Product.SKU, Quantity: l.Quantity})
		}
		rows = append(rows, row)
	}
	s.logger.Debug("sales report generated", zap.Int("rows", len(rows)))
	return rows, nil
}
