package sales

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"api_commerce/internal/apperror"
	"api_commerce/internal/domain"
	"api_commerce/internal/mediator"
	"api_commerce/internal/metrics"
	"api_commerce/internal/pagination"
	"api_commerce/internal/storage/memory"
	"api_commerce/internal/storage/sqlstore"
)

type fixture struct {
	svc      *Service
	metrics  *metrics.Metrics
	products domain.ProductRepository
	custs    domain.CustomerRepository
}

type backend struct {
	name string
	deps func(t *testing.T) Deps
}

var backends = []backend{
	{"memory", func(t *testing.T) Deps {
		l := memory.NewLocalStorage()
		return Deps{Customers: l.Customers(), Products: l.Products(), Sales: l.Sales(zaptest.NewLogger(t)), Tx: l}
	}},
	{"sqlite", func(t *testing.T) Deps {
		s, err := sqlstore.OpenSQLite(context.Background(), ":memory:", zaptest.NewLogger(t))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return Deps{Customers: s.Customers(), Products: s.Products(), Sales: s.Sales(), Tx: s}
	}},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, f fixture)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			d := b.deps(t)
			d.Logger = zaptest.NewLogger(t)
			d.Metrics = metrics.New(prometheus.NewRegistry())
			d.MaxPerPage = 100
			fn(t, fixture{svc: NewService(d), metrics: d.Metrics, products: d.Products, custs: d.Customers})
		})
	}
}

func (f fixture) customer(t *testing.T, taxID, name string) domain.Customer {
	t.Helper()
	id, err := domain.NewTaxID(taxID)
	require.NoError(t, err)
	email, err := domain.NewEmail(fmt.Sprintf("%s@example.com", name))
	require.NoError(t, err)
	c, err := f.custs.Create(context.Background(), domain.NewCustomer{TaxID: id, Name: name, Email: email})
	require.NoError(t, err)
	return c
}

func (f fixture) product(t *testing.T, sku string, priceMinor int64, stock int) domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), domain.NewProduct{SKU: sku, Name: "Product " + sku, PriceMinor: priceMinor, Stock: stock})
	require.NoError(t, err)
	return p
}

func (f fixture) stock(t *testing.T, sku string) int {
	t.Helper()
	p, err := f.products.GetBySKU(context.Background(), sku)
	require.NoError(t, err)
	return p.Stock
}

func (f fixture) saleCount(t *testing.T) int {
	t.Helper()
	all, err := f.svc.GetAllSales(context.Background(), GetAllSalesQuery{})
	require.NoError(t, err)
	return len(all)
}

func TestRegisterSale_DecrementsStockAndTotals(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		f.customer(t, "12345678901", "ana")
		f.product(t, "P1", 1000, 5)

		out, err := f.svc.RegisterSale(ctx, RegisterSaleCommand{
			CustomerTaxID: "12345678901",
			Items:         []SaleItem{{SKU: "P1", Quantity: 2}},
		})
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("20.00").Equal(out.TotalAmount), out.TotalAmount.String())
		assert.Equal(t, 3, f.stock(t, "P1"))

		view, err := f.svc.GetSaleByID(ctx, GetSaleByIDQuery{SaleID: out.SaleID})
		require.NoError(t, err)
		assert.Equal(t, "ana", view.Customer.Name)
		require.Len(t, view.Lines, 1)
		assert.Equal(t, 2, view.Lines[0].Quantity)
		assert.True(t, out.TotalAmount.Equal(view.TotalAmount))

		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SalesRegistered))
		assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.UnitsSold))
	})
}

func TestRegisterSale_TotalIsSumOfLines(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		f.customer(t, "12345678901", "ana")
		f.product(t, "A", 1999, 10)
		f.product(t, "B", 1, 10)
		f.product(t, "C", 250, 10)

		out, err := f.svc.RegisterSale(context.Background(), RegisterSaleCommand{
			CustomerTaxID: "12345678901",
			Items:         []SaleItem{{SKU: "A", Quantity: 3}, {SKU: "B", Quantity: 7}, {SKU: "C", Quantity: 1}},
		})
		require.NoError(t, err)
		// 3*19.99 + 7*0.01 + 2.50
		assert.Equal(t, "62.54", out.TotalAmount.StringFixed(2))
	})
}

func TestRegisterSale_AllProductsMustExist(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		f.customer(t, "12345678901", "ana")
		f.product(t, "P1", 1000, 5)

		_, err := f.svc.RegisterSale(context.Background(), RegisterSaleCommand{
			CustomerTaxID: "12345678901",
			Items:         []SaleItem{{SKU: "P1", Quantity: 1}, {SKU: "MISSING", Quantity: 1}},
		})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
		assert.Equal(t, "one or more products not found", apperror.MessageOf(err))
		assert.Equal(t, 5, f.stock(t, "P1"))
		assert.Zero(t, f.saleCount(t))
	})
}

func TestRegisterSale_InsufficientStockRollsBack(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		f.customer(t, "12345678901", "ana")
		f.product(t, "P1", 1000, 5)
		f.product(t, "P2", 500, 1)

		_, err := f.svc.RegisterSale(context.Background(), RegisterSaleCommand{
			CustomerTaxID: "12345678901",
			Items:         []SaleItem{{SKU: "P1", Quantity: 2}, {SKU: "P2", Quantity: 3}},
		})
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		assert.Equal(t, 5, f.stock(t, "P1"))
		assert.Equal(t, 1, f.stock(t, "P2"))
		assert.Zero(t, f.saleCount(t))
		assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.SalesRegistered))
	})
}

// repriceAfterLookup edits the product right after the batched lookup, as
// an edit committing before the sale's transaction would.
type repriceAfterLookup struct {
	domain.ProductRepository
	priceMinor int64
	name       string
}

func (r *repriceAfterLookup) GetManyBySKUs(ctx context.Context, skus []string) ([]domain.Product, error) {
	found, err := r.ProductRepository.GetManyBySKUs(ctx, skus)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		edited := p.Clone()
		edited.SetPriceMinor(r.priceMinor)
		edited.SetName(r.name)
		if err := r.ProductRepository.Save(ctx, edited); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func TestRegisterSale_SnapshotsProductInsideTx(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			d := b.deps(t)
			d.Logger = zaptest.NewLogger(t)
			d.MaxPerPage = 100
			f := fixture{products: d.Products, custs: d.Customers}
			f.customer(t, "12345678901", "ana")
			f.product(t, "P1", 1000, 5)

			d.Products = &repriceAfterLookup{ProductRepository: d.Products, priceMinor: 1250, name: "Repriced"}
			svc := NewService(d)

			out, err := svc.RegisterSale(ctx, RegisterSaleCommand{
				CustomerTaxID: "12345678901",
				Items:         []SaleItem{{SKU: "P1", Quantity: 2}},
			})
			require.NoError(t, err)
			assert.Equal(t, "25", out.TotalAmount.String())

			view, err := svc.GetSaleByID(ctx, GetSaleByIDQuery{SaleID: out.SaleID})
			require.NoError(t, err)
			require.Len(t, view.Lines, 1)
			assert.Equal(t, "Repriced", view.Lines[0].Product.Name)
			assert.Equal(t, "25", view.TotalAmount.String())
			assert.Equal(t, 3, f.stock(t, "P1"))
		})
	}
}

func TestRegisterSale_UnknownCustomer(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		f.product(t, "P1", 1000, 5)

		_, err := f.svc.RegisterSale(context.Background(), RegisterSaleCommand{
			CustomerTaxID: "99999999999",
			Items:         []SaleItem{{SKU: "P1", Quantity: 1}},
		})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
		assert.Equal(t, 5, f.stock(t, "P1"))
	})
}

func TestRegisterSale_Validation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		f.customer(t, "12345678901", "ana")
		f.product(t, "P1", 1000, 5)

		cases := map[string]RegisterSaleCommand{
			"bad tax id":     {CustomerTaxID: "1", Items: []SaleItem{{SKU: "P1", Quantity: 1}}},
			"no items":       {CustomerTaxID: "12345678901"},
			"zero quantity":  {CustomerTaxID: "12345678901", Items: []SaleItem{{SKU: "P1", Quantity: 0}}},
			"repeated sku":   {CustomerTaxID: "12345678901", Items: []SaleItem{{SKU: "P1", Quantity: 1}, {SKU: " P1", Quantity: 1}}},
			"blank sku":      {CustomerTaxID: "12345678901", Items: []SaleItem{{SKU: " ", Quantity: 1}}},
			"negative count": {CustomerTaxID: "12345678901", Items: []SaleItem{{SKU: "P1", Quantity: -2}}},
		}
		for name, cmd := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := f.svc.RegisterSale(context.Background(), cmd)
				assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			})
		}
		assert.Equal(t, 5, f.stock(t, "P1"))
	})
}

func TestRegisterSale_LastUnitRace(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		f.customer(t, "12345678901", "ana")
		f.customer(t, "10987654321", "bob")
		f.product(t, "P1", 1000, 1)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, taxID := range []string{"12345678901", "10987654321"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.svc.RegisterSale(context.Background(), RegisterSaleCommand{
					CustomerTaxID: taxID,
					Items:         []SaleItem{{SKU: "P1", Quantity: 1}},
				})
			}()
		}
		wg.Wait()

		var ok, conflicts int
		for _, err := range errs {
			switch apperror.KindOf(err) {
			case apperror.KindConflict:
				conflicts++
			default:
				require.NoError(t, err)
				ok++
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, 1, conflicts)
		assert.Equal(t, 0, f.stock(t, "P1"))
		assert.Equal(t, 1, f.saleCount(t))
	})
}

func TestGetSales_Pagination(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		f.customer(t, "12345678901", "ana")
		f.product(t, "P1", 100, 100)

		empty, err := f.svc.GetSales(ctx, GetSalesQuery{Pagination: pagination.Pagination{Page: 1, PerPage: 10}})
		require.NoError(t, err)
		assert.NotNil(t, empty.Items)
		assert.Zero(t, empty.TotalItems)

		var ids []int64
		for i := 0; i < 7; i++ {
			out, err := f.svc.RegisterSale(ctx, RegisterSaleCommand{
				CustomerTaxID: "12345678901",
				Items:         []SaleItem{{SKU: "P1", Quantity: 1}},
			})
			require.NoError(t, err)
			ids = append(ids, out.SaleID)
		}

		for _, perPage := range []int{1, 2, 3, 7, 10} {
			var seen []int64
			pages := (7 + perPage - 1) / perPage
			for page := 1; page <= pages+1; page++ {
				res, err := f.svc.GetSales(ctx, GetSalesQuery{Pagination: pagination.Pagination{Page: page, PerPage: perPage}})
				require.NoError(t, err)
				assert.Equal(t, 7, res.TotalItems)
				assert.Equal(t, pages, res.TotalPages())
				assert.Equal(t, len(res.Items), res.ItemsCount)
				if page > pages {
					assert.Empty(t, res.Items)
				}
				for _, s := range res.Items {
					seen = append(seen, s.ID)
				}
			}
			require.Len(t, seen, 7, "per_page=%d", perPage)
			// newest first
			assert.Equal(t, ids[6], seen[0])
			assert.Equal(t, ids[0], seen[6])
		}

		_, err = f.svc.GetSales(ctx, GetSalesQuery{Pagination: pagination.Pagination{Page: 0, PerPage: 10}})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestGetSalesByCustomer(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		f.customer(t, "12345678901", "ana")
		f.customer(t, "10987654321", "bob")
		f.product(t, "P1", 100, 10)

		none, err := f.svc.GetSalesByCustomer(ctx, GetSalesByCustomerQuery{TaxID: "10987654321"})
		require.NoError(t, err)
		assert.Empty(t, none)

		for _, taxID := range []string{"12345678901", "10987654321", "12345678901"} {
			_, err := f.svc.RegisterSale(ctx, RegisterSaleCommand{CustomerTaxID: taxID, Items: []SaleItem{{SKU: "P1", Quantity: 1}}})
			require.NoError(t, err)
		}

		anas, err := f.svc.GetSalesByCustomer(ctx, GetSalesByCustomerQuery{TaxID: "12345678901"})
		require.NoError(t, err)
		require.Len(t, anas, 2)
		for _, s := range anas {
			assert.Equal(t, "12345678901", s.Customer.TaxID)
		}

		_, err = f.svc.GetSalesByCustomer(ctx, GetSalesByCustomerQuery{TaxID: "55555555555"})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

		_, err = f.svc.GetSalesByCustomer(ctx, GetSalesByCustomerQuery{TaxID: "x"})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestGetSaleByID_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		_, err := f.svc.GetSaleByID(context.Background(), GetSaleByIDQuery{SaleID: 12})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})
}

func TestGenerateSalesReport(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		f.customer(t, "12345678901", "ana")
		f.product(t, "P1", 1000, 10)
		f.product(t, "P2", 250, 10)

		out, err := f.svc.RegisterSale(ctx, RegisterSaleCommand{
			CustomerTaxID: "12345678901",
			Items:         []SaleItem{{SKU: "P1", Quantity: 1}, {SKU: "P2", Quantity: 2}},
		})
		require.NoError(t, err)

		rows, err := f.svc.GenerateSalesReport(ctx, GenerateSalesReportQuery{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, out.SaleID, rows[0].SaleID)
		assert.Equal(t, "12345678901", rows[0].CustomerTaxID)
		assert.Equal(t, []ReportLine{{SKU: "P1", Quantity: 1}, {SKU: "P2", Quantity: 2}}, rows[0].Lines)
		assert.Equal(t, "15.00", rows[0].Total.StringFixed(2))
	})
}

func TestRegister(t *testing.T) {
	l := memory.NewLocalStorage()
	svc := NewService(Deps{Customers: l.Customers(), Products: l.Products(), Sales: l.Sales(nil), Tx: l})
	m := mediator.New(zaptest.NewLogger(t), nil)
	Register(m, svc)

	assert.True(t, mediator.Registered[RegisterSaleCommand, RegisterSaleOutput](m))
	assert.True(t, mediator.Registered[GetSaleByIDQuery, SaleView](m))
	assert.True(t, mediator.Registered[GetSalesQuery, pagination.Result[SaleView]](m))
	assert.True(t, mediator.Registered[GetAllSalesQuery, []SaleView](m))
	assert.True(t, mediator.Registered[GetSalesByCustomerQuery, []SaleView](m))
	assert.True(t, mediator.Registered[GenerateSalesReportQuery, []ReportRow](m))

	all, err := mediator.Send[[]SaleView](context.Background(), m, GetAllSalesQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
