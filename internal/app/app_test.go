package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"api_commerce/internal/config"
	"api_commerce/internal/customers"
	"api_commerce/internal/mediator"
	"api_commerce/internal/pagination"
	"api_commerce/internal/products"
	"api_commerce/internal/sales"
)

func testConfig(driver string) config.Config {
	return config.Config{
		StoreDriver:     driver,
		MaxPerPage:      100,
		DBMaxOpenConns:  1,
		ShutdownTimeout: time.Second,
	}
}

func TestNew_RegistersEveryRequest(t *testing.T) {
	a, err := New(context.Background(), testConfig(config.DriverMemory), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	m := a.Mediator
	checks := map[string]bool{
		"RegisterCustomer":    mediator.Registered[customers.RegisterCustomerCommand, customers.RegisterCustomerOutput](m),
		"EditCustomer":        mediator.Registered[customers.EditCustomerCommand, customers.CustomerView](m),
		"GetCustomerByTaxID":  mediator.Registered[customers.GetCustomerByTaxIDQuery, customers.CustomerView](m),
		"GetCustomers":        mediator.Registered[customers.GetCustomersQuery, pagination.Result[customers.CustomerView]](m),
		"RegisterProduct":     mediator.Registered[products.RegisterProductCommand, products.RegisterProductOutput](m),
		"EditProduct":         mediator.Registered[products.EditProductCommand, products.ProductView](m),
		"GetProductBySKU":     mediator.Registered[products.GetProductBySKUQuery, products.ProductView](m),
		"GetProducts":         mediator.Registered[products.GetProductsQuery, pagination.Result[products.ProductView]](m),
		"RegisterSale":        mediator.Registered[sales.RegisterSaleCommand, sales.RegisterSaleOutput](m),
		"GetSaleByID":         mediator.Registered[sales.GetSaleByIDQuery, sales.SaleView](m),
		"GetSales":            mediator.Registered[sales.GetSalesQuery, pagination.Result[sales.SaleView]](m),
		"GetAllSales":         mediator.Registered[sales.GetAllSalesQuery, []sales.SaleView](m),
		"GetSalesByCustomer":  mediator.Registered[sales.GetSalesByCustomerQuery, []sales.SaleView](m),
		"GenerateSalesReport": mediator.Registered[sales.GenerateSalesReportQuery, []sales.ReportRow](m),
	}
	for name, ok := range checks {
		assert.True(t, ok, name)
	}
}

func TestNew_SQLiteEndToEnd(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "commerce.db")
	ctx := context.Background()

	a, err := New(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = mediator.Send[customers.RegisterCustomerOutput](ctx, a.Mediator,
		customers.RegisterCustomerCommand{TaxID: "12345678901", Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = mediator.Send[products.RegisterProductOutput](ctx, a.Mediator,
		products.RegisterProductCommand{SKU: "P1", Name: "Pen", Price: decimal.RequireFromString("10.00"), Stock: ptr(5)})
	require.NoError(t, err)
	out, err := mediator.Send[sales.RegisterSaleOutput](ctx, a.Mediator,
		sales.RegisterSaleCommand{CustomerTaxID: "12345678901", Items: []sales.SaleItem{{SKU: "P1", Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, "20.00", out.TotalAmount.StringFixed(2))
	require.NoError(t, a.Ready(ctx))
	require.NoError(t, a.Close())
	assert.Error(t, a.Ready(ctx))

	// data survives a reopen of the same file
	a, err = New(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()
	view, err := mediator.Send[products.ProductView](ctx, a.Mediator, products.GetProductBySKUQuery{SKU: "P1"})
	require.NoError(t, err)
	assert.Equal(t, 3, view.Stock)
}

func TestReady_MemoryStore(t *testing.T) {
	a, err := New(context.Background(), testConfig(config.DriverMemory), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NoError(t, a.Ready(context.Background()))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), testConfig("mongo"), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func ptr(n int) *int { return &n }
