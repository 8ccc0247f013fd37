package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"api_commerce/internal/customers"
	"api_commerce/internal/domain"
	"api_commerce/internal/pagination"
	"api_commerce/internal/products"
)

// SaleItem is one requested product and quantity.
type SaleItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// RegisterSaleCommand sells Items to the customer identified by
// CustomerTaxID.
type RegisterSaleCommand struct {
	CustomerTaxID string     `json:"customer_tax_id"`
	Items         []SaleItem `json:"items"`
}

type RegisterSaleOutput struct {
	SaleID      int64           `json:"sale_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type GetSaleByIDQuery struct {
	SaleID int64
}

type GetSalesQuery struct {
	Pagination pagination.Pagination
}

type GetAllSalesQuery struct{}

type GetSalesByCustomerQuery struct {
	TaxID string
}

type GenerateSalesReportQuery struct{}

// SaleView is the read model of a sale.
type SaleView struct {
	ID          int64                  `json:"id"`
	Customer    customers.CustomerView `json:"customer"`
	Lines       []SaleLineView         `json:"products"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	GeneratedAt time.Time              `json:"generated_at"`
}

type SaleLineView struct {
	Product  products.ProductView `json:"product"`
	Quantity int                  `json:"quantity"`
	Subtotal decimal.Decimal      `json:"subtotal"`
}

func NewSaleView(s domain.Sale) SaleView {
	lines := s.Lines()
	v := SaleView{
		ID:          s.ID(),
		Customer:    customers.NewCustomerView(s.Customer()),
		Lines:       make([]SaleLineView, 0, len(lines)),
		TotalAmount: s.TotalAmount(),
		GeneratedAt: s.GeneratedAt(),
	}
	for _, l := range lines {
		v.Lines = append(v.Lines, SaleLineView{
			Product:  products.NewProductView(l.Product),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		})
	}
	return v
}

func newSaleViews(sales []domain.Sale) []SaleView {
	out := make([]SaleView, 0, len(sales))
	for _, s := range sales {
		out = append(out, NewSaleView(s))
	}
	return out
}

// ReportRow is one sale in the sales report.
type ReportRow struct {
	SaleID        int64
	GeneratedAt   time.Time
	CustomerTaxID string
	Lines         []ReportLine
	Total         decimal.Decimal
}

type ReportLine struct {
	SKU      string
	Quantity int
}
