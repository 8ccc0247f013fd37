package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api_commerce/internal/apperror"
)

func TestNewTaxID(t *testing.T) {
	id, err := NewTaxID(" 12345678901 ")
	require.NoError(t, err)
	assert.Equal(t, "12345678901", id.String())

	for _, bad := range []string{"", "1234", "12 345 678", "1234567890123456789012345678901234", "abc$1234"} {
		_, err := NewTaxID(bad)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), bad)
	}
	_, err = NewTaxID("AB-12345")
	assert.NoError(t, err)
}

func TestNewEmail(t *testing.T) {
	e, err := NewEmail("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", e.String())

	for _, bad := range []string{"", "ana", "Ana <ana@example.com>", "ana@"} {
		_, err := NewEmail(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewPhone(t *testing.T) {
	_, err := NewPhone("3001234567")
	assert.NoError(t, err)
	_, err = NewPhone("300123456")
	assert.Error(t, err)
	_, err = NewPhone("300123456a")
	assert.Error(t, err)
}

func TestNewURL(t *testing.T) {
	_, err := NewURL("https://cdn.example.com/p1.png")
	assert.NoError(t, err)
	for _, bad := range []string{"ftp://x.com/a", "cdn.example.com/a", "http://", "::"} {
		_, err := NewURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateSKU(t *testing.T) {
	assert.NoError(t, ValidateSKU("P1"))
	assert.Error(t, ValidateSKU(""))
	assert.Error(t, ValidateSKU("P 1"))
}

func TestNormalizeFlags(t *testing.T) {
	assert.Equal(t, []string{"new", "sale"}, NormalizeFlags([]string{" new", "", "sale", "new "}))
	assert.Equal(t, []string{}, NormalizeFlags(nil))
}

func TestPriceConversion(t *testing.T) {
	minor, err := PriceFromDecimal(decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), minor)

	minor, err = PriceFromDecimal(decimal.RequireFromString("19.9"))
	require.NoError(t, err)
	assert.Equal(t, int64(1990), minor)

	_, err = PriceFromDecimal(decimal.RequireFromString("0.001"))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	_, err = PriceFromDecimal(decimal.RequireFromString("-1"))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	assert.True(t, PriceToDecimal(1990).Equal(decimal.RequireFromString("19.90")))
}

func TestProductSetStock(t *testing.T) {
	p := Product{Stock: 5}
	assert.Error(t, p.SetStock(-1))
	assert.Equal(t, 5, p.Stock)
	assert.NoError(t, p.SetStock(0))
	assert.Equal(t, 0, p.Stock)
}

func TestSaleTotalIsDerived(t *testing.T) {
	taxID, _ := NewTaxID("12345678901")
	p1 := Product{SKU: "P1", PriceMinor: 1000, Flags: []string{"a"}}
	p2 := Product{SKU: "P2", PriceMinor: 250}

	sale := NewSale(1, Customer{TaxID: taxID, Name: "Ana"}, []SaleLine{
		{Product: p1, Quantity: 2},
		{Product: p2, Quantity: 3},
	}, time.Now())

	assert.True(t, sale.TotalAmount().Equal(decimal.RequireFromString("27.50")))
	assert.Equal(t, 5, sale.Units())

	// the sale owns its snapshot
	p1.PriceMinor = 99999
	p1.Flags[0] = "changed"
	lines := sale.Lines()
	lines[0].Quantity = 100
	assert.True(t, sale.TotalAmount().Equal(decimal.RequireFromString("27.50")))
	assert.Equal(t, "a", sale.Lines()[0].Product.Flags[0])
}

func TestEmptySaleTotal(t *testing.T) {
	sale := NewSale(1, Customer{}, nil, time.Now())
	assert.True(t, sale.TotalAmount().IsZero())
}
