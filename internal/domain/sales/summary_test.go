package sales

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRates = map[valueobject.CurrencyCode]decimal.Decimal{
	valueobject.RUB: decimal.NewFromInt(1),
	valueobject.USD: decimal.NewFromInt(95),
}

func toRUB(amount decimal.Decimal, code valueobject.CurrencyCode) (decimal.Decimal, error) {
	rate, ok := testRates[code]
	if !ok {
		return decimal.Zero, errors.New("unknown currency")
	}
	return amount.Mul(rate), nil
}

func saleInvoice(t *testing.T, companyID uuid.UUID, date time.Time, currency valueobject.CurrencyCode, lines ...InvoiceLine) Invoice {
	inv, err := NewInvoice(uuid.New(), "INV-"+uuid.NewString()[:8], InvoiceTypeSale, SaleTypeStock, currency, date, companyID)
	require.NoError(t, err)
	for _, l := range lines {
		_, err := inv.AddLine(l.ProductID, l.ProductName, l.Quantity, l.UnitPrice)
		require.NoError(t, err)
	}
	return *inv
}

func line(name string, qty, price int64) InvoiceLine {
	return InvoiceLine{ProductName: name, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price)}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		previous int64
		want     Trend
	}{
		{"growth 15%", 115, 100, TrendGrowth},
		{"decline 15%", 85, 100, TrendDecline},
		{"stable 5%", 105, 100, TrendStable},
		{"stable -5%", 95, 100, TrendStable},
		{"exactly +10% is stable", 110, 100, TrendStable},
		{"exactly -10% is stable", 90, 100, TrendStable},
		{"no previous", 500, 0, TrendStable},
		{"both zero", 0, 0, TrendStable},
		{"drop to zero", 0, 100, TrendDecline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(decimal.NewFromInt(tt.current), decimal.NewFromInt(tt.previous)))
		})
	}
}

func TestWindows(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)
	current, previous, err := Windows(now, 6)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), current.To)
	assert.Equal(t, current.To.Add(-181*24*time.Hour), current.From)
	assert.Equal(t, current.From, previous.To)
	assert.Equal(t, current.To.Sub(current.From)-24*time.Hour, previous.To.Sub(previous.From))

	assert.True(t, current.Contains(now))
	assert.True(t, current.Contains(current.From))
	assert.False(t, current.Contains(current.To))
	assert.False(t, previous.Contains(current.From))

	for _, months := range []int{0, -1, 37} {
		_, _, err := Windows(now, months)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, months)
	}
}

func TestSummarize(t *testing.T) {
	companyID := uuid.New()
	d1 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

	current := []Invoice{
		saleInvoice(t, companyID, d1, valueobject.RUB, line("Switch", 2, 500), line("Cable", 10, 10)),
		saleInvoice(t, companyID, d2, valueobject.USD, line("Switch", 1, 10)),
	}
	purchase, err := NewInvoice(uuid.New(), "PUR-1", InvoiceTypePurchase, SaleTypeStock, valueobject.RUB, d2, companyID)
	require.NoError(t, err)
	_, err = purchase.AddLine(nil, "Rack", decimal.NewFromInt(1), decimal.NewFromInt(99999))
	require.NoError(t, err)
	current = append(current, *purchase)

	previous := []Invoice{
		saleInvoice(t, companyID, d1.AddDate(0, -7, 0), valueobject.RUB, line("Switch", 1, 1000)),
	}

	s, err := Summarize(companyID, 6, valueobject.RUB, current, previous, toRUB)
	require.NoError(t, err)

	assert.Equal(t, 2, s.TotalInvoices)
	// 1000 + 100 + 950
	assert.True(t, s.TotalAmount.Equal(decimal.NewFromInt(2050)), s.TotalAmount.String())
	assert.True(t, s.AvgOrderValue.Equal(decimal.NewFromInt(1025)))
	require.NotNil(t, s.LastPurchaseDate)
	assert.Equal(t, d2, *s.LastPurchaseDate)
	assert.Equal(t, TrendGrowth, s.RevenueTrend)
	assert.Equal(t, TrendGrowth, s.OrdersTrend)
	assert.Equal(t, valueobject.RUB, s.Currency)

	require.Len(t, s.TopProducts, 2)
	assert.Equal(t, "Switch", s.TopProducts[0].ProductName)
	assert.True(t, s.TopProducts[0].TotalAmount.Equal(decimal.NewFromInt(1950)))
	assert.True(t, s.TopProducts[0].Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 2, s.TopProducts[0].OrdersCount)
	assert.Equal(t, "Cable", s.TopProducts[1].ProductName)
}

func TestSummarize_Empty(t *testing.T) {
	s, err := Summarize(uuid.New(), 3, valueobject.RUB, nil, nil, toRUB)
	require.NoError(t, err)
	assert.Zero(t, s.TotalInvoices)
	assert.True(t, s.AvgOrderValue.IsZero())
	assert.Nil(t, s.LastPurchaseDate)
	assert.Empty(t, s.TopProducts)
	assert.Equal(t, TrendStable, s.RevenueTrend)
	assert.Equal(t, TrendStable, s.OrdersTrend)
}

func TestSummarize_TopProductsRanking(t *testing.T) {
	companyID := uuid.New()
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	inv := saleInvoice(t, companyID, date, valueobject.RUB,
		line("Gamma", 1, 100),
		line("Alpha", 1, 100),
		line("Beta", 1, 300),
		line("Delta", 1, 50),
		line("Epsilon", 1, 40),
		line("Zeta", 1, 30),
		line("Eta", 1, 20),
	)

	s, err := Summarize(companyID, 1, valueobject.RUB, []Invoice{inv}, nil, toRUB)
	require.NoError(t, err)

	names := make([]string, 0, len(s.TopProducts))
	for _, p := range s.TopProducts {
		names = append(names, p.ProductName)
	}
	assert.Equal(t, []string{"Beta", "Alpha", "Gamma", "Delta", "Epsilon"}, names)
}

func TestSummarize_CatalogProductsGroupByID(t *testing.T) {
	companyID := uuid.New()
	id := uuid.New()
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	a := InvoiceLine{ProductID: &id, ProductName: "Switch 24p", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}
	b := InvoiceLine{ProductID: &id, ProductName: "Switch 24p", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(10)}
	s, err := Summarize(companyID, 1, valueobject.RUB, []Invoice{
		saleInvoice(t, companyID, date, valueobject.RUB, a),
		saleInvoice(t, companyID, date, valueobject.RUB, b),
	}, nil, toRUB)
	require.NoError(t, err)
	require.Len(t, s.TopProducts, 1)
	assert.Equal(t, &id, s.TopProducts[0].ProductID)
	assert.Equal(t, 2, s.TopProducts[0].OrdersCount)
}

func TestSummarize_NormalizerError(t *testing.T) {
	companyID := uuid.New()
	inv := saleInvoice(t, companyID, time.Now(), valueobject.CNY, line("Switch", 1, 1))
	_, err := Summarize(companyID, 1, valueobject.RUB, []Invoice{inv}, nil, toRUB)
	assert.Error(t, err)
}
