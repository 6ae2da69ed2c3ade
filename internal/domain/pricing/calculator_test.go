package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSellingPrice(t *testing.T) {
	got, err := SellingPrice(d("100.00"), d("20"))
	require.NoError(t, err)
	assert.Equal(t, "120.00", got.StringFixed(2))

	total, err := TotalPrice(got, 3)
	require.NoError(t, err)
	assert.Equal(t, "360.00", total.StringFixed(2))
}

func TestSellingPrice_EqualsCostPlusMarkup(t *testing.T) {
	costs := []string{"0", "0.01", "1", "99.99", "1234.5678"}
	markups := []string{"0", "0.5", "12.5", "20", "150"}

	for _, c := range costs {
		for _, m := range markups {
			selling, err := SellingPrice(d(c), d(m))
			require.NoError(t, err)
			markup, err := MarkupAmount(d(c), d(m))
			require.NoError(t, err)
			assert.True(t, selling.Equal(d(c).Add(markup)), "cost=%s markup=%s", c, m)
		}
	}
}

func TestNegativeMarkup(t *testing.T) {
	_, err := SellingPrice(d("10"), d("-1"))
	assert.ErrorIs(t, err, ErrInvalidMarkup)

	_, err = MarkupAmount(d("10"), d("-0.01"))
	assert.ErrorIs(t, err, ErrInvalidMarkup)

	_, err = PriceBreakdown(d("10"), d("-5"), 1)
	assert.ErrorIs(t, err, ErrInvalidMarkup)
}

func TestTotalPrice_RejectsNonPositiveQuantity(t *testing.T) {
	for _, q := range []int64{0, -1} {
		_, err := TotalPrice(d("10"), q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestPriceBreakdown(t *testing.T) {
	b, err := PriceBreakdown(d("100.00"), d("20"), 3)
	require.NoError(t, err)

	assert.Equal(t, "100.00", b.UnitCostPrice.StringFixed(2))
	assert.Equal(t, "20.00", b.UnitMarkupAmount.StringFixed(2))
	assert.Equal(t, "120.00", b.UnitSellingPrice.StringFixed(2))
	assert.Equal(t, int64(3), b.Quantity)
	assert.Equal(t, "300.00", b.TotalCostPrice.StringFixed(2))
	assert.Equal(t, "60.00", b.TotalMarkupAmount.StringFixed(2))
	assert.Equal(t, "360.00", b.TotalSellingPrice.StringFixed(2))
	assert.Equal(t, "20", b.MarkupPercent.String())

	_, err = PriceBreakdown(d("100"), d("20"), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPriceBreakdown_TotalsAreUnitTimesQuantity(t *testing.T) {
	b, err := PriceBreakdown(d("33.333"), d("7.5"), 7)
	require.NoError(t, err)

	qty := decimal.NewFromInt(7)
	assert.True(t, b.TotalCostPrice.Equal(b.UnitCostPrice.Mul(qty)))
	assert.True(t, b.TotalMarkupAmount.Equal(b.UnitMarkupAmount.Mul(qty)))
	assert.True(t, b.TotalSellingPrice.Equal(b.UnitSellingPrice.Mul(qty)))
}

func TestBreakdown_Rounded(t *testing.T) {
	b, err := PriceBreakdown(d("10.005"), d("10"), 2)
	require.NoError(t, err)

	r := b.Rounded()
	assert.Equal(t, "11.01", r.UnitSellingPrice.StringFixed(2))
	assert.Equal(t, "22.01", r.TotalSellingPrice.StringFixed(2))
	assert.Equal(t, "10.005", b.UnitCostPrice.String())
}
