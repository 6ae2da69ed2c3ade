package handler

import (
	"net/http"
	"testing"

	pricingapp "github.com/erp/crm/internal/application/pricing"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingHandler_Breakdown(t *testing.T) {
	env := newTestEnv(t)
	const path = "/api/v1/pricing/breakdown"

	t.Run("prices a line", func(t *testing.T) {
		w := env.do(http.MethodPost, path, "product", map[string]any{
			"cost": "100", "markup_percent": "20", "quantity": 3,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var b pricingapp.BreakdownResponse
		decode(t, w, &b)
		assert.True(t, b.UnitMarkupAmount.Equal(decimal.NewFromInt(20)))
		assert.True(t, b.UnitSellingPrice.Equal(decimal.NewFromInt(120)))
		assert.True(t, b.TotalCostPrice.Equal(decimal.NewFromInt(300)))
		assert.True(t, b.TotalSellingPrice.Equal(decimal.NewFromInt(360)))
		assert.Equal(t, int64(3), b.Quantity)
	})

	t.Run("converts the cost into the target currency first", func(t *testing.T) {
		w := env.do(http.MethodPost, path, "product", map[string]any{
			"cost": "10", "markup_percent": "10", "quantity": 1,
			"cost_currency": "USD", "target_currency": "RUB",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var b pricingapp.BreakdownResponse
		decode(t, w, &b)
		assert.True(t, b.UnitCostPrice.Equal(decimal.NewFromInt(950)))
		assert.True(t, b.UnitSellingPrice.Equal(decimal.NewFromInt(1045)))
		assert.Equal(t, "RUB", b.Currency)
		assert.Equal(t, "USD", b.CostCurrency)
		assert.Equal(t, "95.0000", b.ExchangeRate)
	})

	t.Run("zero quantity", func(t *testing.T) {
		w := env.do(http.MethodPost, path, "product", map[string]any{
			"cost": "100", "markup_percent": "20", "quantity": 0,
		})
		requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidQuantity)
	})

	t.Run("negative markup", func(t *testing.T) {
		w := env.do(http.MethodPost, path, "product", map[string]any{
			"cost": "100", "markup_percent": "-1", "quantity": 1,
		})
		requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidMarkup)
	})

	t.Run("unknown target currency", func(t *testing.T) {
		w := env.do(http.MethodPost, path, "product", map[string]any{
			"cost": "100", "markup_percent": "20", "quantity": 1,
			"cost_currency": "USD", "target_currency": "JPY",
		})
		requireError(t, w, http.StatusNotFound, dto.ErrCodeCurrencyNotFound)
	})
}
