package currency

import (
	"time"

	"github.com/erp/crm/internal/domain/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConvertRequest represents a conversion request
type ConvertRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,decimal_gte0"`
	From   string          `json:"from" binding:"required,currency_code"`
	To     string          `json:"to" binding:"required,currency_code"`
}

// ConvertResponse carries the converted amount rounded for display
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Result    string          `json:"result"`
	Formatted string          `json:"formatted"`
}

// UpdateRateRequest represents a rate change
type UpdateRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

// CurrencyResponse represents a currency in API responses
type CurrencyResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	ExchangeRate string    `json:"exchange_rate"`
	IsActive     bool      `json:"is_active"`
	IsHome       bool      `json:"is_home"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToCurrencyResponse maps a domain currency, rate shown at 4 places
func ToCurrencyResponse(c *currency.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:           c.ID,
		Code:         c.Code.String(),
		Name:         c.Name,
		Symbol:       c.Symbol,
		ExchangeRate: c.ExchangeRate.StringFixed(4),
		IsActive:     c.IsActive,
		IsHome:       c.IsHome,
		UpdatedAt:    c.UpdatedAt,
	}
}

// SeedResult reports what SeedDefaults changed
type SeedResult struct {
	Created []string `json:"created"`
	Reset   []string `json:"reset"`
	Skipped []string `json:"skipped"`
}
