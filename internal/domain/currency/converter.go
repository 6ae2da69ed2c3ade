package currency

import (
	"context"

	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateSource resolves the rate-to-home of an active currency.
// Implementations return a CURRENCY_NOT_FOUND domain error for missing or inactive codes.
type RateSource interface {
	Rate(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, error)
}

// RateFunc adapts a function to RateSource
type RateFunc func(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, error)

// Rate implements RateSource
func (f RateFunc) Rate(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, error) {
	return f(ctx, tenantID, code)
}

// Converter converts amounts between currencies through the home currency.
// Results are unrounded; callers round with valueobject.RoundMoney at the boundary.
type Converter struct {
	rates RateSource
}

// NewConverter creates a converter over the given rate source
func NewConverter(rates RateSource) *Converter {
	return &Converter{rates: rates}
}

// Convert converts amount from one currency to another
func (c *Converter) Convert(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, from, to valueobject.CurrencyCode) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	fromRate, err := c.rates.Rate(ctx, tenantID, from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := c.rates.Rate(ctx, tenantID, to)
	if err != nil {
		return decimal.Zero, err
	}
	if toRate.IsZero() {
		return decimal.Zero, NewInvalidRateError(to)
	}

	home := amount.Mul(fromRate)
	return home.DivRound(toRate, divisionPrecision), nil
}

// ToHome converts an amount into the home currency
func (c *Converter) ToHome(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, from valueobject.CurrencyCode) (decimal.Decimal, error) {
	rate, err := c.rates.Rate(ctx, tenantID, from)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// divisionPrecision bounds non-terminating quotients well beyond money and rate precision
const divisionPrecision int32 = 16

// RateTable is a fixed in-memory RateSource
type RateTable map[valueobject.CurrencyCode]decimal.Decimal

// Rate implements RateSource
func (t RateTable) Rate(_ context.Context, _ uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, error) {
	rate, ok := t[code]
	if !ok {
		return decimal.Zero, NewCurrencyNotFoundError(code)
	}
	return rate, nil
}
