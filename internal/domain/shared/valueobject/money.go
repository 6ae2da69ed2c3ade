package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Precision of persisted and displayed values
const (
	MoneyPlaces int32 = 2
	RatePlaces  int32 = 4
)

// CurrencyCode is an ISO 4217 alphabetic code
type CurrencyCode string

// Seeded currency codes
const (
	RUB CurrencyCode = "RUB"
	USD CurrencyCode = "USD"
	CNY CurrencyCode = "CNY"
)

// ParseCurrencyCode normalizes and validates a currency code
func ParseCurrencyCode(s string) (CurrencyCode, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 3 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid currency code %q", s))
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid currency code %q", s))
		}
	}
	return CurrencyCode(code), nil
}

// String returns the code
func (c CurrencyCode) String() string {
	return string(c)
}

// RoundMoney rounds an amount to money precision
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RoundRate rounds an exchange rate to rate precision
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RatePlaces)
}

// Money is an immutable amount in a currency.
// Arithmetic keeps full precision; rounding happens only through Round.
type Money struct {
	amount   decimal.Decimal
	currency CurrencyCode
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency CurrencyCode) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency CurrencyCode) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Add returns the sum of both amounts. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Round returns Money rounded to money precision
func (m Money) Round() Money {
	return Money{amount: RoundMoney(m.amount), currency: m.currency}
}

// String returns the amount at money precision followed by the code
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MoneyPlaces), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string       `json:"amount"`
		Currency CurrencyCode `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(MoneyPlaces),
		Currency: m.currency,
	})
}
