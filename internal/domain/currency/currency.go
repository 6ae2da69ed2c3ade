package currency

import (
	"fmt"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes
const (
	CodeCurrencyNotFound = "CURRENCY_NOT_FOUND"
	CodeInvalidRate      = "INVALID_RATE"
)

// AggregateTypeCurrency is the aggregate type name used in events
const AggregateTypeCurrency = "Currency"

// Currency is a tenant's reference currency with its rate to the home currency
type Currency struct {
	shared.TenantAggregateRoot
	Code         valueobject.CurrencyCode
	Name         string
	Symbol       string
	ExchangeRate decimal.Decimal
	IsActive     bool
	IsHome       bool
}

// NewCurrencyNotFoundError reports a missing or inactive currency
func NewCurrencyNotFoundError(code valueobject.CurrencyCode) *shared.DomainError {
	return shared.NewDomainError(CodeCurrencyNotFound, fmt.Sprintf("Currency %s not found or inactive", code))
}

// NewInvalidRateError reports an unusable exchange rate
func NewInvalidRateError(code valueobject.CurrencyCode) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidRate, fmt.Sprintf("Invalid exchange rate for %s", code))
}

// NewCurrency creates an active non-home currency
func NewCurrency(tenantID uuid.UUID, code valueobject.CurrencyCode, name, symbol string, rate decimal.Decimal) (*Currency, error) {
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Currency code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Currency name cannot be empty")
	}
	if !rate.IsPositive() {
		return nil, NewInvalidRateError(code)
	}
	return &Currency{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Symbol:              symbol,
		ExchangeRate:        valueobject.RoundRate(rate),
		IsActive:            true,
	}, nil
}

// NewHomeCurrency creates the tenant's home currency at rate 1.0000
func NewHomeCurrency(tenantID uuid.UUID, code valueobject.CurrencyCode, name, symbol string) (*Currency, error) {
	c, err := NewCurrency(tenantID, code, name, symbol, decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}
	c.IsHome = true
	return c, nil
}

// UpdateRate sets a new rate to the home currency
func (c *Currency) UpdateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return NewInvalidRateError(c.Code)
	}
	rate = valueobject.RoundRate(rate)
	if c.IsHome && !rate.Equal(decimal.NewFromInt(1)) {
		return shared.NewDomainError(shared.CodeInvalidState, "Home currency rate is fixed at 1.0000")
	}
	old := c.ExchangeRate
	c.ExchangeRate = rate
	c.Touch()
	c.AddDomainEvent(NewCurrencyRateChangedEvent(c, old))
	return nil
}

// Deactivate hides the currency from conversions. Currencies are never deleted.
func (c *Currency) Deactivate() error {
	if c.IsHome {
		return shared.NewDomainError(shared.CodeInvalidState, "Home currency cannot be deactivated")
	}
	if !c.IsActive {
		return nil
	}
	c.IsActive = false
	c.Touch()
	return nil
}

// Activate makes the currency available again
func (c *Currency) Activate() {
	if c.IsActive {
		return
	}
	c.IsActive = true
	c.Touch()
}

// EventTypeCurrencyRateChanged is published when an exchange rate is edited
const EventTypeCurrencyRateChanged = "CurrencyRateChanged"

// CurrencyRateChangedEvent carries the old and new rate
type CurrencyRateChangedEvent struct {
	shared.BaseDomainEvent
	Code    valueobject.CurrencyCode `json:"code"`
	OldRate decimal.Decimal          `json:"old_rate"`
	NewRate decimal.Decimal          `json:"new_rate"`
}

// NewCurrencyRateChangedEvent builds the rate change event
func NewCurrencyRateChangedEvent(c *Currency, oldRate decimal.Decimal) *CurrencyRateChangedEvent {
	return &CurrencyRateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCurrencyRateChanged, AggregateTypeCurrency, c.ID, c.TenantID),
		Code:            c.Code,
		OldRate:         oldRate,
		NewRate:         c.ExchangeRate,
	}
}
