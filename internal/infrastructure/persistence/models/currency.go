package models

import (
	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CurrencyModel is the persistence model for currencies
type CurrencyModel struct {
	TenantAggregateModel
	Code         string          `gorm:"type:varchar(3);not null;index"`
	Name         string          `gorm:"type:varchar(100);not null"`
	Symbol       string          `gorm:"type:varchar(10)"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsActive     bool            `gorm:"not null;default:true"`
	IsHome       bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CurrencyModel) TableName() string {
	return "currencies"
}

// ToDomain converts to the domain entity
func (m *CurrencyModel) ToDomain() *currency.Currency {
	return &currency.Currency{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Code:                valueobject.CurrencyCode(m.Code),
		Name:                m.Name,
		Symbol:              m.Symbol,
		ExchangeRate:        m.ExchangeRate,
		IsActive:            m.IsActive,
		IsHome:              m.IsHome,
	}
}

// FromDomain populates the model from the domain entity
func (m *CurrencyModel) FromDomain(c *currency.Currency) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Code = c.Code.String()
	m.Name = c.Name
	m.Symbol = c.Symbol
	m.ExchangeRate = c.ExchangeRate
	m.IsActive = c.IsActive
	m.IsHome = c.IsHome
}

// CurrencyModelFromDomain creates a model from a domain currency
func CurrencyModelFromDomain(c *currency.Currency) *CurrencyModel {
	m := &CurrencyModel{}
	m.FromDomain(c)
	return m
}
