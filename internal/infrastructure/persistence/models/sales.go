package models

import (
	"time"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	TenantAggregateModel
	Number      string             `gorm:"type:varchar(50);not null"`
	InvoiceType sales.InvoiceType  `gorm:"type:varchar(10);not null;index"`
	SaleType    sales.SaleType     `gorm:"type:varchar(10);not null;default:'stock'"`
	Currency    string             `gorm:"type:varchar(3);not null"`
	InvoiceDate time.Time          `gorm:"not null;index"`
	CompanyID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Lines       []InvoiceLineModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is the persistence model for invoice lines
type InvoiceLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"type:varchar(255)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts to the domain invoice
func (m *InvoiceModel) ToDomain() *sales.Invoice {
	inv := &sales.Invoice{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Number:              m.Number,
		Type:                m.InvoiceType,
		SaleType:            m.SaleType,
		Currency:            valueobject.CurrencyCode(m.Currency),
		InvoiceDate:         m.InvoiceDate,
		CompanyID:           m.CompanyID,
		Lines:               make([]sales.InvoiceLine, 0, len(m.Lines)),
	}
	for _, l := range m.Lines {
		inv.Lines = append(inv.Lines, sales.InvoiceLine{
			ID:          l.ID,
			InvoiceID:   l.InvoiceID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return inv
}

// InvoiceModelFromDomain creates a model with its lines
func InvoiceModelFromDomain(inv *sales.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:      inv.Number,
		InvoiceType: inv.Type,
		SaleType:    inv.SaleType,
		Currency:    inv.Currency.String(),
		InvoiceDate: inv.InvoiceDate,
		CompanyID:   inv.CompanyID,
		Lines:       make([]InvoiceLineModel, 0, len(inv.Lines)),
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	for _, l := range inv.Lines {
		m.Lines = append(m.Lines, InvoiceLineModel{
			ID:          l.ID,
			InvoiceID:   inv.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return m
}
