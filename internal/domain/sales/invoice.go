package sales

import (
	"strings"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes incoming from outgoing invoices
type InvoiceType string

const (
	InvoiceTypePurchase InvoiceType = "purchase"
	InvoiceTypeSale     InvoiceType = "sale"
)

// IsValid reports whether t is a known invoice type
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypePurchase || t == InvoiceTypeSale
}

// SaleType tells whether goods were shipped from stock or ordered in
type SaleType string

const (
	SaleTypeStock SaleType = "stock"
	SaleTypeOrder SaleType = "order"
)

// IsValid reports whether t is a known sale type
func (t SaleType) IsValid() bool {
	return t == SaleTypeStock || t == SaleTypeOrder
}

// InvoiceLine is one billed product
type InvoiceLine struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ProductID   *uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Total returns quantity × unit price
func (l InvoiceLine) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Invoice is an issued or received invoice. The core only reads invoices for reporting.
type Invoice struct {
	shared.TenantAggregateRoot
	Number      string
	Type        InvoiceType
	SaleType    SaleType
	Currency    valueobject.CurrencyCode
	InvoiceDate time.Time
	CompanyID   uuid.UUID
	Lines       []InvoiceLine
}

// NewInvoice creates an invoice without lines
func NewInvoice(tenantID uuid.UUID, number string, invoiceType InvoiceType, saleType SaleType, currency valueobject.CurrencyCode, date time.Time, companyID uuid.UUID) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invoice number cannot be empty")
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid invoice type")
	}
	if !saleType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid sale type")
	}
	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Type:                invoiceType,
		SaleType:            saleType,
		Currency:            currency,
		InvoiceDate:         date,
		CompanyID:           companyID,
		Lines:               make([]InvoiceLine, 0),
	}, nil
}

// AddLine appends a billed product
func (i *Invoice) AddLine(productID *uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) (*InvoiceLine, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}
	i.Lines = append(i.Lines, InvoiceLine{
		ID:          uuid.New(),
		InvoiceID:   i.ID,
		ProductID:   productID,
		ProductName: strings.TrimSpace(productName),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	return &i.Lines[len(i.Lines)-1], nil
}

// TotalAmount sums line totals in the invoice currency
func (i *Invoice) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// IsSale reports whether the invoice counts towards sales
func (i *Invoice) IsSale() bool {
	return i.Type == InvoiceTypeSale
}
