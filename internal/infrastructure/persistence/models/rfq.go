package models

import (
	"time"

	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRefColumns stores a catalog reference or free-text description
type ProductRefColumns struct {
	ProductID    *uuid.UUID `gorm:"type:uuid;index"`
	ProductName  string     `gorm:"type:varchar(255)"`
	Manufacturer string     `gorm:"type:varchar(255)"`
	PartNumber   string     `gorm:"type:varchar(100)"`
}

func (c ProductRefColumns) toDomain() rfq.ProductRef {
	return rfq.ProductRef{
		ProductID:    c.ProductID,
		Name:         c.ProductName,
		Manufacturer: c.Manufacturer,
		PartNumber:   c.PartNumber,
	}
}

func productRefColumns(r rfq.ProductRef) ProductRefColumns {
	return ProductRefColumns{
		ProductID:    r.ProductID,
		ProductName:  r.Name,
		Manufacturer: r.Manufacturer,
		PartNumber:   r.PartNumber,
	}
}

// RFQModel is the persistence model for RFQs
type RFQModel struct {
	TenantAggregateModel
	Number          string        `gorm:"type:varchar(20);not null;index"`
	Title           string        `gorm:"type:varchar(255);not null"`
	CompanyID       uuid.UUID     `gorm:"type:uuid;not null;index"`
	ContactID       *uuid.UUID    `gorm:"type:uuid"`
	SalesManagerID  uuid.UUID     `gorm:"type:uuid;not null;index"`
	Status          rfq.RFQStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Priority        rfq.Priority  `gorm:"type:varchar(10);not null;default:'medium'"`
	Deadline        *time.Time
	Description     string `gorm:"type:text"`
	DeliveryAddress string `gorm:"type:text"`
	PaymentTerms    string `gorm:"type:text"`
	DeliveryTerms   string `gorm:"type:text"`
	Notes           string `gorm:"type:text"`
	ExtID           string `gorm:"type:varchar(100)"`
	SubmittedAt     *time.Time
	Items           []RFQItemModel `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (RFQModel) TableName() string {
	return "rfqs"
}

// RFQItemModel is the persistence model for RFQ lines
type RFQItemModel struct {
	BaseModel
	RFQID      uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNumber int       `gorm:"not null"`
	ProductRefColumns
	Quantity       int64  `gorm:"not null"`
	Unit           string `gorm:"type:varchar(20);not null;default:'pcs'"`
	Specifications string `gorm:"type:text"`
	Comments       string `gorm:"type:text"`
	IsNewProduct   bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (RFQItemModel) TableName() string {
	return "rfq_items"
}

// ToDomain converts to the domain aggregate
func (m *RFQModel) ToDomain() *rfq.RFQ {
	r := &rfq.RFQ{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Number:              m.Number,
		Title:               m.Title,
		CompanyID:           m.CompanyID,
		ContactID:           m.ContactID,
		SalesManagerID:      m.SalesManagerID,
		Status:              m.Status,
		Priority:            m.Priority,
		Deadline:            m.Deadline,
		Description:         m.Description,
		DeliveryAddress:     m.DeliveryAddress,
		PaymentTerms:        m.PaymentTerms,
		DeliveryTerms:       m.DeliveryTerms,
		Notes:               m.Notes,
		ExtID:               m.ExtID,
		SubmittedAt:         m.SubmittedAt,
		Items:               make([]rfq.RFQItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		r.Items = append(r.Items, rfq.RFQItem{
			ID:             item.ID,
			RFQID:          item.RFQID,
			LineNumber:     item.LineNumber,
			Product:        item.ProductRefColumns.toDomain(),
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			Specifications: item.Specifications,
			Comments:       item.Comments,
			IsNewProduct:   item.IsNewProduct,
			CreatedAt:      item.CreatedAt,
			UpdatedAt:      item.UpdatedAt,
		})
	}
	return r
}

// RFQModelFromDomain creates a model with its items
func RFQModelFromDomain(r *rfq.RFQ) *RFQModel {
	m := &RFQModel{
		Number:          r.Number,
		Title:           r.Title,
		CompanyID:       r.CompanyID,
		ContactID:       r.ContactID,
		SalesManagerID:  r.SalesManagerID,
		Status:          r.Status,
		Priority:        r.Priority,
		Deadline:        r.Deadline,
		Description:     r.Description,
		DeliveryAddress: r.DeliveryAddress,
		PaymentTerms:    r.PaymentTerms,
		DeliveryTerms:   r.DeliveryTerms,
		Notes:           r.Notes,
		ExtID:           r.ExtID,
		SubmittedAt:     r.SubmittedAt,
		Items:           make([]RFQItemModel, 0, len(r.Items)),
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	for _, item := range r.Items {
		im := RFQItemModel{
			RFQID:             r.ID,
			LineNumber:        item.LineNumber,
			ProductRefColumns: productRefColumns(item.Product),
			Quantity:          item.Quantity,
			Unit:              item.Unit,
			Specifications:    item.Specifications,
			Comments:          item.Comments,
			IsNewProduct:      item.IsNewProduct,
		}
		im.ID = item.ID
		im.CreatedAt = item.CreatedAt
		im.UpdatedAt = item.UpdatedAt
		m.Items = append(m.Items, im)
	}
	return m
}

// QuotationModel is the persistence model for quotations
type QuotationModel struct {
	TenantAggregateModel
	Number           string              `gorm:"type:varchar(20);not null;index"`
	Title            string              `gorm:"type:varchar(255);not null"`
	RFQID            uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductManagerID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Currency         string              `gorm:"type:varchar(3);not null"`
	Status           rfq.QuotationStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Description      string              `gorm:"type:text"`
	ValidUntil       *time.Time
	DeliveryTime     string          `gorm:"type:varchar(100)"`
	PaymentTerms     string          `gorm:"type:text"`
	DeliveryTerms    string          `gorm:"type:text"`
	Notes            string          `gorm:"type:text"`
	ExtID            string          `gorm:"type:varchar(100)"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SubmittedAt      *time.Time
	Items            []QuotationItemModel `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// QuotationItemModel is the persistence model for quotation lines
type QuotationItemModel struct {
	BaseModel
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index"`
	RFQItemID   uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNumber  int       `gorm:"not null"`
	ProductRefColumns
	Quantity      int64           `gorm:"not null"`
	UnitCostPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MarkupPercent decimal.Decimal `gorm:"type:decimal(9,2);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeliveryTime  string          `gorm:"type:varchar(100)"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (QuotationItemModel) TableName() string {
	return "quotation_items"
}

// ToDomain converts to the domain aggregate
func (m *QuotationModel) ToDomain() *rfq.Quotation {
	q := &rfq.Quotation{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Number:              m.Number,
		Title:               m.Title,
		RFQID:               m.RFQID,
		ProductManagerID:    m.ProductManagerID,
		Currency:            valueobject.CurrencyCode(m.Currency),
		Status:              m.Status,
		Description:         m.Description,
		ValidUntil:          m.ValidUntil,
		DeliveryTime:        m.DeliveryTime,
		PaymentTerms:        m.PaymentTerms,
		DeliveryTerms:       m.DeliveryTerms,
		Notes:               m.Notes,
		ExtID:               m.ExtID,
		TotalAmount:         m.TotalAmount,
		SubmittedAt:         m.SubmittedAt,
		Items:               make([]rfq.QuotationItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		q.Items = append(q.Items, rfq.QuotationItem{
			ID:            item.ID,
			QuotationID:   item.QuotationID,
			RFQItemID:     item.RFQItemID,
			LineNumber:    item.LineNumber,
			Product:       item.ProductRefColumns.toDomain(),
			Quantity:      item.Quantity,
			UnitCostPrice: item.UnitCostPrice,
			MarkupPercent: item.MarkupPercent,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			DeliveryTime:  item.DeliveryTime,
			Notes:         item.Notes,
			CreatedAt:     item.CreatedAt,
			UpdatedAt:     item.UpdatedAt,
		})
	}
	return q
}

// QuotationModelFromDomain creates a model with its items
func QuotationModelFromDomain(q *rfq.Quotation) *QuotationModel {
	m := &QuotationModel{
		Number:           q.Number,
		Title:            q.Title,
		RFQID:            q.RFQID,
		ProductManagerID: q.ProductManagerID,
		Currency:         q.Currency.String(),
		Status:           q.Status,
		Description:      q.Description,
		ValidUntil:       q.ValidUntil,
		DeliveryTime:     q.DeliveryTime,
		PaymentTerms:     q.PaymentTerms,
		DeliveryTerms:    q.DeliveryTerms,
		Notes:            q.Notes,
		ExtID:            q.ExtID,
		TotalAmount:      q.TotalAmount,
		SubmittedAt:      q.SubmittedAt,
		Items:            make([]QuotationItemModel, 0, len(q.Items)),
	}
	m.FromDomainTenantAggregateRoot(q.TenantAggregateRoot)
	for _, item := range q.Items {
		im := QuotationItemModel{
			QuotationID:       q.ID,
			RFQItemID:         item.RFQItemID,
			LineNumber:        item.LineNumber,
			ProductRefColumns: productRefColumns(item.Product),
			Quantity:          item.Quantity,
			UnitCostPrice:     item.UnitCostPrice,
			MarkupPercent:     item.MarkupPercent,
			UnitPrice:         item.UnitPrice,
			TotalPrice:        item.TotalPrice,
			DeliveryTime:      item.DeliveryTime,
			Notes:             item.Notes,
		}
		im.ID = item.ID
		im.CreatedAt = item.CreatedAt
		im.UpdatedAt = item.UpdatedAt
		m.Items = append(m.Items, im)
	}
	return m
}
