package rfq

import (
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeRFQCreated             = "RFQCreated"
	EventTypeRFQSubmitted           = "RFQSubmitted"
	EventTypeRFQStatusChanged       = "RFQStatusChanged"
	EventTypeQuotationCreated       = "QuotationCreated"
	EventTypeQuotationSubmitted     = "QuotationSubmitted"
	EventTypeQuotationStatusChanged = "QuotationStatusChanged"
)

// RFQCreatedEvent is raised when a draft RFQ is opened
type RFQCreatedEvent struct {
	shared.BaseDomainEvent
	Number         string    `json:"number"`
	CompanyID      uuid.UUID `json:"company_id"`
	SalesManagerID uuid.UUID `json:"sales_manager_id"`
}

// NewRFQCreatedEvent creates a new RFQCreatedEvent
func NewRFQCreatedEvent(r *RFQ) *RFQCreatedEvent {
	return &RFQCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRFQCreated, AggregateTypeRFQ, r.ID, r.TenantID),
		Number:          r.Number,
		CompanyID:       r.CompanyID,
		SalesManagerID:  r.SalesManagerID,
	}
}

// RFQSubmittedEvent is raised when an RFQ leaves draft.
// Notification and search indexing hooks subscribe to it.
type RFQSubmittedEvent struct {
	shared.BaseDomainEvent
	Number    string    `json:"number"`
	Title     string    `json:"title"`
	CompanyID uuid.UUID `json:"company_id"`
	Priority  Priority  `json:"priority"`
	ItemCount int       `json:"item_count"`
}

// NewRFQSubmittedEvent creates a new RFQSubmittedEvent
func NewRFQSubmittedEvent(r *RFQ) *RFQSubmittedEvent {
	return &RFQSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRFQSubmitted, AggregateTypeRFQ, r.ID, r.TenantID),
		Number:          r.Number,
		Title:           r.Title,
		CompanyID:       r.CompanyID,
		Priority:        r.Priority,
		ItemCount:       len(r.Items),
	}
}

// RFQStatusChangedEvent is raised on every RFQ transition
type RFQStatusChangedEvent struct {
	shared.BaseDomainEvent
	Number string    `json:"number"`
	From   RFQStatus `json:"from"`
	To     RFQStatus `json:"to"`
	Reason string    `json:"reason,omitempty"`
}

// NewRFQStatusChangedEvent creates a new RFQStatusChangedEvent
func NewRFQStatusChangedEvent(r *RFQ, from RFQStatus, reason string) *RFQStatusChangedEvent {
	return &RFQStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRFQStatusChanged, AggregateTypeRFQ, r.ID, r.TenantID),
		Number:          r.Number,
		From:            from,
		To:              r.Status,
		Reason:          reason,
	}
}

// QuotationCreatedEvent is raised when a product manager starts answering an RFQ
type QuotationCreatedEvent struct {
	shared.BaseDomainEvent
	Number           string    `json:"number"`
	RFQID            uuid.UUID `json:"rfq_id"`
	ProductManagerID uuid.UUID `json:"product_manager_id"`
}

// NewQuotationCreatedEvent creates a new QuotationCreatedEvent
func NewQuotationCreatedEvent(q *Quotation) *QuotationCreatedEvent {
	return &QuotationCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeQuotationCreated, AggregateTypeQuotation, q.ID, q.TenantID),
		Number:           q.Number,
		RFQID:            q.RFQID,
		ProductManagerID: q.ProductManagerID,
	}
}

// QuotationSubmittedEvent is raised when a quotation leaves draft
type QuotationSubmittedEvent struct {
	shared.BaseDomainEvent
	Number      string                   `json:"number"`
	RFQID       uuid.UUID                `json:"rfq_id"`
	Currency    valueobject.CurrencyCode `json:"currency"`
	TotalAmount decimal.Decimal          `json:"total_amount"`
	ItemCount   int                      `json:"item_count"`
}

// NewQuotationSubmittedEvent creates a new QuotationSubmittedEvent
func NewQuotationSubmittedEvent(q *Quotation) *QuotationSubmittedEvent {
	return &QuotationSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationSubmitted, AggregateTypeQuotation, q.ID, q.TenantID),
		Number:          q.Number,
		RFQID:           q.RFQID,
		Currency:        q.Currency,
		TotalAmount:     q.TotalAmount,
		ItemCount:       len(q.Items),
	}
}

// QuotationStatusChangedEvent is raised on every quotation transition
type QuotationStatusChangedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	RFQID  uuid.UUID       `json:"rfq_id"`
	From   QuotationStatus `json:"from"`
	To     QuotationStatus `json:"to"`
	Reason string          `json:"reason,omitempty"`
}

// NewQuotationStatusChangedEvent creates a new QuotationStatusChangedEvent
func NewQuotationStatusChangedEvent(q *Quotation, from QuotationStatus, reason string) *QuotationStatusChangedEvent {
	return &QuotationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationStatusChanged, AggregateTypeQuotation, q.ID, q.TenantID),
		Number:          q.Number,
		RFQID:           q.RFQID,
		From:            from,
		To:              q.Status,
		Reason:          reason,
	}
}
