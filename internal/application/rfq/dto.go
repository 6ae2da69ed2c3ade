package rfq

import (
	"time"

	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRFQRequest represents a request to open an RFQ
type CreateRFQRequest struct {
	Title           string              `json:"title" binding:"required,min=1,max=255"`
	CompanyID       uuid.UUID           `json:"company_id" binding:"required"`
	ContactID       *uuid.UUID          `json:"contact_id"`
	Priority        string              `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Deadline        *time.Time          `json:"deadline"`
	Description     string              `json:"description" binding:"max=5000"`
	DeliveryAddress string              `json:"delivery_address" binding:"max=1000"`
	PaymentTerms    string              `json:"payment_terms" binding:"max=1000"`
	DeliveryTerms   string              `json:"delivery_terms" binding:"max=1000"`
	Notes           string              `json:"notes" binding:"max=5000"`
	ExtID           string              `json:"ext_id" binding:"max=100"`
	Items           []AddRFQItemRequest `json:"items" binding:"dive"`
}

// AddRFQItemRequest represents a requested line
type AddRFQItemRequest struct {
	ProductID      *uuid.UUID `json:"product_id"`
	ProductName    string     `json:"product_name" binding:"max=255"`
	Manufacturer   string     `json:"manufacturer" binding:"max=255"`
	PartNumber     string     `json:"part_number" binding:"max=100"`
	Quantity       int64      `json:"quantity"`
	Unit           string     `json:"unit" binding:"max=20"`
	Specifications string     `json:"specifications" binding:"max=5000"`
	Comments       string     `json:"comments" binding:"max=5000"`
}

func (r AddRFQItemRequest) toInput() rfq.RFQItemInput {
	return rfq.RFQItemInput{
		Product: rfq.ProductRef{
			ProductID:    r.ProductID,
			Name:         r.ProductName,
			Manufacturer: r.Manufacturer,
			PartNumber:   r.PartNumber,
		},
		Quantity:       r.Quantity,
		Unit:           r.Unit,
		Specifications: r.Specifications,
		Comments:       r.Comments,
	}
}

// ReasonRequest carries an optional reason for cancel or reject
type ReasonRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// RFQItemResponse represents an RFQ line in API responses
type RFQItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	LineNumber     int        `json:"line_number"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	ProductName    string     `json:"product_name,omitempty"`
	Manufacturer   string     `json:"manufacturer,omitempty"`
	PartNumber     string     `json:"part_number,omitempty"`
	Quantity       int64      `json:"quantity"`
	Unit           string     `json:"unit"`
	Specifications string     `json:"specifications,omitempty"`
	Comments       string     `json:"comments,omitempty"`
	IsNewProduct   bool       `json:"is_new_product"`
}

// RFQResponse represents an RFQ in API responses
type RFQResponse struct {
	ID              uuid.UUID         `json:"id"`
	Number          string            `json:"number"`
	Title           string            `json:"title"`
	CompanyID       uuid.UUID         `json:"company_id"`
	ContactID       *uuid.UUID        `json:"contact_id,omitempty"`
	SalesManagerID  uuid.UUID         `json:"sales_manager_id"`
	Status          string            `json:"status"`
	Priority        string            `json:"priority"`
	Deadline        *time.Time        `json:"deadline,omitempty"`
	Description     string            `json:"description,omitempty"`
	DeliveryAddress string            `json:"delivery_address,omitempty"`
	PaymentTerms    string            `json:"payment_terms,omitempty"`
	DeliveryTerms   string            `json:"delivery_terms,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	ExtID           string            `json:"ext_id,omitempty"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	Items           []RFQItemResponse `json:"items"`
	Version         int               `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ToRFQItemResponse maps a domain RFQ line
func ToRFQItemResponse(item *rfq.RFQItem) RFQItemResponse {
	return RFQItemResponse{
		ID:             item.ID,
		LineNumber:     item.LineNumber,
		ProductID:      item.Product.ProductID,
		ProductName:    item.Product.Name,
		Manufacturer:   item.Product.Manufacturer,
		PartNumber:     item.Product.PartNumber,
		Quantity:       item.Quantity,
		Unit:           item.Unit,
		Specifications: item.Specifications,
		Comments:       item.Comments,
		IsNewProduct:   item.IsNewProduct,
	}
}

// ToRFQResponse maps a domain RFQ
func ToRFQResponse(r *rfq.RFQ) RFQResponse {
	items := make([]RFQItemResponse, 0, len(r.Items))
	for i := range r.Items {
		items = append(items, ToRFQItemResponse(&r.Items[i]))
	}
	return RFQResponse{
		ID:              r.ID,
		Number:          r.Number,
		Title:           r.Title,
		CompanyID:       r.CompanyID,
		ContactID:       r.ContactID,
		SalesManagerID:  r.SalesManagerID,
		Status:          r.Status.String(),
		Priority:        string(r.Priority),
		Deadline:        r.Deadline,
		Description:     r.Description,
		DeliveryAddress: r.DeliveryAddress,
		PaymentTerms:    r.PaymentTerms,
		DeliveryTerms:   r.DeliveryTerms,
		Notes:           r.Notes,
		ExtID:           r.ExtID,
		SubmittedAt:     r.SubmittedAt,
		Items:           items,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// CreateQuotationRequest represents a request to start a quotation
type CreateQuotationRequest struct {
	RFQID         uuid.UUID  `json:"rfq_id" binding:"required"`
	Title         string     `json:"title" binding:"required,min=1,max=255"`
	Currency      string     `json:"currency" binding:"required,currency_code"`
	Description   string     `json:"description" binding:"max=5000"`
	ValidUntil    *time.Time `json:"valid_until"`
	DeliveryTime  string     `json:"delivery_time" binding:"max=255"`
	PaymentTerms  string     `json:"payment_terms" binding:"max=1000"`
	DeliveryTerms string     `json:"delivery_terms" binding:"max=1000"`
	Notes         string     `json:"notes" binding:"max=5000"`
	ExtID         string     `json:"ext_id" binding:"max=100"`
}

// AddQuotationItemRequest represents a priced line
type AddQuotationItemRequest struct {
	RFQItemID            uuid.UUID       `json:"rfq_item_id" binding:"required"`
	ProductID            *uuid.UUID      `json:"product_id"`
	ProposedProductName  string          `json:"proposed_product_name" binding:"max=255"`
	ProposedManufacturer string          `json:"proposed_manufacturer" binding:"max=255"`
	ProposedPartNumber   string          `json:"proposed_part_number" binding:"max=100"`
	Quantity             int64           `json:"quantity"`
	UnitCostPrice        decimal.Decimal `json:"unit_cost_price" binding:"decimal_gte0"`
	MarkupPercent        decimal.Decimal `json:"markup_percent"`
	DeliveryTime         string          `json:"delivery_time" binding:"max=255"`
	Notes                string          `json:"notes" binding:"max=5000"`
}

func (r AddQuotationItemRequest) toInput() rfq.QuotationItemInput {
	return rfq.QuotationItemInput{
		RFQItemID: r.RFQItemID,
		Product: rfq.ProductRef{
			ProductID:    r.ProductID,
			Name:         r.ProposedProductName,
			Manufacturer: r.ProposedManufacturer,
			PartNumber:   r.ProposedPartNumber,
		},
		Quantity:      r.Quantity,
		UnitCostPrice: r.UnitCostPrice,
		MarkupPercent: r.MarkupPercent,
		DeliveryTime:  r.DeliveryTime,
		Notes:         r.Notes,
	}
}

// QuotationItemResponse represents a priced line. Money is rounded to 2 places.
type QuotationItemResponse struct {
	ID                   uuid.UUID  `json:"id"`
	RFQItemID            uuid.UUID  `json:"rfq_item_id"`
	LineNumber           int        `json:"line_number"`
	ProductID            *uuid.UUID `json:"product_id,omitempty"`
	ProposedProductName  string     `json:"proposed_product_name,omitempty"`
	ProposedManufacturer string     `json:"proposed_manufacturer,omitempty"`
	ProposedPartNumber   string     `json:"proposed_part_number,omitempty"`
	Quantity             int64      `json:"quantity"`
	UnitCostPrice        string     `json:"unit_cost_price"`
	MarkupPercent        string     `json:"markup_percent"`
	MarkupAmount         string     `json:"markup_amount"`
	UnitPrice            string     `json:"unit_price"`
	TotalPrice           string     `json:"total_price"`
	DeliveryTime         string     `json:"delivery_time,omitempty"`
	Notes                string     `json:"notes,omitempty"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID               uuid.UUID               `json:"id"`
	Number           string                  `json:"number"`
	Title            string                  `json:"title"`
	RFQID            uuid.UUID               `json:"rfq_id"`
	ProductManagerID uuid.UUID               `json:"product_manager_id"`
	Currency         string                  `json:"currency"`
	Status           string                  `json:"status"`
	Description      string                  `json:"description,omitempty"`
	ValidUntil       *time.Time              `json:"valid_until,omitempty"`
	DeliveryTime     string                  `json:"delivery_time,omitempty"`
	PaymentTerms     string                  `json:"payment_terms,omitempty"`
	DeliveryTerms    string                  `json:"delivery_terms,omitempty"`
	Notes            string                  `json:"notes,omitempty"`
	ExtID            string                  `json:"ext_id,omitempty"`
	TotalAmount      string                  `json:"total_amount"`
	Total            valueobject.Money       `json:"total"`
	SubmittedAt      *time.Time              `json:"submitted_at,omitempty"`
	Items            []QuotationItemResponse `json:"items"`
	Version          int                     `json:"version"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func money(d decimal.Decimal) string {
	return valueobject.RoundMoney(d).StringFixed(valueobject.MoneyPlaces)
}

func quotationTotal(q *rfq.Quotation) valueobject.Money {
	total, err := valueobject.NewMoney(q.TotalAmount, q.Currency)
	if err != nil {
		return valueobject.Zero(q.Currency)
	}
	return total.Round()
}

// ToQuotationItemResponse maps a domain quotation line
func ToQuotationItemResponse(item *rfq.QuotationItem) QuotationItemResponse {
	markup := item.UnitPrice.Sub(item.UnitCostPrice)
	return QuotationItemResponse{
		ID:                   item.ID,
		RFQItemID:            item.RFQItemID,
		LineNumber:           item.LineNumber,
		ProductID:            item.Product.ProductID,
		ProposedProductName:  item.Product.Name,
		ProposedManufacturer: item.Product.Manufacturer,
		ProposedPartNumber:   item.Product.PartNumber,
		Quantity:             item.Quantity,
		UnitCostPrice:        money(item.UnitCostPrice),
		MarkupPercent:        item.MarkupPercent.StringFixed(valueobject.MoneyPlaces),
		MarkupAmount:         money(markup),
		UnitPrice:            money(item.UnitPrice),
		TotalPrice:           money(item.TotalPrice),
		DeliveryTime:         item.DeliveryTime,
		Notes:                item.Notes,
	}
}

// ToQuotationResponse maps a domain quotation
func ToQuotationResponse(q *rfq.Quotation) QuotationResponse {
	items := make([]QuotationItemResponse, 0, len(q.Items))
	for i := range q.Items {
		items = append(items, ToQuotationItemResponse(&q.Items[i]))
	}
	return QuotationResponse{
		ID:               q.ID,
		Number:           q.Number,
		Title:            q.Title,
		RFQID:            q.RFQID,
		ProductManagerID: q.ProductManagerID,
		Currency:         q.Currency.String(),
		Status:           q.Status.String(),
		Description:      q.Description,
		ValidUntil:       q.ValidUntil,
		DeliveryTime:     q.DeliveryTime,
		PaymentTerms:     q.PaymentTerms,
		DeliveryTerms:    q.DeliveryTerms,
		Notes:            q.Notes,
		ExtID:            q.ExtID,
		TotalAmount:      money(q.TotalAmount),
		Total:            quotationTotal(q),
		SubmittedAt:      q.SubmittedAt,
		Items:            items,
		Version:          q.Version,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}
