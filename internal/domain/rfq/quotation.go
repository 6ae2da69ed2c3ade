package rfq

import (
	"strings"
	"time"

	"github.com/erp/crm/internal/domain/pricing"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeQuotation is the aggregate type name used in events
const AggregateTypeQuotation = "Quotation"

// QuotationItem is a priced answer to one RFQ line.
// Quantity may differ from the RFQ line (partial quotes) but must be positive.
type QuotationItem struct {
	ID            uuid.UUID
	QuotationID   uuid.UUID
	RFQItemID     uuid.UUID
	LineNumber    int
	Product       ProductRef
	Quantity      int64
	UnitCostPrice decimal.Decimal
	MarkupPercent decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	DeliveryTime  string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// reprice derives unit and total price from cost, markup and quantity
func (i *QuotationItem) reprice() error {
	unit, err := pricing.SellingPrice(i.UnitCostPrice, i.MarkupPercent)
	if err != nil {
		return err
	}
	total, err := pricing.TotalPrice(unit, i.Quantity)
	if err != nil {
		return err
	}
	i.UnitPrice = unit
	i.TotalPrice = total
	return nil
}

// Breakdown returns the pricing breakdown of the line
func (i *QuotationItem) Breakdown() (pricing.Breakdown, error) {
	return pricing.PriceBreakdown(i.UnitCostPrice, i.MarkupPercent, i.Quantity)
}

// QuotationItemInput carries the fields of a new quotation line
type QuotationItemInput struct {
	RFQItemID     uuid.UUID
	Product       ProductRef
	Quantity      int64
	UnitCostPrice decimal.Decimal
	MarkupPercent decimal.Decimal
	DeliveryTime  string
	Notes         string
}

// Quotation is a product manager's priced response to an RFQ
type Quotation struct {
	shared.TenantAggregateRoot
	Number           string
	Title            string
	RFQID            uuid.UUID
	ProductManagerID uuid.UUID
	Currency         valueobject.CurrencyCode
	Status           QuotationStatus
	Description      string
	ValidUntil       *time.Time
	DeliveryTime     string
	PaymentTerms     string
	DeliveryTerms    string
	Notes            string
	ExtID            string
	TotalAmount      decimal.Decimal
	SubmittedAt      *time.Time
	Items            []QuotationItem
}

// NewQuotation creates a draft quotation answering rfq
func NewQuotation(tenantID uuid.UUID, number, title string, r *RFQ, productManagerID uuid.UUID, currency valueobject.CurrencyCode) (*Quotation, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quotation number cannot be empty")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quotation title cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quotation currency is required")
	}
	if r == nil || !r.BelongsTo(tenantID) {
		return nil, shared.ErrNotFound
	}
	if !r.Status.AcceptsQuotations() {
		return nil, ErrRFQClosedForQuotes
	}

	q := &Quotation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Title:               title,
		RFQID:               r.ID,
		ProductManagerID:    productManagerID,
		Currency:            currency,
		Status:              QuotationStatusDraft,
		TotalAmount:         decimal.Zero,
		Items:               make([]QuotationItem, 0),
	}
	q.SetCreatedBy(productManagerID)
	q.AddDomainEvent(NewQuotationCreatedEvent(q))
	return q, nil
}

// AddItem prices and appends a line. rfqItem must be a line of the quoted RFQ.
func (q *Quotation) AddItem(rfqItem *RFQItem, in QuotationItemInput) (*QuotationItem, error) {
	if q.Status != QuotationStatusDraft {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Cannot add items to quotation in "+q.Status.String()+" status")
	}
	if rfqItem == nil || rfqItem.RFQID != q.RFQID {
		return nil, ErrItemNotInRFQ
	}
	if err := in.Product.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	item := QuotationItem{
		ID:            uuid.New(),
		QuotationID:   q.ID,
		RFQItemID:     rfqItem.ID,
		LineNumber:    q.nextLineNumber(),
		Product:       in.Product.normalized(),
		Quantity:      in.Quantity,
		UnitCostPrice: in.UnitCostPrice,
		MarkupPercent: in.MarkupPercent,
		DeliveryTime:  in.DeliveryTime,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.UnitCostPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unit cost price cannot be negative")
	}
	if err := item.reprice(); err != nil {
		return nil, err
	}

	q.Items = append(q.Items, item)
	if err := q.recalculateTotals(); err != nil {
		q.Items = q.Items[:len(q.Items)-1]
		return nil, err
	}
	q.UpdatedAt = now
	return &q.Items[len(q.Items)-1], nil
}

func (q *Quotation) nextLineNumber() int {
	last := 0
	for _, item := range q.Items {
		if item.LineNumber > last {
			last = item.LineNumber
		}
	}
	return last + 1
}

// Total sums the line totals in the quotation currency
func (q *Quotation) Total() (valueobject.Money, error) {
	total := valueobject.Zero(q.Currency)
	for _, item := range q.Items {
		unit, err := valueobject.NewMoney(item.UnitPrice, q.Currency)
		if err != nil {
			return valueobject.Money{}, err
		}
		if total, err = total.Add(unit.Multiply(decimal.NewFromInt(item.Quantity))); err != nil {
			return valueobject.Money{}, err
		}
	}
	return total, nil
}

func (q *Quotation) recalculateTotals() error {
	total, err := q.Total()
	if err != nil {
		return err
	}
	q.TotalAmount = total.Amount()
	return nil
}

// Reprice recomputes every derived price from stored cost and markup
func (q *Quotation) Reprice() error {
	for i := range q.Items {
		if err := q.Items[i].reprice(); err != nil {
			return err
		}
	}
	return q.recalculateTotals()
}

// Submit sends a draft quotation to the sales side
func (q *Quotation) Submit() error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft quotations can be submitted")
	}
	if len(q.Items) == 0 {
		return ErrEmptyQuotation
	}
	if err := q.transition(QuotationStatusSubmitted, ""); err != nil {
		return err
	}
	now := time.Now()
	q.SubmittedAt = &now
	q.AddDomainEvent(NewQuotationSubmittedEvent(q))
	return nil
}

// Accept records the buyer's acceptance
func (q *Quotation) Accept() error {
	return q.transition(QuotationStatusAccepted, "")
}

// Reject records the buyer's rejection
func (q *Quotation) Reject(reason string) error {
	return q.transition(QuotationStatusRejected, reason)
}

// Expire closes a submitted quotation whose validity ended before now
func (q *Quotation) Expire(now time.Time) error {
	if q.ValidUntil != nil && !q.IsExpiredAt(now) {
		return ErrQuotationNotExpiring
	}
	return q.transition(QuotationStatusExpired, "")
}

// IsExpiredAt reports whether the validity window has passed.
// A quotation is still valid at the ValidUntil instant itself.
func (q *Quotation) IsExpiredAt(now time.Time) bool {
	return q.ValidUntil != nil && now.After(*q.ValidUntil)
}

func (q *Quotation) transition(target QuotationStatus, reason string) error {
	if !q.Status.CanTransitionTo(target) {
		return invalidTransition("quotation", q.Status, target)
	}
	from := q.Status
	q.Status = target
	q.UpdatedAt = time.Now()
	q.AddDomainEvent(NewQuotationStatusChangedEvent(q, from, reason))
	return nil
}

// ItemCount returns the number of lines
func (q *Quotation) ItemCount() int {
	return len(q.Items)
}
