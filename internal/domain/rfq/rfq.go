package rfq

import (
	"strings"
	"time"

	"github.com/erp/crm/internal/domain/pricing"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeRFQ is the aggregate type name used in events
const AggregateTypeRFQ = "RFQ"

// RFQItem is one requested line
type RFQItem struct {
	ID             uuid.UUID
	RFQID          uuid.UUID
	LineNumber     int
	Product        ProductRef
	Quantity       int64
	Unit           string
	Specifications string
	Comments       string
	IsNewProduct   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RFQItemInput carries the fields of a new RFQ line
type RFQItemInput struct {
	Product        ProductRef
	Quantity       int64
	Unit           string
	Specifications string
	Comments       string
}

// RFQ is a buyer's request for pricing on a list of items
type RFQ struct {
	shared.TenantAggregateRoot
	Number          string
	Title           string
	CompanyID       uuid.UUID
	ContactID       *uuid.UUID
	SalesManagerID  uuid.UUID
	Status          RFQStatus
	Priority        Priority
	Deadline        *time.Time
	Description     string
	DeliveryAddress string
	PaymentTerms    string
	DeliveryTerms   string
	Notes           string
	ExtID           string
	SubmittedAt     *time.Time
	Items           []RFQItem
}

// NewRFQ creates a draft RFQ
func NewRFQ(tenantID uuid.UUID, number, title string, companyID, salesManagerID uuid.UUID) (*RFQ, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "RFQ number cannot be empty")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "RFQ title cannot be empty")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Company is required")
	}

	r := &RFQ{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Title:               title,
		CompanyID:           companyID,
		SalesManagerID:      salesManagerID,
		Status:              RFQStatusDraft,
		Priority:            PriorityMedium,
		Items:               make([]RFQItem, 0),
	}
	r.SetCreatedBy(salesManagerID)
	r.AddDomainEvent(NewRFQCreatedEvent(r))
	return r, nil
}

// SetPriority changes the urgency
func (r *RFQ) SetPriority(p Priority) error {
	if !p.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid priority")
	}
	r.Priority = p
	return nil
}

// AddItem appends a line numbered after the current last line
func (r *RFQ) AddItem(in RFQItemInput) (*RFQItem, error) {
	if !r.Status.AcceptsItems() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Cannot add items to RFQ in "+r.Status.String()+" status")
	}
	if err := in.Product.Validate(); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, pricing.ErrInvalidQuantity
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "pcs"
	}

	now := time.Now()
	ref := in.Product.normalized()
	item := RFQItem{
		ID:             uuid.New(),
		RFQID:          r.ID,
		LineNumber:     r.nextLineNumber(),
		Product:        ref,
		Quantity:       in.Quantity,
		Unit:           unit,
		Specifications: in.Specifications,
		Comments:       in.Comments,
		IsNewProduct:   !ref.IsCatalog(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.Items = append(r.Items, item)
	r.UpdatedAt = now
	return &r.Items[len(r.Items)-1], nil
}

func (r *RFQ) nextLineNumber() int {
	last := 0
	for _, item := range r.Items {
		if item.LineNumber > last {
			last = item.LineNumber
		}
	}
	return last + 1
}

// GetItem finds a line by ID
func (r *RFQ) GetItem(itemID uuid.UUID) *RFQItem {
	for i := range r.Items {
		if r.Items[i].ID == itemID {
			return &r.Items[i]
		}
	}
	return nil
}

// Submit sends a draft RFQ to product managers
func (r *RFQ) Submit() error {
	if r.Status != RFQStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft RFQs can be submitted")
	}
	if len(r.Items) == 0 {
		return ErrEmptyRFQ
	}
	now := time.Now()
	if err := r.transition(RFQStatusSubmitted, ""); err != nil {
		return err
	}
	r.SubmittedAt = &now
	r.AddDomainEvent(NewRFQSubmittedEvent(r))
	return nil
}

// StartProgress marks that product managers are working on the RFQ
func (r *RFQ) StartProgress() error {
	return r.transition(RFQStatusInProgress, "")
}

// MarkQuoted records that at least one quotation was submitted
func (r *RFQ) MarkQuoted() error {
	return r.transition(RFQStatusQuoted, "")
}

// Close finishes a quoted RFQ
func (r *RFQ) Close() error {
	return r.transition(RFQStatusClosed, "")
}

// Cancel abandons the RFQ from any non-terminal state
func (r *RFQ) Cancel(reason string) error {
	return r.transition(RFQStatusCancelled, reason)
}

func (r *RFQ) transition(target RFQStatus, reason string) error {
	if !r.Status.CanTransitionTo(target) {
		return invalidTransition("RFQ", r.Status, target)
	}
	from := r.Status
	r.Status = target
	r.UpdatedAt = time.Now()
	r.AddDomainEvent(NewRFQStatusChangedEvent(r, from, reason))
	return nil
}

// IsOwnedBy reports whether userID is the responsible sales manager
func (r *RFQ) IsOwnedBy(userID uuid.UUID) bool {
	return r.SalesManagerID == userID
}

// ItemCount returns the number of lines
func (r *RFQ) ItemCount() int {
	return len(r.Items)
}
