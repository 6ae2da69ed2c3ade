package rfq

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RFQMutation changes a locked RFQ; returning an error aborts the transaction
type RFQMutation func(r *RFQ) error

// QuotationMutation changes a locked quotation; returning an error aborts the transaction
type QuotationMutation func(q *Quotation) error

// RFQRepository persists RFQs with their items
type RFQRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*RFQ, error)
	// FindPendingForManager lists submitted or in-progress RFQs without a quotation from productManagerID
	FindPendingForManager(ctx context.Context, tenantID, productManagerID uuid.UUID) ([]RFQ, error)
	// Create inserts a new RFQ
	Create(ctx context.Context, r *RFQ) error
	// Mutate loads the RFQ under a row lock inside a transaction, applies fn and
	// saves it with a version check. Concurrent writers fail with CONCURRENT_MODIFICATION.
	Mutate(ctx context.Context, tenantID, id uuid.UUID, fn RFQMutation) (*RFQ, error)
	// GenerateNumber returns the next RFQ-YYYY-NNNNN number for the tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// QuotationRef identifies a quotation of any tenant
type QuotationRef struct {
	TenantID uuid.UUID
	ID       uuid.UUID
}

// QuotationRepository persists quotations with their items
type QuotationRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Quotation, error)
	FindByRFQ(ctx context.Context, tenantID, rfqID uuid.UUID) ([]Quotation, error)
	Create(ctx context.Context, q *Quotation) error
	// Mutate has the same locking contract as RFQRepository.Mutate
	Mutate(ctx context.Context, tenantID, id uuid.UUID, fn QuotationMutation) (*Quotation, error)
	// FindOverdue lists up to limit submitted quotations, across tenants, whose
	// validity ended before now. Oldest validity first.
	FindOverdue(ctx context.Context, now time.Time, limit int) ([]QuotationRef, error)
	// GenerateNumber returns the next QT-YYYY-NNNNN number for the tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
