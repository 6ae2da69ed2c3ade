package sales

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository reads invoices for reporting
type InvoiceRepository interface {
	// FindSales returns sale invoices of a company dated inside window
	FindSales(ctx context.Context, tenantID, companyID uuid.UUID, window Window) ([]Invoice, error)
	Find(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)
	Save(ctx context.Context, inv *Invoice) error
}
