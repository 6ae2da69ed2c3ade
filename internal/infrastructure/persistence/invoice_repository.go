package persistence

import (
	"context"
	"time"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements sales.InvoiceRepository
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindSales returns sale invoices of the company dated within [From, To)
func (r *GormInvoiceRepository) FindSales(ctx context.Context, tenantID, companyID uuid.UUID, window sales.Window) ([]sales.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("company_id = ?", companyID).
		Where("invoice_type = ?", sales.InvoiceTypeSale).
		Where("invoice_date >= ? AND invoice_date < ?", window.From, window.To).
		Preload("Lines").
		Order("invoice_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// Find lists invoices matching filter. To is inclusive of the whole day.
func (r *GormInvoiceRepository) Find(ctx context.Context, tenantID uuid.UUID, filter sales.InvoiceFilter) ([]sales.Invoice, error) {
	query := r.db.WithContext(ctx).Scopes(tenantScope(tenantID))
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Type != "" {
		query = query.Where("invoice_type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("invoice_date >= ?", *filter.From)
	}
	if filter.To != nil {
		to := *filter.To
		end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
		query = query.Where("invoice_date < ?", end)
	}

	var rows []models.InvoiceModel
	if err := query.Preload("Lines").Order("invoice_date ASC").Order("number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// Save inserts the invoice with its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *sales.Invoice) error {
	return translateError(r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error)
}

func invoicesToDomain(rows []models.InvoiceModel) []sales.Invoice {
	out := make([]sales.Invoice, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out
}

var _ sales.InvoiceRepository = (*GormInvoiceRepository)(nil)
