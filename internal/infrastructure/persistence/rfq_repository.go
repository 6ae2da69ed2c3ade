package persistence

import (
	"context"
	"time"

	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	rfqNumberPrefix       = "RFQ"
	quotationNumberPrefix = "QT"
)

// GormRFQRepository implements rfq.RFQRepository
type GormRFQRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRFQRepository creates a new GormRFQRepository
func NewGormRFQRepository(db *gorm.DB) *GormRFQRepository {
	return &GormRFQRepository{db: db, now: time.Now}
}

func byLineNumber(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

// FindByID finds an RFQ with its items
func (r *GormRFQRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*rfq.RFQ, error) {
	var m models.RFQModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Preload("Items", byLineNumber).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindPendingForManager lists open RFQs the product manager has not quoted yet, oldest first
func (r *GormRFQRepository) FindPendingForManager(ctx context.Context, tenantID, productManagerID uuid.UUID) ([]rfq.RFQ, error) {
	var rows []models.RFQModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("status IN ?", []rfq.RFQStatus{rfq.RFQStatusSubmitted, rfq.RFQStatusInProgress}).
		Where(`NOT EXISTS (
			SELECT 1 FROM quotations q
			WHERE q.rfq_id = rfqs.id AND q.tenant_id = rfqs.tenant_id AND q.product_manager_id = ?
		)`, productManagerID).
		Preload("Items", byLineNumber).
		Order("created_at ASC").
		Order("number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]rfq.RFQ, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Create inserts the RFQ and its items
func (r *GormRFQRepository) Create(ctx context.Context, agg *rfq.RFQ) error {
	return translateError(r.db.WithContext(ctx).Create(models.RFQModelFromDomain(agg)).Error)
}

// Mutate applies fn to the row-locked RFQ and persists it guarded by its version
func (r *GormRFQRepository) Mutate(ctx context.Context, tenantID, id uuid.UUID, fn rfq.RFQMutation) (*rfq.RFQ, error) {
	var out *rfq.RFQ
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.RFQModel
		if err := forUpdate(tx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
			return translateError(err)
		}
		if err := byLineNumber(tx).Where("rfq_id = ?", m.ID).Find(&m.Items).Error; err != nil {
			return err
		}

		agg := m.ToDomain()
		version := agg.Version
		if err := fn(agg); err != nil {
			return err
		}

		err := updateVersioned(tx, &models.RFQModel{}, agg.ID, version, map[string]any{
			"title":            agg.Title,
			"contact_id":       agg.ContactID,
			"status":           agg.Status,
			"priority":         agg.Priority,
			"deadline":         agg.Deadline,
			"description":      agg.Description,
			"delivery_address": agg.DeliveryAddress,
			"payment_terms":    agg.PaymentTerms,
			"delivery_terms":   agg.DeliveryTerms,
			"notes":            agg.Notes,
			"ext_id":           agg.ExtID,
			"submitted_at":     agg.SubmittedAt,
			"updated_at":       agg.UpdatedAt,
		})
		if err != nil {
			return err
		}
		if err := upsertByID(tx, models.RFQModelFromDomain(agg).Items); err != nil {
			return err
		}
		agg.Version = version + 1
		out = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateNumber returns the next RFQ number for the tenant
func (r *GormRFQRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextNumber(ctx, r.db, models.RFQModel{}.TableName(), rfqNumberPrefix, tenantID, r.now())
}

// GormQuotationRepository implements rfq.QuotationRepository
type GormQuotationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db, now: time.Now}
}

// FindByID finds a quotation with its items
func (r *GormQuotationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*rfq.Quotation, error) {
	var m models.QuotationModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Preload("Items", byLineNumber).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByRFQ lists the quotations answering an RFQ, oldest first
func (r *GormQuotationRepository) FindByRFQ(ctx context.Context, tenantID, rfqID uuid.UUID) ([]rfq.Quotation, error) {
	var rows []models.QuotationModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("rfq_id = ?", rfqID).
		Preload("Items", byLineNumber).
		Order("created_at ASC").
		Order("number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]rfq.Quotation, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Create inserts the quotation and its items
func (r *GormQuotationRepository) Create(ctx context.Context, q *rfq.Quotation) error {
	return translateError(r.db.WithContext(ctx).Create(models.QuotationModelFromDomain(q)).Error)
}

// Mutate applies fn to the row-locked quotation and persists it guarded by its version
func (r *GormQuotationRepository) Mutate(ctx context.Context, tenantID, id uuid.UUID, fn rfq.QuotationMutation) (*rfq.Quotation, error) {
	var out *rfq.Quotation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.QuotationModel
		if err := forUpdate(tx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
			return translateError(err)
		}
		if err := byLineNumber(tx).Where("quotation_id = ?", m.ID).Find(&m.Items).Error; err != nil {
			return err
		}

		q := m.ToDomain()
		version := q.Version
		if err := fn(q); err != nil {
			return err
		}

		err := updateVersioned(tx, &models.QuotationModel{}, q.ID, version, map[string]any{
			"title":          q.Title,
			"currency":       q.Currency.String(),
			"status":         q.Status,
			"description":    q.Description,
			"valid_until":    q.ValidUntil,
			"delivery_time":  q.DeliveryTime,
			"payment_terms":  q.PaymentTerms,
			"delivery_terms": q.DeliveryTerms,
			"notes":          q.Notes,
			"ext_id":         q.ExtID,
			"total_amount":   q.TotalAmount,
			"submitted_at":   q.SubmittedAt,
			"updated_at":     q.UpdatedAt,
		})
		if err != nil {
			return err
		}
		if err := upsertByID(tx, models.QuotationModelFromDomain(q).Items); err != nil {
			return err
		}
		q.Version = version + 1
		out = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindOverdue lists submitted quotations of every tenant past their validity
func (r *GormQuotationRepository) FindOverdue(ctx context.Context, now time.Time, limit int) ([]rfq.QuotationRef, error) {
	var refs []rfq.QuotationRef
	err := r.db.WithContext(ctx).
		Model(&models.QuotationModel{}).
		Select("tenant_id", "id").
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", rfq.QuotationStatusSubmitted, now).
		Order("valid_until ASC").
		Limit(limit).
		Scan(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// GenerateNumber returns the next quotation number for the tenant
func (r *GormQuotationRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextNumber(ctx, r.db, models.QuotationModel{}.TableName(), quotationNumberPrefix, tenantID, r.now())
}

var (
	_ rfq.RFQRepository       = (*GormRFQRepository)(nil)
	_ rfq.QuotationRepository = (*GormQuotationRepository)(nil)
)
