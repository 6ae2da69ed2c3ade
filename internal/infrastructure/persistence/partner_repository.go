package persistence

import (
	"context"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements partner.CompanyRepository
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company within a tenant
func (r *GormCompanyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Company, error) {
	var m models.CompanyModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindContact finds a contact within a tenant
func (r *GormCompanyRepository) FindContact(ctx context.Context, tenantID, contactID uuid.UUID) (*partner.Contact, error) {
	var m models.ContactModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", contactID).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return translateError(r.db.WithContext(ctx).Save(models.CompanyModelFromDomain(company)).Error)
}

// SaveContact creates or updates a contact
func (r *GormCompanyRepository) SaveContact(ctx context.Context, contact *partner.Contact) error {
	return translateError(r.db.WithContext(ctx).Save(models.ContactModelFromDomain(contact)).Error)
}

// GormProductRepository implements catalog.ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translateError(r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error)
}

var (
	_ partner.CompanyRepository = (*GormCompanyRepository)(nil)
	_ catalog.ProductRepository = (*GormProductRepository)(nil)
)
