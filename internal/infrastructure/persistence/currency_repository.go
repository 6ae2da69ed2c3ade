package persistence

import (
	"context"

	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCurrencyRepository implements currency.CurrencyRepository
type GormCurrencyRepository struct {
	db *gorm.DB
}

// NewGormCurrencyRepository creates a new GormCurrencyRepository
func NewGormCurrencyRepository(db *gorm.DB) *GormCurrencyRepository {
	return &GormCurrencyRepository{db: db}
}

// FindByCode returns the currency regardless of its active flag
func (r *GormCurrencyRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (*currency.Currency, error) {
	var m models.CurrencyModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("code = ?", code.String()).
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindActive lists active currencies, home first
func (r *GormCurrencyRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]currency.Currency, error) {
	var rows []models.CurrencyModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("is_active = ?", true).
		Order("is_home DESC").
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]currency.Currency, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// FindHome returns the tenant's home currency
func (r *GormCurrencyRepository) FindHome(ctx context.Context, tenantID uuid.UUID) (*currency.Currency, error) {
	var m models.CurrencyModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("is_home = ?", true).
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// Save inserts a new currency
func (r *GormCurrencyRepository) Save(ctx context.Context, c *currency.Currency) error {
	return translateError(r.db.WithContext(ctx).Create(models.CurrencyModelFromDomain(c)).Error)
}

// SaveWithLock updates the currency if nobody changed it since it was read
func (r *GormCurrencyRepository) SaveWithLock(ctx context.Context, c *currency.Currency) error {
	err := updateVersioned(r.db.WithContext(ctx), &models.CurrencyModel{}, c.ID, c.Version, map[string]any{
		"name":          c.Name,
		"symbol":        c.Symbol,
		"exchange_rate": c.ExchangeRate,
		"is_active":     c.IsActive,
		"updated_at":    c.UpdatedAt,
	})
	if err != nil {
		return err
	}
	c.IncrementVersion()
	return nil
}

var _ currency.CurrencyRepository = (*GormCurrencyRepository)(nil)
