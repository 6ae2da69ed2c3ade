package currency

import (
	"context"

	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CurrencyRepository persists currencies
type CurrencyRepository interface {
	// FindByCode returns the currency regardless of its active flag
	FindByCode(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (*Currency, error)
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]Currency, error)
	FindHome(ctx context.Context, tenantID uuid.UUID) (*Currency, error)
	Save(ctx context.Context, c *Currency) error
	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, c *Currency) error
}

// Default is a seeded currency definition
type Default struct {
	Code   valueobject.CurrencyCode
	Name   string
	Symbol string
	Rate   string
	Home   bool
}

// Defaults are the currencies seeded for every tenant
var Defaults = []Default{
	{Code: valueobject.RUB, Name: "Russian Ruble", Symbol: "₽", Rate: "1.0000", Home: true},
	{Code: valueobject.USD, Name: "US Dollar", Symbol: "$", Rate: "95.0000"},
	{Code: valueobject.CNY, Name: "Chinese Yuan", Symbol: "¥", Rate: "13.0000"},
}
