package catalog

import (
	"context"
	"strings"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
)

// Product is a catalog entry that RFQ and quotation items may reference
type Product struct {
	shared.TenantAggregateRoot
	Code         string
	Name         string
	Manufacturer string
	PartNumber   string
	Unit         string
	IsActive     bool
}

// NewProduct creates an active catalog product
func NewProduct(tenantID uuid.UUID, code, name, unit string) (*Product, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	if unit == "" {
		unit = "pcs"
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Unit:                unit,
		IsActive:            true,
	}, nil
}

// ProductRepository resolves catalog references
type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, product *Product) error
}
