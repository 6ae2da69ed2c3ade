package models

import (
	"github.com/erp/crm/internal/domain/catalog"
)

// ProductModel is the persistence model for catalog products
type ProductModel struct {
	TenantAggregateModel
	Code         string `gorm:"type:varchar(50);not null;index"`
	Name         string `gorm:"type:varchar(255);not null"`
	Manufacturer string `gorm:"type:varchar(255)"`
	PartNumber   string `gorm:"type:varchar(100)"`
	Unit         string `gorm:"type:varchar(20);not null;default:'pcs'"`
	IsActive     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts to the domain entity
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Manufacturer:        m.Manufacturer,
		PartNumber:          m.PartNumber,
		Unit:                m.Unit,
		IsActive:            m.IsActive,
	}
}

// ProductModelFromDomain creates a model from a domain product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:         p.Code,
		Name:         p.Name,
		Manufacturer: p.Manufacturer,
		PartNumber:   p.PartNumber,
		Unit:         p.Unit,
		IsActive:     p.IsActive,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}
