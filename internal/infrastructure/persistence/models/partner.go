package models

import (
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyModel is the persistence model for companies
type CompanyModel struct {
	TenantAggregateModel
	Name           string                `gorm:"type:varchar(255);not null"`
	ShortName      string                `gorm:"type:varchar(100)"`
	Type           partner.CompanyType   `gorm:"type:varchar(20);not null"`
	Status         partner.CompanyStatus `gorm:"type:varchar(20);not null;default:'potential'"`
	INN            string                `gorm:"type:varchar(12);index"`
	SalesManagerID *uuid.UUID            `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts to the domain entity
func (m *CompanyModel) ToDomain() *partner.Company {
	return &partner.Company{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Name:                m.Name,
		ShortName:           m.ShortName,
		Type:                m.Type,
		Status:              m.Status,
		INN:                 m.INN,
		SalesManagerID:      m.SalesManagerID,
	}
}

// CompanyModelFromDomain creates a model from a domain company
func CompanyModelFromDomain(c *partner.Company) *CompanyModel {
	m := &CompanyModel{
		Name:           c.Name,
		ShortName:      c.ShortName,
		Type:           c.Type,
		Status:         c.Status,
		INN:            c.INN,
		SalesManagerID: c.SalesManagerID,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// ContactModel is the persistence model for company contacts
type ContactModel struct {
	BaseModel
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	FirstName string    `gorm:"type:varchar(100)"`
	LastName  string    `gorm:"type:varchar(100)"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(50)"`
	Position  string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts to the domain entity
func (m *ContactModel) ToDomain() *partner.Contact {
	return &partner.Contact{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		TenantID:   m.TenantID,
		CompanyID:  m.CompanyID,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Email:      m.Email,
		Phone:      m.Phone,
		Position:   m.Position,
	}
}

// ContactModelFromDomain creates a model from a domain contact
func ContactModelFromDomain(c *partner.Contact) *ContactModel {
	m := &ContactModel{
		TenantID:  c.TenantID,
		CompanyID: c.CompanyID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Position:  c.Position,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
