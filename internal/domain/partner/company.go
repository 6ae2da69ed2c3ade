package partner

import (
	"strings"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyType classifies a counterparty
type CompanyType string

const (
	CompanyTypeManufacturer CompanyType = "manufacturer"
	CompanyTypeDistributor  CompanyType = "distributor"
	CompanyTypeIntegrator   CompanyType = "integrator"
	CompanyTypeEndUser      CompanyType = "end_user"
	CompanyTypeOther        CompanyType = "other"
)

// IsValid reports whether t is a known company type
func (t CompanyType) IsValid() bool {
	switch t {
	case CompanyTypeManufacturer, CompanyTypeDistributor, CompanyTypeIntegrator, CompanyTypeEndUser, CompanyTypeOther:
		return true
	}
	return false
}

// CompanyStatus is the relationship status with a company
type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusPotential CompanyStatus = "potential"
	CompanyStatusInactive  CompanyStatus = "inactive"
	CompanyStatusBlacklist CompanyStatus = "blacklist"
)

// Company is a customer organization that requests quotes and receives invoices
type Company struct {
	shared.TenantAggregateRoot
	Name           string
	ShortName      string
	Type           CompanyType
	Status         CompanyStatus
	INN            string
	SalesManagerID *uuid.UUID
}

// NewCompany creates a potential company
func NewCompany(tenantID uuid.UUID, name string, companyType CompanyType) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Company name cannot be empty")
	}
	if !companyType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid company type")
	}
	return &Company{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Type:                companyType,
		Status:              CompanyStatusPotential,
	}, nil
}

// CanRequestQuotes reports whether new RFQs may be opened for the company
func (c *Company) CanRequestQuotes() bool {
	return c.Status != CompanyStatusBlacklist
}

// IsManagedBy reports whether userID is the company's sales manager
func (c *Company) IsManagedBy(userID uuid.UUID) bool {
	return c.SalesManagerID != nil && *c.SalesManagerID == userID
}

// Contact is a person at a company
type Contact struct {
	shared.BaseEntity
	TenantID  uuid.UUID
	CompanyID uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Position  string
}

// NewContact creates a contact attached to a company
func NewContact(tenantID, companyID uuid.UUID, firstName, lastName string) (*Contact, error) {
	if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Contact name cannot be empty")
	}
	return &Contact{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		CompanyID:  companyID,
		FirstName:  strings.TrimSpace(firstName),
		LastName:   strings.TrimSpace(lastName),
	}, nil
}

// FullName returns "First Last"
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// BelongsTo reports whether the contact works at the company
func (c *Contact) BelongsTo(companyID uuid.UUID) bool {
	return c.CompanyID == companyID
}
