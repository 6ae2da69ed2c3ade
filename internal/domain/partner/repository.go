package partner

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository loads companies and their contacts
type CompanyRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Company, error)
	FindContact(ctx context.Context, tenantID, contactID uuid.UUID) (*Contact, error)
	Save(ctx context.Context, company *Company) error
	SaveContact(ctx context.Context, contact *Contact) error
}
