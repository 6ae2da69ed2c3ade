package rfq

import (
	"fmt"

	"github.com/erp/crm/internal/domain/shared"
)

// Error codes
const (
	CodeEmptyRFQ                  = "EMPTY_RFQ"
	CodeEmptyQuotation            = "EMPTY_QUOTATION"
	CodeAmbiguousOrMissingProduct = "AMBIGUOUS_OR_MISSING_PRODUCT"
)

var (
	ErrEmptyRFQ             = shared.NewDomainError(CodeEmptyRFQ, "RFQ must have at least one item before submission")
	ErrEmptyQuotation       = shared.NewDomainError(CodeEmptyQuotation, "Quotation must have at least one item before submission")
	ErrAmbiguousProduct     = shared.NewDomainError(CodeAmbiguousOrMissingProduct, "Item must reference a catalog product or describe a new one, not both")
	ErrMissingProduct       = shared.NewDomainError(CodeAmbiguousOrMissingProduct, "Item must reference a catalog product or name a new one")
	ErrItemNotInRFQ         = shared.NewDomainError(shared.CodeInvalidInput, "RFQ item does not belong to the quoted RFQ")
	ErrContactNotInCompany  = shared.NewDomainError(shared.CodeInvalidInput, "Contact person does not belong to the selected company")
	ErrCompanyBlacklisted   = shared.NewDomainError(shared.CodeInvalidState, "Company is blacklisted")
	ErrRFQClosedForQuotes   = shared.NewDomainError(shared.CodeInvalidState, "RFQ does not accept quotations in its current status")
	ErrQuotationNotExpiring = shared.NewDomainError(shared.CodeInvalidState, "Quotation validity has not ended")
)

func invalidTransition(entity string, from, to fmt.Stringer) *shared.DomainError {
	return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot move %s from %s to %s", entity, from, to))
}
