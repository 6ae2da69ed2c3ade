package dto

import "net/http"

// API error codes. Format: ERR_<DESCRIPTION>
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	ErrCodeValidation = "ERR_VALIDATION"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeRequestTooLarge     = "ERR_REQUEST_TOO_LARGE"

	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidState = "ERR_INVALID_STATE"

	ErrCodeCurrencyNotFound          = "ERR_CURRENCY_NOT_FOUND"
	ErrCodeInvalidRate               = "ERR_INVALID_RATE"
	ErrCodeInvalidMarkup             = "ERR_INVALID_MARKUP"
	ErrCodeInvalidQuantity           = "ERR_INVALID_QUANTITY"
	ErrCodeEmptyRFQ                  = "ERR_EMPTY_RFQ"
	ErrCodeEmptyQuotation            = "ERR_EMPTY_QUOTATION"
	ErrCodeAmbiguousOrMissingProduct = "ERR_AMBIGUOUS_OR_MISSING_PRODUCT"
	ErrCodePrintingUnavailable       = "ERR_PRINTING_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps API codes to HTTP statuses
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeCurrencyNotFound:    http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,

	// malformed values
	ErrCodeInvalidInput:              http.StatusBadRequest,
	ErrCodeInvalidRate:               http.StatusBadRequest,
	ErrCodeInvalidMarkup:             http.StatusBadRequest,
	ErrCodeInvalidQuantity:           http.StatusBadRequest,
	ErrCodeAmbiguousOrMissingProduct: http.StatusBadRequest,

	// well-formed requests the current state forbids
	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodeEmptyRFQ:       http.StatusUnprocessableEntity,
	ErrCodeEmptyQuotation: http.StatusUnprocessableEntity,

	ErrCodePrintingUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the status for an API code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps domain error codes to API codes
var domainCodes = map[string]string{
	"NOT_FOUND":                    ErrCodeNotFound,
	"ALREADY_EXISTS":               ErrCodeAlreadyExists,
	"INVALID_INPUT":                ErrCodeInvalidInput,
	"INVALID_STATE":                ErrCodeInvalidState,
	"CONCURRENT_MODIFICATION":      ErrCodeConcurrencyConflict,
	"FORBIDDEN":                    ErrCodeForbidden,
	"CURRENCY_NOT_FOUND":           ErrCodeCurrencyNotFound,
	"INVALID_RATE":                 ErrCodeInvalidRate,
	"INVALID_MARKUP":               ErrCodeInvalidMarkup,
	"INVALID_QUANTITY":             ErrCodeInvalidQuantity,
	"EMPTY_RFQ":                    ErrCodeEmptyRFQ,
	"EMPTY_QUOTATION":              ErrCodeEmptyQuotation,
	"AMBIGUOUS_OR_MISSING_PRODUCT": ErrCodeAmbiguousOrMissingProduct,
	"PRINTING_UNAVAILABLE":         ErrCodePrintingUnavailable,
}

// NormalizeErrorCode converts a domain code to its API code. Unknown codes map to ERR_INTERNAL.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
